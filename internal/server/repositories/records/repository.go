package records

import (
	"context"

	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

// Repository stores collection records as JSON documents. Get, Update and
// Delete return common.ErrNotFound when no record of coll has the id.
type Repository interface {
	Create(ctx context.Context, rec *models.Record) error
	Get(ctx context.Context, coll dto.Collection, id string) (*models.Record, error)
	List(ctx context.Context, q models.ListQuery) ([]*models.Record, error)
	Update(ctx context.Context, rec *models.Record) error
	Delete(ctx context.Context, coll dto.Collection, id string) error

	// CountByUser returns how many records userID owns in each collection.
	CountByUser(ctx context.Context, userID string) (map[dto.Collection]int, error)
	// SumNumber adds up the numeric JSON field of userID's records in coll.
	SumNumber(ctx context.Context, coll dto.Collection, userID, field string) (float64, error)
}
