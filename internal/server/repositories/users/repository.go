package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

// Repository persists accounts. Lookups that match nothing return
// common.ErrNotFound; Create returns common.ErrConflict for a taken student id.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
