// Package records provides the PostgreSQL repository behind every collection
// service. Records keep their payload in a jsonb column.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/studenthub/internal/common"
	"github.com/dmitrijs2005/studenthub/internal/dbx"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts rec and fills in its id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.Record) error {
	query :=
		`INSERT INTO records (collection, user_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, string(rec.Collection), rec.UserID, string(rec.Body)).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, coll dto.Collection, id string) (*models.Record, error) {
	query :=
		`SELECT id, collection, user_id, body, created_at FROM records
		 WHERE collection = $1 AND id = $2`

	rec := &models.Record{}
	var c string
	err := r.db.QueryRowContext(ctx, query, string(coll), id).
		Scan(&rec.ID, &c, &rec.UserID, &rec.Body, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	rec.Collection = dto.Collection(c)
	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, q models.ListQuery) ([]*models.Record, error) {
	query := `SELECT id, collection, user_id, body, created_at FROM records WHERE collection = $1`
	args := []any{string(q.Collection)}

	if q.UserID != "" {
		args = append(args, q.UserID)
		query += ` AND user_id = $` + strconv.Itoa(len(args))
	}
	if q.NewestFirst {
		query += ` ORDER BY created_at DESC`
	} else {
		query += ` ORDER BY created_at ASC`
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Record, 0)
	for rows.Next() {
		var (
			rec models.Record
			c   string
		)
		if err := rows.Scan(&rec.ID, &c, &rec.UserID, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Collection = dto.Collection(c)
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Update replaces the body of rec. Ownership is not changed.
func (r *PostgresRepository) Update(ctx context.Context, rec *models.Record) error {
	query := `UPDATE records SET body = $3 WHERE collection = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, string(rec.Collection), rec.ID, string(rec.Body))
	return affectedOne(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, coll dto.Collection, id string) error {
	query := `DELETE FROM records WHERE collection = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, string(coll), id)
	return affectedOne(res, err)
}

func (r *PostgresRepository) CountByUser(ctx context.Context, userID string) (map[dto.Collection]int, error) {
	query := `SELECT collection, COUNT(*) FROM records WHERE user_id = $1 GROUP BY collection`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[dto.Collection]int)
	for rows.Next() {
		var (
			c string
			n int
		)
		if err := rows.Scan(&c, &n); err != nil {
			return nil, err
		}
		counts[dto.Collection(c)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return counts, nil
}

func (r *PostgresRepository) SumNumber(ctx context.Context, coll dto.Collection, userID, field string) (float64, error) {
	query :=
		`SELECT COALESCE(SUM((body->>$3)::float8), 0) FROM records
		 WHERE collection = $1 AND user_id = $2`

	var sum float64
	if err := r.db.QueryRowContext(ctx, query, string(coll), userID, field).Scan(&sum); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return sum, nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
