package records

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/studenthub/internal/common"
	dto "github.com/dmitrijs2005/studenthub/internal/models"
	"github.com/dmitrijs2005/studenthub/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var recordCols = []string{"id", "collection", "user_id", "body", "created_at"}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+records\s*\(collection,\s*user_id,\s*body\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at$`).
		WithArgs("expenses", "u-1", `{"title":"Tea"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("r-1", created))

	rec := &models.Record{Collection: dto.Expenses, UserID: "u-1", Body: []byte(`{"title":"Tea"}`)}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, "r-1", rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT\s+INTO\s+records`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Record{Collection: dto.Tasks})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `(?s)^SELECT\s+id,\s*collection,\s*user_id,\s*body,\s*created_at\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`

	mock.ExpectQuery(q).WithArgs("tasks", "r-1").
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow("r-1", "tasks", "u-1", []byte(`{"title":"Read"}`), time.Now()))

	rec, err := repo.Get(context.Background(), dto.Tasks, "r-1")
	require.NoError(t, err)
	assert.Equal(t, dto.Tasks, rec.Collection)
	assert.JSONEq(t, `{"title":"Read"}`, string(rec.Body))

	mock.ExpectQuery(q).WithArgs("tasks", "missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), dto.Tasks, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_QueryShapes(t *testing.T) {
	tests := []struct {
		name  string
		q     models.ListQuery
		query string
		args  []driver.Value
	}{
		{
			name:  "owner, oldest first",
			q:     models.ListQuery{Collection: dto.Tasks, UserID: "u-1"},
			query: `(?s)WHERE\s+collection\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+ORDER BY created_at ASC$`,
			args:  []driver.Value{"tasks", "u-1"},
		},
		{
			name:  "everyone, newest first, limited",
			q:     models.ListQuery{Collection: dto.Feed, NewestFirst: true, Limit: 100},
			query: `(?s)WHERE\s+collection\s*=\s*\$1\s+ORDER BY created_at DESC\s+LIMIT \$2$`,
			args:  []driver.Value{"feed", 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(tt.query).WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(recordCols).
					AddRow("r-2", string(tt.q.Collection), "u-1", []byte(`{}`), time.Now()).
					AddRow("r-1", string(tt.q.Collection), "u-2", []byte(`{}`), time.Now()))

			got, err := repo.List(context.Background(), tt.q)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "r-2", got[0].ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM\s+records`).WillReturnRows(sqlmock.NewRows(recordCols))

	got, err := repo.List(context.Background(), models.ListQuery{Collection: dto.Moods, UserID: "u-1"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateAndDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+records\s+SET\s+body\s*=\s*\$3\s+WHERE\s+collection\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`).
		WithArgs("tasks", "r-1", `{"completed":true}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(),
		&models.Record{ID: "r-1", Collection: dto.Tasks, Body: []byte(`{"completed":true}`)}))

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+records\s+WHERE\s+collection\s*=\s*\$1\s+AND\s+id\s*=\s*\$2$`).
		WithArgs("tasks", "r-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), dto.Tasks, "r-1"), common.ErrNotFound)

	mock.ExpectExec(`DELETE\s+FROM\s+records`).WillReturnResult(sqlmock.NewResult(0, 2))
	err := repo.Delete(context.Background(), dto.Tasks, "r-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected rows affected: 2")
}

func TestStatsQueries(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+collection,\s*COUNT\(\*\)\s+FROM\s+records\s+WHERE\s+user_id\s*=\s*\$1\s+GROUP BY collection$`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"collection", "count"}).
			AddRow("expenses", 3).AddRow("feed", 1))

	counts, err := repo.CountByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, map[dto.Collection]int{dto.Expenses: 3, dto.Feed: 1}, counts)

	mock.ExpectQuery(`(?s)^SELECT\s+COALESCE\(SUM\(\(body->>\$3\)::float8\),\s*0\)\s+FROM\s+records`).
		WithArgs("expenses", "u-1", "amount").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(12.5))

	sum, err := repo.SumNumber(context.Background(), dto.Expenses, "u-1", "amount")
	require.NoError(t, err)
	assert.Equal(t, 12.5, sum)
}
