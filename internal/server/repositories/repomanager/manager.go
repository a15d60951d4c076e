package repomanager

import (
	"context"

	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/records"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or to the
// transaction handed to WithTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() dbx.DBTX
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Records(db dbx.DBTX) records.Repository
}
