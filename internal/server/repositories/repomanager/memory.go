package repomanager

import (
	"context"

	"github.com/dmitrijs2005/studenthub/internal/dbx"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/memory"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/records"
	"github.com/dmitrijs2005/studenthub/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in a memory.Store. The DBTX
// arguments are ignored.
type InMemoryRepositoryManager struct {
	Store *memory.Store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{Store: memory.NewStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Conn() dbx.DBTX { return nil }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return m.Store.WithTx(ctx, func(ctx context.Context) error { return fn(ctx, nil) })
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.Store.Users() }

func (m *InMemoryRepositoryManager) Records(dbx.DBTX) records.Repository { return m.Store.Records() }
