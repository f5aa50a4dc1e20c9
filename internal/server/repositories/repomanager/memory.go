package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/finauth/internal/dbx"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out the same process-local stores no matter
// which handle is passed. It is also the dbx.Transactor for those stores.
type InMemoryRepositoryManager struct {
	UsersRepo *users.MemoryRepository
	Tokens    *refreshtokens.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	u := users.NewMemoryRepository()
	return &InMemoryRepositoryManager{
		UsersRepo: u,
		Tokens:    refreshtokens.NewMemoryRepository(u),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.UsersRepo
}

func (m *InMemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.Tokens
}

// WithTx runs fn with a journal on ctx and rolls back the recorded refresh
// token writes if fn fails.
func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	j := &refreshtokens.Journal{}
	if err := fn(refreshtokens.WithJournal(ctx, j), nil); err != nil {
		m.Tokens.Rollback(j)
		return err
	}
	return nil
}
