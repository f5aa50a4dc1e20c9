package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/finauth/internal/dbx"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
