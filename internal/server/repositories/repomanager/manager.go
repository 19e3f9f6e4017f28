// Package repomanager wires repository constructors to a database handle and
// owns schema migrations (via goose). Services ask the manager for a repo
// bound either to the *sql.DB or to an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/roamsync/roamsync/internal/dbx"
	"github.com/roamsync/roamsync/internal/server/repositories/refreshtokens"
	"github.com/roamsync/roamsync/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
