package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkrylov/medvault/internal/dbx"
	"github.com/dkrylov/medvault/internal/server/repositories/corpora"
	"github.com/dkrylov/medvault/internal/server/repositories/otps"
	"github.com/dkrylov/medvault/internal/server/repositories/users"
)

// RepositoryManager builds repositories bound to a database handle. Passing
// a *sql.Tx instead of the *sql.DB runs the repository inside a transaction.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	OTPs(db dbx.DBTX) otps.Repository
	Corpora(db dbx.DBTX) corpora.Repository
}
