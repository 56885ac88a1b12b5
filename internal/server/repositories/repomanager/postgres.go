package repomanager

import (
	"context"
	"database/sql"

	"github.com/dkrylov/medvault/internal/dbx"
	"github.com/dkrylov/medvault/internal/server/migrations"
	"github.com/dkrylov/medvault/internal/server/repositories/corpora"
	"github.com/dkrylov/medvault/internal/server/repositories/otps"
	"github.com/dkrylov/medvault/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) OTPs(db dbx.DBTX) otps.Repository {
	return otps.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Corpora(db dbx.DBTX) corpora.Repository {
	return corpora.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}

	return nil
}
