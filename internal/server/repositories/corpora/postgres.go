package corpora

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/dbx"
	"github.com/dkrylov/medvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, corpus *models.Corpus) error {

	query :=
		`INSERT INTO corpora (phone_number, combined_text, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (phone_number) DO UPDATE
		 SET combined_text = EXCLUDED.combined_text,
		     updated_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query, corpus.PhoneNumber, corpus.CombinedText)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.Corpus, error) {

	query :=
		`SELECT phone_number, combined_text, updated_at FROM corpora
		 WHERE phone_number = $1
		 `

	corpus := &models.Corpus{}
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&corpus.PhoneNumber, &corpus.CombinedText, &corpus.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return corpus, nil
}
