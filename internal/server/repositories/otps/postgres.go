package otps

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

func (r *PostgresRepository) Upsert(ctx context.Context, record *models.OTPRecord) error {

	query :=
		`INSERT INTO otps (phone_number, encrypted_code, iv, expires_at, consumed)
		 VALUES ($1, $2, $3, $4, false)
		 ON CONFLICT (phone_number) DO UPDATE
		 SET encrypted_code = EXCLUDED.encrypted_code,
		     iv = EXCLUDED.iv,
		     expires_at = EXCLUDED.expires_at,
		     consumed = false,
		     created_at = now()
		 `

	_, err := r.db.ExecContext(ctx, query,
		record.PhoneNumber, record.EncryptedCode, record.IV, record.ExpiresAt)

	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.OTPRecord, error) {

	query :=
		`SELECT phone_number, encrypted_code, iv, expires_at, consumed, created_at
		 FROM otps
		 WHERE phone_number = $1
		 `

	record := &models.OTPRecord{}
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&record.PhoneNumber, &record.EncryptedCode, &record.IV,
		&record.ExpiresAt, &record.Consumed, &record.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return record, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, phoneNumber string) error {

	query :=
		`DELETE FROM otps WHERE phone_number = $1`

	_, err := r.db.ExecContext(ctx, query, phoneNumber)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}
