package users

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

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (phone_number, name)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.PhoneNumber, user.Name).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error) {

	query :=
		`SELECT id, phone_number, name, is_verified, created_at FROM users
		 WHERE phone_number = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, phoneNumber).Scan(
		&user.ID, &user.PhoneNumber, &user.Name, &user.IsVerified, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) SetVerified(ctx context.Context, phoneNumber string) error {

	query :=
		`UPDATE users SET is_verified = true
		 WHERE phone_number = $1
		 `

	res, err := r.db.ExecContext(ctx, query, phoneNumber)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading result: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
