package users

import (
	"context"

	"github.com/dkrylov/medvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*models.User, error)
	SetVerified(ctx context.Context, phoneNumber string) error
}
