package corpora

import (
	"context"

	"github.com/dkrylov/medvault/internal/server/models"
)

type Repository interface {
	// Upsert replaces the user's combined text wholesale.
	Upsert(ctx context.Context, corpus *models.Corpus) error
	GetByPhone(ctx context.Context, phoneNumber string) (*models.Corpus, error)
}
