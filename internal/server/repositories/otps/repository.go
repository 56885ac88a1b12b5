package otps

import (
	"context"

	"github.com/dkrylov/medvault/internal/server/models"
)

type Repository interface {
	// Upsert replaces any live record for the phone number. Only one OTP
	// may be pending per user at a time.
	Upsert(ctx context.Context, record *models.OTPRecord) error
	GetByPhone(ctx context.Context, phoneNumber string) (*models.OTPRecord, error)
	Delete(ctx context.Context, phoneNumber string) error
}
