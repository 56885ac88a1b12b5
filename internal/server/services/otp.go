package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/cryptox"
	"github.com/dkrylov/medvault/internal/dbx"
	"github.com/dkrylov/medvault/internal/logging"
	sc "github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/models"
	"github.com/dkrylov/medvault/internal/server/notify"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
)

// OTPService owns the one-time-code lifecycle: generation, encrypted
// storage, expiry and single-use verification. A record is either pending
// (not expired, not consumed) or absent; issuing replaces any prior record
// and a successful verification deletes it.
type OTPService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifier      notify.Sender
	logger        logging.Logger
	encryptionKey []byte
	validity      time.Duration
}

func NewOTPService(db *sql.DB, m repomanager.RepositoryManager, notifier notify.Sender, logger logging.Logger, cfg *sc.Config) *OTPService {
	return &OTPService{
		db:            db,
		repomanager:   m,
		notifier:      notifier,
		logger:        logger,
		encryptionKey: []byte(cfg.EncryptionKey),
		validity:      cfg.OTPValidityDuration,
	}
}

// Generate produces a uniform random 6-digit code, 100000–999999.
func (s *OTPService) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("otp generation: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// IssueWith encrypts code with a fresh IV and upserts the record for
// phoneNumber on the given handle, replacing any pending code. Pass a
// transaction handle to issue as part of a larger unit of work.
func (s *OTPService) IssueWith(ctx context.Context, db dbx.DBTX, phoneNumber, code string) error {
	encrypted, iv, err := cryptox.Encrypt(code, s.encryptionKey)
	if err != nil {
		return fmt.Errorf("otp encryption: %w", err)
	}

	record := &models.OTPRecord{
		PhoneNumber:   phoneNumber,
		EncryptedCode: encrypted,
		IV:            iv,
		ExpiresAt:     time.Now().Add(s.validity),
	}

	if err := s.repomanager.OTPs(db).Upsert(ctx, record); err != nil {
		return fmt.Errorf("otp save: %w", err)
	}

	return nil
}

func (s *OTPService) Issue(ctx context.Context, phoneNumber, code string) error {
	return s.IssueWith(ctx, s.db, phoneNumber, code)
}

// DispatchWith generates a fresh code, delivers it by SMS and persists the
// encrypted record on the given handle. Delivery happens first so a code
// that could not be sent never becomes verifiable.
func (s *OTPService) DispatchWith(ctx context.Context, db dbx.DBTX, phoneNumber string) error {
	code, err := s.Generate()
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, phoneNumber, fmt.Sprintf("Your OTP is %s", code)); err != nil {
		return fmt.Errorf("otp delivery: %w", err)
	}

	return s.IssueWith(ctx, db, phoneNumber, code)
}

func (s *OTPService) Dispatch(ctx context.Context, phoneNumber string) error {
	return s.DispatchWith(ctx, s.db, phoneNumber)
}

// Verify checks submittedCode against the pending record for phoneNumber.
//
// Outcomes:
//   - no record:        common.ErrorNotFound
//   - past expiration:  common.ErrorOTPExpired, record deleted
//   - wrong code or undecryptable record: common.ErrorInvalidOTP, record kept
//   - match:            nil, record deleted (single use)
func (s *OTPService) Verify(ctx context.Context, phoneNumber, submittedCode string) error {
	repo := s.repomanager.OTPs(s.db)

	record, err := repo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("otp lookup: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		if err := repo.Delete(ctx, phoneNumber); err != nil {
			s.logger.Error(ctx, "failed to delete expired otp", "error", err)
		}
		return common.ErrorOTPExpired
	}

	code, err := cryptox.Decrypt(record.EncryptedCode, record.IV, s.encryptionKey)
	if err != nil {
		// corrupt at-rest data reads the same as a wrong guess
		s.logger.Warn(ctx, "otp record failed to decrypt", "phone", phoneNumber)
		return common.ErrorInvalidOTP
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(submittedCode)) != 1 {
		return common.ErrorInvalidOTP
	}

	if err := repo.Delete(ctx, phoneNumber); err != nil {
		return fmt.Errorf("otp consume: %w", err)
	}

	return nil
}
