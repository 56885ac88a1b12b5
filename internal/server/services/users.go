package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkrylov/medvault/internal/common"
	"github.com/dkrylov/medvault/internal/dbx"
	sc "github.com/dkrylov/medvault/internal/server/config"
	"github.com/dkrylov/medvault/internal/server/models"
	"github.com/dkrylov/medvault/internal/server/repositories/repomanager"
)

// UserService handles registration and sign-in. Both paths end with an OTP
// dispatched to the phone number; ConfirmOTP completes them.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	otp         *OTPService
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, otp *OTPService, cfg *sc.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		otp:         otp,
	}
}

// SignUp registers a new phone number and dispatches a verification code.
// The OTP record and the user row are written in one transaction so a lost
// registration race leaves no orphaned code behind.
func (s *UserService) SignUp(ctx context.Context, name, phoneNumber string) (*models.User, error) {
	if name == "" || phoneNumber == "" {
		return nil, fmt.Errorf("%w: phone number and name are required", common.ErrorValidation)
	}

	_, err := s.repomanager.Users(s.db).GetByPhone(ctx, phoneNumber)
	if err == nil {
		return nil, common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	user := &models.User{Name: name, PhoneNumber: phoneNumber}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.otp.DispatchWith(ctx, tx, phoneNumber); err != nil {
			return err
		}

		user, err = s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn dispatches a fresh OTP to an already registered phone number.
func (s *UserService) SignIn(ctx context.Context, phoneNumber string) error {
	if phoneNumber == "" {
		return fmt.Errorf("%w: phone number is required", common.ErrorValidation)
	}

	_, err := s.repomanager.Users(s.db).GetByPhone(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("user lookup: %w", err)
	}

	return s.otp.Dispatch(ctx, phoneNumber)
}

// ConfirmOTP verifies the submitted code and marks the user verified.
func (s *UserService) ConfirmOTP(ctx context.Context, phoneNumber, code string) (*models.User, error) {
	if phoneNumber == "" || code == "" {
		return nil, fmt.Errorf("%w: phone number and otp are required", common.ErrorValidation)
	}

	if err := s.otp.Verify(ctx, phoneNumber, code); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	if err := repo.SetVerified(ctx, phoneNumber); err != nil {
		return nil, fmt.Errorf("marking user verified: %w", err)
	}

	user, err := repo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	return user, nil
}
