// Package common defines shared constants and sentinel errors used across
// the medvault server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (bad input shape, size or type).
	ErrorValidation = errors.New("validation error")

	// Registration errors.
	ErrorAlreadyExists = errors.New("already exists")

	// Ownership errors (caller does not own the resource).
	ErrorForbidden = errors.New("forbidden")

	// OTP lifecycle errors.
	ErrorInvalidOTP = errors.New("invalid otp")
	ErrorOTPExpired = errors.New("otp expired")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// External collaborator errors (blob store, OCR, SMS, completion).
	ErrorExternalService = errors.New("external service error")
)
