package models

import "time"

// OTPRecord is the encrypted at-rest form of a one-time code. At most one
// record exists per phone number; issuing a new code replaces it.
type OTPRecord struct {
	PhoneNumber   string
	EncryptedCode string
	IV            string
	ExpiresAt     time.Time
	Consumed      bool
	CreatedAt     time.Time
}
