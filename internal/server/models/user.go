package models

import "time"

// User is an account identified by phone number. Created at sign-up,
// mutated only by the verification state transition.
type User struct {
	ID          string
	PhoneNumber string
	Name        string
	IsVerified  bool
	CreatedAt   time.Time
}
