// Package notify delivers SMS messages. OTP dispatch is its only consumer.
package notify

import "context"

type Sender interface {
	// Send delivers message to the phone number (E.164 format).
	Send(ctx context.Context, phoneNumber string, message string) error
}
