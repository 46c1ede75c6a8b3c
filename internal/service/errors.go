package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserAlreadyExist  = errors.New("user already exist")
	ErrUserNotFound      = errors.New("user not found")
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrInvalidOrExpiredCode is deliberately the only failure a caller sees
	// for a bad verification attempt: a wrong code and an expired code are
	// indistinguishable so probing cannot reveal code state.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

	ErrAlreadyVerified = errors.New("email already verified")
)

// ResendThrottledError is returned when a resend is requested while an
// unexpired code exists. RetryAfter is the remaining wait in whole seconds,
// rounded up.
type ResendThrottledError struct {
	RetryAfter int
}

func (e *ResendThrottledError) Error() string {
	return fmt.Sprintf("resend throttled, retry after %d seconds", e.RetryAfter)
}
