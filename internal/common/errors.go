// Package common holds error values and small helpers shared between the
// services, repositories and the HTTP layer.
package common

import (
	"errors"
	"fmt"
)

var (

	// repository specific errors
	ErrorNotFound  = errors.New("not found")
	ErrorDuplicate = errors.New("already registered")

	// auth specific errors
	ErrorValidation   = errors.New("validation error")
	ErrorAuth         = errors.New("invalid email or password")
	ErrorExpiredCode  = errors.New("verification code expired")
	ErrorCodeMismatch = errors.New("invalid verification code")
	ErrorResendLocked = errors.New("resend not available yet")
	ErrorDelivery     = errors.New("failed to send verification code")

	ErrorConflict = errors.New("stored configuration changed since it was loaded")

	ErrorInternal      = errors.New("internal error")
	ErrInvalidToken    = errors.New("invalid token")
	ErrorNotLoggedIn   = errors.New("not authenticated")
	ErrorNoPendingCode = errors.New("no verification in progress")
)

// QuotaExceededError reports a rejected save together with the configured
// daily limit, so the caller can show remaining-quota context verbatim.
type QuotaExceededError struct {
	Limit int
	Used  int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily upload limit reached (%d/day)", e.Limit)
}
