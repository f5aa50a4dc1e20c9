// Package common defines shared constants and sentinel errors used across
// the finauth layers. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Infrastructure errors (store or directory unreachable, signing failures).
	ErrorInternal = errors.New("internal error")

	// Authorization errors: a valid access token whose subject is gone.
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrSubjectNotFound = fmt.Errorf("%w: subject no longer exists", ErrorUnauthorized)

	// Credential errors. Both reasons collapse to ErrInvalidCredentials outward.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrInvalidCredentials)
	ErrInvalidPassword    = fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)

	// Token errors (invalid, malformed, expired, revoked or reused token).
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrRefreshTokenNotFound = fmt.Errorf("%w: refresh token not found", ErrInvalidToken)
	ErrRefreshTokenRevoked  = fmt.Errorf("%w: refresh token revoked", ErrInvalidToken)
	ErrRefreshTokenExpired  = fmt.Errorf("%w: refresh token expired", ErrInvalidToken)
	ErrRefreshTokenReused   = fmt.Errorf("%w: refresh token already exchanged", ErrInvalidToken)

	// Throttling.
	ErrRateLimited = errors.New("too many failed login attempts")
)

// Internal marks err as an infrastructure failure while keeping the cause
// available to errors.Is / errors.As.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrorInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrorInternal, err)
}
