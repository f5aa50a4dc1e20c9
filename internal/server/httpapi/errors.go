package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/finauth/internal/common"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgInvalidRefresh     = "invalid refresh token"
	msgUnauthorized       = "unauthorized"
	msgRateLimited        = "too many login attempts"
	msgInternal           = "internal error"
)

// statusFor maps the auth error taxonomy onto an HTTP status and a generic
// client message. Reasons wrapped inside a kind are never exposed.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorInternal):
		return http.StatusInternalServerError, msgInternal
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, msgInvalidRefresh
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, msgUnauthorized
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, msgRateLimited
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
