package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredentialReasonsCollapse(t *testing.T) {
	assert.ErrorIs(t, ErrUserNotFound, ErrInvalidCredentials)
	assert.ErrorIs(t, ErrInvalidPassword, ErrInvalidCredentials)
	assert.NotErrorIs(t, ErrUserNotFound, ErrInvalidToken)
}

func TestTokenReasonsCollapse(t *testing.T) {
	for _, err := range []error{
		ErrTokenExpired,
		ErrRefreshTokenNotFound,
		ErrRefreshTokenRevoked,
		ErrRefreshTokenExpired,
		ErrRefreshTokenReused,
	} {
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("connection refused")

	err := Internal(cause)
	assert.ErrorIs(t, err, ErrorInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)

	assert.Equal(t, err, Internal(err), "already internal errors are not wrapped twice")
	assert.NoError(t, Internal(nil))
}
