// Package refreshtokens declares the refresh token store contract and its
// PostgreSQL and in-memory implementations. Records are never deleted:
// revoked and expired rows stay as history.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/finauth/internal/server/models"
)

// Repository persists refresh token records.
type Repository interface {
	// Create stores a new, non-revoked record for userID.
	Create(ctx context.Context, userID string, token string, expiresAt time.Time) (*models.RefreshToken, error)

	// FindByToken returns the record for the literal token string together
	// with its owning user. Implementations return common.ErrorNotFound when
	// the token is absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, *models.User, error)

	// Revoke flips is_revoked to true only if it is currently false and
	// reports whether this call performed the flip. Exactly one of several
	// concurrent callers observes true.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeAllActiveForUser revokes every non-revoked record of userID and
	// returns how many rows changed. Zero is not an error.
	RevokeAllActiveForUser(ctx context.Context, userID string) (int64, error)
}
