// Package users declares the user directory contract consumed by the auth
// core and its PostgreSQL and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/finauth/internal/server/models"
)

// Repository looks up users. Implementations return common.ErrorNotFound
// when no row matches and wrap every other failure.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
}
