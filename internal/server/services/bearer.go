package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/server/models"
)

// Principal is the authenticated caller of a bearer-protected request.
type Principal struct {
	UserID string
	Email  string
	Name   string
	User   *models.User
}

// UserValidator re-fetches the subject of an access token.
type UserValidator interface {
	ValidateUserByID(ctx context.Context, userID string) (*models.User, error)
}

// BearerValidator turns an Authorization header into a Principal.
type BearerValidator struct {
	issuer TokenIssuer
	users  UserValidator
}

func NewBearerValidator(issuer TokenIssuer, users UserValidator) *BearerValidator {
	return &BearerValidator{issuer: issuer, users: users}
}

// Authenticate verifies the access token in header and confirms its subject
// still exists. Token failures match common.ErrInvalidToken, a vanished
// subject matches common.ErrSubjectNotFound.
func (v *BearerValidator) Authenticate(ctx context.Context, header string) (*Principal, error) {
	token, ok := ExtractBearer(header)
	if !ok {
		return nil, common.ErrInvalidToken
	}

	claims, err := v.issuer.VerifyAccess(token)
	if err != nil {
		return nil, err
	}

	user, err := v.users.ValidateUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		User:   user.Sanitized(),
	}, nil
}

// ExtractBearer returns the token of a "Bearer <token>" header. The scheme is
// matched case-insensitively.
func ExtractBearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
