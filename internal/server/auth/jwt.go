// Package auth issues and verifies the signed JWTs handed to clients.
// Access and refresh tokens are signed with separate HMAC secrets.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/server/config"
	"github.com/dmitrijs2005/finauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims are carried by access tokens. Subject is the user id.
// Type is never set on access tokens; it is decoded only to reject tokens
// of another kind.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
}

// RefreshClaims are carried by refresh tokens. Subject is the user id and
// Type is always common.RefreshTokenType.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Type string `json:"type"`
}

// Issuer signs and verifies tokens. It is safe for concurrent use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewIssuer builds an Issuer from the loaded configuration. A zero refresh
// TTL falls back to config.DefaultRefreshTokenTTL, a zero access TTL to
// config.DefaultAccessTokenTTL.
func NewIssuer(cfg *config.Config) *Issuer {
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = config.DefaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTokenTTL
	if refreshTTL <= 0 {
		refreshTTL = config.DefaultRefreshTokenTTL
	}

	return &Issuer{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        cfg.TokenIssuer,
		now:           time.Now,
	}
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// IssueAccessToken signs {sub, email, name} with the access secret.
func (i *Issuer) IssueAccessToken(user *models.User) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: i.registered(user.ID, i.accessTTL),
		Email:            user.Email,
		Name:             user.Name,
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return s, nil
}

// IssueRefreshToken signs {sub, type: "refresh"} with the refresh secret and
// returns the token together with its expiry, which callers persist as the
// record's expires_at.
func (i *Issuer) IssueRefreshToken(userID string) (string, time.Time, error) {
	claims := RefreshClaims{
		RegisteredClaims: i.registered(userID, i.refreshTTL),
		Type:             common.RefreshTokenType,
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return s, claims.ExpiresAt.Time, nil
}

// VerifyAccess checks signature, issuer and expiry against the access secret
// and rejects any token carrying a type claim, such as a refresh token.
func (i *Issuer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := i.parse(tokenString, claims, i.accessSecret); err != nil {
		return nil, err
	}
	if claims.Type != "" {
		return nil, fmt.Errorf("%w: not an access token", common.ErrInvalidToken)
	}
	return claims, nil
}

// VerifyRefresh checks signature, issuer and expiry against the refresh
// secret and requires the refresh type claim.
func (i *Issuer) VerifyRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := i.parse(tokenString, claims, i.refreshSecret); err != nil {
		return nil, err
	}
	if claims.Type != common.RefreshTokenType {
		return nil, fmt.Errorf("%w: not a refresh token", common.ErrInvalidToken)
	}
	return claims, nil
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return common.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return fmt.Errorf("%w: missing subject", common.ErrInvalidToken)
	}

	return nil
}
