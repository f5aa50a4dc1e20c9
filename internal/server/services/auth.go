// Package services contains server-side business logic. This file implements
// AuthService, which verifies credentials, issues token pairs, rotates refresh
// tokens and revokes them on logout.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/dbx"
	"github.com/dmitrijs2005/finauth/internal/logging"
	"github.com/dmitrijs2005/finauth/internal/server/auth"
	"github.com/dmitrijs2005/finauth/internal/server/limiter"
	"github.com/dmitrijs2005/finauth/internal/server/models"
	"github.com/dmitrijs2005/finauth/internal/server/repositories/repomanager"
)

const LogoutMessage = "Logged out successfully"

// TokenIssuer signs and verifies access and refresh tokens.
type TokenIssuer interface {
	IssueAccessToken(user *models.User) (string, error)
	IssueRefreshToken(userID string) (string, time.Time, error)
	VerifyAccess(token string) (*auth.AccessClaims, error)
	VerifyRefresh(token string) (*auth.RefreshClaims, error)
}

// PasswordVerifier hashes and compares passwords.
type PasswordVerifier interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// LoginResult is returned by Login and RefreshTokens.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         models.PublicUser
}

// LogoutResult is returned by Logout.
type LogoutResult struct {
	Message string
	Revoked int64
}

// AuthService coordinates login, refresh, logout and id-based re-validation.
type AuthService struct {
	db          dbx.DBTX
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	issuer      TokenIssuer
	verifier    PasswordVerifier
	limiter     limiter.LoginLimiter
	logger      logging.Logger
	now         func() time.Time

	// dummyHash is compared against when the email is unknown so both
	// failure branches cost one bcrypt comparison.
	dummyHash string
}

// NewAuthService wires an AuthService. db is the handle used outside
// transactions; tx opens the transaction used by refresh rotation.
// A nil limiter disables throttling.
func NewAuthService(
	db dbx.DBTX,
	tx dbx.Transactor,
	m repomanager.RepositoryManager,
	issuer TokenIssuer,
	verifier PasswordVerifier,
	l limiter.LoginLimiter,
	logger logging.Logger,
) *AuthService {
	if l == nil {
		l = limiter.Nop{}
	}
	if tx == nil {
		tx = dbx.NoTx{}
	}
	s := &AuthService{
		db:          db,
		tx:          tx,
		repomanager: m,
		issuer:      issuer,
		verifier:    verifier,
		limiter:     l,
		logger:      logger,
		now:         time.Now,
	}
	if h, err := verifier.Hash("finauth-dummy-password"); err == nil {
		s.dummyHash = h
	}
	return s
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateUser checks email and password. Unknown emails fail with
// common.ErrUserNotFound and wrong passwords with common.ErrInvalidPassword;
// both match common.ErrInvalidCredentials. Store failures are returned as
// internal errors. The returned user carries no password hash. Every attempt
// is reserved with the limiter before any password comparison runs.
func (s *AuthService) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)

	if err := s.limiter.Reserve(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verifier.Compare(password, s.dummyHash)
			return nil, common.ErrUserNotFound
		}
		return nil, common.Internal(err)
	}

	if !s.verifier.Compare(password, user.PasswordHash) {
		return nil, common.ErrInvalidPassword
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn(ctx, "login limiter reset failed", "error", err)
	}

	return user.Sanitized(), nil
}

// Login mints and persists a new token pair for an already validated user.
func (s *AuthService) Login(ctx context.Context, user *models.User) (*LoginResult, error) {
	res, err := s.issuePair(ctx, s.db, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return res, nil
}

// RefreshTokens exchanges a refresh token for a new pair. The presented token
// is revoked by a conditional update in the same transaction that persists the
// new one; a caller losing that race gets common.ErrRefreshTokenReused.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*LoginResult, error) {
	record, owner, err := s.repomanager.RefreshTokens(s.db).FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenNotFound
		}
		return nil, common.Internal(err)
	}

	if record.IsRevoked {
		return nil, common.ErrRefreshTokenRevoked
	}
	if record.Expired(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != record.UserID {
		return nil, common.ErrInvalidToken
	}

	var res *LoginResult
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		h := s.handle(tx)

		revoked, err := s.repomanager.RefreshTokens(h).Revoke(ctx, record.ID)
		if err != nil {
			return common.Internal(err)
		}
		if !revoked {
			return common.ErrRefreshTokenReused
		}

		res, err = s.issuePair(ctx, h, owner)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenReused) {
			s.logger.Warn(ctx, "refresh token reuse rejected", "user_id", record.UserID, "token_id", record.ID)
			return nil, err
		}
		return nil, common.Internal(err)
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", record.UserID)
	return res, nil
}

// Logout revokes every active refresh token of userID. Having nothing left to
// revoke is a success.
func (s *AuthService) Logout(ctx context.Context, userID string) (*LogoutResult, error) {
	n, err := s.repomanager.RefreshTokens(s.db).RevokeAllActiveForUser(ctx, userID)
	if err != nil {
		return nil, common.Internal(err)
	}
	s.logger.Info(ctx, "user logged out", "user_id", userID, "revoked", n)
	return &LogoutResult{Message: LogoutMessage, Revoked: n}, nil
}

// ValidateUserByID re-fetches the subject of an access token.
// A missing user yields common.ErrSubjectNotFound.
func (s *AuthService) ValidateUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrSubjectNotFound
		}
		return nil, common.Internal(err)
	}
	return user.Sanitized(), nil
}

func (s *AuthService) issuePair(ctx context.Context, db dbx.DBTX, user *models.User) (*LoginResult, error) {
	access, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return nil, common.Internal(err)
	}
	refresh, expiresAt, err := s.issuer.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, common.Internal(err)
	}
	if _, err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refresh, expiresAt); err != nil {
		return nil, common.Internal(err)
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user.Public()}, nil
}

// handle falls back to the service handle when the transactor does not open
// a real transaction.
func (s *AuthService) handle(tx dbx.DBTX) dbx.DBTX {
	if tx == nil {
		return s.db
	}
	return tx
}
