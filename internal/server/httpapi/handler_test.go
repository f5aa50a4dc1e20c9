package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/finauth/internal/common"
	"github.com/dmitrijs2005/finauth/internal/logging"
	"github.com/dmitrijs2005/finauth/internal/server/models"
	"github.com/dmitrijs2005/finauth/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) ValidateUser(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, user *models.User) (*services.LoginResult, error) {
	args := m.Called(ctx, user)
	r, _ := args.Get(0).(*services.LoginResult)
	return r, args.Error(1)
}

func (m *mockAuthService) RefreshTokens(ctx context.Context, token string) (*services.LoginResult, error) {
	args := m.Called(ctx, token)
	r, _ := args.Get(0).(*services.LoginResult)
	return r, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, userID string) (*services.LogoutResult, error) {
	args := m.Called(ctx, userID)
	r, _ := args.Get(0).(*services.LogoutResult)
	return r, args.Error(1)
}

type mockAuthenticator struct{ mock.Mock }

func (m *mockAuthenticator) Authenticate(ctx context.Context, header string) (*services.Principal, error) {
	args := m.Called(ctx, header)
	p, _ := args.Get(0).(*services.Principal)
	return p, args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc AuthService, a Authenticator) *gin.Engine {
	l := logging.NewNopLogger()
	return NewRouter(NewAuthHandler(svc, l), a, nil, l)
}

func do(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

var testPair = &services.LoginResult{
	AccessToken:  "acc",
	RefreshToken: "ref",
	User:         models.PublicUser{ID: "u1", Email: "a@x.com", Name: "Alice"},
}

func TestLogin(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@x.com", Name: "Alice"}

	tests := []struct {
		name        string
		body        string
		setup       func(m *mockAuthService)
		wantStatus  int
		wantError   string
		wantSuccess bool
	}{
		{
			name: "success",
			body: `{"email":"a@x.com","password":"correct"}`,
			setup: func(m *mockAuthService) {
				m.On("ValidateUser", mock.Anything, "a@x.com", "correct").Return(user, nil)
				m.On("Login", mock.Anything, user).Return(testPair, nil)
			},
			wantStatus:  http.StatusOK,
			wantSuccess: true,
		},
		{
			name: "wrong password",
			body: `{"email":"a@x.com","password":"wrong"}`,
			setup: func(m *mockAuthService) {
				m.On("ValidateUser", mock.Anything, "a@x.com", "wrong").Return(nil, common.ErrInvalidPassword)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgInvalidCredentials,
		},
		{
			name: "unknown email",
			body: `{"email":"b@x.com","password":"x"}`,
			setup: func(m *mockAuthService) {
				m.On("ValidateUser", mock.Anything, "b@x.com", "x").Return(nil, common.ErrUserNotFound)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  msgInvalidCredentials,
		},
		{
			name: "store down",
			body: `{"email":"a@x.com","password":"x"}`,
			setup: func(m *mockAuthService) {
				m.On("ValidateUser", mock.Anything, "a@x.com", "x").Return(nil, common.Internal(errors.New("dial tcp")))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  msgInternal,
		},
		{
			name: "rate limited",
			body: `{"email":"a@x.com","password":"x"}`,
			setup: func(m *mockAuthService) {
				m.On("ValidateUser", mock.Anything, "a@x.com", "x").Return(nil, common.ErrRateLimited)
			},
			wantStatus: http.StatusTooManyRequests,
			wantError:  msgRateLimited,
		},
		{
			name:       "missing password",
			body:       `{"email":"a@x.com"}`,
			setup:      func(*mockAuthService) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			tt.setup(svc)

			w, resp := do(t, newTestRouter(svc, new(mockAuthenticator)), http.MethodPost, "/auth/login", tt.body, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantSuccess {
				assert.Equal(t, "acc", resp["access_token"])
				assert.Equal(t, "ref", resp["refresh_token"])
				assert.Equal(t, map[string]any{"id": "u1", "email": "a@x.com", "name": "Alice"}, resp["user"])
			} else {
				assert.Equal(t, tt.wantError, resp["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("RefreshTokens", mock.Anything, "old").Return(testPair, nil)

		w, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/auth/refresh", `{"refresh_token":"old"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ref", resp["refresh_token"])
		svc.AssertExpectations(t)
	})

	for _, reason := range []error{
		common.ErrRefreshTokenNotFound,
		common.ErrRefreshTokenRevoked,
		common.ErrRefreshTokenExpired,
		common.ErrRefreshTokenReused,
		common.ErrTokenExpired,
	} {
		t.Run(reason.Error(), func(t *testing.T) {
			svc := new(mockAuthService)
			svc.On("RefreshTokens", mock.Anything, "old").Return(nil, reason)

			w, resp := do(t, newTestRouter(svc, nil), http.MethodPost, "/auth/refresh", `{"refresh_token":"old"}`, nil)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, msgInvalidRefresh, resp["error"])
		})
	}

	t.Run("empty body", func(t *testing.T) {
		w, _ := do(t, newTestRouter(new(mockAuthService), nil), http.MethodPost, "/auth/refresh", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogout(t *testing.T) {
	principal := &services.Principal{UserID: "u1", Email: "a@x.com", Name: "Alice"}

	t.Run("authenticated", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "Bearer acc").Return(principal, nil)
		svc := new(mockAuthService)
		svc.On("Logout", mock.Anything, "u1").Return(&services.LogoutResult{Message: services.LogoutMessage}, nil)

		w, resp := do(t, newTestRouter(svc, a), http.MethodPost, "/auth/logout", "", map[string]string{"Authorization": "Bearer acc"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, services.LogoutMessage, resp["message"])
		svc.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "").Return(nil, common.ErrInvalidToken)
		svc := new(mockAuthService)

		w, resp := do(t, newTestRouter(svc, a), http.MethodPost, "/auth/logout", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, msgUnauthorized, resp["error"])
		svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "Bearer acc").Return(principal, nil)
		svc := new(mockAuthService)
		svc.On("Logout", mock.Anything, "u1").Return(nil, common.Internal(errors.New("db down")))

		w, _ := do(t, newTestRouter(svc, a), http.MethodPost, "/auth/logout", "", map[string]string{"Authorization": "Bearer acc"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestProfile(t *testing.T) {
	t.Run("returns public projection", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "Bearer acc").Return(&services.Principal{
			UserID: "u1", Email: "a@x.com", Name: "Alice",
			User: &models.User{ID: "u1", Email: "a@x.com", Name: "Alice"},
		}, nil)

		w, resp := do(t, newTestRouter(new(mockAuthService), a), http.MethodGet, "/auth/profile", "", map[string]string{"Authorization": "Bearer acc"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, map[string]any{"id": "u1", "email": "a@x.com", "name": "Alice"}, resp)
	})

	t.Run("stale subject", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "Bearer acc").Return(nil, common.ErrSubjectNotFound)

		w, _ := do(t, newTestRouter(new(mockAuthService), a), http.MethodGet, "/auth/profile", "", map[string]string{"Authorization": "Bearer acc"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("directory down", func(t *testing.T) {
		a := new(mockAuthenticator)
		a.On("Authenticate", mock.Anything, "Bearer acc").Return(nil, common.Internal(errors.New("timeout")))

		w, resp := do(t, newTestRouter(new(mockAuthService), a), http.MethodGet, "/auth/profile", "", map[string]string{"Authorization": "Bearer acc"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, msgInternal, resp["error"])
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{common.ErrUserNotFound, http.StatusUnauthorized},
		{common.ErrInvalidPassword, http.StatusUnauthorized},
		{common.ErrRefreshTokenReused, http.StatusUnauthorized},
		{common.ErrSubjectNotFound, http.StatusUnauthorized},
		{common.ErrRateLimited, http.StatusTooManyRequests},
		{common.Internal(errors.New("x")), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}

	_, a := statusFor(common.ErrUserNotFound)
	_, b := statusFor(common.ErrInvalidPassword)
	assert.Equal(t, a, b, "credential failures must look the same")
}
