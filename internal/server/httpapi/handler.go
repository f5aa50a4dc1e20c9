// Package httpapi exposes the auth core over JSON/HTTP using gin.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/finauth/internal/logging"
	"github.com/dmitrijs2005/finauth/internal/server/models"
	"github.com/dmitrijs2005/finauth/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the part of services.AuthService used by the handlers.
type AuthService interface {
	ValidateUser(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, user *models.User) (*services.LoginResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) (*services.LogoutResult, error)
}

type LoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	User         models.PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AuthHandler struct {
	service AuthService
	logger  logging.Logger
}

func NewAuthHandler(service AuthService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger.With("module", "http_auth")}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ctx := c.Request.Context()

	user, err := h.service.ValidateUser(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.service.Login(ctx, user)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(res))
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	res, err := h.service.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(res))
}

// Logout revokes every refresh token of the authenticated caller.
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	res, err := h.service.Logout(c.Request.Context(), p.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: res.Message})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	p, ok := PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgUnauthorized})
		return
	}

	c.JSON(http.StatusOK, models.PublicUser{ID: p.UserID, Email: p.Email, Name: p.Name})
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	} else {
		h.logger.Info(c.Request.Context(), "request denied", "path", c.FullPath(), "reason", err.Error())
	}
	c.JSON(status, gin.H{"error": msg})
}

func tokenResponse(res *services.LoginResult) TokenResponse {
	return TokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		User:         res.User,
	}
}
