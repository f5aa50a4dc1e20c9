// Package common contains shared constants and sentinel errors used across
// finauth components.
package common

const (
	// AuthorizationHeaderName carries the bearer access token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the prefix expected in front of the access token.
	BearerScheme = "Bearer"

	// RequestIDHeaderName echoes the per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"

	// RefreshTokenType is the value of the "type" claim on refresh tokens.
	RefreshTokenType = "refresh"
)
