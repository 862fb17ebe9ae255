// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package models

// Token type names carried in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Token is a signed JWT with its type.
type Token struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// TokenPair is issued on login and refresh.
type TokenPair struct {
	Access  *Token `json:"access"`
	Refresh *Token `json:"refresh"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResult is returned by the login mutation.
type LoginResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Tokens  *TokenPair  `json:"tokens,omitempty"`
	User    *PublicUser `json:"user,omitempty"`
}

// RefreshResult is returned by the refresh mutation. Without rotation
// Tokens.Refresh is the token that was sent.
type RefreshResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Tokens  *TokenPair `json:"tokens,omitempty"`
}

// LogoutResult is returned by the logout mutation.
type LogoutResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthInfo describes the authentication service.
type AuthInfo struct {
	Service              string `json:"service"`
	AccessTokenLifetime  string `json:"access_token_lifetime"`
	RefreshTokenLifetime string `json:"refresh_token_lifetime"`
	RotateRefreshTokens  bool   `json:"rotate_refresh_tokens"`
}

// MessageResult is a plain success/message reply.
type MessageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
