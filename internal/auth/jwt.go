// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

// Token errors
var (
	ErrInvalidToken            = errors.New("token is invalid")
	ErrExpiredToken            = errors.New("token is expired")
	ErrWrongTokenType          = errors.New("token has wrong type")
	ErrTokenBlacklisted        = errors.New("token is blacklisted")
	ErrTokenAlreadyBlacklisted = errors.New("token is already blacklisted")
)

// Claims are the JWT claims carried by access and refresh tokens.
type Claims struct {
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues, parses, refreshes and revokes JWT pairs.
type TokenService struct {
	secret          []byte
	issuer          string
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	rotate          bool
	blacklistOnRot  bool
	blacklist       Blacklist

	now func() time.Time
}

// NewTokenService creates a token service signing with HS256.
func NewTokenService(cfg *config.JWTConfig, blacklist Blacklist) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required but was empty")
	}
	if blacklist == nil {
		return nil, fmt.Errorf("token blacklist is required")
	}

	return &TokenService{
		secret:          []byte(cfg.Secret),
		issuer:          cfg.Issuer,
		accessLifetime:  cfg.AccessTokenLifetime,
		refreshLifetime: cfg.RefreshTokenLifetime,
		rotate:          cfg.RotateRefreshTokens,
		blacklistOnRot:  cfg.BlacklistAfterRotation,
		blacklist:       blacklist,
		now:             time.Now,
	}, nil
}

// AccessLifetime returns the configured access token lifetime.
func (s *TokenService) AccessLifetime() time.Duration { return s.accessLifetime }

// RefreshLifetime returns the configured refresh token lifetime.
func (s *TokenService) RefreshLifetime() time.Duration { return s.refreshLifetime }

// RotatesRefreshTokens reports whether refresh issues a new refresh token.
func (s *TokenService) RotatesRefreshTokens() bool { return s.rotate }

// IssuePair creates an access token and a refresh token for user.
func (s *TokenService) IssuePair(user *models.User) (*models.TokenPair, error) {
	access, err := s.sign(models.TokenTypeAccess, user.ID, s.accessLifetime)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(models.TokenTypeRefresh, user.ID, s.refreshLifetime)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{
		Access:  &models.Token{Token: access, TokenType: models.TokenTypeAccess},
		Refresh: &models.Token{Token: refresh, TokenType: models.TokenTypeRefresh},
	}, nil
}

func (s *TokenService) sign(tokenType string, userID int64, lifetime time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		TokenType: tokenType,
		UserID:    userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature, expiry and type of a token.
// Only HMAC signing methods are accepted.
func (s *TokenService) Parse(tokenString, expectedType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new access token. Without rotation
// the pair carries the same refresh token back. With rotation it carries a
// new one, and with blacklist-after-rotation the old jti is revoked first:
// the blacklist insert is the check-and-set, so a rotated token is redeemed
// at most once even under concurrent requests.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	claims, err := s.Parse(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	blacklisted, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if blacklisted {
		metrics.BlacklistRejections.Inc()
		return nil, ErrTokenBlacklisted
	}

	if s.rotate && s.blacklistOnRot {
		if err := s.blacklistClaims(ctx, claims); err != nil {
			if errors.Is(err, ErrTokenAlreadyBlacklisted) {
				metrics.BlacklistRejections.Inc()
				return nil, ErrTokenBlacklisted
			}
			return nil, err
		}
	}

	accessStr, err := s.sign(models.TokenTypeAccess, claims.UserID, s.accessLifetime)
	if err != nil {
		return nil, err
	}
	pair := &models.TokenPair{
		Access:  &models.Token{Token: accessStr, TokenType: models.TokenTypeAccess},
		Refresh: &models.Token{Token: refreshToken, TokenType: models.TokenTypeRefresh},
	}
	if !s.rotate {
		return pair, nil
	}

	refreshStr, err := s.sign(models.TokenTypeRefresh, claims.UserID, s.refreshLifetime)
	if err != nil {
		return nil, err
	}
	pair.Refresh.Token = refreshStr

	logging.Debug().Int64("user_id", claims.UserID).Msg("Refresh token rotated")
	return pair, nil
}

// Blacklist revokes a refresh token until it would have expired.
func (s *TokenService) Blacklist(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := s.Parse(refreshToken, models.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	if err := s.blacklistClaims(ctx, claims); err != nil {
		return claims, err
	}
	return claims, nil
}

func (s *TokenService) blacklistClaims(ctx context.Context, claims *Claims) error {
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrExpiredToken
	}
	return s.blacklist.Add(ctx, &BlacklistEntry{
		JTI:    claims.ID,
		UserID: claims.UserID,
	}, ttl)
}
