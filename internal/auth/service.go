// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

// Result messages returned by the auth endpoints.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgAccountDisabled    = "User account is disabled"
	msgAccountLocked      = "Too many failed login attempts. Try again in %s"
	msgLoginSuccessful    = "Login successful"
	msgRefreshSuccessful  = "Token refreshed successfully"
	msgRefreshFailed      = "Token refresh failed: %s"
	msgLogoutSuccessful   = "Logout successful"
	msgLogoutFailed       = "Logout failed: %s"

	// ServiceName is reported by Info.
	ServiceName = "JWT Authentication Service"
)

// UserStore is the subset of the database used for authentication.
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// Service implements login, refresh and logout over the token service.
type Service struct {
	users    UserStore
	tokens   *TokenService
	hasher   *PasswordHasher
	lockout  *LockoutManager
	security *logging.SecurityLogger
	now      func() time.Time
}

// NewService creates the auth facade. lockout may be nil.
func NewService(users UserStore, tokens *TokenService, hasher *PasswordHasher, lockout *LockoutManager) *Service {
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	return &Service{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		lockout:  lockout,
		security: logging.NewSecurityLogger(),
		now:      time.Now,
	}
}

// Tokens returns the underlying token service.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Hasher returns the password hasher.
func (s *Service) Hasher() *PasswordHasher { return s.hasher }

// Login verifies credentials and issues a token pair.
// Failures are reported in the result, not as an error; the error is
// reserved for storage and signing failures.
func (s *Service) Login(ctx context.Context, username, password, ip string) (*models.LoginResult, error) {
	if locked, remaining := s.lockout.CheckLocked(username); locked {
		metrics.AuthLogins.WithLabelValues("locked").Inc()
		s.security.LogLoginFailure(username, ip, "account locked")
		return &models.LoginResult{
			Message: fmt.Sprintf(msgAccountLocked, remaining.Round(time.Second)),
		}, nil
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil || s.hasher.Compare(user.PasswordHash, password) != nil {
		s.lockout.RecordFailedAttempt(username, ip)
		metrics.AuthLogins.WithLabelValues("invalid").Inc()
		s.security.LogLoginFailure(username, ip, "invalid credentials")
		return &models.LoginResult{Message: msgInvalidCredentials}, nil
	}

	if !user.IsActive {
		metrics.AuthLogins.WithLabelValues("disabled").Inc()
		s.security.LogLoginFailure(username, ip, "account disabled")
		return &models.LoginResult{Message: msgAccountDisabled}, nil
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		metrics.AuthLogins.WithLabelValues("error").Inc()
		return nil, err
	}

	s.lockout.RecordSuccessfulLogin(username)
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to update last login")
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	s.security.LogLoginSuccess(user.IDString(), user.Username, ip)

	return &models.LoginResult{
		Success: true,
		Message: msgLoginSuccessful,
		Tokens:  pair,
		User:    user.Public(),
	}, nil
}

// RefreshToken exchanges a refresh token for new tokens.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) *models.RefreshResult {
	pair, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		metrics.AuthRefreshes.WithLabelValues(resultLabel(err)).Inc()
		s.security.LogTokenRefresh("", false, false, err.Error())
		return &models.RefreshResult{Message: fmt.Sprintf(msgRefreshFailed, err)}
	}

	metrics.AuthRefreshes.WithLabelValues("success").Inc()
	s.security.LogTokenRefresh("", s.tokens.RotatesRefreshTokens(), true, "")
	return &models.RefreshResult{
		Success: true,
		Message: msgRefreshSuccessful,
		Tokens:  pair,
	}
}

// Logout blacklists the refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) *models.LogoutResult {
	claims, err := s.tokens.Blacklist(ctx, refreshToken)
	userID := ""
	if claims != nil {
		userID = claims.Subject
	}
	if err != nil {
		metrics.AuthLogouts.WithLabelValues(resultLabel(err)).Inc()
		s.security.LogLogout(userID, false, err.Error())
		return &models.LogoutResult{Message: fmt.Sprintf(msgLogoutFailed, err)}
	}

	metrics.AuthLogouts.WithLabelValues("success").Inc()
	s.security.LogLogout(userID, true, "")
	return &models.LogoutResult{Success: true, Message: msgLogoutSuccessful}
}

// Info describes the service configuration.
func (s *Service) Info() *models.AuthInfo {
	return &models.AuthInfo{
		Service:              ServiceName,
		AccessTokenLifetime:  s.tokens.AccessLifetime().String(),
		RefreshTokenLifetime: s.tokens.RefreshLifetime().String(),
		RotateRefreshTokens:  s.tokens.RotatesRefreshTokens(),
	}
}

// UserFromAccessToken resolves an access token to an active user.
// It returns nil without error when the token or user is not usable.
func (s *Service) UserFromAccessToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token, models.TokenTypeAccess)
	if err != nil {
		return nil, nil
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", claims.UserID, err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}
	return user, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrTokenBlacklisted), errors.Is(err, ErrTokenAlreadyBlacklisted):
		return "blacklisted"
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrWrongTokenType):
		return "invalid"
	default:
		return "error"
	}
}
