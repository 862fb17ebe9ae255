// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an audit record for an authentication or account event.
type SecurityEvent struct {
	Event     string
	UserID    string
	Username  string
	IPAddress string
	Success   bool
	Error     string
	Details   map[string]string
}

// SecurityLogger writes audit events with identifying data masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger returns a SecurityLogger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: With().Str("component", "security").Logger()}
}

// NewSecurityLoggerWithLogger returns a SecurityLogger writing to logger.
//
//nolint:gocritic // zerolog.Logger is passed by value by design of the library
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "security").Logger()}
}

// LogEvent writes event.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	var e *zerolog.Event
	if event.Success {
		e = l.logger.Info().Str("status", "success")
	} else {
		e = l.logger.Warn().Str("status", "failed")
	}
	e = e.Str("event", event.Event)

	if event.UserID != "" {
		e = e.Str("user_id", event.UserID)
	}
	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}
	e.Msg("security event")
}

// LogLoginSuccess records a successful password login.
func (l *SecurityLogger) LogLoginSuccess(userID, username, ip string) {
	l.LogEvent(&SecurityEvent{Event: "login_success", UserID: userID, Username: username, IPAddress: ip, Success: true})
}

// LogLoginFailure records a failed login and the reason.
func (l *SecurityLogger) LogLoginFailure(username, ip, reason string) {
	l.LogEvent(&SecurityEvent{Event: "login_failed", Username: username, IPAddress: ip, Error: reason})
}

// LogLogout records a refresh token being blacklisted on logout.
func (l *SecurityLogger) LogLogout(userID string, success bool, errMsg string) {
	l.LogEvent(&SecurityEvent{Event: "logout", UserID: userID, Success: success, Error: errMsg})
}

// LogTokenRefresh records a refresh attempt.
func (l *SecurityLogger) LogTokenRefresh(userID string, rotated, success bool, errMsg string) {
	ev := &SecurityEvent{Event: "token_refresh", UserID: userID, Success: success, Error: errMsg}
	if rotated {
		ev.Details = map[string]string{"rotated": "true"}
	}
	l.LogEvent(ev)
}

// LogRegistration records a self-service registration.
func (l *SecurityLogger) LogRegistration(username, email string, success bool, errMsg string) {
	l.LogEvent(&SecurityEvent{
		Event:    "user_registered",
		Username: username,
		Success:  success,
		Error:    errMsg,
		Details:  map[string]string{"email": email},
	})
}

// LogRoleChange records a promotion or demotion.
func (l *SecurityLogger) LogRoleChange(userID, username, from, to string) {
	l.LogEvent(&SecurityEvent{
		Event:    "role_changed",
		UserID:   userID,
		Username: username,
		Success:  true,
		Details:  map[string]string{"from": from, "to": to},
	})
}

// LogAdminCreated records an admin account created from the CLI.
func (l *SecurityLogger) LogAdminCreated(userID, username string) {
	l.LogEvent(&SecurityEvent{Event: "admin_created", UserID: userID, Username: username, Success: true})
}

// SanitizeToken keeps the first and last four characters of a token.
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername keeps the first two characters.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part of an address.
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

var sensitiveErrorWords = []string{"password", "secret", "token", "key", "bearer", "authorization"}

// SanitizeError replaces errors mentioning credentials with a generic text.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, w := range sensitiveErrorWords {
		if strings.Contains(lower, w) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

var sensitiveKeys = map[string]bool{
	"access_token":  true,
	"refresh_token": true,
	"token":         true,
	"password":      true,
	"secret":        true,
	"api_key":       true,
	"authorization": true,
}

// SanitizeValue masks v when its key names a credential or v looks like an email.
func SanitizeValue(key, v string) string {
	if sensitiveKeys[strings.ToLower(key)] {
		return SanitizeToken(v)
	}
	if strings.Contains(v, "@") && strings.Contains(v, ".") {
		return SanitizeEmail(v)
	}
	return v
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
