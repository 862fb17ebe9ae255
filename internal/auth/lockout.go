// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/logging"
)

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of failed attempts before lockout. Zero disables lockout.
	MaxAttempts int

	// LockoutDuration is the base lockout period.
	LockoutDuration time.Duration

	// MaxLockoutDuration caps the doubled lockout period for repeat offenders.
	MaxLockoutDuration time.Duration
}

// LockoutConfigFromSecurity builds a LockoutConfig from the security section.
func LockoutConfigFromSecurity(cfg *config.SecurityConfig) *LockoutConfig {
	return &LockoutConfig{
		MaxAttempts:        cfg.LockoutAttempts,
		LockoutDuration:    cfg.LockoutDuration,
		MaxLockoutDuration: 24 * time.Hour,
	}
}

// LockoutEntry tracks failed login attempts for a username.
type LockoutEntry struct {
	Subject        string
	FailedAttempts int
	LastAttempt    time.Time
	LockoutCount   int // previous lockouts, for backoff
	LockedUntil    time.Time
	LastFailedIP   string
}

// LockoutManager refuses logins for a username after too many failures.
// State is kept in memory and resets on restart.
type LockoutManager struct {
	config *LockoutConfig

	mu      sync.Mutex
	entries map[string]*LockoutEntry
	now     func() time.Time
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(cfg *LockoutConfig) *LockoutManager {
	return &LockoutManager{
		config:  cfg,
		entries: make(map[string]*LockoutEntry),
		now:     time.Now,
	}
}

func (m *LockoutManager) enabled() bool {
	return m != nil && m.config != nil && m.config.MaxAttempts > 0
}

// CheckLocked returns true if the subject is currently locked out, with the time remaining.
func (m *LockoutManager) CheckLocked(subject string) (bool, time.Duration) {
	if !m.enabled() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[subject]
	if !ok {
		return false, 0
	}
	now := m.now()
	if now.Before(entry.LockedUntil) {
		return true, entry.LockedUntil.Sub(now)
	}
	return false, 0
}

// calculateLockoutDuration doubles the base period for each previous lockout.
func calculateLockoutDuration(cfg *LockoutConfig, lockoutCount int) time.Duration {
	duration := cfg.LockoutDuration
	if lockoutCount == 0 {
		return duration
	}

	if lockoutCount > 16 {
		lockoutCount = 16
	}
	duration = time.Duration(int64(duration) * int64(1<<lockoutCount))
	if cfg.MaxLockoutDuration > 0 && duration > cfg.MaxLockoutDuration {
		return cfg.MaxLockoutDuration
	}
	return duration
}

// RecordFailedAttempt records a failed login and returns whether the subject is now locked.
func (m *LockoutManager) RecordFailedAttempt(subject, ip string) (locked bool, remaining time.Duration) {
	if !m.enabled() {
		return false, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[subject]
	if !ok {
		entry = &LockoutEntry{Subject: subject}
		m.entries[subject] = entry
	}

	if now.Before(entry.LockedUntil) {
		return true, entry.LockedUntil.Sub(now)
	}

	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip

	if entry.FailedAttempts < m.config.MaxAttempts {
		return false, 0
	}

	lockoutDuration := calculateLockoutDuration(m.config, entry.LockoutCount)
	entry.LockedUntil = now.Add(lockoutDuration)
	entry.LockoutCount++
	entry.FailedAttempts = 0

	logging.Warn().
		Str("subject", logging.SanitizeUsername(subject)).
		Dur("duration", lockoutDuration).
		Int("lockout_count", entry.LockoutCount).
		Msg("Account locked")

	return true, lockoutDuration
}

// RecordSuccessfulLogin clears the lockout state for a subject.
func (m *LockoutManager) RecordSuccessfulLogin(subject string) {
	if !m.enabled() {
		return
	}
	m.mu.Lock()
	delete(m.entries, subject)
	m.mu.Unlock()
}

// CleanupExpired drops entries that are unlocked and idle for a day.
func (m *LockoutManager) CleanupExpired(ctx context.Context) int {
	if !m.enabled() {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	threshold := now.Add(-24 * time.Hour)
	count := 0
	for subject, entry := range m.entries {
		if !now.Before(entry.LockedUntil) && entry.LastAttempt.Before(threshold) {
			delete(m.entries, subject)
			count++
		}
	}
	return count
}
