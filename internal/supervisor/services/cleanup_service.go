// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package services

import (
	"context"
	"time"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/logging"
)

// DefaultCleanupInterval is used when the configured interval is not positive.
const DefaultCleanupInterval = time.Hour

// CleanupService purges expired token blacklist entries and idle lockout
// records on a fixed interval. It runs in the data layer.
type CleanupService struct {
	blacklist auth.Blacklist
	lockout   *auth.LockoutManager
	interval  time.Duration
	name      string
}

// NewCleanupService builds the service. Either store may be nil.
func NewCleanupService(blacklist auth.Blacklist, lockout *auth.LockoutManager, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &CleanupService{
		blacklist: blacklist,
		lockout:   lockout,
		interval:  interval,
		name:      "blacklist-cleanup",
	}
}

// Serve implements suture.Service.
func (s *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass and returns the number of
// blacklist and lockout entries removed.
func (s *CleanupService) RunOnce(ctx context.Context) (tokens, lockouts int) {
	if s.blacklist != nil {
		n, err := s.blacklist.CleanupExpired(ctx)
		if err != nil {
			logging.Warn().Err(err).Str("service", s.name).Msg("Token blacklist cleanup failed")
		}
		tokens = n
	}
	lockouts = s.lockout.CleanupExpired(ctx)

	if tokens > 0 || lockouts > 0 {
		logging.Debug().
			Str("service", s.name).
			Int("tokens", tokens).
			Int("lockouts", lockouts).
			Msg("Expired auth entries removed")
	}
	return tokens, lockouts
}

// String implements fmt.Stringer for supervisor logs.
func (s *CleanupService) String() string {
	return s.name
}
