// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/familymap/internal/auth"
)

var _ suture.Service = (*CleanupService)(nil)

type countingBlacklist struct {
	auth.Blacklist
	cleanups atomic.Int32
	removed  int
	err      error
}

func (c *countingBlacklist) CleanupExpired(ctx context.Context) (int, error) {
	c.cleanups.Add(1)
	return c.removed, c.err
}

func TestCleanupService_RunOnce(t *testing.T) {
	bl := &countingBlacklist{removed: 3}
	lockout := auth.NewLockoutManager(&auth.LockoutConfig{MaxAttempts: 5, LockoutDuration: time.Minute})
	svc := NewCleanupService(bl, lockout, time.Minute)

	tokens, lockouts := svc.RunOnce(context.Background())
	if tokens != 3 || lockouts != 0 {
		t.Errorf("RunOnce() = %d, %d; want 3, 0", tokens, lockouts)
	}

	bl.err = errors.New("badger closed")
	bl.removed = 0
	if tokens, _ := svc.RunOnce(context.Background()); tokens != 0 {
		t.Errorf("tokens = %d after failure", tokens)
	}
}

func TestCleanupService_NilStores(t *testing.T) {
	svc := NewCleanupService(nil, nil, 0)
	if svc.interval != DefaultCleanupInterval {
		t.Errorf("interval = %v, want %v", svc.interval, DefaultCleanupInterval)
	}
	if tokens, lockouts := svc.RunOnce(context.Background()); tokens != 0 || lockouts != 0 {
		t.Errorf("RunOnce() = %d, %d", tokens, lockouts)
	}
	if svc.String() != "blacklist-cleanup" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestCleanupService_ServeTicks(t *testing.T) {
	bl := &countingBlacklist{}
	svc := NewCleanupService(bl, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for bl.cleanups.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if bl.cleanups.Load() < 2 {
		t.Errorf("cleanups = %d, want at least 2", bl.cleanups.Load())
	}
}
