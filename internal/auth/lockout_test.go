// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/familymap/internal/config"
)

func TestLockoutManager_LocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	m := NewLockoutManager(&LockoutConfig{MaxAttempts: 3, LockoutDuration: time.Minute})
	now := time.Now()
	m.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if locked, _ := m.RecordFailedAttempt("alice", "10.0.0.1"); locked {
			t.Fatalf("attempt %d should not lock", i+1)
		}
	}
	locked, remaining := m.RecordFailedAttempt("alice", "10.0.0.1")
	if !locked || remaining != time.Minute {
		t.Fatalf("third attempt: locked=%v remaining=%v", locked, remaining)
	}

	if locked, _ := m.CheckLocked("alice"); !locked {
		t.Error("alice should be locked")
	}
	if locked, _ := m.CheckLocked("bob"); locked {
		t.Error("bob should not be locked")
	}

	now = now.Add(2 * time.Minute)
	if locked, _ := m.CheckLocked("alice"); locked {
		t.Error("lockout should expire")
	}
}

func TestLockoutManager_Backoff(t *testing.T) {
	t.Parallel()

	cfg := &LockoutConfig{MaxAttempts: 1, LockoutDuration: time.Minute, MaxLockoutDuration: 3 * time.Minute}
	m := NewLockoutManager(cfg)
	now := time.Now()
	m.now = func() time.Time { return now }

	want := []time.Duration{time.Minute, 2 * time.Minute, 3 * time.Minute}
	for i, w := range want {
		_, got := m.RecordFailedAttempt("alice", "")
		if got != w {
			t.Errorf("lockout %d = %v, want %v", i+1, got, w)
		}
		now = now.Add(got + time.Second)
	}
}

func TestLockoutManager_SuccessClears(t *testing.T) {
	t.Parallel()

	m := NewLockoutManager(&LockoutConfig{MaxAttempts: 2, LockoutDuration: time.Minute})
	m.RecordFailedAttempt("alice", "")
	m.RecordSuccessfulLogin("alice")

	if locked, _ := m.RecordFailedAttempt("alice", ""); locked {
		t.Error("counter should reset after a successful login")
	}
}

func TestLockoutManager_Disabled(t *testing.T) {
	t.Parallel()

	var nilManager *LockoutManager
	if locked, _ := nilManager.CheckLocked("alice"); locked {
		t.Error("nil manager should never lock")
	}
	nilManager.RecordSuccessfulLogin("alice")

	m := NewLockoutManager(LockoutConfigFromSecurity(&config.SecurityConfig{LockoutAttempts: 0}))
	for i := 0; i < 10; i++ {
		if locked, _ := m.RecordFailedAttempt("alice", ""); locked {
			t.Fatal("disabled manager should never lock")
		}
	}
}

func TestLockoutManager_CleanupExpired(t *testing.T) {
	t.Parallel()

	m := NewLockoutManager(&LockoutConfig{MaxAttempts: 5, LockoutDuration: time.Minute})
	now := time.Now()
	m.now = func() time.Time { return now }

	m.RecordFailedAttempt("stale", "")
	now = now.Add(25 * time.Hour)
	m.RecordFailedAttempt("fresh", "")

	if removed := m.CleanupExpired(context.Background()); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
