// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/familymap/internal/metrics"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	s := DefaultSettings()
	s.MinRequests = 4
	s.Timeout = time.Hour
	cb := NewCircuitBreaker[int]("test-open", s)

	for i := 0; i < 4; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d: error = %v, want upstream error", i, err)
		}
	}

	if got := cb.State(); got != "open" {
		t.Fatalf("State() = %q, want open", got)
	}

	called := false
	_, err := cb.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	if !IsRejected(err) {
		t.Errorf("error = %v, want rejection", err)
	}
	if called {
		t.Error("open breaker must not call through")
	}

	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")); got != 1 {
		t.Errorf("rejected counter = %v, want 1", got)
	}
}

func TestCircuitBreaker_StaysClosedBelowMinimum(t *testing.T) {
	cb := NewCircuitBreaker[string]("test-closed", DefaultSettings())

	for i := 0; i < 9; i++ {
		_, _ = cb.Execute(func() (string, error) { return "", errUpstream })
	}
	got, err := cb.Execute(func() (string, error) { return "ok", nil })
	if err != nil || got != "ok" {
		t.Fatalf("Execute() = %q, %v", got, err)
	}
	if cb.State() != "closed" {
		t.Errorf("State() = %q, want closed", cb.State())
	}
	if cb.Name() != "test-closed" {
		t.Errorf("Name() = %q", cb.Name())
	}
}

func TestIsRejected(t *testing.T) {
	if IsRejected(errUpstream) {
		t.Error("plain errors are not rejections")
	}
	if IsRejected(nil) {
		t.Error("nil is not a rejection")
	}
}
