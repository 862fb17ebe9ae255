// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/familymap/internal/models"
)

var errPermanent = errors.New("not found")

type call struct {
	id   int64
	city string
}

type fakeEnricher struct {
	mu       sync.Mutex
	calls    []call
	failures map[int64]int // remaining transient failures per id
	done     chan call
}

func newFakeEnricher() *fakeEnricher {
	return &fakeEnricher{failures: map[int64]int{}, done: make(chan call, 16)}
}

func (f *fakeEnricher) EnrichWithCity(_ context.Context, id int64, city string) (*models.EnrichResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{id, city})
	remaining := f.failures[id]
	if remaining > 0 {
		f.failures[id] = remaining - 1
	}
	f.mu.Unlock()

	if id < 0 {
		f.done <- call{id, city}
		return nil, errPermanent
	}
	if remaining > 0 {
		return nil, errors.New("model timeout")
	}
	f.done <- call{id, city}
	return &models.EnrichResult{ScrapedPlaceID: id, PlaceID: id * 10, Created: true}, nil
}

func (f *fakeEnricher) callCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.id == id {
			n++
		}
	}
	return n
}

func newTestQueue(t *testing.T, buffer int) *Queue {
	t.Helper()
	q, err := NewQueue(buffer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func startWorker(t *testing.T, enricher Enricher, cfg WorkerConfig) *Queue {
	t.Helper()
	q := newTestQueue(t, 8)
	serveWorker(t, NewWorker(q, enricher, cfg))
	return q
}

func serveWorker(t *testing.T, w *Worker) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not start")
	}
}

func waitDone(t *testing.T, f *fakeEnricher) call {
	t.Helper()
	select {
	case c := <-f.done:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for enrichment")
		return call{}
	}
}

func TestWorker_ProcessesJobs(t *testing.T) {
	f := newFakeEnricher()
	q := startWorker(t, f, WorkerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond})

	id, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 5, City: "Nitra"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got := waitDone(t, f)
	assert.Equal(t, call{5, "Nitra"}, got)
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	f := newFakeEnricher()
	f.failures[7] = 2
	q := startWorker(t, f, WorkerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond})

	_, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 7})
	require.NoError(t, err)

	waitDone(t, f)
	assert.Equal(t, 3, f.callCount(7))
}

func TestWorker_DropsPermanentErrors(t *testing.T) {
	f := newFakeEnricher()
	q := startWorker(t, f, WorkerConfig{
		MaxAttempts: 5,
		RetryDelay:  time.Millisecond,
		IsPermanent: func(err error) bool { return errors.Is(err, errPermanent) },
	})

	_, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: -1})
	require.NoError(t, err)
	waitDone(t, f)

	// A following job proves the failed one was acked and not redelivered.
	_, err = q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), waitDone(t, f).id)
	assert.Equal(t, 1, f.callCount(-1))
}

func TestWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newFakeEnricher()
	f.failures[9] = 100
	q := startWorker(t, f, WorkerConfig{MaxAttempts: 2, RetryDelay: time.Millisecond})

	_, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 9})
	require.NoError(t, err)

	_, err = q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), waitDone(t, f).id)

	assert.Eventually(t, func() bool { return f.callCount(9) == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestDefaultWorkerConfig(t *testing.T) {
	cfg := DefaultWorkerConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)

	w := NewWorker(newTestQueue(t, 0), newFakeEnricher(), WorkerConfig{})
	assert.Equal(t, 1, w.cfg.MaxAttempts)
	assert.Equal(t, "enrichment-worker", w.String())
}

func TestWorker_JobsQueuedBeforeStart(t *testing.T) {
	f := newFakeEnricher()
	q := newTestQueue(t, 0)

	_, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 42, City: "Trnava"})
	require.NoError(t, err)
	_, err = q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 43})
	require.NoError(t, err)

	serveWorker(t, NewWorker(q, f, WorkerConfig{MaxAttempts: 1}))

	waitDone(t, f)
	waitDone(t, f)
	assert.Equal(t, 1, f.callCount(42))
	assert.Equal(t, 1, f.callCount(43))
}

func TestWorker_JobsSurviveRestart(t *testing.T) {
	f := newFakeEnricher()
	q := newTestQueue(t, 4)
	w := NewWorker(q, f, WorkerConfig{MaxAttempts: 1})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Serve(ctx) }()
	<-w.Ready()

	_, err := q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 1})
	require.NoError(t, err)
	waitDone(t, f)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	// Published while no Serve is running.
	_, err = q.Enqueue(context.Background(), EnrichJob{ScrapedPlaceID: 2})
	require.NoError(t, err)

	serveWorker(t, w)
	assert.Equal(t, int64(2), waitDone(t, f).id)
}

func TestWorker_StopsWhenQueueClosed(t *testing.T) {
	q, err := NewQueue(0)
	require.NoError(t, err)
	w := NewWorker(q, newFakeEnricher(), WorkerConfig{})

	errCh := make(chan error, 1)
	go func() { errCh <- w.Serve(context.Background()) }()
	<-w.Ready()
	require.NoError(t, q.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, suture.ErrDoNotRestart)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the queue closed")
	}
}
