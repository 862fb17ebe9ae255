// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

// Enricher runs one enrichment. *scraping.Enricher implements it.
type Enricher interface {
	EnrichWithCity(ctx context.Context, scrapedPlaceID int64, city string) (*models.EnrichResult, error)
}

// WorkerConfig tunes the enrichment worker.
type WorkerConfig struct {
	// MaxAttempts before a failing job is dropped.
	MaxAttempts int

	// RetryDelay is waited before a failed job is handed back.
	RetryDelay time.Duration

	// IsPermanent reports errors that retrying cannot fix.
	IsPermanent func(error) bool
}

// DefaultWorkerConfig retries three times, five seconds apart.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		MaxAttempts: 3,
		RetryDelay:  5 * time.Second,
	}
}

// Worker consumes enrichment jobs. It is a suture service.
type Worker struct {
	queue    *Queue
	enricher Enricher
	cfg      WorkerConfig

	mu        sync.Mutex
	attempts  map[string]int
	ready     chan struct{}
	readyOnce sync.Once
}

// NewWorker creates a worker.
func NewWorker(queue *Queue, enricher Enricher, cfg WorkerConfig) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Worker{
		queue:    queue,
		enricher: enricher,
		cfg:      cfg,
		attempts: make(map[string]int),
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the worker has started consuming for the first time.
func (w *Worker) Ready() <-chan struct{} {
	return w.ready
}

// Serve consumes jobs until ctx is canceled. A job in flight when ctx is
// canceled is nacked and picked up again by the next Serve.
func (w *Worker) Serve(ctx context.Context) error {
	messages := w.queue.Messages()
	w.readyOnce.Do(func() { close(w.ready) })

	logging.Info().Str("topic", TopicEnrich).Msg("Enrichment worker started")
	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Enrichment worker stopped")
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				// Queue closed; nothing left to consume.
				return suture.ErrDoNotRestart
			}
			w.process(ctx, msg)
		}
	}
}

// String names the service in supervisor logs.
func (w *Worker) String() string {
	return "enrichment-worker"
}

func (w *Worker) process(ctx context.Context, msg *message.Message) {
	var job EnrichJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		logging.Warn().Str("message_uuid", msg.UUID).Err(err).Msg("Dropping malformed enrich job")
		w.ack(msg, "dropped")
		return
	}

	if id := msg.Metadata.Get("request_id"); id != "" {
		ctx = logging.ContextWithRequestID(ctx, id)
	}
	log := logging.Ctx(ctx).With().
		Str("message_uuid", msg.UUID).
		Int64("scraped_place_id", job.ScrapedPlaceID).
		Logger()

	result, err := w.enricher.EnrichWithCity(ctx, job.ScrapedPlaceID, job.City)
	if err == nil {
		log.Info().Int64("place_id", result.PlaceID).Bool("created", result.Created).Msg("Enrichment job done")
		w.ack(msg, "acked")
		return
	}

	if errors.Is(err, context.Canceled) {
		msg.Nack()
		return
	}

	if w.cfg.IsPermanent != nil && w.cfg.IsPermanent(err) {
		log.Warn().Err(err).Msg("Enrichment job failed permanently")
		w.ack(msg, "dropped")
		return
	}

	attempt := w.recordAttempt(msg.UUID)
	if attempt >= w.cfg.MaxAttempts {
		log.Error().Err(err).Int("attempts", attempt).Msg("Enrichment job dropped after retries")
		w.ack(msg, "dropped")
		return
	}

	log.Warn().Err(err).Int("attempt", attempt).Msg("Enrichment job failed, retrying")
	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.RetryDelay):
	}
	metrics.EnrichQueueMessages.WithLabelValues("nacked").Inc()
	msg.Nack()
}

func (w *Worker) ack(msg *message.Message, outcome string) {
	w.mu.Lock()
	delete(w.attempts, msg.UUID)
	w.mu.Unlock()

	metrics.EnrichQueueMessages.WithLabelValues(outcome).Inc()
	msg.Ack()
}

func (w *Worker) recordAttempt(uuid string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts[uuid]++
	return w.attempts[uuid]
}
