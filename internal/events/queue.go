// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package events carries enrichment jobs from the API to a background
// worker over an in-process watermill pub/sub.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
)

// TopicEnrich is the topic enrichment jobs are published on.
const TopicEnrich = "scraping.enrich"

// EnrichJob asks the worker to enrich one scraped place.
type EnrichJob struct {
	ScrapedPlaceID int64     `json:"scraped_place_id"`
	City           string    `json:"city,omitempty"`
	RequestedBy    string    `json:"requested_by,omitempty"`
	RequestedAt    time.Time `json:"requested_at"`
}

// Queue publishes enrichment jobs and holds the single subscription the
// worker consumes. The subscription lives as long as the queue, so jobs
// published before the worker starts, or while suture restarts it, wait in
// the subscription instead of being dropped by the pub/sub.
type Queue struct {
	pubsub   *gochannel.GoChannel
	messages <-chan *message.Message
	cancel   context.CancelFunc
}

// NewQueue creates an in-memory queue. buffer sizes the subscription's
// output channel.
func NewQueue(buffer int) (*Queue, error) {
	if buffer < 0 {
		buffer = 0
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: int64(buffer)},
		watermill.NewSlogLogger(logging.NewSlogLogger("queue")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	messages, err := pubsub.Subscribe(ctx, TopicEnrich)
	if err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicEnrich, err)
	}
	return &Queue{pubsub: pubsub, messages: messages, cancel: cancel}, nil
}

// Enqueue publishes a job for scrapedPlaceID and returns the message ID.
func (q *Queue) Enqueue(ctx context.Context, job EnrichJob) (string, error) {
	if job.RequestedAt.IsZero() {
		job.RequestedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode enrich job: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set("request_id", id)
	}

	if err := q.pubsub.Publish(TopicEnrich, msg); err != nil {
		return "", fmt.Errorf("failed to publish enrich job: %w", err)
	}

	metrics.EnrichQueueMessages.WithLabelValues("published").Inc()
	logging.Ctx(ctx).Debug().
		Str("message_uuid", msg.UUID).
		Int64("scraped_place_id", job.ScrapedPlaceID).
		Msg("Enrichment job queued")
	return msg.UUID, nil
}

// Messages returns the job stream. It is closed when the queue is closed.
// Unacked messages are redelivered on it, including to a restarted worker.
func (q *Queue) Messages() <-chan *message.Message {
	return q.messages
}

// Close shuts the pub/sub down.
func (q *Queue) Close() error {
	err := q.pubsub.Close()
	q.cancel()
	return err
}
