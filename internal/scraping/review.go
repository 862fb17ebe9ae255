// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package scraping imports scraper exports, feeds the manual review queue
// and turns scraped place names into curated places.
package scraping

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
)

// ErrQueueEmpty is returned when every scraped place has been processed.
var ErrQueueEmpty = errors.New("No unprocessed places found.") //nolint:staticcheck // shown to admins as is

// ErrScrapedPlaceNotFound is returned for unknown scraped place IDs.
var ErrScrapedPlaceNotFound = errors.New("scraped place not found")

// Store is the subset of the database used by the scraping pipeline.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *database.Tx) error) error
	GetScrapedPost(ctx context.Context, id int64) (*models.ScrapedPost, error)
	GetScrapedPlace(ctx context.Context, id int64) (*models.ScrapedPlace, error)
	GetPlaceByScrapedPlaceID(ctx context.Context, scrapedPlaceID int64) (*models.Place, error)
	NextUnprocessedScrapedPlace(ctx context.Context) (*models.ScrapedPlace, error)
	MarkScrapedPlaceProcessed(ctx context.Context, id int64) error
	ListScrapedPlaces(ctx context.Context, processed *bool, limit, offset int) ([]*models.ScrapedPlace, error)
	CountScrapedPlaces(ctx context.Context, processed *bool) (int, error)
}

var _ Store = (*database.DB)(nil)

// ReviewQueue walks unprocessed scraped places in name order.
type ReviewQueue struct {
	store Store
}

// NewReviewQueue creates a review queue.
func NewReviewQueue(store Store) *ReviewQueue {
	return &ReviewQueue{store: store}
}

// Next returns the first unprocessed place with the post it came from.
func (q *ReviewQueue) Next(ctx context.Context) (*models.ReviewItem, error) {
	place, err := q.store.NextUnprocessedScrapedPlace(ctx)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrQueueEmpty
	}

	item := &models.ReviewItem{Place: place}
	if place.PostID != nil {
		if item.Post, err = q.store.GetScrapedPost(ctx, *place.PostID); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// Get returns a scraped place by ID.
func (q *ReviewQueue) Get(ctx context.Context, id int64) (*models.ScrapedPlace, error) {
	place, err := q.store.GetScrapedPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrScrapedPlaceNotFound
	}
	return place, nil
}

// MarkProcessed flags a scraped place as reviewed and returns the
// confirmation message.
func (q *ReviewQueue) MarkProcessed(ctx context.Context, id int64) (string, error) {
	place, err := q.store.GetScrapedPlace(ctx, id)
	if err != nil {
		return "", err
	}
	if place == nil {
		return "", ErrScrapedPlaceNotFound
	}

	if err := q.store.MarkScrapedPlaceProcessed(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", ErrScrapedPlaceNotFound
		}
		return "", err
	}

	logging.Ctx(ctx).Info().Int64("scraped_place_id", id).Msg("Scraped place marked as processed")
	return fmt.Sprintf("Place '%s' marked as processed.", place.Name), nil
}

// List returns a page of scraped places and the total matching count. A nil
// processed lists both states.
func (q *ReviewQueue) List(ctx context.Context, processed *bool, limit, offset int) ([]*models.ScrapedPlace, int, error) {
	places, err := q.store.ListScrapedPlaces(ctx, processed, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := q.store.CountScrapedPlaces(ctx, processed)
	if err != nil {
		return nil, 0, err
	}
	return places, total, nil
}
