// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package places serves the curated place directory. Anonymous users and
// regular users only see visible places; administrators see everything and
// may create, update and delete places.
package places

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/validation"
)

// ErrPlaceNotFound is returned for unknown places and for hidden places
// requested by non-admins.
var ErrPlaceNotFound = errors.New("place not found")

// MaxPageSize caps list requests.
const MaxPageSize = 200

// Store is the subset of the database used by the service.
type Store interface {
	CreatePlace(ctx context.Context, place *models.Place) error
	GetPlace(ctx context.Context, id int64) (*models.Place, error)
	UpdatePlace(ctx context.Context, place *models.Place) error
	DeletePlace(ctx context.Context, id int64) error
	ListPlaces(ctx context.Context, filter models.PlaceFilter) ([]*models.Place, int, error)
}

// Service implements place queries and admin mutations.
type Service struct {
	store Store
}

// NewService creates a place service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns a page of places matching filter. Hidden places are only
// included for administrators.
func (s *Service) List(ctx context.Context, filter models.PlaceFilter) ([]*models.Place, int, error) {
	if !auth.UserFromContext(ctx).IsAdmin() {
		filter.VisibleOnly = true
	}
	if filter.Limit <= 0 || filter.Limit > MaxPageSize {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.ListPlaces(ctx, filter)
}

// Get returns a place by ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Place, error) {
	place, err := s.store.GetPlace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get place %d: %w", id, err)
	}
	if place == nil || (!place.IsVisible && !auth.UserFromContext(ctx).IsAdmin()) {
		return nil, ErrPlaceNotFound
	}
	return place, nil
}

// Create validates and stores a new place.
func (s *Service) Create(ctx context.Context, in *models.PlaceInput) (*models.Place, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}

	place := in.ToPlace()
	if err := s.store.CreatePlace(ctx, place); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Int64("place_id", place.ID).Str("name", place.Name).Msg("Place created")
	return place, nil
}

// Update replaces the editable fields of a place. Visibility is kept when
// the input leaves it unset.
func (s *Service) Update(ctx context.Context, id int64, in *models.PlaceInput) (*models.Place, error) {
	if verr := validation.ValidateStruct(in); verr != nil {
		return nil, verr
	}

	existing, err := s.store.GetPlace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get place %d: %w", id, err)
	}
	if existing == nil {
		return nil, ErrPlaceNotFound
	}

	place := in.ToPlace()
	place.ID = existing.ID
	place.ScrapedPlaceID = existing.ScrapedPlaceID
	place.CreatedAt = existing.CreatedAt
	if in.IsVisible == nil {
		place.IsVisible = existing.IsVisible
	}

	if err := s.store.UpdatePlace(ctx, place); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Int64("place_id", place.ID).Msg("Place updated")
	return place, nil
}

// Delete removes a place.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeletePlace(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrPlaceNotFound
		}
		return err
	}
	logging.Ctx(ctx).Info().Int64("place_id", id).Msg("Place deleted")
	return nil
}
