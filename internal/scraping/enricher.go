// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package scraping

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/familymap/internal/ai"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/geocoding"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

// NoteGeocodingFailed is stored on places whose position is unknown.
const NoteGeocodingFailed = "Coordinates could not be determined automatically. Please set them before publishing."

// maxChildAge is the highest age a place can be tagged with. Larger model
// answers mean "no upper limit".
const maxChildAge = 18

// PlaceReviewer researches a place. *ai.Client implements it.
type PlaceReviewer interface {
	ReviewPlace(ctx context.Context, name, city string, types []string) (*ai.PlaceReview, error)
}

// Enricher turns scraped places into hidden draft places.
type Enricher struct {
	store          Store
	reviewer       PlaceReviewer
	geocoder       geocoding.Geocoder
	defaultCountry string
}

// NewEnricher creates an enricher. geocoder may be nil, in which case
// places without model coordinates stay at 0,0.
func NewEnricher(store Store, reviewer PlaceReviewer, geocoder geocoding.Geocoder, defaultCountry string) *Enricher {
	if defaultCountry == "" {
		defaultCountry = "SK"
	}
	return &Enricher{
		store:          store,
		reviewer:       reviewer,
		geocoder:       geocoder,
		defaultCountry: strings.ToUpper(defaultCountry),
	}
}

// Enrich creates a place for a scraped place. If a place already exists
// for it, that place is returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, scrapedPlaceID int64) (*models.EnrichResult, error) {
	return e.EnrichWithCity(ctx, scrapedPlaceID, "")
}

// EnrichWithCity is Enrich with a city hint passed to the model and the
// geocoder.
func (e *Enricher) EnrichWithCity(ctx context.Context, scrapedPlaceID int64, city string) (*models.EnrichResult, error) {
	log := logging.Ctx(ctx).With().Int64("scraped_place_id", scrapedPlaceID).Logger()
	result := &models.EnrichResult{ScrapedPlaceID: scrapedPlaceID}

	existing, err := e.store.GetPlaceByScrapedPlaceID(ctx, scrapedPlaceID)
	if err != nil {
		return nil, e.failed(err)
	}
	if existing != nil {
		metrics.EnrichmentsTotal.WithLabelValues("existing").Inc()
		result.PlaceID = existing.ID
		return result, nil
	}

	sp, err := e.store.GetScrapedPlace(ctx, scrapedPlaceID)
	if err != nil {
		return nil, e.failed(err)
	}
	if sp == nil {
		return nil, e.failed(ErrScrapedPlaceNotFound)
	}

	review, err := e.reviewer.ReviewPlace(ctx, sp.Name, city, sp.Types)
	if err != nil {
		return nil, e.failed(fmt.Errorf("failed to review place %q: %w", sp.Name, err))
	}

	place := e.placeFromReview(sp, review, city)

	if !review.HasCoordinates() {
		if coords := e.geocode(ctx, place); coords != nil {
			place.Latitude = coords.Latitude
			place.Longitude = coords.Longitude
			result.Geocoded = true
		} else {
			place.Note = NoteGeocodingFailed
		}
	}

	err = e.store.WithTx(ctx, func(tx *database.Tx) error {
		// A concurrent enrichment may have won the race.
		if existing, err := tx.GetPlaceByScrapedPlaceID(ctx, sp.ID); err != nil {
			return err
		} else if existing != nil {
			place = existing
			return nil
		}
		if err := tx.CreatePlace(ctx, place); err != nil {
			return err
		}
		result.Created = true
		return tx.MarkScrapedPlaceProcessed(ctx, sp.ID)
	})
	if err != nil {
		return nil, e.failed(err)
	}

	result.PlaceID = place.ID
	if result.Created {
		metrics.EnrichmentsTotal.WithLabelValues("created").Inc()
		log.Info().Int64("place_id", place.ID).Str("name", place.Name).Bool("geocoded", result.Geocoded).Msg("Place created from scraped data")
	} else {
		metrics.EnrichmentsTotal.WithLabelValues("existing").Inc()
	}
	return result, nil
}

func (e *Enricher) failed(err error) error {
	metrics.EnrichmentsTotal.WithLabelValues("failed").Inc()
	return err
}

// placeFromReview maps a model review onto a hidden draft place.
func (e *Enricher) placeFromReview(sp *models.ScrapedPlace, r *ai.PlaceReview, cityHint string) *models.Place {
	scrapedID := sp.ID
	place := &models.Place{
		Name:            strings.TrimSpace(r.Name),
		Types:           MapPlaceTypes(r.Types),
		Description:     r.Description,
		CountryCode:     strings.ToUpper(strings.TrimSpace(r.CountryCode)),
		City:            strings.TrimSpace(r.City),
		Street:          strings.TrimSpace(r.Street),
		ZipCode:         strings.TrimSpace(r.ZipCode),
		Website:         strings.TrimSpace(r.Website),
		IsAdmissionFree: r.IsAdmissionFree,
		IsVisible:       false,
		ScrapedPlaceID:  &scrapedID,
	}
	if place.Name == "" {
		place.Name = sp.Name
	}
	if len(place.CountryCode) != 2 {
		place.CountryCode = e.defaultCountry
	}
	if place.City == "" {
		place.City = cityHint
	}
	if r.HasCoordinates() {
		place.Latitude = *r.Lat
		place.Longitude = *r.Lon
	}
	if season, ok := models.ParseSeason(r.Season); ok {
		place.Season = &season
	}
	if place.IsAdmissionFree == nil {
		f := false
		place.IsAdmissionFree = &f
	}
	place.MinAge, place.MaxAge = ageRange(r.MinAge, r.MaxAge)
	return place
}

func (e *Enricher) geocode(ctx context.Context, place *models.Place) *geocoding.Coordinates {
	if e.geocoder == nil || !e.geocoder.IsAvailable() {
		return nil
	}
	coords, err := e.geocoder.Geocode(ctx, place.Name, place.City, place.CountryCode)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("name", place.Name).Msg("Geocoding failed, place stays hidden")
		return nil
	}
	return coords
}

// MapPlaceTypes converts model type names to place types. sweet_shop
// becomes SHOP, unknown names are dropped and duplicates are removed.
func MapPlaceTypes(names []string) []models.PlaceType {
	types := make([]models.PlaceType, 0, len(names))
	seen := make(map[models.PlaceType]bool, len(names))
	for _, name := range names {
		t, ok := models.ParsePlaceType(name)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	return types
}

// ageRange clamps model ages into 0..18. A maximum above 18 or below the
// minimum is dropped.
func ageRange(minAge, maxAge *int) (*int, *int) {
	var lo, hi *int
	if minAge != nil && *minAge >= 0 {
		v := min(*minAge, maxChildAge)
		lo = &v
	}
	if maxAge != nil && *maxAge >= 0 && *maxAge <= maxChildAge {
		v := *maxAge
		if lo == nil || v >= *lo {
			hi = &v
		}
	}
	return lo, hi
}

// EnrichBatch enriches ids with at most workers in flight. Failures are
// reported per id and do not stop the batch.
func (e *Enricher) EnrichBatch(ctx context.Context, ids []int64, workers int) []*models.EnrichResult {
	return e.EnrichBatchWithCity(ctx, ids, "", workers)
}

// EnrichBatchWithCity is EnrichBatch with a city hint applied to every id.
func (e *Enricher) EnrichBatchWithCity(ctx context.Context, ids []int64, city string, workers int) []*models.EnrichResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]*models.EnrichResult, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, id := range ids {
		g.Go(func() error {
			res, err := e.EnrichWithCity(gctx, id, city)
			if err != nil {
				res = &models.EnrichResult{ScrapedPlaceID: id, Error: err.Error()}
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}
