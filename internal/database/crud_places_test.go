// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/familymap/internal/models"
)

func intp(v int) *int { return &v }

func boolp(v bool) *bool { return &v }

func seasonp(s models.Season) *models.Season { return &s }

func newTestPlace(name, city string, types ...models.PlaceType) *models.Place {
	return &models.Place{
		Name:            name,
		Types:           types,
		Latitude:        48.14,
		Longitude:       17.10,
		CountryCode:     "SK",
		City:            city,
		IsAdmissionFree: boolp(false),
		IsVisible:       true,
	}
}

func TestCreatePlace_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return fixed }

	p := newTestPlace("Zoo Bojnice", "Bojnice", models.PlaceTypeZoo, models.PlaceTypeAttraction)
	p.MinAge = intp(0)
	p.MaxAge = intp(12)
	p.Season = seasonp(models.SeasonSummer)
	if err := db.CreatePlace(ctx, p); err != nil {
		t.Fatalf("CreatePlace() error = %v", err)
	}

	got, err := db.GetPlace(ctx, p.ID)
	if err != nil || got == nil {
		t.Fatalf("GetPlace() = %v, %v", got, err)
	}
	if len(got.Types) != 2 || got.Types[0] != models.PlaceTypeZoo {
		t.Errorf("Types = %v", got.Types)
	}
	if got.MinAge == nil || *got.MinAge != 0 || got.MaxAge == nil || *got.MaxAge != 12 {
		t.Errorf("ages = %v, %v", got.MinAge, got.MaxAge)
	}
	if got.Season == nil || *got.Season != models.SeasonSummer {
		t.Errorf("Season = %v", got.Season)
	}
	if got.ScrapedPlaceID != nil {
		t.Error("ScrapedPlaceID should be nil")
	}
	if !got.CreatedAt.Equal(fixed) || !got.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v, %v", got.CreatedAt, got.UpdatedAt)
	}

	missing, err := db.GetPlace(ctx, 999)
	if err != nil || missing != nil {
		t.Errorf("GetPlace(missing) = %v, %v", missing, err)
	}
}

func TestUpdatePlace_BumpsUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return created }

	p := newTestPlace("Cafe Kids", "Bratislava", models.PlaceTypeCafe)
	if err := db.CreatePlace(ctx, p); err != nil {
		t.Fatal(err)
	}

	updated := created.Add(time.Hour)
	db.now = func() time.Time { return updated }
	p.Description = "Play corner upstairs"
	p.Season = nil
	if err := db.UpdatePlace(ctx, p); err != nil {
		t.Fatalf("UpdatePlace() error = %v", err)
	}

	got, _ := db.GetPlace(ctx, p.ID)
	if got.Description != "Play corner upstairs" {
		t.Errorf("Description = %q", got.Description)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Errorf("timestamps = %v, %v", got.CreatedAt, got.UpdatedAt)
	}

	missing := newTestPlace("x", "y")
	missing.ID = 999
	if err := db.UpdatePlace(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePlace(missing) error = %v", err)
	}
}

func TestDeletePlace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := newTestPlace("Museum", "Kosice", models.PlaceTypeMuseum)
	if err := db.CreatePlace(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePlace(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlace() error = %v", err)
	}
	if err := db.DeletePlace(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePlace() error = %v, want ErrNotFound", err)
	}
}

func TestListPlaces_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	park := newTestPlace("Aquapark Senec", "Senec", models.PlaceTypeAquapark)
	park.Season = seasonp(models.SeasonSummer)
	park.MinAge, park.MaxAge = intp(3), intp(18)

	playground := newTestPlace("Ihrisko Sad", "Bratislava", models.PlaceTypePlayground)
	playground.IsAdmissionFree = boolp(true)
	playground.Season = seasonp(models.SeasonAll)

	indoor := newTestPlace("Bambuland", "Bratislava", models.PlaceTypeIndoorPlayground)
	indoor.MinAge, indoor.MaxAge = intp(1), intp(8)
	indoor.Season = seasonp(models.SeasonWinter)

	hidden := newTestPlace("Hidden Castle", "Bratislava", models.PlaceTypeCastle)
	hidden.IsVisible = false

	zoo := newTestPlace("Zoo Brno", "Brno", models.PlaceTypeZoo)
	zoo.CountryCode = "CZ"

	for _, p := range []*models.Place{park, playground, indoor, hidden, zoo} {
		if err := db.CreatePlace(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter models.PlaceFilter
		want   []string
	}{
		{"all visible ordered by name", models.PlaceFilter{VisibleOnly: true}, []string{"Aquapark Senec", "Bambuland", "Ihrisko Sad", "Zoo Brno"}},
		{"including hidden", models.PlaceFilter{}, []string{"Aquapark Senec", "Bambuland", "Hidden Castle", "Ihrisko Sad", "Zoo Brno"}},
		{"single country", models.PlaceFilter{CountryCodes: []string{"CZ"}}, []string{"Zoo Brno"}},
		{"several countries", models.PlaceFilter{CountryCodes: []string{"CZ", "SK"}, VisibleOnly: true}, []string{"Aquapark Senec", "Bambuland", "Ihrisko Sad", "Zoo Brno"}},
		{"type does not match prefix", models.PlaceFilter{Type: models.PlaceTypePlayground}, []string{"Ihrisko Sad"}},
		{"city case-insensitive", models.PlaceFilter{City: "bratislava", VisibleOnly: true}, []string{"Bambuland", "Ihrisko Sad"}},
		{"age within range or unbounded", models.PlaceFilter{Age: intp(10), VisibleOnly: true}, []string{"Aquapark Senec", "Ihrisko Sad", "Zoo Brno"}},
		{"season includes ALL", models.PlaceFilter{Season: models.SeasonSummer}, []string{"Aquapark Senec", "Ihrisko Sad"}},
		{"admission free", models.PlaceFilter{AdmissionFree: boolp(true)}, []string{"Ihrisko Sad"}},
		{"search", models.PlaceFilter{Search: "senec"}, []string{"Aquapark Senec"}},
		{"limit and offset", models.PlaceFilter{VisibleOnly: true, Limit: 1, Offset: 1}, []string{"Bambuland"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := db.ListPlaces(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListPlaces() error = %v", err)
			}
			names := make([]string, len(got))
			for i, p := range got {
				names[i] = p.Name
			}
			if len(names) != len(tt.want) {
				t.Fatalf("names = %v, want %v", names, tt.want)
			}
			for i := range names {
				if names[i] != tt.want[i] {
					t.Errorf("names = %v, want %v", names, tt.want)
					break
				}
			}
			if tt.filter.Limit == 0 && total != len(tt.want) {
				t.Errorf("total = %d, want %d", total, len(tt.want))
			}
		})
	}
}

func TestCreatePlace_ScrapedPlaceLinkIsUnique(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	sp := insertScrapedFixture(t, db, "fb-1", "Zoo")

	first := newTestPlace("Zoo", "Bojnice", models.PlaceTypeZoo)
	first.ScrapedPlaceID = &sp.ID
	if err := db.CreatePlace(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := newTestPlace("Zoo again", "Bojnice")
	second.ScrapedPlaceID = &sp.ID
	if err := db.CreatePlace(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second link error = %v, want ErrDuplicate", err)
	}

	linked, err := db.GetPlaceByScrapedPlaceID(ctx, sp.ID)
	if err != nil || linked == nil || linked.ID != first.ID {
		t.Errorf("GetPlaceByScrapedPlaceID() = %v, %v", linked, err)
	}
}
