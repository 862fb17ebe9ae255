// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package places

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/validation"
)

var testDBSemaphore = make(chan struct{}, 1)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewService(db)
}

func adminContext() context.Context {
	return auth.ContextWithUser(context.Background(), &models.User{ID: 1, Role: models.RoleAdmin})
}

func input(name string, visible bool) *models.PlaceInput {
	return &models.PlaceInput{
		Name:        name,
		Types:       []models.PlaceType{models.PlaceTypePlayground},
		Latitude:    48.14,
		Longitude:   17.10,
		CountryCode: "sk",
		City:        "Bratislava",
		IsVisible:   &visible,
	}
}

func TestCreateAndGet(t *testing.T) {
	svc := setupTestService(t)
	admin := adminContext()

	place, err := svc.Create(admin, input("Hidden Park", false))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if place.CountryCode != "SK" {
		t.Errorf("CountryCode = %q, want SK", place.CountryCode)
	}
	if place.IsAdmissionFree == nil || *place.IsAdmissionFree {
		t.Error("admission should default to not free")
	}

	if _, err := svc.Get(context.Background(), place.ID); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("anonymous Get(hidden) error = %v, want ErrPlaceNotFound", err)
	}
	if got, err := svc.Get(admin, place.ID); err != nil || got.ID != place.ID {
		t.Errorf("admin Get(hidden) = %+v, %v", got, err)
	}
	if _, err := svc.Get(admin, 9999); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := setupTestService(t)

	in := input("", true)
	_, err := svc.Create(adminContext(), in)
	var verr *validation.RequestValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want RequestValidationError", err)
	}
}

func TestList_VisibilityByRole(t *testing.T) {
	svc := setupTestService(t)
	admin := adminContext()

	for _, in := range []*models.PlaceInput{input("Alpha", true), input("Beta", false), input("Gamma", true)} {
		if _, err := svc.Create(admin, in); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	public, total, err := svc.List(context.Background(), models.PlaceFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(public) != 2 || public[0].Name != "Alpha" || public[1].Name != "Gamma" {
		t.Errorf("public List() = %d items, total %d", len(public), total)
	}

	user := auth.ContextWithUser(context.Background(), &models.User{ID: 2, Role: models.RoleFreemiumUser})
	if _, total, _ := svc.List(user, models.PlaceFilter{}); total != 2 {
		t.Errorf("freemium total = %d, want 2", total)
	}

	if _, total, _ := svc.List(admin, models.PlaceFilter{}); total != 3 {
		t.Errorf("admin total = %d, want 3", total)
	}

	page, _, _ := svc.List(admin, models.PlaceFilter{Limit: 1, Offset: 1})
	if len(page) != 1 || page[0].Name != "Beta" {
		t.Errorf("page = %+v", page)
	}
}

func TestUpdate(t *testing.T) {
	svc := setupTestService(t)
	admin := adminContext()

	place, _ := svc.Create(admin, input("Old Name", false))

	in := input("New Name", false)
	in.IsVisible = nil
	updated, err := svc.Update(admin, place.ID, in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "New Name" || updated.IsVisible {
		t.Errorf("Update() = %+v", updated)
	}
	if !updated.CreatedAt.Equal(place.CreatedAt) {
		t.Error("created_at must not change")
	}

	if _, err := svc.Update(admin, 9999, input("X", true)); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("Update(missing) error = %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := setupTestService(t)
	admin := adminContext()

	place, _ := svc.Create(admin, input("Short Lived", true))
	if err := svc.Delete(admin, place.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(admin, place.ID); !errors.Is(err, ErrPlaceNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}
