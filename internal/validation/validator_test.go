// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/familymap/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

func validPlaceInput() models.PlaceInput {
	season := models.SeasonSummer
	minAge, maxAge := 2, 10
	return models.PlaceInput{
		Name:        "Detske ihrisko Sad Janka Krala",
		Types:       []models.PlaceType{models.PlaceTypePlayground},
		Latitude:    48.1342,
		Longitude:   17.1093,
		CountryCode: "SK",
		City:        "Bratislava",
		MinAge:      &minAge,
		MaxAge:      &maxAge,
		Website:     "https://example.sk",
		Season:      &season,
	}
}

func TestValidateStruct_ValidPlace(t *testing.T) {
	in := validPlaceInput()
	if err := ValidateStruct(&in); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateStruct_PlaceFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.PlaceInput)
		field  string
		tag    string
	}{
		{"missing name", func(p *models.PlaceInput) { p.Name = "" }, "name", "required"},
		{"unknown type", func(p *models.PlaceInput) { p.Types = []models.PlaceType{"SPACEPORT"} }, "types[0]", "placetype"},
		{"bad latitude", func(p *models.PlaceInput) { p.Latitude = 123 }, "latitude", "latitude"},
		{"bad country", func(p *models.PlaceInput) { p.CountryCode = "SVK" }, "country_code", "countrycode"},
		{"missing city", func(p *models.PlaceInput) { p.City = "" }, "city", "required"},
		{"bad website", func(p *models.PlaceInput) { p.Website = "not a url" }, "website", "url"},
		{"age too high", func(p *models.PlaceInput) { a := 30; p.MaxAge = &a }, "max_age", "max"},
		{"ages inverted", func(p *models.PlaceInput) { a, b := 10, 5; p.MinAge, p.MaxAge = &a, &b }, "max_age", "gtefield"},
		{"bad season", func(p *models.PlaceInput) { s := models.Season("autumn"); p.Season = &s }, "season", "season"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPlaceInput()
			tt.mutate(&in)

			err := ValidateStruct(&in)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.field || errs[0].Tag() != tt.tag {
				t.Errorf("got field=%q tag=%q, want field=%q tag=%q", errs[0].Field(), errs[0].Tag(), tt.field, tt.tag)
			}
		})
	}
}

func TestValidateStruct_RegisterRequest(t *testing.T) {
	req := models.RegisterRequest{
		Username:    "anna",
		Email:       "not-an-email",
		Password:    "x",
		Bio:         strings.Repeat("b", models.MaxBioLength+1),
		PhoneNumber: "+421900123456789",
	}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q", apiErr.Code)
	}
	for _, want := range []string{
		"email must be a valid email address",
		"bio must be at most 500 characters",
		"phone_number must be at most 15 characters",
	} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("message %q missing %q", apiErr.Message, want)
		}
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("multi-error details should list fields")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	req := models.LoginRequest{Username: "anna"}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr := err.ToAPIError()
	if apiErr.Message != "password is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "password" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestValidateStruct_ImportRequestRejectsPaths(t *testing.T) {
	req := models.ImportRequest{Type: "../etc", Name: "posts"}
	if err := ValidateStruct(&req); err == nil {
		t.Error("path separators in type should be rejected")
	}
	ok := models.ImportRequest{Type: "facebook", Name: "2024-05-groups"}
	if err := ValidateStruct(&ok); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
