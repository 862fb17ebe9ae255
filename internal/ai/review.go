// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package ai

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// PlaceReview is the structured answer to a place review prompt. Pointer
// fields are nil when the model was unsure.
type PlaceReview struct {
	Name             string   `json:"name"`
	Types            []string `json:"types"`
	Description      string   `json:"description"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
	CountryCode      string   `json:"country_code"`
	Street           string   `json:"street"`
	City             string   `json:"city"`
	ZipCode          string   `json:"zip_code"`
	MinAge           *int     `json:"min_age"`
	MaxAge           *int     `json:"max_age"`
	Website          string   `json:"website"`
	IsAdmissionFree  *bool    `json:"is_admission_free"`
	Season           string   `json:"season"`
	StrollerFriendly *bool    `json:"stroller_friendly"`
}

// HasCoordinates reports whether the model returned a non-zero position.
func (r *PlaceReview) HasCoordinates() bool {
	return r.Lat != nil && r.Lon != nil && (*r.Lat != 0 || *r.Lon != 0)
}

// ParsePlaceReview decodes a model reply into a PlaceReview.
func ParsePlaceReview(reply string) (*PlaceReview, error) {
	var review PlaceReview
	if err := json.Unmarshal([]byte(CleanJSONResponse(reply)), &review); err != nil {
		return nil, fmt.Errorf("failed to decode place review: %w", err)
	}
	return &review, nil
}

// ReviewPlace researches a place and returns the structured review.
func (c *Client) ReviewPlace(ctx context.Context, name, city string, types []string) (*PlaceReview, error) {
	reply, err := c.WebSearch(ctx, PlaceReviewPrompt(name, city, types))
	if err != nil {
		return nil, err
	}
	return ParsePlaceReview(reply)
}
