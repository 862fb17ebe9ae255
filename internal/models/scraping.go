// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package models

import "fmt"

// ScrapedPost is a raw third-party post that mentioned one or more places.
type ScrapedPost struct {
	ID             int64    `json:"id"`
	ThirdPartyID   string   `json:"third_party_id"`
	ThirdPartyType string   `json:"third_party_type"`
	Title          string   `json:"title"`
	Content        string   `json:"content"`
	Comments       []string `json:"comments"`
	Probability    float64  `json:"probability"`
}

// ScrapedPlace is a place name extracted from a post, waiting for review.
type ScrapedPlace struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Types     []string `json:"types"`
	PostID    *int64   `json:"post_id"`
	Processed bool     `json:"processed"`
}

// ReviewItem is the next scraped place in the review queue with its post.
type ReviewItem struct {
	Place *ScrapedPlace `json:"place"`
	Post  *ScrapedPost  `json:"post,omitempty"`
}

// ImportStats counts the outcome of a JSONL import.
type ImportStats struct {
	Posts      int `json:"posts"`
	Places     int `json:"places"`
	Skipped    int `json:"skipped"`
	Duplicates int `json:"duplicates"`
}

// Summary is the one-line report printed after an import.
func (s ImportStats) Summary() string {
	return fmt.Sprintf("Successfully imported %d posts with %d places. Skipped %d records. Found %d duplicate posts.",
		s.Posts, s.Places, s.Skipped, s.Duplicates)
}

// ImportRequest is the body of POST /scraping/import.
type ImportRequest struct {
	Type string `json:"type" validate:"required,max=64,excludesall=/\\."`
	Name string `json:"name" validate:"required,max=128,excludesall=/\\"`
}

// EnrichResult reports what happened to one scraped place.
type EnrichResult struct {
	ScrapedPlaceID int64  `json:"scraped_place_id"`
	PlaceID        int64  `json:"place_id,omitempty"`
	Created        bool   `json:"created"`
	Geocoded       bool   `json:"geocoded"`
	Error          string `json:"error,omitempty"`
}
