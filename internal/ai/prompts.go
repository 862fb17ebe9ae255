// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package ai

import (
	"fmt"
	"strings"
)

const placeReviewSystemPrompt = `You are a data extraction assistant designed to identify and structure information about places that are interesting for parents with children.

Your task is to extract detailed structured information about a specific place (e.g., playground, restaurant, zoo, etc.) located primarily in Slovakia or neighboring countries. You are allowed to use your general knowledge and common sense, but you must prefer information from Slovakia unless clearly specified otherwise.

Return ONLY valid JSON with the following fields:
- name: Corrected and complete name of the place
- types: List of the most appropriate place types from the allowed list
- description: 2 paragraph description in Slovak language (3-5 sentences with at least one mentioning why it is good for kids)
- lat: as precise a latitude as possible
- lon: as precise a longitude as possible
- country_code: ISO 3166-1 alpha-2 country code (e.g., "SK", "CZ")
- street: the address does not have to match the city from the input
- city: the address does not have to match the city from the input
- zip_code: the address does not have to match the city from the input
- min_age: Minimum recommended age in years (numbers only). Guidance:
    - Babies (0-1): only if explicitly infant-friendly (baby corners, changing stations)
    - Toddlers (2-3): soft play areas, indoor playrooms, kindergartens
    - Preschoolers (4-5): small amusement parks, playgrounds, simple attractions
    - School-age (6-9): most indoor and outdoor attractions, cafes with play areas, small museums
    - Older kids (10-13): larger museums, aquaparks, zoos, more complex activities
    - Teens (14+): galleries, historic castles, sports activities, general tourist spots
    - If unclear, use 0
- max_age: Maximum age the place is typically interesting for (numbers only). Guidance:
    - Cafes with toys or play corners: 6-8
    - Simple playgrounds: up to 8-10
    - Larger attractions or aquaparks: 12-15
    - Castles, museums, galleries: up to 99
    - If clearly for all ages or unclear, use 99
- website: leave blank if unknown
- is_admission_free: true, false or null if uncertain
- season: one of "summer", "winter" or "all". Default to "all" unless clearly seasonal.
- stroller_friendly: true, false or null if uncertain

Allowed types:
%s

Never return any explanation or text outside the JSON. If information is ambiguous, fill in reasonable defaults as specified.`

// AllowedReviewTypes are the lowercase type names the model may return.
var AllowedReviewTypes = []string{
	"playground",
	"indoor_playground",
	"kindergarten",
	"cafe",
	"restaurant",
	"sweet_shop",
	"amusement_park",
	"museum",
	"gallery",
	"zoo",
	"aquapark",
	"community_center",
	"kids_playroom",
	"castle",
	"hotel",
	"attraction",
	"natural_attraction",
}

// PlaceReviewPrompt builds the single prompt used to research a place.
func PlaceReviewPrompt(name, city string, types []string) string {
	allowed := make([]string, len(AllowedReviewTypes))
	for i, t := range AllowedReviewTypes {
		allowed[i] = fmt.Sprintf("- %q", t)
	}
	system := fmt.Sprintf(placeReviewSystemPrompt, strings.Join(allowed, "\n"))

	var user strings.Builder
	fmt.Fprintf(&user, "Gather detailed information about the place called %q.", name)
	if city != "" {
		fmt.Fprintf(&user, "\nIt may be located in the city %q.", city)
	}
	if len(types) > 0 {
		fmt.Fprintf(&user, "\nPossible types include: %s.", strings.Join(types, ", "))
	}

	return system + " \n " + user.String()
}
