// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  {\"a\":1}  ", `{"a":1}`},
		{"fenced", "```json\n{\"json\":true}\n```", `{"json":true}`},
		{"thinking", "<think>hmm</think> {\"a\":1} ", `{"a":1}`},
		{"thinking and fence", "<think>a</think><think>b</think>\n```json\n{\"a\":1}\n```", `{"a":1}`},
		{"no json word keeps fences", "```\n{\"a\":1}\n```", "```\n{\"a\":1}\n```"},
		{"closing tag without opening", "x</think>{}", "x</think>{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.in))
		})
	}
}

func TestPlaceReviewPrompt(t *testing.T) {
	prompt := PlaceReviewPrompt("Tatralandia", "Liptovsky Mikulas", []string{"aquapark", "attraction"})

	system, user, found := strings.Cut(prompt, " \n ")
	assert.True(t, found)
	assert.Contains(t, system, "Return ONLY valid JSON")
	assert.Contains(t, system, `- "sweet_shop"`)
	assert.Contains(t, system, `- "natural_attraction"`)

	assert.Equal(t,
		"Gather detailed information about the place called \"Tatralandia\".\n"+
			"It may be located in the city \"Liptovsky Mikulas\".\n"+
			"Possible types include: aquapark, attraction.",
		user)
}

func TestPlaceReviewPrompt_NameOnly(t *testing.T) {
	prompt := PlaceReviewPrompt("Kids Corner", "", nil)

	assert.True(t, strings.HasSuffix(prompt, " \n Gather detailed information about the place called \"Kids Corner\"."))
	assert.NotContains(t, prompt, "It may be located")
	assert.NotContains(t, prompt, "Possible types include")
}
