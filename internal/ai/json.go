// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package ai

import (
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("^```json\\s*|\\s*```$")

// CleanJSONResponse strips reasoning blocks and markdown fences from a
// model reply so it can be decoded as JSON.
func CleanJSONResponse(s string) string {
	if strings.Contains(s, "<think>") {
		if i := strings.LastIndex(s, "</think>"); i >= 0 {
			s = s[i+len("</think>"):]
		}
	}
	if strings.Contains(s, "json") {
		return jsonFence.ReplaceAllString(strings.TrimSpace(s), "")
	}
	return strings.TrimSpace(s)
}
