// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package scraping

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJSONL(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dir := t.TempDir()

	writeJSONL(t, dir, "modrykonik", "batch1",
		`{"id":101,"title":"Where to go with kids","perex":"Tips","comments":["Zoo is great",{"user":"x"}],"probability":0.9,`+
			`"places":[{"name":"Zoo Bratislava","types":["zoo"]},{"name":"Aupark playground","types":["playground"]}]}`,
		``,
		`{"id":102,"title":"No places here","places":[]}`,
		`{"id":103,"title":"Missing places key"}`,
		`{not json`,
		`{"id":"abc","title":"Rainy day","places":[{"name":"Cukraren Lienka","types":["sweet_shop"]}]}`,
	)

	im := NewImporter(db, dir)
	stats, err := im.ImportJSONL(ctx, "modrykonik", "batch1")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Posts)
	assert.Equal(t, 3, stats.Places)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 0, stats.Duplicates)
	assert.Equal(t,
		"Successfully imported 2 posts with 3 places. Skipped 3 records. Found 0 duplicate posts.",
		stats.Summary())

	post, err := db.GetScrapedPostByThirdPartyID(ctx, "modrykonik", "101")
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "Tips", post.Content)
	assert.InDelta(t, 0.9, post.Probability, 1e-9)
	require.Len(t, post.Comments, 2)
	assert.Equal(t, "Zoo is great", post.Comments[0])
	assert.JSONEq(t, `{"user":"x"}`, post.Comments[1])

	other, err := db.GetScrapedPostByThirdPartyID(ctx, "modrykonik", "abc")
	require.NoError(t, err)
	require.NotNil(t, other)
	assert.Zero(t, other.Probability)
	assert.Empty(t, other.Comments)
}

func TestImportJSONL_Duplicates(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dir := t.TempDir()

	line := `{"id":7,"title":"Again","places":[{"name":"Park","types":[]}]}`
	writeJSONL(t, dir, "fb", "dup", line, line)

	stats, err := NewImporter(db, dir).ImportJSONL(ctx, "fb", "dup")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Posts)
	assert.Equal(t, 2, stats.Places)
	assert.Equal(t, 1, stats.Duplicates)

	count, err := db.CountScrapedPlaces(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportJSONL_SameIDAcrossTypes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	dir := t.TempDir()

	line := `{"id":7,"title":"Weekend","places":[{"name":"Park","types":[]}]}`
	writeJSONL(t, dir, "fb", "batch", line)
	writeJSONL(t, dir, "modrykonik", "batch", line)

	im := NewImporter(db, dir)
	for _, source := range []string{"fb", "modrykonik"} {
		stats, err := im.ImportJSONL(ctx, source, "batch")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Posts, source)
		assert.Equal(t, 0, stats.Duplicates, source)
	}

	fb, err := db.GetScrapedPostByThirdPartyID(ctx, "fb", "7")
	require.NoError(t, err)
	mk, err := db.GetScrapedPostByThirdPartyID(ctx, "modrykonik", "7")
	require.NoError(t, err)
	require.NotNil(t, fb)
	require.NotNil(t, mk)
	assert.NotEqual(t, fb.ID, mk.ID)
}

func TestImportJSONL_FileNotFound(t *testing.T) {
	db := setupTestDB(t)
	im := NewImporter(db, t.TempDir())

	_, err := im.ImportJSONL(context.Background(), "missing", "file")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.Equal(t, "File "+filepath.Join(im.rawDir, "missing", "file.jsonl")+" does not exist", err.Error())
}

func TestThirdPartyIDString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`123`, "123"},
		{`"abc"`, "abc"},
		{`1.5`, "1.5"},
		{`null`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, thirdPartyIDString(json.RawMessage(tt.raw)), "raw %q", tt.raw)
	}
}
