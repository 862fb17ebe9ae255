// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package scraping

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
)

var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// writeJSONL creates <dir>/<sourceType>/<name>.jsonl from lines.
func writeJSONL(t *testing.T, dir, sourceType, name string, lines ...string) {
	t.Helper()

	sub := filepath.Join(dir, sourceType)
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, name+".jsonl"), []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

// importFixture loads two posts with three places and returns the importer.
func importFixture(t *testing.T, db *database.DB) *Importer {
	t.Helper()

	dir := t.TempDir()
	writeJSONL(t, dir, "modrykonik", "2025",
		`{"id":101,"title":"Where to go with kids","perex":"Tips","comments":["Zoo is great"],"probability":0.9,`+
			`"places":[{"name":"Zoo Bratislava","types":["zoo"]},{"name":"Aupark playground","types":["playground"]}]}`,
		`{"id":"abc","title":"Rainy day","places":[{"name":"Cukraren Lienka","types":["sweet_shop"]}]}`,
	)

	im := NewImporter(db, dir)
	_, err := im.ImportJSONL(context.Background(), "modrykonik", "2025")
	require.NoError(t, err)
	return im
}
