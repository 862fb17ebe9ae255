// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package scraping

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

// ErrFileNotFound is returned when the JSONL file does not exist.
var ErrFileNotFound = errors.New("file does not exist")

// FileNotFoundError carries the missing path.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("File %s does not exist", e.Path)
}

// Is lets errors.Is match ErrFileNotFound.
func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 << 20

// record is one line of a scraper export.
type record struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Perex       string            `json:"perex"`
	Comments    []json.RawMessage `json:"comments"`
	Probability *float64          `json:"probability"`
	Places      []struct {
		Name  string   `json:"name"`
		Types []string `json:"types"`
	} `json:"places"`
}

// Importer loads scraper exports into the review tables.
type Importer struct {
	store  Store
	rawDir string
}

// NewImporter creates an importer reading from rawDir.
func NewImporter(store Store, rawDir string) *Importer {
	return &Importer{store: store, rawDir: rawDir}
}

// Path returns the file read for a source type and name.
func (im *Importer) Path(sourceType, name string) string {
	return filepath.Join(im.rawDir, sourceType, name+".jsonl")
}

// ImportJSONL reads <rawDir>/<sourceType>/<name>.jsonl. Records without
// places and malformed lines are skipped. Posts already imported are
// reused and counted as duplicates. Each record is written in its own
// transaction.
func (im *Importer) ImportJSONL(ctx context.Context, sourceType, name string) (*models.ImportStats, error) {
	path := im.Path(sourceType, name)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	log := logging.Ctx(ctx)
	log.Info().Msgf("Importing data from %s", path)

	stats := &models.ImportStats{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Err(err).Int("line", lineNo).Msg("Skipping malformed record")
			stats.Skipped++
			continue
		}
		if len(rec.Places) == 0 {
			stats.Skipped++
			continue
		}

		if err := im.importRecord(ctx, sourceType, &rec, stats); err != nil {
			metrics.RecordImport(stats.Posts, stats.Places, stats.Skipped, stats.Duplicates)
			return stats, fmt.Errorf("error importing data: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		metrics.RecordImport(stats.Posts, stats.Places, stats.Skipped, stats.Duplicates)
		return stats, fmt.Errorf("error importing data: %w", err)
	}

	metrics.RecordImport(stats.Posts, stats.Places, stats.Skipped, stats.Duplicates)
	log.Info().
		Int("posts", stats.Posts).
		Int("places", stats.Places).
		Int("skipped", stats.Skipped).
		Int("duplicates", stats.Duplicates).
		Msg(stats.Summary())
	return stats, nil
}

// importRecord writes one post and its places. Stats change only after
// the transaction commits.
func (im *Importer) importRecord(ctx context.Context, sourceType string, rec *record, stats *models.ImportStats) error {
	var posts, places, duplicates int

	err := im.store.WithTx(ctx, func(tx *database.Tx) error {
		posts, places, duplicates = 0, 0, 0

		thirdPartyID := thirdPartyIDString(rec.ID)
		post, err := tx.GetScrapedPostByThirdPartyID(ctx, sourceType, thirdPartyID)
		if err != nil {
			return err
		}
		if post != nil {
			duplicates++
		} else {
			post = &models.ScrapedPost{
				ThirdPartyID:   thirdPartyID,
				ThirdPartyType: sourceType,
				Title:          rec.Title,
				Content:        rec.Perex,
				Comments:       commentStrings(rec.Comments),
			}
			if rec.Probability != nil {
				post.Probability = *rec.Probability
			}
			if err := tx.CreateScrapedPost(ctx, post); err != nil {
				return err
			}
			posts++
		}

		for _, p := range rec.Places {
			postID := post.ID
			sp := &models.ScrapedPlace{
				Name:   p.Name,
				Types:  p.Types,
				PostID: &postID,
			}
			if sp.Types == nil {
				sp.Types = []string{}
			}
			if err := tx.CreateScrapedPlace(ctx, sp); err != nil {
				return err
			}
			places++
		}
		return nil
	})
	if err != nil {
		return err
	}

	stats.Posts += posts
	stats.Places += places
	stats.Duplicates += duplicates
	return nil
}

// thirdPartyIDString renders a numeric or string id. A missing id is "".
func thirdPartyIDString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return string(raw)
}

// commentStrings keeps string comments as they are and stores anything
// else as its JSON text.
func commentStrings(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		var s string
		if err := json.Unmarshal(c, &s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, string(c))
	}
	return out
}
