// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/familymap/internal/database/query"
	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

const (
	scrapedPostColumns  = `id, third_party_id, third_party_type, title, content, comments, probability`
	scrapedPlaceColumns = `id, name, types, post_id, processed`
)

// GetScrapedPostByThirdPartyID returns nil, nil when no post has the key.
func (db *DB) GetScrapedPostByThirdPartyID(ctx context.Context, thirdPartyType, thirdPartyID string) (*models.ScrapedPost, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return getScrapedPost(ctx, db.conn, "third_party_type = ? AND third_party_id = ?", thirdPartyType, thirdPartyID)
}

// GetScrapedPostByThirdPartyID reads within the transaction.
func (tx *Tx) GetScrapedPostByThirdPartyID(ctx context.Context, thirdPartyType, thirdPartyID string) (*models.ScrapedPost, error) {
	return getScrapedPost(ctx, tx.tx, "third_party_type = ? AND third_party_id = ?", thirdPartyType, thirdPartyID)
}

// GetScrapedPost returns nil, nil when the post does not exist.
func (db *DB) GetScrapedPost(ctx context.Context, id int64) (*models.ScrapedPost, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return getScrapedPost(ctx, db.conn, "id = ?", id)
}

func getScrapedPost(ctx context.Context, q querier, where string, args ...any) (*models.ScrapedPost, error) {
	start := time.Now()
	row := q.QueryRowContext(ctx, "SELECT "+scrapedPostColumns+" FROM scraped_posts WHERE "+where, args...)

	var (
		p        models.ScrapedPost
		comments string
	)
	err := row.Scan(&p.ID, &p.ThirdPartyID, &p.ThirdPartyType, &p.Title, &p.Content, &comments, &p.Probability)
	metrics.RecordDBQuery("SELECT", "scraped_posts", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scraped post: %w", err)
	}
	if p.Comments, err = decodeStrings[string](comments); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateScrapedPost inserts a post within the transaction and sets its ID.
func (tx *Tx) CreateScrapedPost(ctx context.Context, post *models.ScrapedPost) error {
	start := time.Now()

	comments, err := encodeStrings(post.Comments)
	if err != nil {
		return err
	}

	err = tx.tx.QueryRowContext(ctx,
		`INSERT INTO scraped_posts (third_party_id, third_party_type, title, content, comments, probability)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		post.ThirdPartyID, post.ThirdPartyType, post.Title, post.Content, comments, post.Probability,
	).Scan(&post.ID)
	metrics.RecordDBQuery("INSERT", "scraped_posts", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create scraped post: %w", err)
	}
	return nil
}

// CreateScrapedPlace inserts a place candidate within the transaction and sets its ID.
func (tx *Tx) CreateScrapedPlace(ctx context.Context, place *models.ScrapedPlace) error {
	start := time.Now()

	types, err := encodeStrings(place.Types)
	if err != nil {
		return err
	}

	err = tx.tx.QueryRowContext(ctx,
		`INSERT INTO scraped_places (name, types, post_id, processed) VALUES (?, ?, ?, ?) RETURNING id`,
		place.Name, types, nullableInt64(place.PostID), place.Processed,
	).Scan(&place.ID)
	metrics.RecordDBQuery("INSERT", "scraped_places", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create scraped place: %w", err)
	}
	return nil
}

// GetScrapedPlace returns nil, nil when the scraped place does not exist.
func (db *DB) GetScrapedPlace(ctx context.Context, id int64) (*models.ScrapedPlace, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, "SELECT "+scrapedPlaceColumns+" FROM scraped_places WHERE id = ?", id)
	p, err := scanScrapedPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scraped place: %w", err)
	}
	return p, nil
}

// NextUnprocessedScrapedPlace returns the first unprocessed place by name, or nil, nil.
func (db *DB) NextUnprocessedScrapedPlace(ctx context.Context) (*models.ScrapedPlace, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, "SELECT "+scrapedPlaceColumns+" FROM review_queue ORDER BY name, id LIMIT 1")
	p, err := scanScrapedPlace(row)
	metrics.RecordDBQuery("SELECT", "review_queue", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next scraped place: %w", err)
	}
	return p, nil
}

// MarkScrapedPlaceProcessed flags a scraped place as reviewed.
func (db *DB) MarkScrapedPlaceProcessed(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return markProcessed(ctx, db.conn, id)
}

// MarkScrapedPlaceProcessed flags a scraped place as reviewed within the transaction.
func (tx *Tx) MarkScrapedPlaceProcessed(ctx context.Context, id int64) error {
	return markProcessed(ctx, tx.tx, id)
}

func markProcessed(ctx context.Context, q querier, id int64) error {
	start := time.Now()
	res, err := q.ExecContext(ctx, `UPDATE scraped_places SET processed = TRUE WHERE id = ?`, id)
	metrics.RecordDBQuery("UPDATE", "scraped_places", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to mark scraped place processed: %w", err)
	}
	return checkAffected(res)
}

// ListScrapedPlaces returns scraped places ordered by name. A nil processed
// returns all of them.
func (db *DB) ListScrapedPlaces(ctx context.Context, processed *bool, limit, offset int) ([]*models.ScrapedPlace, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	where, args := processedFilter(processed)
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+scrapedPlaceColumns+" FROM scraped_places"+where+" ORDER BY name, id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scraped places: %w", err)
	}
	defer closeWithLog(rows, "rows")

	places := []*models.ScrapedPlace{}
	for rows.Next() {
		p, err := scanScrapedPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scraped place: %w", err)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// CountScrapedPlaces counts scraped places, optionally by processed state.
func (db *DB) CountScrapedPlaces(ctx context.Context, processed *bool) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := processedFilter(processed)
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM scraped_places"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scraped places: %w", err)
	}
	return count, nil
}

func processedFilter(processed *bool) (string, []any) {
	wb := query.NewWhereBuilder()
	if processed != nil {
		wb.AddClause("processed = ?", *processed)
	}
	return wb.BuildWithPrefix()
}

// DeleteScrapedPlace removes a scraped place and unlinks any place created from it.
func (db *DB) DeleteScrapedPlace(ctx context.Context, id int64) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		return deleteScrapedPlaces(ctx, tx.tx, "id = ?", id)
	})
}

// DeleteScrapedPost removes a post together with its scraped places.
func (db *DB) DeleteScrapedPost(ctx context.Context, id int64) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if err := deleteScrapedPlaces(ctx, tx.tx, "post_id = ?", id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		res, err := tx.tx.ExecContext(ctx, `DELETE FROM scraped_posts WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete scraped post: %w", err)
		}
		return checkAffected(res)
	})
}

func deleteScrapedPlaces(ctx context.Context, q querier, where string, arg any) error {
	_, err := q.ExecContext(ctx,
		`UPDATE places SET scraped_place_id = NULL
		WHERE scraped_place_id IN (SELECT id FROM scraped_places WHERE `+where+`)`, arg)
	if err != nil {
		return fmt.Errorf("failed to unlink places: %w", err)
	}

	res, err := q.ExecContext(ctx, `DELETE FROM scraped_places WHERE `+where, arg)
	if err != nil {
		return fmt.Errorf("failed to delete scraped places: %w", err)
	}
	return checkAffected(res)
}

func scanScrapedPlace(row rowScanner) (*models.ScrapedPlace, error) {
	var (
		p      models.ScrapedPlace
		types  string
		postID sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &types, &postID, &p.Processed); err != nil {
		return nil, err
	}
	var err error
	if p.Types, err = decodeStrings[string](types); err != nil {
		return nil, err
	}
	p.PostID = int64Ptr(postID)
	return &p, nil
}
