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

const placeColumns = `id, name, types, description, latitude, longitude, country_code, city, street,
	zip_code, min_age, max_age, website, note, season, is_admission_free, is_visible, scraped_place_id,
	created_at, updated_at`

// CreatePlace inserts a place and sets its ID and timestamps.
// Returns ErrDuplicate if the scraped place is already linked to another place.
func (db *DB) CreatePlace(ctx context.Context, place *models.Place) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return insertPlace(ctx, db.conn, place, db.now())
}

// CreatePlace inserts a place within the transaction.
func (tx *Tx) CreatePlace(ctx context.Context, place *models.Place) error {
	return insertPlace(ctx, tx.tx, place, tx.now())
}

func insertPlace(ctx context.Context, q querier, p *models.Place, now time.Time) error {
	start := time.Now()

	types, err := encodeStrings(p.Types)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	stmt := `INSERT INTO places (name, types, description, latitude, longitude, country_code, city,
			street, zip_code, min_age, max_age, website, note, season, is_admission_free, is_visible,
			scraped_place_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err = q.QueryRowContext(ctx, stmt,
		p.Name, types, p.Description, p.Latitude, p.Longitude, p.CountryCode, p.City,
		p.Street, p.ZipCode, nullableInt(p.MinAge), nullableInt(p.MaxAge), p.Website, p.Note,
		nullableSeason(p.Season), nullableBool(p.IsAdmissionFree), p.IsVisible,
		nullableInt64(p.ScrapedPlaceID), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	metrics.RecordDBQuery("INSERT", "places", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

// GetPlace returns nil, nil when the place does not exist.
func (db *DB) GetPlace(ctx context.Context, id int64) (*models.Place, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return getPlace(ctx, db.conn, "id = ?", id)
}

// GetPlaceByScrapedPlaceID returns the place created from a scraped place, or nil, nil.
func (db *DB) GetPlaceByScrapedPlaceID(ctx context.Context, scrapedPlaceID int64) (*models.Place, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	return getPlace(ctx, db.conn, "scraped_place_id = ?", scrapedPlaceID)
}

// GetPlaceByScrapedPlaceID reads within the transaction.
func (tx *Tx) GetPlaceByScrapedPlaceID(ctx context.Context, scrapedPlaceID int64) (*models.Place, error) {
	return getPlace(ctx, tx.tx, "scraped_place_id = ?", scrapedPlaceID)
}

func getPlace(ctx context.Context, q querier, where string, arg any) (*models.Place, error) {
	start := time.Now()
	row := q.QueryRowContext(ctx, "SELECT "+placeColumns+" FROM places WHERE "+where, arg)
	p, err := scanPlace(row)
	metrics.RecordDBQuery("SELECT", "places", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get place: %w", err)
	}
	return p, nil
}

// UpdatePlace overwrites the editable fields and bumps updated_at.
// The scraped place link and created_at are left untouched.
func (db *DB) UpdatePlace(ctx context.Context, p *models.Place) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	types, err := encodeStrings(p.Types)
	if err != nil {
		return err
	}
	p.UpdatedAt = db.now()

	res, err := db.conn.ExecContext(ctx, `UPDATE places SET
			name = ?, types = ?, description = ?, latitude = ?, longitude = ?, country_code = ?,
			city = ?, street = ?, zip_code = ?, min_age = ?, max_age = ?, website = ?, note = ?,
			season = ?, is_admission_free = ?, is_visible = ?, updated_at = ?
		WHERE id = ?`,
		p.Name, types, p.Description, p.Latitude, p.Longitude, p.CountryCode,
		p.City, p.Street, p.ZipCode, nullableInt(p.MinAge), nullableInt(p.MaxAge), p.Website, p.Note,
		nullableSeason(p.Season), nullableBool(p.IsAdmissionFree), p.IsVisible, p.UpdatedAt,
		p.ID)
	metrics.RecordDBQuery("UPDATE", "places", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}
	return checkAffected(res)
}

// DeletePlace removes a place. Returns ErrNotFound if it does not exist.
func (db *DB) DeletePlace(ctx context.Context, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM places WHERE id = ?`, id)
	metrics.RecordDBQuery("DELETE", "places", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	return checkAffected(res)
}

// ListPlaces returns one page of places matching the filter ordered by name,
// plus the total number of matches.
func (db *DB) ListPlaces(ctx context.Context, f models.PlaceFilter) ([]*models.Place, int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	where, args := buildPlaceFilter(f)

	var total int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM places"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count places: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	stmt := "SELECT " + placeColumns + " FROM places" + where + " ORDER BY name, id LIMIT ? OFFSET ?"
	rows, err := db.conn.QueryContext(ctx, stmt, append(args, limit, f.Offset)...)
	metrics.RecordDBQuery("SELECT", "places", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list places: %w", err)
	}
	defer closeWithLog(rows, "rows")

	places := []*models.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan place: %w", err)
		}
		places = append(places, p)
	}
	return places, total, rows.Err()
}

// buildPlaceFilter returns a WHERE clause (with leading space) and its arguments.
func buildPlaceFilter(f models.PlaceFilter) (string, []any) {
	wb := query.NewWhereBuilder().
		AddIf(f.VisibleOnly, "is_visible").
		// types is a JSON array of quoted constants
		AddJSONArrayContains("types", string(f.Type)).
		AddEqualFold("city", f.City).
		AddIn("country_code", f.CountryCodes)
	if f.Age != nil {
		wb.AddClause("(min_age IS NULL OR min_age <= ?)", *f.Age).
			AddClause("(max_age IS NULL OR max_age >= ?)", *f.Age)
	}
	wb.AddIf(f.Season != "", "(season = ? OR season = 'ALL')", string(f.Season))
	if f.AdmissionFree != nil {
		wb.AddClause("COALESCE(is_admission_free, FALSE) = ?", *f.AdmissionFree)
	}
	wb.AddContainsAny([]string{"name", "description"}, f.Search)
	return wb.BuildWithPrefix()
}

func nullableSeason(s *models.Season) any {
	if s == nil {
		return nil
	}
	return string(*s)
}

func scanPlace(row rowScanner) (*models.Place, error) {
	var (
		p             models.Place
		types         string
		minAge        sql.NullInt64
		maxAge        sql.NullInt64
		season        sql.NullString
		admissionFree sql.NullBool
		scrapedID     sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.Name, &types, &p.Description, &p.Latitude, &p.Longitude,
		&p.CountryCode, &p.City, &p.Street, &p.ZipCode, &minAge, &maxAge, &p.Website, &p.Note,
		&season, &admissionFree, &p.IsVisible, &scrapedID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Types, err = decodeStrings[models.PlaceType](types)
	if err != nil {
		return nil, err
	}
	p.MinAge = intPtr(minAge)
	p.MaxAge = intPtr(maxAge)
	if season.Valid {
		s := models.Season(season.String)
		p.Season = &s
	}
	p.IsAdmissionFree = boolPtr(admissionFree)
	p.ScrapedPlaceID = int64Ptr(scrapedID)
	return &p, nil
}
