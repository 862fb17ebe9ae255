// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

/*
database_schema.go - Database Schema Management

Tables:
  - users: accounts with role (admin or freemium_user)
  - scraped_posts: imported social posts, unique per (third_party_type, third_party_id)
  - scraped_places: place candidates extracted from posts, queued for review
  - places: curated directory entries, optionally linked to one scraped place

Slices (place types, comments) are stored as JSON text. Relationships are
not declared as foreign keys: DuckDB rejects deletes of referenced rows, so
cascade and set-null are applied in Go inside one transaction.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the sequences and core tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func getTableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS users_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS places_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS scraped_posts_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS scraped_places_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			first_name VARCHAR NOT NULL DEFAULT '',
			last_name VARCHAR NOT NULL DEFAULT '',
			bio VARCHAR NOT NULL DEFAULT '',
			phone_number VARCHAR NOT NULL DEFAULT '',
			default_location VARCHAR NOT NULL DEFAULT '',
			role VARCHAR NOT NULL DEFAULT 'freemium_user',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_staff BOOLEAN NOT NULL DEFAULT FALSE,
			is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
			date_joined TIMESTAMP NOT NULL,
			last_login TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS scraped_posts (
			id BIGINT PRIMARY KEY DEFAULT nextval('scraped_posts_id_seq'),
			third_party_id VARCHAR NOT NULL,
			third_party_type VARCHAR NOT NULL,
			title VARCHAR NOT NULL DEFAULT '',
			content VARCHAR NOT NULL DEFAULT '',
			comments VARCHAR NOT NULL DEFAULT '[]',
			probability DOUBLE NOT NULL DEFAULT 0.0,
			UNIQUE (third_party_type, third_party_id)
		)`,

		`CREATE TABLE IF NOT EXISTS scraped_places (
			id BIGINT PRIMARY KEY DEFAULT nextval('scraped_places_id_seq'),
			name VARCHAR NOT NULL,
			types VARCHAR NOT NULL DEFAULT '[]',
			post_id BIGINT,
			processed BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		`CREATE TABLE IF NOT EXISTS places (
			id BIGINT PRIMARY KEY DEFAULT nextval('places_id_seq'),
			name VARCHAR NOT NULL,
			types VARCHAR NOT NULL DEFAULT '[]',
			description VARCHAR NOT NULL DEFAULT '',
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			country_code VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			street VARCHAR NOT NULL DEFAULT '',
			zip_code VARCHAR NOT NULL DEFAULT '',
			min_age INTEGER,
			max_age INTEGER,
			website VARCHAR NOT NULL DEFAULT '',
			note VARCHAR NOT NULL DEFAULT '',
			season VARCHAR,
			is_admission_free BOOLEAN DEFAULT FALSE,
			is_visible BOOLEAN NOT NULL DEFAULT TRUE,
			scraped_place_id BIGINT UNIQUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
	}
}

// createIndexes creates database indexes for query optimization
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}
	return nil
}

// Indexes stay on columns that are never updated; DuckDB rewrites updates of
// indexed columns as delete plus insert.
func getIndexQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_scraped_places_post ON scraped_places(post_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scraped_places_name ON scraped_places(name)`,
	}
}
