// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package database stores users, places and the scraping pipeline in DuckDB.
//
// # Files
//
//   - database.go: connection lifecycle, pool settings and checkpoints
//   - database_schema.go: sequences, tables and indexes
//   - migrations.go: versioned migrations recorded in schema_migrations
//   - tx.go: transactions with conflict retry and column helpers
//   - crud_users.go: accounts, roles and admin listings
//   - crud_places.go: curated places and their filters
//   - crud_scraping.go: scraped posts and scraped places
//
// WHERE clauses are assembled with the query subpackage so user input only
// ever reaches DuckDB as bound arguments.
//
// # Tables
//
//	users            accounts with role and staff flags
//	scraped_posts    forum posts keyed by (third_party_type, third_party_id)
//	scraped_places   candidate places extracted from posts
//	places           curated places, hidden until an admin publishes them
//
// Place types are stored as a JSON array of constants, so filtering by type
// matches the quoted constant inside that text.
//
// # Concurrency
//
// DuckDB accepts one writer process. Within the process every method is
// safe for concurrent use; WithTx retries transactions that fail with a
// write-write conflict.
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	places, total, err := db.ListPlaces(ctx, models.PlaceFilter{City: "Bratislava", VisibleOnly: true})
package database
