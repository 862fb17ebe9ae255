// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

/*
Package auth provides JWT authentication for the Familymap API.

Key Components:

  - TokenService: issues HS256 access/refresh pairs, parses them, refreshes
    and blacklists refresh tokens
  - Blacklist: revoked refresh token JTIs, in memory or in BadgerDB with
    native TTLs
  - PasswordHasher: bcrypt hashing and comparison
  - LockoutManager: refuses logins for a username after repeated failures
  - Service: login, refresh, logout and info used by the HTTP handlers
  - Middleware: Authenticate, RequireAuthenticated and RequireAdmin

Token Lifecycle:

A refresh token is issued on login and stays active until it expires or is
blacklisted by logout. With rotation enabled every refresh returns a new
refresh token; with blacklist-after-rotation the presented token is revoked
at the same time.

Usage Example:

	blacklist, err := auth.NewBlacklist(&cfg.JWT)
	if err != nil {
	    return err
	}
	tokens, err := auth.NewTokenService(&cfg.JWT, blacklist)
	if err != nil {
	    return err
	}
	svc := auth.NewService(db, tokens, auth.NewPasswordHasher(0), nil)

	result, err := svc.Login(ctx, "alice", "secret", "203.0.113.4")

Security:

  - Only HMAC signing methods are accepted when parsing
  - Password hashes never leave the models.User JSON view
  - Usernames and IPs are sanitized by the security logger
*/
package auth
