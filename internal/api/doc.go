// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

/*
Package api provides the REST API for Familymap.

All endpoints live under /api/v1 and answer with the models.APIResponse
envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}, "metadata": {...}}

Mutation endpoints (login, refresh, logout, registration, role changes)
put a {success, message} result in data on both outcomes.

# Route Groups

	/api/v1/health     liveness and readiness (DB ping)
	/api/v1/auth       info, login, refresh, logout
	/api/v1/users      register, me, lookups; listing and role changes are admin only
	/api/v1/places     public reads; create, update and delete are admin only
	/api/v1/scraping   import, review queue and enrichment; admin only
	/metrics           Prometheus exposition

# Middleware

Applied globally, in order: request ID with access logging, real IP,
panic recovery, compression, CORS, Prometheus metrics, the global rate limit
and bearer token authentication. Login and registration carry an extra
per-IP limit.

Authentication never rejects a request by itself. Handlers and the
auth.RequireAdmin middleware decide what anonymous callers may do.
*/
package api
