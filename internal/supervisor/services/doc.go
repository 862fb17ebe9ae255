// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

/*
Package services adapts Familymap components to suture.Service.

Each service blocks in Serve until its context is canceled. The return value
tells the supervisor what to do:

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted with backoff
	ctx.Err()   -> shutdown requested

Available services:

  - HTTPServerService runs the API server and drains connections on shutdown.
  - CleanupService periodically purges expired token blacklist entries and
    stale login lockouts.

The enrichment worker in internal/events implements suture.Service itself
and is added to the messaging layer directly.
*/
package services
