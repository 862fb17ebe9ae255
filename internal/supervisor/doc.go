// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package supervisor runs Familymap's long-lived goroutines under a suture
// v4 supervision tree. Services that return an error or panic are restarted
// with backoff; services in other layers are unaffected.
//
// Usage:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
//	tree.AddDataService(services.NewCleanupService(blacklist, lockout, time.Hour))
//	tree.AddMessagingService(worker)
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
//	errCh := tree.ServeBackground(ctx)
//
// After ctx is canceled, LogUnstopped reports services that did not stop
// within the shutdown timeout.
package supervisor
