// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// @title Familymap API
// @version 1.0
// @description Directory of family-friendly places with an admin workflow for importing and enriching scraped posts.
// @description
// @description ## Authentication
// @description
// @description Public listings work anonymously. Use `/api/v1/auth/login` to obtain a token pair and send
// @description the access token as `Authorization: Bearer <token>`. Admin routes require the admin role.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {"code": "ERROR_CODE", "message": "Human-readable error message"},
// @description   "metadata": {"timestamp": "2026-05-01T12:00:00Z"}
// @description }
// @description ```
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
//
// @tag.name Core
// @tag.description Health checks
//
// @tag.name Auth
// @tag.description Login, token refresh and logout
//
// @tag.name Users
// @tag.description Registration, profiles and admin role management
//
// @tag.name Places
// @tag.description The public places directory and its admin editing
//
// @tag.name Scraping
// @tag.description Import, review and enrichment of scraped posts (admin only)

package main

// Registers the OpenAPI document served at /swagger/.
import _ "github.com/tomtom215/familymap/docs"
