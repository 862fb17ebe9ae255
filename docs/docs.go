// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package docs registers the OpenAPI description served at /swagger/.
//
// The layout follows swag init output. Keep docTemplate in step with the
// handler annotations in internal/api when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health/live": {
            "get": {
                "description": "Reports that the process is serving requests.",
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Liveness check",
                "responses": {
                    "200": {"description": "Alive", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "description": "Pings the database and answers 503 until it responds.",
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "Database unreachable", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/info": {
            "get": {
                "description": "Token lifetimes and rotation settings.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Token service info",
                "responses": {
                    "200": {"description": "Token settings", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "description": "Exchanges a username and password for an access and refresh token pair.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Malformed body", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "429": {"description": "Too many attempts", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "description": "Issues a new access token. With rotation on, a new refresh token is issued and the old one is blacklisted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Refresh tokens",
                "parameters": [
                    {"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Invalid, expired or blacklisted token", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Blacklists the refresh token.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log out",
                "parameters": [
                    {"description": "Refresh token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "Logged out", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid token", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/register": {
            "post": {
                "description": "Creates a regular account.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Register",
                "parameters": [
                    {"description": "Account", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Username or email taken", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the current user, or null data for anonymous requests.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "User or null", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns a user by ID.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Get user",
                "parameters": [
                    {"type": "integer", "description": "User ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "User", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Pages through all users. Admin only.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List users",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Page size (max 200)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Page of users", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/admins": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists every administrator. Admin only.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "List admins",
                "responses": {
                    "200": {"description": "Admins", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/{id}/promote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Grants the admin role. The identifier is a numeric ID or a username. Admin only.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Promote to admin",
                "parameters": [
                    {"type": "string", "description": "User ID or username", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Promoted", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Already an admin", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/users/{id}/demote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Revokes the admin role. The last admin cannot be demoted. Admin only.",
                "produces": ["application/json"],
                "tags": ["Users"],
                "summary": "Demote admin",
                "parameters": [
                    {"type": "string", "description": "User ID or username", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Demoted", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "User not found", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Not an admin or last admin", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/places/": {
            "get": {
                "description": "Lists visible places. Admins also see hidden places.",
                "produces": ["application/json"],
                "tags": ["Places"],
                "summary": "List places",
                "parameters": [
                    {"type": "string", "description": "Place type", "name": "type", "in": "query"},
                    {"type": "string", "description": "City (case-insensitive)", "name": "city", "in": "query"},
                    {"type": "string", "description": "ISO 3166-1 alpha-2 codes, comma separated", "name": "country_code", "in": "query"},
                    {"type": "integer", "description": "Child age 0-18", "name": "age", "in": "query"},
                    {"enum": ["WINTER", "SUMMER", "ALL"], "type": "string", "description": "Season", "name": "season", "in": "query"},
                    {"type": "boolean", "description": "Free admission only", "name": "admission_free", "in": "query"},
                    {"type": "string", "description": "Text search over name, description and city", "name": "search", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Page of places", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Adds a place. Admin only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Places"],
                "summary": "Create place",
                "parameters": [
                    {"description": "Place", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PlaceInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Not an admin", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/places/{id}": {
            "get": {
                "description": "Returns one place. Hidden places are only visible to admins.",
                "produces": ["application/json"],
                "tags": ["Places"],
                "summary": "Get place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Place", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Replaces the editable fields of a place. Admin only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Places"],
                "summary": "Update place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true},
                    {"description": "Place", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PlaceInput"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Removes a place. Admin only.",
                "produces": ["application/json"],
                "tags": ["Places"],
                "summary": "Delete place",
                "parameters": [
                    {"type": "integer", "description": "Place ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/scraping/import": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Loads raw_dir/type/name.jsonl into scraped posts and places. Admin only.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Scraping"],
                "summary": "Import scraped file",
                "parameters": [
                    {"description": "File selector", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "Import statistics", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid selector", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "File not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/scraping/review/next": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns the next unprocessed scraped place with its post, or null data. Admin only.",
                "produces": ["application/json"],
                "tags": ["Scraping"],
                "summary": "Next review item",
                "responses": {
                    "200": {"description": "Review item or null", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/scraping/places": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Pages through scraped places. Admin only.",
                "produces": ["application/json"],
                "tags": ["Scraping"],
                "summary": "List scraped places",
                "parameters": [
                    {"type": "boolean", "description": "Filter by processed flag", "name": "processed", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size (max 500)", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Page of scraped places", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/scraping/places/{id}/processed": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Flags a scraped place as reviewed. Admin only.",
                "produces": ["application/json"],
                "tags": ["Scraping"],
                "summary": "Mark processed",
                "parameters": [
                    {"type": "integer", "description": "Scraped place ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Marked", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/scraping/places/{id}/enrich": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Turns a scraped place into a hidden place using the LLM and the geocoder. Admin only.",
                "produces": ["application/json"],
                "tags": ["Scraping"],
                "summary": "Enrich scraped place",
                "parameters": [
                    {"type": "integer", "description": "Scraped place ID", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Queue the job and return 202", "name": "async", "in": "query"},
                    {"type": "string", "description": "City hint for the model", "name": "city", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Existing place matched", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "201": {"description": "Place created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "202": {"description": "Job queued", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "404": {"description": "Scraped place not found", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "502": {"description": "Enrichment failed", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "Enrichment or queue disabled", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object", "additionalProperties": true},
                "message": {"type": "string"}
            }
        },
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/models.APIError"},
                "metadata": {"$ref": "#/definitions/models.Metadata"},
                "status": {"type": "string"}
            }
        },
        "models.Metadata": {
            "type": "object",
            "properties": {
                "query_time_ms": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "models.RefreshRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "username"],
            "properties": {
                "bio": {"type": "string", "maxLength": 500},
                "default_location": {"type": "string", "maxLength": 255},
                "email": {"type": "string", "maxLength": 254},
                "first_name": {"type": "string", "maxLength": 150},
                "last_name": {"type": "string", "maxLength": 150},
                "password": {"type": "string"},
                "phone_number": {"type": "string", "maxLength": 15},
                "username": {"type": "string", "maxLength": 150}
            }
        },
        "models.PlaceInput": {
            "type": "object",
            "required": ["city", "country_code", "name"],
            "properties": {
                "city": {"type": "string", "maxLength": 255},
                "country_code": {"type": "string"},
                "description": {"type": "string"},
                "is_admission_free": {"type": "boolean"},
                "is_visible": {"type": "boolean"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "max_age": {"type": "integer", "maximum": 18, "minimum": 0},
                "min_age": {"type": "integer", "maximum": 18, "minimum": 0},
                "name": {"type": "string", "maxLength": 255},
                "note": {"type": "string"},
                "season": {"type": "string", "enum": ["WINTER", "SUMMER", "ALL"]},
                "street": {"type": "string", "maxLength": 255},
                "types": {"type": "array", "items": {"type": "string"}},
                "website": {"type": "string", "maxLength": 500},
                "zip_code": {"type": "string", "maxLength": 20}
            }
        },
        "models.ImportRequest": {
            "type": "object",
            "required": ["name", "type"],
            "properties": {
                "name": {"type": "string", "maxLength": 128},
                "type": {"type": "string", "maxLength": 64}
            }
        }
    },
    "tags": [
        {"description": "Health checks", "name": "Core"},
        {"description": "Login, token refresh and logout", "name": "Auth"},
        {"description": "Registration, profiles and admin role management", "name": "Users"},
        {"description": "The public places directory and its admin editing", "name": "Places"},
        {"description": "Import, review and enrichment of scraped posts (admin only)", "name": "Scraping"}
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Familymap API",
	Description:      "Directory of family-friendly places with an admin workflow for importing and enriching scraped posts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
