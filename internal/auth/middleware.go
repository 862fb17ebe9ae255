// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
)

// Error messages for rejected requests.
const (
	MsgNotAuthenticated = "User is not authenticated"
	MsgNotAuthorized    = "User is not authorized to access this resource"
)

// Authorizer decides whether a role may perform act on obj.
type Authorizer interface {
	Enforce(role, obj, act string) (bool, error)
}

// UserResolver turns an access token into an active user.
type UserResolver interface {
	UserFromAccessToken(ctx context.Context, token string) (*models.User, error)
}

// Authenticate resolves a bearer access token to a user and stores it in
// the request context. Requests without a usable token continue anonymously.
func Authenticate(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.UserFromAccessToken(r.Context(), token)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to resolve access token")
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
		})
	}
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", MsgNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anonymous requests with 401. A non-admin user gets
// 403 even when the authorizer's policy would allow the request.
func RequireAdmin(authorizer Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", MsgNotAuthenticated)
				return
			}

			allowed, err := authorizer.Enforce(string(user.Role), r.URL.Path, r.Method)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).
					Str("role", string(user.Role)).
					Str("path", r.URL.Path).
					Msg("Authorization check failed")
				writeAuthError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed")
				return
			}
			// Every route behind RequireAdmin is admin-only, so the role is
			// checked as well as the policy.
			if !allowed || !user.IsAdmin() {
				logging.Ctx(r.Context()).Warn().
					Int64("user_id", user.ID).
					Str("role", string(user.Role)).
					Str("path", r.URL.Path).
					Msg("Access denied")
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", MsgNotAuthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth error response")
	}
}
