// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package auth

import (
	"context"

	"github.com/tomtom215/familymap/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// RoleFromContext returns the user's role, or RoleAnonymous.
func RoleFromContext(ctx context.Context) models.Role {
	if user := UserFromContext(ctx); user != nil {
		return user.Role
	}
	return models.RoleAnonymous
}
