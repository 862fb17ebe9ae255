// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package authz provides role-based authorization using Casbin.
//
// The model and policy are compiled into the binary. Objects are API paths
// matched with keyMatch, actions are read, write and delete, and HTTP
// methods are mapped onto actions by ActionForMethod.
//
// # Roles
//
//	admin          -> every /api/v1 path
//	freemium_user  -> /api/v1/users/me, plus everything anonymous may do
//	anonymous      -> health, auth, place reads and registration
//
// # Usage Example
//
//	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
//	if err != nil {
//	    return err
//	}
//	defer enforcer.Close()
//
//	allowed, err := enforcer.Enforce("freemium_user", "/api/v1/users/me", http.MethodGet)
//
// The enforcer satisfies auth.Authorizer and is used by auth.RequireAdmin.
package authz
