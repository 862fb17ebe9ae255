// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package models

import (
	"strconv"
	"time"
)

// Role is the account role stored on a user.
type Role string

const (
	// RoleAdmin can manage places, users and the scraping pipeline.
	RoleAdmin Role = "admin"
	// RoleFreemiumUser is the default role for registered users.
	RoleFreemiumUser Role = "freemium_user"
	// RoleAnonymous is used for authorization of unauthenticated requests.
	// It is never stored.
	RoleAnonymous Role = "anonymous"
)

// Valid reports whether r can be stored on a user.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleFreemiumUser
}

// Field limits for user profile data.
const (
	MaxUsernameLength        = 150
	MaxEmailLength           = 254
	MaxNameLength            = 150
	MaxBioLength             = 500
	MaxPhoneNumberLength     = 15
	MaxDefaultLocationLength = 255
)

// User is an account. PasswordHash is never serialized.
type User struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Bio             string     `json:"bio"`
	PhoneNumber     string     `json:"phone_number"`
	DefaultLocation string     `json:"default_location"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"is_active"`
	IsStaff         bool       `json:"is_staff"`
	IsSuperuser     bool       `json:"is_superuser"`
	DateJoined      time.Time  `json:"date_joined"`
	LastLogin       *time.Time `json:"last_login,omitempty"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IDString returns the ID formatted for logs and JWT subjects.
func (u *User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// PublicUser is the trimmed view returned with auth results.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the trimmed view of u.
func (u *User) Public() *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// RegisterRequest is the body of POST /users/register.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Bio             string `json:"bio" validate:"max=500"`
	PhoneNumber     string `json:"phone_number" validate:"max=15"`
	DefaultLocation string `json:"default_location" validate:"max=255"`
}

// CreateAdminRequest is the input for creating an admin account.
type CreateAdminRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// UserResult is the outcome of a user mutation.
type UserResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}
