// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

// Package users implements registration, profile lookup and admin role
// management on top of the database layer.
package users

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/logging"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/validation"
)

// Store is the subset of the database used by the service.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExistsByUsername(ctx context.Context, username string) (bool, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUserRole(ctx context.Context, id int64, role models.Role, isStaff, isSuperuser bool) error
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Hasher hashes new passwords.
type Hasher interface {
	Hash(password string) (string, error)
}

// Service manages user accounts.
type Service struct {
	store    Store
	hasher   Hasher
	policy   config.PasswordPolicy
	security *logging.SecurityLogger
}

// NewService creates a user service.
func NewService(store Store, hasher Hasher, policy config.PasswordPolicy) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		policy:   policy,
		security: logging.NewSecurityLogger(),
	}
}

// Register creates a regular account. Invalid input is returned as a
// *validation.RequestValidationError; every other outcome is in the result.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserResult, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	exists, err := s.store.UserExistsByUsername(ctx, req.Username)
	if err != nil {
		return s.registrationFailed(req, err), nil
	}
	if exists {
		s.security.LogRegistration(req.Username, req.Email, false, "username exists")
		return &models.UserResult{Message: "Username already exists"}, nil
	}

	exists, err = s.store.UserExistsByEmail(ctx, req.Email)
	if err != nil {
		return s.registrationFailed(req, err), nil
	}
	if exists {
		s.security.LogRegistration(req.Username, req.Email, false, "email exists")
		return &models.UserResult{Message: "Email already exists"}, nil
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return s.registrationFailed(req, err), nil
	}

	user := &models.User{
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Bio:             req.Bio,
		PhoneNumber:     req.PhoneNumber,
		DefaultLocation: req.DefaultLocation,
		Role:            models.RoleFreemiumUser,
		IsActive:        true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return s.registrationFailed(req, err), nil
	}

	s.security.LogRegistration(user.Username, user.Email, true, "")
	return &models.UserResult{
		Success: true,
		Message: "User registered successfully",
		User:    user,
	}, nil
}

func (s *Service) registrationFailed(req *models.RegisterRequest, err error) *models.UserResult {
	logging.Error().Err(err).Str("username", logging.SanitizeUsername(req.Username)).Msg("Registration failed")
	s.security.LogRegistration(req.Username, req.Email, false, err.Error())
	return &models.UserResult{Message: fmt.Sprintf("Registration failed: %s", err)}
}

// Me returns the authenticated user, or nil for anonymous requests.
func (s *Service) Me(ctx context.Context) *models.User {
	return auth.UserFromContext(ctx)
}

// Get returns a user by ID. It returns nil for anonymous requests and for
// unknown IDs.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	if auth.UserFromContext(ctx) == nil {
		return nil, nil
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// List returns a page of users and the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.User, int, error) {
	users, err := s.store.ListUsers(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CreateAdminUser creates an account with the admin role and staff flags.
// The password must satisfy the password policy.
func (s *Service) CreateAdminUser(ctx context.Context, req *models.CreateAdminRequest) (*models.UserResult, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if err := s.policy.ValidateWithError(req.Password, req.Username, req.Email, req.FirstName, req.LastName); err != nil {
		return nil, &PasswordPolicyError{Reason: err.Error()}
	}

	exists, err := s.store.UserExistsByUsername(ctx, req.Username)
	if err != nil {
		return adminFailed(err), nil
	}
	if exists {
		return &models.UserResult{Message: fmt.Sprintf("User with username '%s' already exists", req.Username)}, nil
	}

	exists, err = s.store.UserExistsByEmail(ctx, req.Email)
	if err != nil {
		return adminFailed(err), nil
	}
	if exists {
		return &models.UserResult{Message: fmt.Sprintf("User with email '%s' already exists", req.Email)}, nil
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return adminFailed(err), nil
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return adminFailed(err), nil
	}

	s.security.LogAdminCreated(user.IDString(), user.Username)
	return &models.UserResult{
		Success: true,
		Message: "Admin user created successfully",
		User:    user,
	}, nil
}

func adminFailed(err error) *models.UserResult {
	logging.Error().Err(err).Msg("Failed to create admin user")
	return &models.UserResult{Message: fmt.Sprintf("Failed to create admin user: %s", err)}
}

// PasswordPolicyError reports a password rejected by the policy.
type PasswordPolicyError struct {
	Reason string
}

func (e *PasswordPolicyError) Error() string {
	return "Password validation failed: " + e.Reason
}

// findByIdentifier looks the user up by ID when identifier is all ASCII
// digits, otherwise by username. "+5" and "-5" are usernames.
func (s *Service) findByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	if isDigits(identifier) {
		if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
			return s.store.GetUserByID(ctx, id)
		}
	}
	return s.store.GetUserByUsername(ctx, identifier)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// PromoteToAdmin gives the admin role to an existing user.
func (s *Service) PromoteToAdmin(ctx context.Context, identifier string) (*models.UserResult, error) {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &models.UserResult{Message: fmt.Sprintf("User not found with identifier: %s", identifier)}, nil
	}
	if user.IsAdmin() {
		return &models.UserResult{
			Message: fmt.Sprintf("User '%s' is already an admin", user.Username),
			User:    user,
		}, nil
	}

	if err := s.store.UpdateUserRole(ctx, user.ID, models.RoleAdmin, user.IsStaff, user.IsSuperuser); err != nil {
		return &models.UserResult{Message: fmt.Sprintf("Failed to promote user to admin: %s", err)}, nil
	}

	s.security.LogRoleChange(user.IDString(), user.Username, string(user.Role), string(models.RoleAdmin))
	user.Role = models.RoleAdmin
	return &models.UserResult{
		Success: true,
		Message: fmt.Sprintf("User '%s' has been promoted to admin", user.Username),
		User:    user,
	}, nil
}

// DemoteFromAdmin returns an admin to the freemium_user role and clears
// the staff flags.
func (s *Service) DemoteFromAdmin(ctx context.Context, identifier string) (*models.UserResult, error) {
	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return &models.UserResult{Message: fmt.Sprintf("User not found with identifier: %s", identifier)}, nil
	}
	if !user.IsAdmin() {
		return &models.UserResult{
			Message: fmt.Sprintf("User '%s' is not an admin", user.Username),
			User:    user,
		}, nil
	}

	if err := s.store.UpdateUserRole(ctx, user.ID, models.RoleFreemiumUser, false, false); err != nil {
		return &models.UserResult{Message: fmt.Sprintf("Failed to demote user from admin: %s", err)}, nil
	}

	s.security.LogRoleChange(user.IDString(), user.Username, string(user.Role), string(models.RoleFreemiumUser))
	user.Role = models.RoleFreemiumUser
	user.IsStaff = false
	user.IsSuperuser = false
	return &models.UserResult{
		Success: true,
		Message: fmt.Sprintf("User '%s' has been demoted from admin", user.Username),
		User:    user,
	}, nil
}

// ListAdmins returns all users with the admin role, ordered by username.
func (s *Service) ListAdmins(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsersByRole(ctx, models.RoleAdmin)
}

// IsAdmin reports whether user is an admin. Nil users are not.
func IsAdmin(user *models.User) bool {
	return user.IsAdmin()
}

var _ Store = (*database.DB)(nil)
