// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/familymap/internal/auth"
	"github.com/tomtom215/familymap/internal/config"
	"github.com/tomtom215/familymap/internal/database"
	"github.com/tomtom215/familymap/internal/models"
	"github.com/tomtom215/familymap/internal/validation"
)

var testDBSemaphore = make(chan struct{}, 1)

func setupTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewService(db, auth.NewPasswordHasher(bcrypt.MinCost), config.DefaultPasswordPolicy()), db
}

func validRegistration(username, email string) *models.RegisterRequest {
	return &models.RegisterRequest{
		Username:        username,
		Email:           email,
		Password:        "anything-goes-here",
		FirstName:       "Jana",
		Bio:             "Two kids, one dog",
		PhoneNumber:     "+421900123456",
		DefaultLocation: "Bratislava",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, db := setupTestService(t)

	result, err := svc.Register(ctx, validRegistration("jana", "jana@example.com"))
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !result.Success || result.Message != "User registered successfully" {
		t.Fatalf("Register() = %+v", result)
	}
	if result.User.ID == 0 || result.User.Role != models.RoleFreemiumUser || !result.User.IsActive {
		t.Errorf("unexpected user: %+v", result.User)
	}

	stored, _ := db.GetUserByUsername(ctx, "jana")
	if stored == nil || stored.DefaultLocation != "Bratislava" {
		t.Fatalf("stored user = %+v", stored)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("anything-goes-here")) != nil {
		t.Error("password should be stored as a bcrypt hash")
	}

	result, _ = svc.Register(ctx, validRegistration("jana", "other@example.com"))
	if result.Success || result.Message != "Username already exists" {
		t.Errorf("duplicate username = %+v", result)
	}

	result, _ = svc.Register(ctx, validRegistration("peter", "jana@example.com"))
	if result.Success || result.Message != "Email already exists" {
		t.Errorf("duplicate email = %+v", result)
	}
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	tests := []struct {
		name   string
		mutate func(r *models.RegisterRequest)
	}{
		{"missing username", func(r *models.RegisterRequest) { r.Username = "" }},
		{"bad email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"bio too long", func(r *models.RegisterRequest) { r.Bio = strings.Repeat("a", 501) }},
		{"phone too long", func(r *models.RegisterRequest) { r.PhoneNumber = strings.Repeat("1", 16) }},
		{"location too long", func(r *models.RegisterRequest) { r.DefaultLocation = strings.Repeat("x", 256) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration("valid", "valid@example.com")
			tt.mutate(req)

			_, err := svc.Register(ctx, req)
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want RequestValidationError", err)
			}
		})
	}
}

func TestMeAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	reg, _ := svc.Register(ctx, validRegistration("jana", "jana@example.com"))

	if svc.Me(ctx) != nil {
		t.Error("Me() should be nil for anonymous requests")
	}
	if user, _ := svc.Get(ctx, reg.User.ID); user != nil {
		t.Error("Get() should be nil for anonymous requests")
	}

	authed := auth.ContextWithUser(ctx, reg.User)
	if me := svc.Me(authed); me == nil || me.ID != reg.User.ID {
		t.Errorf("Me() = %+v", me)
	}
	if user, err := svc.Get(authed, reg.User.ID); err != nil || user == nil || user.Username != "jana" {
		t.Errorf("Get() = %+v, %v", user, err)
	}
	if user, err := svc.Get(authed, 99999); err != nil || user != nil {
		t.Errorf("Get(missing) = %+v, %v", user, err)
	}
}

func TestCreateAdminUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	req := &models.CreateAdminRequest{
		Username: "boss",
		Email:    "boss@example.com",
		Password: "Family-Map-2026!",
	}
	result, err := svc.CreateAdminUser(ctx, req)
	if err != nil {
		t.Fatalf("CreateAdminUser() error = %v", err)
	}
	if !result.Success || result.Message != "Admin user created successfully" {
		t.Fatalf("CreateAdminUser() = %+v", result)
	}
	if u := result.User; u.Role != models.RoleAdmin || !u.IsStaff || !u.IsSuperuser {
		t.Errorf("admin flags not set: %+v", u)
	}

	result, _ = svc.CreateAdminUser(ctx, req)
	if result.Success || result.Message != "User with username 'boss' already exists" {
		t.Errorf("duplicate username = %+v", result)
	}

	req2 := *req
	req2.Username = "boss2"
	result, _ = svc.CreateAdminUser(ctx, &req2)
	if result.Success || result.Message != "User with email 'boss@example.com' already exists" {
		t.Errorf("duplicate email = %+v", result)
	}

	admins, err := svc.ListAdmins(ctx)
	if err != nil || len(admins) != 1 || admins[0].Username != "boss" {
		t.Errorf("ListAdmins() = %v, %v", admins, err)
	}
}

func TestCreateAdminUser_PasswordPolicy(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	for _, password := range []string{"short", "12345678901", "password", "bossbossboss"} {
		_, err := svc.CreateAdminUser(ctx, &models.CreateAdminRequest{
			Username: "bossbossboss",
			Email:    "boss@example.com",
			Password: password,
		})
		var perr *PasswordPolicyError
		if !errors.As(err, &perr) {
			t.Errorf("password %q: error = %v, want PasswordPolicyError", password, err)
			continue
		}
		if !strings.HasPrefix(perr.Error(), "Password validation failed: ") {
			t.Errorf("message = %q", perr.Error())
		}
	}
}

func TestPromoteAndDemote(t *testing.T) {
	ctx := context.Background()
	svc, db := setupTestService(t)

	reg, _ := svc.Register(ctx, validRegistration("jana", "jana@example.com"))

	result, err := svc.PromoteToAdmin(ctx, "jana")
	if err != nil {
		t.Fatalf("PromoteToAdmin() error = %v", err)
	}
	if !result.Success || result.Message != "User 'jana' has been promoted to admin" {
		t.Errorf("PromoteToAdmin() = %+v", result)
	}

	// Numeric identifiers are IDs.
	result, _ = svc.PromoteToAdmin(ctx, reg.User.IDString())
	if result.Success || result.Message != "User 'jana' is already an admin" {
		t.Errorf("second PromoteToAdmin() = %+v", result)
	}

	stored, _ := db.GetUserByID(ctx, reg.User.ID)
	if !IsAdmin(stored) {
		t.Error("stored user should be admin")
	}

	result, _ = svc.DemoteFromAdmin(ctx, "jana")
	if !result.Success || result.Message != "User 'jana' has been demoted from admin" {
		t.Errorf("DemoteFromAdmin() = %+v", result)
	}
	result, _ = svc.DemoteFromAdmin(ctx, "jana")
	if result.Success || result.Message != "User 'jana' is not an admin" {
		t.Errorf("second DemoteFromAdmin() = %+v", result)
	}

	result, _ = svc.PromoteToAdmin(ctx, "nobody")
	if result.Success || result.Message != "User not found with identifier: nobody" {
		t.Errorf("PromoteToAdmin(nobody) = %+v", result)
	}
	result, _ = svc.DemoteFromAdmin(ctx, "424242")
	if result.Success || result.Message != "User not found with identifier: 424242" {
		t.Errorf("DemoteFromAdmin(424242) = %+v", result)
	}

	if IsAdmin(nil) {
		t.Error("nil user is not an admin")
	}
}

func TestPromote_SignedIdentifierIsUsername(t *testing.T) {
	ctx := context.Background()
	svc, db := setupTestService(t)

	jana, _ := svc.Register(ctx, validRegistration("jana", "jana@example.com"))
	signed := "+" + jana.User.IDString()
	if reg, _ := svc.Register(ctx, validRegistration(signed, "plus@example.com")); !reg.Success {
		t.Fatalf("Register(%q) = %+v", signed, reg)
	}

	result, err := svc.PromoteToAdmin(ctx, signed)
	if err != nil {
		t.Fatalf("PromoteToAdmin() error = %v", err)
	}
	if !result.Success || result.User.Username != signed {
		t.Errorf("PromoteToAdmin(%q) = %+v, want the user named %q", signed, result, signed)
	}
	stored, err := db.GetUserByID(ctx, jana.User.ID)
	if err != nil || stored == nil {
		t.Fatalf("GetUserByID() = %v, %v", stored, err)
	}
	if IsAdmin(stored) {
		t.Error("user with the numeric ID must not be promoted")
	}

	result, _ = svc.DemoteFromAdmin(ctx, "-"+jana.User.IDString())
	if want := "User not found with identifier: -" + jana.User.IDString(); result.Success || result.Message != want {
		t.Errorf("DemoteFromAdmin() = %+v, want %q", result, want)
	}
}

func TestIsDigits(t *testing.T) {
	tests := map[string]bool{
		"":     false,
		"5":    true,
		"0042": true,
		"+5":   false,
		"-5":   false,
		"5a":   false,
		"٣":    false,
	}
	for in, want := range tests {
		if got := isDigits(in); got != want {
			t.Errorf("isDigits(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupTestService(t)

	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.Register(ctx, validRegistration(name, name+"@example.com")); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	users, total, err := svc.List(ctx, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 || total != 3 {
		t.Errorf("List() = %d users, total %d", len(users), total)
	}
}
