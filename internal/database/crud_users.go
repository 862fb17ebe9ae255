// Familymap - Family-Friendly Places Directory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/familymap

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/familymap/internal/metrics"
	"github.com/tomtom215/familymap/internal/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, bio, phone_number,
	default_location, role, is_active, is_staff, is_superuser, date_joined, last_login`

// CreateUser inserts a user and sets its ID and DateJoined.
// Returns ErrDuplicate if the username or email is taken.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	if user.Role == "" {
		user.Role = models.RoleFreemiumUser
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = db.now()
	}

	query := `INSERT INTO users (username, email, password_hash, first_name, last_name, bio,
			phone_number, default_location, role, is_active, is_staff, is_superuser, date_joined)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`

	err := db.conn.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Bio,
		user.PhoneNumber, user.DefaultLocation, string(user.Role), user.IsActive, user.IsStaff,
		user.IsSuperuser, user.DateJoined,
	).Scan(&user.ID)
	metrics.RecordDBQuery("INSERT", "users", time.Since(start), err)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return db.getUser(ctx, "id = ?", id)
}

// GetUserByUsername returns nil, nil when the user does not exist.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.getUser(ctx, "username = ?", username)
}

// GetUserByEmail returns nil, nil when the user does not exist.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "email = ?", email)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	user, err := scanUser(row)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UserExistsByUsername reports whether a user with the username exists.
func (db *DB) UserExistsByUsername(ctx context.Context, username string) (bool, error) {
	return db.userExists(ctx, "username = ?", username)
}

// UserExistsByEmail reports whether a user with the email exists.
func (db *DB) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	return db.userExists(ctx, "email = ?", email)
}

func (db *DB) userExists(ctx context.Context, where string, arg any) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+where, arg).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// UpdateUserRole sets the role and the staff and superuser flags together.
func (db *DB) UpdateUserRole(ctx context.Context, id int64, role models.Role, isStaff, isSuperuser bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, is_staff = ?, is_superuser = ? WHERE id = ?`,
		string(role), isStaff, isSuperuser, id)
	metrics.RecordDBQuery("UPDATE", "users", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	return checkAffected(res)
}

// UpdateLastLogin stamps the user's last successful login.
func (db *DB) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return checkAffected(res)
}

// SetUserActive enables or disables an account.
func (db *DB) SetUserActive(ctx context.Context, id int64, active bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return checkAffected(res)
}

// ListUsers returns users ordered by ID.
func (db *DB) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	return db.listUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
}

// ListUsersByRole returns users with the role ordered by username.
func (db *DB) ListUsersByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	return db.listUsers(ctx, "SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY username", string(role))
}

// CountUsers returns the number of users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (db *DB) listUsers(ctx context.Context, query string, args ...any) ([]*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("SELECT", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Bio, &u.PhoneNumber, &u.DefaultLocation, &role, &u.IsActive, &u.IsStaff, &u.IsSuperuser,
		&u.DateJoined, &lastLogin)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
