package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelshelf/internal/types"
)

const userColumns = `id, name, email, email_verified, image, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.EmailVerified, &user.Image, &user.Created, &user.Updated)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user by primary key.
func GetUserByID(ctx context.Context, db *sql.DB, id string) (*types.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetOrCreateUserByEmail finds a user by email or creates one.
// The email is marked verified because the caller just consumed a magic link for it.
func GetOrCreateUserByEmail(ctx context.Context, db *sql.DB, email string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	user, err := scanUser(db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == nil {
		if user.EmailVerified == nil {
			if _, err := db.ExecContext(ctx, `
				UPDATE users SET email_verified = ?, updated_at = ? WHERE id = ?
			`, now, now, user.ID); err != nil {
				return nil, fmt.Errorf("failed to mark email verified: %w", err)
			}
			user.EmailVerified = &now
			user.Updated = now
		}
		return user, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user = &types.User{
		ID:            uuid.NewString(),
		Email:         email,
		EmailVerified: &now,
		Created:       now,
		Updated:       now,
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (id, email, email_verified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, user.ID, user.Email, now, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent sign-in for the same address.
			return GetOrCreateUserByEmail(ctx, db, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// UpdateUserName sets the display name and returns the updated user.
func UpdateUserName(ctx context.Context, db *sql.DB, id, name string) (*types.User, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE users SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update user name: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return GetUserByID(ctx, db, id)
}
