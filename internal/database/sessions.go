package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reelshelf/internal/types"
)

// CreateSession stores a new session for userID that expires after ttl.
func CreateSession(ctx context.Context, db *sql.DB, userID string, ttl time.Duration) (*types.Session, error) {
	session := &types.Session{
		ID:           uuid.NewString(),
		SessionToken: uuid.NewString(),
		UserID:       userID,
		Expires:      time.Now().UTC().Add(ttl),
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (id, session_token, user_id, expires)
		VALUES (?, ?, ?, ?)
	`, session.ID, session.SessionToken, session.UserID, session.Expires)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSessionAndUser loads an unexpired session together with its user.
func GetSessionAndUser(ctx context.Context, db *sql.DB, sessionToken string) (*types.Session, *types.User, error) {
	var session types.Session
	var user types.User
	err := db.QueryRowContext(ctx, `
		SELECT s.id, s.session_token, s.user_id, s.expires,
		       u.id, u.name, u.email, u.email_verified, u.image, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.session_token = ? AND s.expires > ?
	`, sessionToken, time.Now().UTC()).Scan(
		&session.ID, &session.SessionToken, &session.UserID, &session.Expires,
		&user.ID, &user.Name, &user.Email, &user.EmailVerified, &user.Image, &user.Created, &user.Updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, &user, nil
}

// DeleteSession removes a session; deleting an unknown token is not an error.
func DeleteSession(ctx context.Context, db *sql.DB, sessionToken string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE session_token = ?`, sessionToken); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CreateVerificationToken stores a hashed magic-link token for identifier.
func CreateVerificationToken(ctx context.Context, db *sql.DB, token types.VerificationToken) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO verification_tokens (identifier, token, expires)
		VALUES (?, ?, ?)
	`, token.Identifier, token.TokenHash, token.Expires.UTC())
	if err != nil {
		return fmt.Errorf("failed to create verification token: %w", err)
	}
	return nil
}

// UseVerificationToken deletes and returns the matching token.
// Expired tokens are deleted too but reported as ErrNotFound.
func UseVerificationToken(ctx context.Context, db *sql.DB, identifier, tokenHash string) (*types.VerificationToken, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	token := types.VerificationToken{Identifier: identifier, TokenHash: tokenHash}
	err = tx.QueryRowContext(ctx, `
		SELECT expires FROM verification_tokens WHERE identifier = ? AND token = ?
	`, identifier, tokenHash).Scan(&token.Expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query verification token: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM verification_tokens WHERE identifier = ? AND token = ?
	`, identifier, tokenHash); err != nil {
		return nil, fmt.Errorf("failed to delete verification token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit verification token: %w", err)
	}

	if !token.Expires.After(time.Now()) {
		return nil, ErrNotFound
	}
	return &token, nil
}

// DeleteExpired removes expired sessions and verification tokens.
func DeleteExpired(ctx context.Context, db *sql.DB, now time.Time) (sessions, tokens int64, err error) {
	res, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE expires <= ?`, now.UTC())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	sessions, _ = res.RowsAffected()

	res, err = db.ExecContext(ctx, `DELETE FROM verification_tokens WHERE expires <= ?`, now.UTC())
	if err != nil {
		return sessions, 0, fmt.Errorf("failed to delete expired verification tokens: %w", err)
	}
	tokens, _ = res.RowsAffected()

	return sessions, tokens, nil
}
