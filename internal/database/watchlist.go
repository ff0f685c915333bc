package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reelshelf/internal/types"
)

const watchlistColumns = `id, user_id, content_id, media_type, status,
	last_watched_season, last_watched_episode, created_at, updated_at`

func scanWatchlistItem(row interface{ Scan(...any) error }) (*types.WatchlistItem, error) {
	var item types.WatchlistItem
	err := row.Scan(&item.ID, &item.UserID, &item.ContentID, &item.MediaType, &item.Status,
		&item.LastWatchedSeason, &item.LastWatchedEpisode, &item.Created, &item.Updated)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListWatchlist returns a user's watchlist, most recently updated first.
func ListWatchlist(ctx context.Context, db *sql.DB, userID string) ([]types.WatchlistItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+watchlistColumns+`
		FROM watchlist
		WHERE user_id = ?
		ORDER BY updated_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	items := []types.WatchlistItem{}
	for rows.Next() {
		item, err := scanWatchlistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// FindWatchlistItem looks up the (userID, contentID, mediaType) entry.
func FindWatchlistItem(ctx context.Context, db *sql.DB, userID string, contentID int, mediaType string) (*types.WatchlistItem, error) {
	item, err := scanWatchlistItem(db.QueryRowContext(ctx, `
		SELECT `+watchlistColumns+`
		FROM watchlist
		WHERE user_id = ? AND content_id = ? AND media_type = ?
	`, userID, contentID, mediaType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist item: %w", err)
	}
	return item, nil
}

// GetWatchlistItem loads an item by id, scoped to its owner.
func GetWatchlistItem(ctx context.Context, db *sql.DB, userID string, id int64) (*types.WatchlistItem, error) {
	item, err := scanWatchlistItem(db.QueryRowContext(ctx, `
		SELECT `+watchlistColumns+`
		FROM watchlist
		WHERE id = ? AND user_id = ?
	`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist item: %w", err)
	}
	return item, nil
}

// InsertWatchlistItem adds an entry; ErrDuplicateWatchlistItem if the tuple exists.
func InsertWatchlistItem(ctx context.Context, db *sql.DB, item *types.WatchlistItem) (*types.WatchlistItem, error) {
	now := time.Now().UTC()
	if item.Status == "" {
		item.Status = types.WatchStatusWantToWatch
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, content_id, media_type, status,
			last_watched_season, last_watched_episode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, item.UserID, item.ContentID, item.MediaType, item.Status,
		item.LastWatchedSeason, item.LastWatchedEpisode, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWatchlistItem
		}
		return nil, fmt.Errorf("failed to insert watchlist item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist item ID: %w", err)
	}

	created := *item
	created.ID = id
	created.Created = now
	created.Updated = now
	return &created, nil
}

// WatchlistUpdate carries the optional fields of a progress update.
type WatchlistUpdate struct {
	Status             *string
	LastWatchedSeason  *int
	LastWatchedEpisode *int
}

// UpdateWatchlistItem applies the non-nil fields of update to an owned item.
func UpdateWatchlistItem(ctx context.Context, db *sql.DB, userID string, id int64, update WatchlistUpdate) (*types.WatchlistItem, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE watchlist
		SET status = COALESCE(?, status),
		    last_watched_season = COALESCE(?, last_watched_season),
		    last_watched_episode = COALESCE(?, last_watched_episode),
		    updated_at = ?
		WHERE id = ? AND user_id = ?
	`, update.Status, update.LastWatchedSeason, update.LastWatchedEpisode, time.Now().UTC(), id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update watchlist item: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return GetWatchlistItem(ctx, db, userID, id)
}

// DeleteWatchlistItem removes an owned item.
func DeleteWatchlistItem(ctx context.Context, db *sql.DB, userID string, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM watchlist WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete watchlist item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
