// Package syncstate persists, per user and per ingest source, which
// external identifiers have already been processed so the scheduler (C10)
// can resume an interrupted ingest run.
package syncstate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

// Store is the Postgres-backed implementation of SyncState persistence.
type Store struct {
	db *sql.DB
}

// New opens the connection pool.
func New(cfg *config.GraphStoreConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open syncstate connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return &Store{db: db}, nil
}

// Migrate creates the sync state tables if they do not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS memory_sync_processed (
			user_id     TEXT NOT NULL,
			source      TEXT NOT NULL,
			source_id   TEXT NOT NULL,
			processed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, source, source_id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate memory_sync_processed: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS memory_sync_cursor (
			user_id           TEXT NOT NULL,
			source            TEXT NOT NULL,
			last_processed_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, source)
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate memory_sync_cursor: %w", err)
	}
	return nil
}

// IsProcessed reports whether sourceID has already been ingested for
// (userID, source).
func (s *Store) IsProcessed(ctx context.Context, userID, source, sourceID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM memory_sync_processed WHERE user_id = $1 AND source = $2 AND source_id = $3)
	`, userID, source, sourceID).Scan(&exists)
	if err != nil {
		return false, &types.ErrStoreConflict{Cause: err}
	}
	return exists, nil
}

// MarkProcessed records sourceID as processed and advances the cursor.
func (s *Store) MarkProcessed(ctx context.Context, userID, source, sourceID string) error {
	now := time.Now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO memory_sync_processed (user_id, source, source_id, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, source, source_id) DO NOTHING
	`, userID, source, sourceID, now); err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO memory_sync_cursor (user_id, source, last_processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, source) DO UPDATE SET last_processed_at = EXCLUDED.last_processed_at
	`, userID, source, now); err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}

	if err := tx.Commit(); err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// ListUsers returns every user id with at least one processed ingest
// entry in the sync cursor table (whether or not that entry produced a
// memory), for the `serve` scheduler loop to iterate when running scheduled
// consolidation across a deployment rather than a single user.
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM memory_sync_cursor ORDER BY user_id`)
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &types.ErrStoreConflict{Cause: err}
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// LastProcessedAt returns the most recent MarkProcessed time for
// (userID, source), or the zero time if nothing has been processed yet.
func (s *Store) LastProcessedAt(ctx context.Context, userID, source string) (time.Time, error) {
	var t time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT last_processed_at FROM memory_sync_cursor WHERE user_id = $1 AND source = $2
	`, userID, source).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, &types.ErrStoreConflict{Cause: err}
	}
	return t, nil
}
