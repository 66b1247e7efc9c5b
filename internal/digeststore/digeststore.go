// Package digeststore persists per-user, per-date consolidation digests in
// Postgres, keyed by (user, date) with upsert semantics so a re-run on the
// same day is idempotent (spec.md §4.10).
package digeststore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

// Store is the Postgres-backed implementation of Digest persistence.
type Store struct {
	db *sql.DB
}

// New opens the connection pool.
func New(cfg *config.GraphStoreConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open digeststore connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return &Store{db: db}, nil
}

// Migrate creates the digests table if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS consolidation_digests (
			user_id                  TEXT NOT NULL,
			date                     TEXT NOT NULL,
			started_at               TIMESTAMPTZ NOT NULL,
			ended_at                 TIMESTAMPTZ NOT NULL,
			clusters_found           INTEGER NOT NULL,
			anti_clusters_found      INTEGER NOT NULL,
			connections_created      INTEGER NOT NULL,
			connections_strengthened INTEGER NOT NULL,
			implications_created     INTEGER NOT NULL,
			implications_reinforced  INTEGER NOT NULL,
			implications_filtered    INTEGER NOT NULL,
			summary                  TEXT NOT NULL,
			snippets                 JSONB NOT NULL,
			PRIMARY KEY (user_id, date)
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate consolidation_digests: %w", err)
	}
	return nil
}

// Upsert writes d, replacing any digest already recorded for
// (d.UserID, d.Date).
func (s *Store) Upsert(ctx context.Context, d *types.Digest) error {
	snippets, err := json.Marshal(d.Snippets)
	if err != nil {
		return fmt.Errorf("failed to marshal digest snippets: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO consolidation_digests (
			user_id, date, started_at, ended_at,
			clusters_found, anti_clusters_found,
			connections_created, connections_strengthened,
			implications_created, implications_reinforced, implications_filtered,
			summary, snippets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, date) DO UPDATE SET
			started_at = EXCLUDED.started_at,
			ended_at = EXCLUDED.ended_at,
			clusters_found = EXCLUDED.clusters_found,
			anti_clusters_found = EXCLUDED.anti_clusters_found,
			connections_created = EXCLUDED.connections_created,
			connections_strengthened = EXCLUDED.connections_strengthened,
			implications_created = EXCLUDED.implications_created,
			implications_reinforced = EXCLUDED.implications_reinforced,
			implications_filtered = EXCLUDED.implications_filtered,
			summary = EXCLUDED.summary,
			snippets = EXCLUDED.snippets
	`, d.UserID, d.Date, d.StartedAt, d.EndedAt,
		d.ClustersFound, d.AntiClustersFound,
		d.ConnectionsCreated, d.ConnectionsStrengthened,
		d.ImplicationsCreated, d.ImplicationsReinforced, d.ImplicationsFiltered,
		d.Summary, snippets)
	if err != nil {
		return &types.ErrStoreConflict{Cause: err}
	}
	return nil
}

// Get retrieves the digest for (userID, date), or nil if none exists yet.
func (s *Store) Get(ctx context.Context, userID, date string) (*types.Digest, error) {
	var d types.Digest
	var snippets []byte
	d.UserID, d.Date = userID, date
	err := s.db.QueryRowContext(ctx, `
		SELECT started_at, ended_at,
			clusters_found, anti_clusters_found,
			connections_created, connections_strengthened,
			implications_created, implications_reinforced, implications_filtered,
			summary, snippets
		FROM consolidation_digests WHERE user_id = $1 AND date = $2
	`, userID, date).Scan(
		&d.StartedAt, &d.EndedAt,
		&d.ClustersFound, &d.AntiClustersFound,
		&d.ConnectionsCreated, &d.ConnectionsStrengthened,
		&d.ImplicationsCreated, &d.ImplicationsReinforced, &d.ImplicationsFiltered,
		&d.Summary, &snippets,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	if err := json.Unmarshal(snippets, &d.Snippets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal digest snippets: %w", err)
	}
	return &d, nil
}
