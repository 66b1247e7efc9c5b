// Package graphstore persists the undirected, typed connections between
// memories (C6) in Postgres. Rows are keyed by the normalized memory pair
// so each unordered edge has at most one row.
package graphstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/icyhot/recall/internal/config"
	"github.com/icyhot/recall/internal/types"
)

// Store is the Postgres-backed implementation of C6.
type Store struct {
	db *sql.DB
}

// New opens the connection pool. Callers should call Migrate before use
// if cfg.MigrateOnStart-style setup is desired.
func New(cfg *config.GraphStoreConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open graphstore connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	return &Store{db: db}, nil
}

// Migrate creates the connections table if it does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS memory_connections (
			user_id             TEXT NOT NULL,
			memory_a_id         TEXT NOT NULL,
			memory_b_id         TEXT NOT NULL,
			connection_type     TEXT NOT NULL,
			weight              DOUBLE PRECISION NOT NULL,
			reason              TEXT NOT NULL,
			created_at          TIMESTAMPTZ NOT NULL,
			last_coactivated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (user_id, memory_a_id, memory_b_id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to migrate memory_connections: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS memory_connections_a_idx ON memory_connections (user_id, memory_a_id);
		CREATE INDEX IF NOT EXISTS memory_connections_b_idx ON memory_connections (user_id, memory_b_id)`)
	if err != nil {
		return fmt.Errorf("failed to create memory_connections indexes: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertConnection normalizes the pair, increments weight toward 1 if the
// row already exists, else inserts a new row at weight 0.5
// (spec.md §4.6). Returns whether the row already existed.
func (s *Store) UpsertConnection(ctx context.Context, userID, aID, bID string, connType types.ConnectionType, reason string) (existed bool, err error) {
	if err := types.Assert(aID != bID, "connection requires distinct memory ids"); err != nil {
		return false, err
	}
	a, b := types.NormalizePair(aID, bID)

	existed, err = s.connectionExists(ctx, userID, a, b)
	if err != nil {
		return false, err
	}

	const delta = 0.10 // consolidator's Hebbian delta (spec.md §4.6)
	exec := func() (sql.Result, error) {
		return s.db.ExecContext(ctx, `
			INSERT INTO memory_connections (user_id, memory_a_id, memory_b_id, connection_type, weight, reason, created_at, last_coactivated_at)
			VALUES ($1, $2, $3, $4, 0.5, $5, NOW(), NOW())
			ON CONFLICT (user_id, memory_a_id, memory_b_id) DO UPDATE SET
				weight = memory_connections.weight + $6 * (1 - memory_connections.weight),
				last_coactivated_at = NOW()
		`, userID, a, b, string(connType), reason, delta)
	}
	if _, err := exec(); err != nil {
		if _, err2 := exec(); err2 != nil {
			return false, &types.ErrStoreConflict{Cause: err2}
		}
	}
	return existed, nil
}

func (s *Store) connectionExists(ctx context.Context, userID, a, b string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM memory_connections WHERE user_id = $1 AND memory_a_id = $2 AND memory_b_id = $3)
	`, userID, a, b).Scan(&exists)
	if err != nil {
		return false, &types.ErrStoreConflict{Cause: err}
	}
	return exists, nil
}

// Strengthen applies a Hebbian weight update to an existing edge:
// w <- w + delta*(1-w), and sets last_coactivated_at = now.
func (s *Store) Strengthen(ctx context.Context, userID, aID, bID string, delta float64) error {
	if err := types.Assert(aID != bID, "strengthen requires distinct memory ids"); err != nil {
		return err
	}
	a, b := types.NormalizePair(aID, bID)
	exec := func() (sql.Result, error) {
		return s.db.ExecContext(ctx, `
			UPDATE memory_connections
			SET weight = weight + $1 * (1 - weight), last_coactivated_at = NOW()
			WHERE user_id = $2 AND memory_a_id = $3 AND memory_b_id = $4
		`, delta, userID, a, b)
	}
	res, err := exec()
	if err != nil {
		res, err = exec()
		if err != nil {
			return &types.ErrStoreConflict{Cause: err}
		}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &types.ErrNotFound{Kind: "connection", ID: a + ":" + b}
	}
	return nil
}

// Neighbors returns every connection row touching any memory in ids.
func (s *Store) Neighbors(ctx context.Context, userID string, ids []string) ([]*types.Connection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT memory_a_id, memory_b_id, connection_type, weight, reason, created_at, last_coactivated_at
		FROM memory_connections
		WHERE user_id = $1 AND (memory_a_id = ANY($2) OR memory_b_id = ANY($2))
	`, userID, stringArray(ids))
	if err != nil {
		return nil, &types.ErrStoreConflict{Cause: err}
	}
	defer rows.Close()

	var out []*types.Connection
	for rows.Next() {
		var c types.Connection
		var connType string
		if err := rows.Scan(&c.MemoryAID, &c.MemoryBID, &connType, &c.Weight, &c.Reason, &c.CreatedAt, &c.LastCoactivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		c.ConnectionType = types.ConnectionType(connType)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}
	return out, nil
}

// ConnectionCount returns how many edges touch id.
func (s *Store) ConnectionCount(ctx context.Context, userID, id string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM memory_connections
		WHERE user_id = $1 AND (memory_a_id = $2 OR memory_b_id = $2)
	`, userID, id).Scan(&n)
	if err != nil {
		return 0, &types.ErrStoreConflict{Cause: err}
	}
	return n, nil
}

func stringArray(ids []string) any {
	return pq.Array(ids)
}
