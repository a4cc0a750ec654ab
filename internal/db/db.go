// Package db provides optional PostgreSQL persistence for investigation
// records. The in-memory registry stays authoritative; the service runs
// fully without a database.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/trial-reconciler/internal/types"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the investigations table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS investigations (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			stages JSONB NOT NULL,
			final_report TEXT,
			error_message TEXT
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveInvestigation upserts a terminal investigation record.
func (db *DB) SaveInvestigation(ctx context.Context, inv *types.Investigation) error {
	stages, err := json.Marshal(inv.Stages)
	if err != nil {
		return fmt.Errorf("failed to marshal stages: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO investigations (id, status, started_at, completed_at, stages, final_report, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   status = $2, completed_at = $4, stages = $5, final_report = $6, error_message = $7`,
		inv.InvestigationID, string(inv.Status), inv.StartedAt, inv.CompletedAt, stages, inv.FinalReport, inv.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save investigation %s: %w", inv.InvestigationID, err)
	}
	return nil
}

// GetInvestigation loads a persisted investigation. Returns nil without
// error when the id is unknown.
func (db *DB) GetInvestigation(ctx context.Context, id string) (*types.Investigation, error) {
	inv := &types.Investigation{}
	var stages []byte
	var status string
	err := db.pool.QueryRow(ctx,
		`SELECT id, status, started_at, completed_at, stages, COALESCE(final_report, ''), COALESCE(error_message, '')
		 FROM investigations WHERE id = $1`, id,
	).Scan(&inv.InvestigationID, &status, &inv.StartedAt, &inv.CompletedAt, &stages, &inv.FinalReport, &inv.ErrorMessage)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get investigation %s: %w", id, err)
	}
	inv.Status = types.Status(status)
	if err := json.Unmarshal(stages, &inv.Stages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stages for %s: %w", id, err)
	}
	return inv, nil
}
