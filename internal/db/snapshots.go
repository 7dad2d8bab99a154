package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alexvidal/facet-audit/internal/types"
)

// RegistrySnapshot is a versioned copy of the pattern registry. Promotions
// write one so any past detection can be traced to the exact rules it used.
// RunID names the audit run that recorded the snapshot; promotions happen
// outside a run and leave it nil.
type RegistrySnapshot struct {
	ID        uuid.UUID            `json:"id"`
	RunID     *uuid.UUID           `json:"run_id,omitempty"`
	Version   int                  `json:"version"`
	Patterns  []types.FacetPattern `json:"patterns"`
	Note      string               `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// SaveRegistrySnapshot stores the registry state for a version, attributed to
// runID (uuid.Nil stores NULL). Writing the same version again replaces it,
// which keeps re-runs of promote idempotent.
func (db *DB) SaveRegistrySnapshot(ctx context.Context, runID uuid.UUID, version int, patterns []types.FacetPattern, note string) error {
	jsonBytes, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("failed to marshal patterns: %w", err)
	}

	var runRef *uuid.UUID
	if runID != uuid.Nil {
		runRef = &runID
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO pattern_snapshots (run_id, version, patterns, note)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (version) DO UPDATE SET run_id = $1, patterns = $3, note = $4, created_at = NOW()`,
		runRef, version, jsonBytes, note,
	)
	if err != nil {
		return fmt.Errorf("failed to save registry snapshot v%d: %w", version, err)
	}
	return nil
}

// GetRegistrySnapshot retrieves the registry state for a specific version
func (db *DB) GetRegistrySnapshot(ctx context.Context, version int) (*RegistrySnapshot, error) {
	return db.scanSnapshot(db.pool.QueryRow(ctx,
		`SELECT id, run_id, version, patterns, note, created_at
		 FROM pattern_snapshots WHERE version = $1`,
		version,
	))
}

// GetLatestRegistrySnapshot retrieves the highest-versioned snapshot
func (db *DB) GetLatestRegistrySnapshot(ctx context.Context) (*RegistrySnapshot, error) {
	return db.scanSnapshot(db.pool.QueryRow(ctx,
		`SELECT id, run_id, version, patterns, note, created_at
		 FROM pattern_snapshots ORDER BY version DESC LIMIT 1`,
	))
}

// ListRegistrySnapshots retrieves snapshots newest-first
func (db *DB) ListRegistrySnapshots(ctx context.Context, limit int) ([]RegistrySnapshot, error) {
	if limit == 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, version, patterns, note, created_at
		 FROM pattern_snapshots ORDER BY version DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []RegistrySnapshot
	for rows.Next() {
		var s RegistrySnapshot
		var patternBytes []byte
		if err := rows.Scan(&s.ID, &s.RunID, &s.Version, &patternBytes, &s.Note, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registry snapshot: %w", err)
		}
		if err := json.Unmarshal(patternBytes, &s.Patterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patterns v%d: %w", s.Version, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

func (db *DB) scanSnapshot(row pgx.Row) (*RegistrySnapshot, error) {
	var s RegistrySnapshot
	var patternBytes []byte
	err := row.Scan(&s.ID, &s.RunID, &s.Version, &patternBytes, &s.Note, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registry snapshot: %w", err)
	}
	if err := json.Unmarshal(patternBytes, &s.Patterns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal patterns v%d: %w", s.Version, err)
	}
	return &s, nil
}
