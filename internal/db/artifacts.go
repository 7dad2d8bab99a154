package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveArtifact stores a JSON artifact for an audit run. Re-running a step
// overwrites the previous artifact of the same kind.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, kind string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, kind, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, kind) DO UPDATE SET payload = $3, created_at = NOW()`,
		runID, kind, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", kind, err)
	}
	return nil
}

// SaveTextArtifact stores a text artifact (like exported CSV) for an audit run
func (db *DB) SaveTextArtifact(ctx context.Context, runID uuid.UUID, kind, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, kind, text_content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, kind) DO UPDATE SET text_content = $3, created_at = NOW()`,
		runID, kind, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save text artifact %s: %w", kind, err)
	}
	return nil
}

// GetArtifact retrieves a JSON artifact by run ID and kind
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, kind string) ([]byte, error) {
	var payload []byte
	err := db.pool.QueryRow(ctx,
		`SELECT payload FROM artifacts WHERE run_id = $1 AND kind = $2`,
		runID, kind,
	).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", kind, err)
	}
	return payload, nil
}

// GetTextArtifact retrieves a text artifact by run ID and kind
func (db *DB) GetTextArtifact(ctx context.Context, runID uuid.UUID, kind string) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT text_content FROM artifacts WHERE run_id = $1 AND kind = $2`,
		runID, kind,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get text artifact %s: %w", kind, err)
	}
	return text, nil
}

// Artifact represents an artifact record
type Artifact struct {
	ID          uuid.UUID `json:"id"`
	RunID       uuid.UUID `json:"run_id"`
	Kind        string    `json:"kind"`
	Payload     any       `json:"payload,omitempty"`
	TextContent string    `json:"text_content,omitempty"`
}

// GetArtifactByID retrieves an artifact by its UUID
func (db *DB) GetArtifactByID(ctx context.Context, artifactID uuid.UUID) (*Artifact, error) {
	var artifact Artifact
	var payloadBytes []byte
	var textContent *string

	err := db.pool.QueryRow(ctx,
		`SELECT id, run_id, kind, payload, text_content
		 FROM artifacts WHERE id = $1`,
		artifactID,
	).Scan(&artifact.ID, &artifact.RunID, &artifact.Kind, &payloadBytes, &textContent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}

	if textContent != nil {
		artifact.TextContent = *textContent
	}
	if len(payloadBytes) > 0 {
		var payload any
		if err := json.Unmarshal(payloadBytes, &payload); err == nil {
			artifact.Payload = payload
		}
	}

	return &artifact, nil
}

// ArtifactSummary is a lightweight view of an artifact for listing
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt string    `json:"created_at"`
	HasJSON   bool      `json:"has_json"`
	HasText   bool      `json:"has_text"`
}

// ArtifactFilters holds optional filters for listing artifacts
type ArtifactFilters struct {
	RunID uuid.UUID
	Kind  string
}

// ListArtifacts retrieves artifacts with optional filters
func (db *DB) ListArtifacts(ctx context.Context, filters ArtifactFilters) ([]ArtifactSummary, error) {
	query := `SELECT id, kind, created_at,
		      payload IS NOT NULL as has_json, text_content IS NOT NULL as has_text
		FROM artifacts WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.RunID != uuid.Nil {
		query += fmt.Sprintf(" AND run_id = $%d", argNum)
		args = append(args, filters.RunID)
		argNum++
	}
	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, filters.Kind)
	}

	query += " ORDER BY created_at ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactSummary
	for rows.Next() {
		var a ArtifactSummary
		var createdAt time.Time
		if err := rows.Scan(&a.ID, &a.Kind, &createdAt, &a.HasJSON, &a.HasText); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.CreatedAt = createdAt.Format(time.RFC3339)
		artifacts = append(artifacts, a)
	}
	return artifacts, nil
}
