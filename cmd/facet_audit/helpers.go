package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexvidal/facet-audit/internal/config"
	"github.com/alexvidal/facet-audit/internal/db"
	"github.com/alexvidal/facet-audit/internal/schemas"
	"github.com/alexvidal/facet-audit/internal/types"
)

// loadAuditConfig resolves the effective configuration: the file when one is
// given, the validated defaults otherwise.
func loadAuditConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// readJSONArtifact loads a JSON artifact produced by an earlier subcommand.
func readJSONArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeArtifact writes indented JSON and checks it against the named schema.
// Schema problems are warnings so a drifted schema never blocks an audit; a
// failed write is an error. An empty schemaName skips validation.
func writeArtifact(path, schemaName string, content any) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if schemaName == "" {
		return nil
	}
	if schemaPath := schemas.ResolveSchemaPath(filepath.Join("schemas", schemaName)); schemaPath != "" {
		if verr := schemas.ValidateJSON(schemaPath, path); verr != nil {
			fmt.Fprintf(os.Stderr, "Warning: %s does not validate against %s: %v\n", path, schemaName, verr)
		}
	}
	return nil
}

// connectDB applies the embedded migrations and opens the pool. Persistence
// is always optional: failures print a warning and return nil.
func connectDB(ctx context.Context, databaseURL string) *db.DB {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil
	}
	if err := db.RunMigrations(databaseURL); err != nil {
		fmt.Printf("Warning: Failed to run database migrations: %v\n", err)
	}
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("Warning: Failed to connect to database: %v\n", err)
		fmt.Printf("Continuing without database persistence...\n")
		return nil
	}
	return database
}

// snapshotURLs flattens the snapshot's records into the URL list detection
// operates on.
func snapshotURLs(snapshot *types.CrawlSnapshot) []string {
	urls := make([]string, len(snapshot.Records))
	for i, rec := range snapshot.Records {
		urls[i] = rec.URL
	}
	return urls
}

// splitTerms parses a comma-separated flag value into trimmed, non-empty
// lowercase terms.
func splitTerms(raw string) []string {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
