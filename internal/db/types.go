package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents an audit run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Site        string     `json:"site"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ArtifactKind constants for known artifact types, one per pipeline step
const (
	KindURLRecords   = "url_records"
	KindDetection    = "detection"
	KindCandidates   = "candidates"
	KindSuggestions  = "suggestions"
	KindFacetRecords = "facet_records"
	KindLeakReport   = "leak_report"
	KindFacetScores  = "facet_scores"
	KindVerification = "verification"
	KindExportCSV    = "export_csv"
)
