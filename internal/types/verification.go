package types

// VerificationStatus is the per-URL outcome of a verification request.
// Failures are recorded, never raised; verification is advisory.
type VerificationStatus string

const (
	VerifyOK    VerificationStatus = "ok"
	VerifyError VerificationStatus = "error"
)

// VerificationResult is one verified URL. FinalURL is the landing URL after
// following redirects; IsIndexable is derived from the response headers
// (200 with no noindex directive in X-Robots-Tag).
type VerificationResult struct {
	URL         string             `json:"url"`
	Status      VerificationStatus `json:"status"`
	StatusCode  int                `json:"status_code"`
	FinalURL    string             `json:"final_url,omitempty"`
	IsIndexable bool               `json:"is_indexable"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Error       string             `json:"error,omitempty"`
}

// BatchVerification is the verification artifact: one result per input URL in
// input order, plus batch counters.
type BatchVerification struct {
	Results        []VerificationResult `json:"results"`
	OKCount        int                  `json:"ok_count"`
	ErrorCount     int                  `json:"error_count"`
	IndexableCount int                  `json:"indexable_count"`
	WallTimeMS     int64                `json:"wall_time_ms"`
}
