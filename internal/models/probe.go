package models

import "time"

// TestType selects the connectivity probe mode.
type TestType string

const (
	TestTypeSimple TestType = "simple"
	TestTypeFull   TestType = "full"
)

// ProbeRequest is the body of a test_connectivity call. ConfigID nil means
// "use the active configuration".
type ProbeRequest struct {
	TestType TestType `json:"test_type" binding:"omitempty,oneof=simple full"`
	ConfigID *int     `json:"config_id" binding:"omitempty,min=1"`
}

// ProbeResult is the outcome of one connectivity probe. A failed probe is
// still a result; only unexpected server errors are reported otherwise.
type ProbeResult struct {
	Success         bool           `json:"success"`
	TestType        TestType       `json:"test_type"`
	Timestamp       time.Time      `json:"timestamp"`
	Message         string         `json:"message,omitempty"`
	Error           string         `json:"error,omitempty"`
	ConfigInfo      map[string]any `json:"config_info,omitempty"`
	ResponseStatus  int            `json:"response_status,omitempty"`
	ResponsePreview *string        `json:"response_preview,omitempty"`
	AttemptedURL    string         `json:"attempted_url,omitempty"`
}
