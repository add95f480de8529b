package analyzer

import (
	"encoding/json"
	"errors"
)

// Remote job states reported by the analyzer.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrJobNotFound is returned when the analyzer no longer knows the job ID.
var ErrJobNotFound = errors.New("analyzer job not found")

// SubmitResponse is the analyzer's reply to a new submission.
type SubmitResponse struct {
	Success   bool   `json:"success"`
	JobID     string `json:"job_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// JobStatus describes the progress of an analyzer job.
type JobStatus struct {
	JobID     string          `json:"job_id"`
	Status    string          `json:"status"`
	Progress  float64         `json:"progress"`
	Message   string          `json:"message"`
	Results   json.RawMessage `json:"results,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

// Terminal reports whether the job has reached a final state.
func (s *JobStatus) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}
