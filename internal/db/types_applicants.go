package db

import (
	"time"

	"github.com/google/uuid"
)

// AI evaluation status constants. An application's evaluation moves
// not_started|started -> completed|failed; terminal states are written
// exactly once.
const (
	EvalNotStarted = "not_started"
	EvalStarted    = "started"
	EvalCompleted  = "completed"
	EvalFailed     = "failed"
)

// MaxRepoURLs is the maximum number of repository URLs per application
const MaxRepoURLs = 3

// Applicant represents a submitted job application.
// JobName and CompanyName are denormalized display copies; the
// authoritative linkage is JobID.
type Applicant struct {
	ID            uuid.UUID `json:"id"`
	JobID         uuid.UUID `json:"job_id"`
	JobName       string    `json:"job_name"`
	CompanyName   string    `json:"company_name"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Location      string    `json:"location,omitempty"`
	ResumeURL     string    `json:"resume_url,omitempty"`
	GithubURL     string    `json:"github_profile_url,omitempty"`
	RepoURLs      []string  `json:"repo_urls,omitempty"`
	LinkedinURL   string    `json:"linkedin_url,omitempty"`
	AnalyzerJobID *string   `json:"analyzer_job_id,omitempty"`

	AIEvaluationStatus   string    `json:"ai_evaluation_status"`
	AIEvaluationProgress int       `json:"ai_evaluation_progress"`
	AIEvaluationResults  []byte    `json:"-"`
	AIEvaluationError    *string   `json:"ai_evaluation_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplicantCreateInput holds the fields needed to create an application
type ApplicantCreateInput struct {
	JobID            uuid.UUID
	JobName          string
	CompanyName      string
	FullName         string
	Email            string
	Phone            string
	Location         string
	ResumeURL        string
	GithubURL        string
	RepoURLs         []string
	LinkedinURL      string
	EvaluationStatus string
}

// ListApplicantsOptions holds optional filters for listing applicants
type ListApplicantsOptions struct {
	EvaluationStatus string
	Limit            int
	Offset           int
}
