package db

import (
	"time"

	"github.com/google/uuid"
)

// Job status constants
const (
	JobStatusDraft  = "draft"
	JobStatusActive = "active"
	JobStatusClosed = "closed"
)

// RemoteOption constants
const (
	RemoteOnsite = "onsite"
	RemoteHybrid = "hybrid"
	RemoteFull   = "remote"
)

// Job represents a job posting owned by a company.
// Jobs are never deleted in-app; closing a job is a status transition.
type Job struct {
	ID              uuid.UUID `json:"id"`
	CompanyID       uuid.UUID `json:"company_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements,omitempty"`
	Location        string    `json:"location,omitempty"`
	EmploymentType  string    `json:"employment_type,omitempty"`  // 'full_time', 'part_time', 'contract', 'internship'
	ExperienceLevel string    `json:"experience_level,omitempty"` // 'entry', 'mid', 'senior', 'lead'
	RemoteOption    string    `json:"remote_option,omitempty"`
	SalaryMin       *int      `json:"salary_min,omitempty"`
	SalaryMax       *int      `json:"salary_max,omitempty"`
	SalaryCurrency  string    `json:"salary_currency,omitempty"`
	SalaryPeriod    string    `json:"salary_period,omitempty"` // 'year', 'month', 'hour'
	Skills          []string  `json:"skills,omitempty"`
	Status          string    `json:"status"`
	PublicLinkID    *string   `json:"public_link_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// JobCreateInput holds the fields needed to create a job
type JobCreateInput struct {
	CompanyID       uuid.UUID
	Title           string
	Description     string
	Requirements    string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	RemoteOption    string
	SalaryMin       *int
	SalaryMax       *int
	SalaryCurrency  string
	SalaryPeriod    string
	Skills          []string
	Status          string
}

// JobUpdateInput holds the mutable fields of a job
type JobUpdateInput struct {
	Title           string
	Description     string
	Requirements    string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	RemoteOption    string
	SalaryMin       *int
	SalaryMax       *int
	SalaryCurrency  string
	SalaryPeriod    string
	Skills          []string
}

// ListJobsOptions holds optional filters for listing jobs
type ListJobsOptions struct {
	Status string
	Limit  int
	Offset int
}

// ValidJobTransition reports whether a job status change is allowed.
// Allowed: draft->active, active<->closed, and any state back to draft.
func ValidJobTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == JobStatusDraft {
		return true
	}
	switch from {
	case JobStatusDraft:
		return to == JobStatusActive
	case JobStatusActive:
		return to == JobStatusClosed
	case JobStatusClosed:
		return to == JobStatusActive
	}
	return false
}
