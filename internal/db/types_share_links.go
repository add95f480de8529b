package db

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink is a public application-form configuration keyed by the
// "{companySlug}/{jobSlug}" slug. Stored server-side so the link works
// from any browser.
type ShareLink struct {
	Slug            string    `json:"slug"`
	JobID           uuid.UUID `json:"job_id"`
	CompanyID       uuid.UUID `json:"company_id"`
	RequireResume   bool      `json:"require_resume"`
	RequireGithub   bool      `json:"require_github"`
	RequireLinkedin bool      `json:"require_linkedin"`
	RepoCount       int       `json:"repo_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ShareLinkInput holds the fields needed to create or update a share link
type ShareLinkInput struct {
	Slug            string
	JobID           uuid.UUID
	CompanyID       uuid.UUID
	RequireResume   bool
	RequireGithub   bool
	RequireLinkedin bool
	RepoCount       int
}
