package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UpsertShareLinkRequest creates or updates the public application link for a
// job posting.
type UpsertShareLinkRequest struct {
	JobID           uuid.UUID `json:"job_id" validate:"required"`
	RequireResume   bool      `json:"require_resume"`
	RequireGithub   bool      `json:"require_github"`
	RequireLinkedin bool      `json:"require_linkedin"`
	RepoCount       int       `json:"repo_count" validate:"min=0,max=3"`
}

// Validate validates the UpsertShareLinkRequest using the validator.
func (r *UpsertShareLinkRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
