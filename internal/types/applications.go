package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ApplicationForm holds the fields of a public application submission. The
// resume file itself is handled separately by the upload path.
type ApplicationForm struct {
	FullName    string   `json:"full_name" validate:"required,min=1,max=200"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone,omitempty" validate:"omitempty,max=40"`
	GithubURL   string   `json:"github_url,omitempty"`
	LinkedinURL string   `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	RepoURLs    []string `json:"repo_urls,omitempty" validate:"omitempty,max=3"`
}

// Validate validates the ApplicationForm using the validator.
func (f *ApplicationForm) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return err
	}
	for _, repo := range f.RepoURLs {
		if !IsGithubURL(repo) {
			return &ValidationError{Field: "repo_urls", Message: "entries must be github.com URLs"}
		}
	}
	return nil
}

// HasValidGithub reports whether the profile URL points at github.com.
// Submissions with a missing or malformed GitHub profile are accepted but
// never sent for analysis.
func (f *ApplicationForm) HasValidGithub() bool {
	return IsGithubURL(f.GithubURL)
}

// IsGithubURL reports whether the given URL references github.com.
func IsGithubURL(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), "github.com/")
}
