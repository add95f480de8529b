package db

import (
	"time"

	"github.com/google/uuid"
)

// User role constants
const (
	RoleCompany   = "company"
	RoleApplicant = "applicant"
)

// UserProfile represents an authenticated user.
// Exactly one row per auth identity; Role selects which role profile
// (company or applicant) should exist alongside it.
type UserProfile struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         string    `json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	PasswordSet  bool      `json:"password_set"`
	GoogleSub    *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CompanyProfile is the 1:1 company profile for a user
type CompanyProfile struct {
	UserID      uuid.UUID `json:"user_id"`
	CompanyName string    `json:"company_name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	CompanySize string    `json:"company_size,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicantProfile is the 1:1 applicant profile for a user
type ApplicantProfile struct {
	UserID      uuid.UUID `json:"user_id"`
	FullName    string    `json:"full_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Location    string    `json:"location,omitempty"`
	GithubURL   string    `json:"github_url,omitempty"`
	LinkedinURL string    `json:"linkedin_url,omitempty"`
	Headline    string    `json:"headline,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserProfileCreateInput holds the fields of a new user profile. PasswordHash
// and GoogleSub are both optional; password accounts set the former, Google
// accounts the latter.
type UserProfileCreateInput struct {
	Email        string
	FullName     string
	AvatarURL    string
	Role         string
	PasswordHash string
	GoogleSub    *string
}

// CompanyProfileInput holds the mutable fields of a company profile
type CompanyProfileInput struct {
	CompanyName string `json:"company_name"`
	Website     string `json:"website"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ApplicantProfileInput holds the mutable fields of an applicant profile
type ApplicantProfileInput struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	GithubURL   string `json:"github_url"`
	LinkedinURL string `json:"linkedin_url"`
	Headline    string `json:"headline"`
}
