package types

import (
	"github.com/go-playground/validator/v10"
)

// CreateJobRequest represents the request to create a job posting.
type CreateJobRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Description     string   `json:"description" validate:"required,min=1"`
	Requirements    string   `json:"requirements,omitempty"`
	Location        string   `json:"location,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty" validate:"omitempty,oneof=full_time part_time contract internship"`
	ExperienceLevel string   `json:"experience_level,omitempty" validate:"omitempty,oneof=entry mid senior lead"`
	RemoteOption    string   `json:"remote_option,omitempty" validate:"omitempty,oneof=onsite hybrid remote"`
	SalaryMin       *int     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax       *int     `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency  string   `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod    string   `json:"salary_period,omitempty" validate:"omitempty,oneof=year month hour"`
	Skills          []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1"`
	Status          string   `json:"status,omitempty" validate:"omitempty,oneof=draft active"`
}

// UpdateJobRequest represents an update to a job posting's content fields.
// Status changes go through their own endpoint.
type UpdateJobRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Description     string   `json:"description" validate:"required,min=1"`
	Requirements    string   `json:"requirements,omitempty"`
	Location        string   `json:"location,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty" validate:"omitempty,oneof=full_time part_time contract internship"`
	ExperienceLevel string   `json:"experience_level,omitempty" validate:"omitempty,oneof=entry mid senior lead"`
	RemoteOption    string   `json:"remote_option,omitempty" validate:"omitempty,oneof=onsite hybrid remote"`
	SalaryMin       *int     `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax       *int     `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency  string   `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod    string   `json:"salary_period,omitempty" validate:"omitempty,oneof=year month hour"`
	Skills          []string `json:"skills,omitempty" validate:"omitempty,max=30,dive,min=1"`
}

// UpdateJobStatusRequest changes a job posting's lifecycle status.
type UpdateJobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft active closed"`
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

// Validate validates the UpdateJobRequest using the validator.
func (r *UpdateJobRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	return validateSalaryRange(r.SalaryMin, r.SalaryMax)
}

// Validate validates the UpdateJobStatusRequest using the validator.
func (r *UpdateJobStatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

func validateSalaryRange(min, max *int) error {
	if min != nil && max != nil && *max < *min {
		return &ValidationError{Field: "salary_max", Message: "must be greater than or equal to salary_min"}
	}
	return nil
}
