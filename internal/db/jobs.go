package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, company_id, title, description, requirements, location,
	 employment_type, experience_level, remote_option,
	 salary_min, salary_max, salary_currency, salary_period,
	 skills, status, public_link_id, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Description, &j.Requirements,
		&j.Location, &j.EmploymentType, &j.ExperienceLevel, &j.RemoteOption,
		&j.SalaryMin, &j.SalaryMax, &j.SalaryCurrency, &j.SalaryPeriod,
		&j.Skills, &j.Status, &j.PublicLinkID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a new job posting and returns the created row
func (db *DB) CreateJob(ctx context.Context, input JobCreateInput) (*Job, error) {
	status := input.Status
	if status == "" {
		status = JobStatusDraft
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_id, title, description, requirements, location,
		                   employment_type, experience_level, remote_option,
		                   salary_min, salary_max, salary_currency, salary_period,
		                   skills, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING `+jobColumns,
		input.CompanyID, input.Title, input.Description, input.Requirements,
		input.Location, input.EmploymentType, input.ExperienceLevel, input.RemoteOption,
		input.SalaryMin, input.SalaryMax, input.SalaryCurrency, input.SalaryPeriod,
		input.Skills, status,
	)

	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job by ID
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobsByCompany retrieves jobs for a company with optional status filter
func (db *DB) ListJobsByCompany(ctx context.Context, companyID uuid.UUID, opts ListJobsOptions) ([]Job, int, error) {
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE company_id = $1`
	args := []any{companyID}
	argNum := 2

	if opts.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	countQuery := `SELECT COUNT(*) FROM jobs WHERE company_id = $1`
	countArgs := []any{companyID}
	if opts.Status != "" {
		countQuery += " AND status = $2"
		countArgs = append(countArgs, opts.Status)
	}

	var total int
	if err := db.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return jobs, total, nil
}

// UpdateJob updates the mutable fields of a job and returns the updated row
func (db *DB) UpdateJob(ctx context.Context, id uuid.UUID, input JobUpdateInput) (*Job, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE jobs SET title = $2, description = $3, requirements = $4, location = $5,
		                 employment_type = $6, experience_level = $7, remote_option = $8,
		                 salary_min = $9, salary_max = $10, salary_currency = $11,
		                 salary_period = $12, skills = $13, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, input.Title, input.Description, input.Requirements, input.Location,
		input.EmploymentType, input.ExperienceLevel, input.RemoteOption,
		input.SalaryMin, input.SalaryMax, input.SalaryCurrency, input.SalaryPeriod,
		input.Skills,
	)

	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// UpdateJobStatus writes a new job status. The transition must already be
// validated with ValidJobTransition.
func (db *DB) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

// SetJobPublicLink records the public share-link slug on a job
func (db *DB) SetJobPublicLink(ctx context.Context, id uuid.UUID, publicLinkID string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE jobs SET public_link_id = $1, updated_at = NOW() WHERE id = $2`,
		publicLinkID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set public link: %w", err)
	}
	return nil
}
