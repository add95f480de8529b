package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const applicantColumns = `id, job_id, job_name, company_name, full_name, email, phone,
	 location, resume_url, github_profile_url, repo_urls, linkedin_url,
	 analyzer_job_id, ai_evaluation_status, ai_evaluation_progress,
	 ai_evaluation_results, ai_evaluation_error, created_at, updated_at`

func scanApplicant(row pgx.Row) (*Applicant, error) {
	var a Applicant
	err := row.Scan(&a.ID, &a.JobID, &a.JobName, &a.CompanyName, &a.FullName,
		&a.Email, &a.Phone, &a.Location, &a.ResumeURL, &a.GithubURL,
		&a.RepoURLs, &a.LinkedinURL, &a.AnalyzerJobID,
		&a.AIEvaluationStatus, &a.AIEvaluationProgress,
		&a.AIEvaluationResults, &a.AIEvaluationError,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplicant inserts a new application row
func (db *DB) CreateApplicant(ctx context.Context, input ApplicantCreateInput) (*Applicant, error) {
	status := input.EvaluationStatus
	if status == "" {
		status = EvalNotStarted
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO applicants (job_id, job_name, company_name, full_name, email, phone,
		                         location, resume_url, github_profile_url, repo_urls,
		                         linkedin_url, ai_evaluation_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+applicantColumns,
		input.JobID, input.JobName, input.CompanyName, input.FullName, input.Email,
		input.Phone, input.Location, input.ResumeURL, input.GithubURL,
		input.RepoURLs, input.LinkedinURL, status,
	)

	applicant, err := scanApplicant(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}
	return applicant, nil
}

// GetApplicant retrieves an application by ID
func (db *DB) GetApplicant(ctx context.Context, id uuid.UUID) (*Applicant, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)

	applicant, err := scanApplicant(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return applicant, nil
}

// ListApplicantsByJob retrieves applications for a job, newest first
func (db *DB) ListApplicantsByJob(ctx context.Context, jobID uuid.UUID, opts ListApplicantsOptions) ([]Applicant, int, error) {
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE job_id = $1`
	args := []any{jobID}
	argNum := 2

	if opts.EvaluationStatus != "" {
		query += fmt.Sprintf(" AND ai_evaluation_status = $%d", argNum)
		args = append(args, opts.EvaluationStatus)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applicants: %w", err)
	}
	defer rows.Close()

	var applicants []Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, *a)
	}

	countQuery := `SELECT COUNT(*) FROM applicants WHERE job_id = $1`
	countArgs := []any{jobID}
	if opts.EvaluationStatus != "" {
		countQuery += " AND ai_evaluation_status = $2"
		countArgs = append(countArgs, opts.EvaluationStatus)
	}

	var total int
	if err := db.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applicants: %w", err)
	}

	return applicants, total, nil
}

// CountApplicantsByStatus returns per-status application counts for a job
func (db *DB) CountApplicantsByStatus(ctx context.Context, jobID uuid.UUID) (map[string]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT ai_evaluation_status, COUNT(*)
		 FROM applicants WHERE job_id = $1
		 GROUP BY ai_evaluation_status`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count applicants by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{
		EvalNotStarted: 0,
		EvalStarted:    0,
		EvalCompleted:  0,
		EvalFailed:     0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, nil
}

// SetAnalyzerJob records the remote analyzer job ID for an application
func (db *DB) SetAnalyzerJob(ctx context.Context, id uuid.UUID, analyzerJobID string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE applicants SET analyzer_job_id = $1, updated_at = NOW() WHERE id = $2`,
		analyzerJobID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set analyzer job: %w", err)
	}
	return nil
}

// UpdateEvaluationProgress writes the display progress for a running evaluation
func (db *DB) UpdateEvaluationProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE applicants SET ai_evaluation_progress = $1, updated_at = NOW()
		 WHERE id = $2 AND ai_evaluation_status = $3`,
		progress, id, EvalStarted,
	)
	if err != nil {
		return fmt.Errorf("failed to update evaluation progress: %w", err)
	}
	return nil
}

// CompleteEvaluation persists analyzer results and marks the evaluation
// completed. The guard on the current status makes the terminal transition
// single-shot: a second writer finds zero rows and reports false.
func (db *DB) CompleteEvaluation(ctx context.Context, id uuid.UUID, results []byte) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE applicants
		 SET ai_evaluation_status = $1, ai_evaluation_progress = 100,
		     ai_evaluation_results = $2, ai_evaluation_error = NULL, updated_at = NOW()
		 WHERE id = $3 AND ai_evaluation_status = $4`,
		EvalCompleted, results, id, EvalStarted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete evaluation: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// FailEvaluation marks the evaluation failed with a message. Same
// single-shot guard as CompleteEvaluation.
func (db *DB) FailEvaluation(ctx context.Context, id uuid.UUID, message string) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE applicants
		 SET ai_evaluation_status = $1, ai_evaluation_error = $2, updated_at = NOW()
		 WHERE id = $3 AND ai_evaluation_status = $4`,
		EvalFailed, message, id, EvalStarted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to fail evaluation: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// ListStartedApplicants returns applications whose evaluation is still in
// the started state. The evaluation worker re-adopts these at startup.
func (db *DB) ListStartedApplicants(ctx context.Context) ([]Applicant, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicantColumns+` FROM applicants
		 WHERE ai_evaluation_status = $1
		 ORDER BY created_at ASC`,
		EvalStarted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list started applicants: %w", err)
	}
	defer rows.Close()

	var applicants []Applicant
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan applicant: %w", err)
		}
		applicants = append(applicants, *a)
	}
	return applicants, nil
}
