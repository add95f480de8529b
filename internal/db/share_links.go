package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const shareLinkColumns = `slug, job_id, company_id, require_resume, require_github,
	 require_linkedin, repo_count, created_at, updated_at`

func scanShareLink(row pgx.Row) (*ShareLink, error) {
	var l ShareLink
	err := row.Scan(&l.Slug, &l.JobID, &l.CompanyID, &l.RequireResume,
		&l.RequireGithub, &l.RequireLinkedin, &l.RepoCount,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpsertShareLink creates or updates the share-link configuration for a slug
func (db *DB) UpsertShareLink(ctx context.Context, input ShareLinkInput) (*ShareLink, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO share_links (slug, job_id, company_id, require_resume,
		                          require_github, require_linkedin, repo_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (slug) DO UPDATE SET
		     job_id = $2, company_id = $3, require_resume = $4,
		     require_github = $5, require_linkedin = $6, repo_count = $7,
		     updated_at = NOW()
		 RETURNING `+shareLinkColumns,
		input.Slug, input.JobID, input.CompanyID, input.RequireResume,
		input.RequireGithub, input.RequireLinkedin, input.RepoCount,
	)

	link, err := scanShareLink(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert share link: %w", err)
	}
	return link, nil
}

// GetShareLink retrieves a share-link configuration by slug
func (db *DB) GetShareLink(ctx context.Context, slug string) (*ShareLink, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links WHERE slug = $1`, slug)

	link, err := scanShareLink(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get share link: %w", err)
	}
	return link, nil
}

// ListShareLinksByCompany retrieves all share links owned by a company
func (db *DB) ListShareLinksByCompany(ctx context.Context, companyID uuid.UUID) ([]ShareLink, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+shareLinkColumns+` FROM share_links
		 WHERE company_id = $1 ORDER BY created_at DESC`,
		companyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list share links: %w", err)
	}
	defer rows.Close()

	var links []ShareLink
	for rows.Next() {
		l, err := scanShareLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share link: %w", err)
		}
		links = append(links, *l)
	}
	return links, nil
}

// DeleteShareLink removes a share link by slug
func (db *DB) DeleteShareLink(ctx context.Context, slug string, companyID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM share_links WHERE slug = $1 AND company_id = $2`,
		slug, companyID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete share link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("share link not found: %s", slug)
	}
	return nil
}
