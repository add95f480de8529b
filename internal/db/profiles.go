package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userProfileColumns = `id, email, full_name, avatar_url, role,
	 COALESCE(password_hash, ''), password_set, google_sub, created_at, updated_at`

func scanUserProfile(row pgx.Row) (*UserProfile, error) {
	var u UserProfile
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.AvatarURL, &u.Role,
		&u.PasswordHash, &u.PasswordSet, &u.GoogleSub, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUserProfile inserts a new user profile row
func (db *DB) CreateUserProfile(ctx context.Context, input UserProfileCreateInput) (*UserProfile, error) {
	var passwordHash *string
	passwordSet := input.PasswordHash != ""
	if passwordSet {
		passwordHash = &input.PasswordHash
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO user_profiles (email, full_name, avatar_url, role,
		                            password_hash, password_set, google_sub)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userProfileColumns,
		input.Email, input.FullName, input.AvatarURL, input.Role,
		passwordHash, passwordSet, input.GoogleSub,
	)

	user, err := scanUserProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	return user, nil
}

// GetUserProfile retrieves a user profile by ID
func (db *DB) GetUserProfile(ctx context.Context, id uuid.UUID) (*UserProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userProfileColumns+` FROM user_profiles WHERE id = $1`, id)

	user, err := scanUserProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return user, nil
}

// GetUserProfileByEmail retrieves a user profile by email
func (db *DB) GetUserProfileByEmail(ctx context.Context, email string) (*UserProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userProfileColumns+` FROM user_profiles WHERE email = $1`, email)

	user, err := scanUserProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile by email: %w", err)
	}
	return user, nil
}

// GetUserProfileByGoogleSub retrieves a user profile by its Google subject ID
func (db *DB) GetUserProfileByGoogleSub(ctx context.Context, sub string) (*UserProfile, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userProfileColumns+` FROM user_profiles WHERE google_sub = $1`, sub)

	user, err := scanUserProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user profile by google sub: %w", err)
	}
	return user, nil
}

// CheckEmailExists reports whether an email is already registered
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdatePassword sets a user's password hash
func (db *DB) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET password_hash = $1, password_set = TRUE, updated_at = NOW()
		 WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// LinkGoogleSub attaches a Google identity to an existing account so later
// sign-ins resolve by sub instead of email.
func (db *DB) LinkGoogleSub(ctx context.Context, userID uuid.UUID, sub string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET google_sub = $1, updated_at = NOW() WHERE id = $2`,
		sub, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// UpdateUserProfile updates name and avatar for a user
func (db *DB) UpdateUserProfile(ctx context.Context, id uuid.UUID, fullName, avatarURL string) (*UserProfile, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE user_profiles SET full_name = $2, avatar_url = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userProfileColumns,
		id, fullName, avatarURL,
	)

	user, err := scanUserProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update user profile: %w", err)
	}
	return user, nil
}

// SetUserRole records the user's chosen role
func (db *DB) SetUserRole(ctx context.Context, id uuid.UUID, role string) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET role = $1, updated_at = NOW() WHERE id = $2`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set user role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// EnsureRoleProfile creates the role-specific profile row for a user if it
// does not exist yet. Best-effort enforcement of the "role set implies role
// profile exists" invariant.
func (db *DB) EnsureRoleProfile(ctx context.Context, userID uuid.UUID, role string) error {
	var err error
	switch role {
	case RoleCompany:
		_, err = db.pool.Exec(ctx,
			`INSERT INTO company_profiles (user_id, company_name)
			 VALUES ($1, '')
			 ON CONFLICT (user_id) DO NOTHING`,
			userID,
		)
	case RoleApplicant:
		_, err = db.pool.Exec(ctx,
			`INSERT INTO applicant_profiles (user_id)
			 VALUES ($1)
			 ON CONFLICT (user_id) DO NOTHING`,
			userID,
		)
	default:
		return fmt.Errorf("unknown role: %s", role)
	}
	if err != nil {
		return fmt.Errorf("failed to ensure %s profile: %w", role, err)
	}
	return nil
}

// GetCompanyProfile retrieves the company profile for a user
func (db *DB) GetCompanyProfile(ctx context.Context, userID uuid.UUID) (*CompanyProfile, error) {
	var p CompanyProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, company_name, website, industry, company_size, description,
		        location, created_at, updated_at
		 FROM company_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.CompanyName, &p.Website, &p.Industry, &p.CompanySize,
		&p.Description, &p.Location, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company profile: %w", err)
	}
	return &p, nil
}

// UpsertCompanyProfile creates or updates a company profile
func (db *DB) UpsertCompanyProfile(ctx context.Context, userID uuid.UUID, input CompanyProfileInput) (*CompanyProfile, error) {
	var p CompanyProfile
	err := db.pool.QueryRow(ctx,
		`INSERT INTO company_profiles (user_id, company_name, website, industry,
		                               company_size, description, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     company_name = $2, website = $3, industry = $4, company_size = $5,
		     description = $6, location = $7, updated_at = NOW()
		 RETURNING user_id, company_name, website, industry, company_size, description,
		           location, created_at, updated_at`,
		userID, input.CompanyName, input.Website, input.Industry,
		input.CompanySize, input.Description, input.Location,
	).Scan(&p.UserID, &p.CompanyName, &p.Website, &p.Industry, &p.CompanySize,
		&p.Description, &p.Location, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company profile: %w", err)
	}
	return &p, nil
}

// GetApplicantProfile retrieves the applicant profile for a user
func (db *DB) GetApplicantProfile(ctx context.Context, userID uuid.UUID) (*ApplicantProfile, error) {
	var p ApplicantProfile
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, full_name, phone, location, github_url, linkedin_url,
		        headline, created_at, updated_at
		 FROM applicant_profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.FullName, &p.Phone, &p.Location, &p.GithubURL,
		&p.LinkedinURL, &p.Headline, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant profile: %w", err)
	}
	return &p, nil
}

// UpsertApplicantProfile creates or updates an applicant profile
func (db *DB) UpsertApplicantProfile(ctx context.Context, userID uuid.UUID, input ApplicantProfileInput) (*ApplicantProfile, error) {
	var p ApplicantProfile
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applicant_profiles (user_id, full_name, phone, location,
		                                 github_url, linkedin_url, headline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     full_name = $2, phone = $3, location = $4, github_url = $5,
		     linkedin_url = $6, headline = $7, updated_at = NOW()
		 RETURNING user_id, full_name, phone, location, github_url, linkedin_url,
		           headline, created_at, updated_at`,
		userID, input.FullName, input.Phone, input.Location,
		input.GithubURL, input.LinkedinURL, input.Headline,
	).Scan(&p.UserID, &p.FullName, &p.Phone, &p.Location, &p.GithubURL,
		&p.LinkedinURL, &p.Headline, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert applicant profile: %w", err)
	}
	return &p, nil
}
