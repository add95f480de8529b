package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/findr-ai/findr/internal/config"
	"github.com/findr-ai/findr/internal/db"
	"github.com/findr-ai/findr/internal/types"
)

// UserStore is the subset of db.DB used for account operations.
type UserStore interface {
	CreateUserProfile(ctx context.Context, input db.UserProfileCreateInput) (*db.UserProfile, error)
	GetUserProfile(ctx context.Context, id uuid.UUID) (*db.UserProfile, error)
	GetUserProfileByEmail(ctx context.Context, email string) (*db.UserProfile, error)
	GetUserProfileByGoogleSub(ctx context.Context, sub string) (*db.UserProfile, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	LinkGoogleSub(ctx context.Context, userID uuid.UUID, sub string) error
	SetUserRole(ctx context.Context, userID uuid.UUID, role string) error
	EnsureRoleProfile(ctx context.Context, userID uuid.UUID, role string) error
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// convertProfileToUser converts db.UserProfile to types.User, excluding the password hash
func convertProfileToUser(profile *db.UserProfile) *types.User {
	if profile == nil {
		return nil
	}
	return &types.User{
		ID:          profile.ID,
		FullName:    profile.FullName,
		Email:       profile.Email,
		AvatarURL:   profile.AvatarURL,
		Role:        profile.Role,
		PasswordSet: profile.PasswordSet,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.CreateUserRequest) (*types.User, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile, err := s.db.CreateUserProfile(ctx, db.UserProfileCreateInput{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The role-specific profile row is best effort; signing in repairs a
	// missing one.
	if err := s.db.EnsureRoleProfile(ctx, profile.ID, req.Role); err != nil {
		return nil, fmt.Errorf("failed to create role profile: %w", err)
	}

	return convertProfileToUser(profile), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	profile, err := s.db.GetUserProfileByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Security: Always return generic error if user not found or password wrong
	if profile == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !profile.PasswordSet {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, profile.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	// Repair a missing role profile left behind by an interrupted signup.
	if profile.Role != "" {
		if err := s.db.EnsureRoleProfile(ctx, profile.ID, profile.Role); err != nil {
			return nil, fmt.Errorf("failed to ensure role profile: %w", err)
		}
	}

	return convertProfileToUser(profile), nil
}

// GetUser loads a user by ID for authenticated requests
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	profile, err := s.db.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if profile == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertProfileToUser(profile), nil
}

// UpdatePassword updates a user's password. Accounts created through Google
// sign-in have no password yet; they may set one without a current password.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	profile, err := s.db.GetUserProfile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if profile == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if profile.PasswordSet {
		if !s.passwordConfig.VerifyPassword(currentPassword, profile.PasswordHash) {
			return &ErrPasswordMismatch{}
		}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.db.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetRole assigns the account role chosen after a Google sign-in and creates
// the matching role profile.
func (s *UserService) SetRole(ctx context.Context, userID uuid.UUID, role string) (*types.User, error) {
	if err := s.db.SetUserRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	if err := s.db.EnsureRoleProfile(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to create role profile: %w", err)
	}
	return s.GetUser(ctx, userID)
}

// LoginWithGoogle finds or creates the account matching a verified Google
// identity. New accounts start with no role; the client asks for one next.
func (s *UserService) LoginWithGoogle(ctx context.Context, sub, email, fullName, avatarURL string) (*types.User, error) {
	profile, err := s.db.GetUserProfileByGoogleSub(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to look up google account: %w", err)
	}
	if profile != nil {
		if profile.Role != "" {
			if err := s.db.EnsureRoleProfile(ctx, profile.ID, profile.Role); err != nil {
				return nil, fmt.Errorf("failed to ensure role profile: %w", err)
			}
		}
		return convertProfileToUser(profile), nil
	}

	// Fall back to email linking for accounts that registered with a
	// password first.
	profile, err = s.db.GetUserProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if profile != nil {
		if err := s.db.LinkGoogleSub(ctx, profile.ID, sub); err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		return convertProfileToUser(profile), nil
	}

	profile, err = s.db.CreateUserProfile(ctx, db.UserProfileCreateInput{
		Email:     email,
		FullName:  fullName,
		AvatarURL: avatarURL,
		GoogleSub: &sub,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google user: %w", err)
	}
	return convertProfileToUser(profile), nil
}
