package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCreateUserRequestValidate tests validation of registration requests.
func TestCreateUserRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantErr bool
	}{
		{
			name: "valid company account",
			req: CreateUserRequest{
				FullName: "Jane Doe",
				Email:    "jane@example.com",
				Password: "supersecret",
				Role:     "company",
			},
			wantErr: false,
		},
		{
			name: "valid applicant account",
			req: CreateUserRequest{
				FullName: "Jane Doe",
				Email:    "jane@example.com",
				Password: "supersecret",
				Role:     "applicant",
			},
			wantErr: false,
		},
		{
			name: "invalid email",
			req: CreateUserRequest{
				FullName: "Jane Doe",
				Email:    "not-an-email",
				Password: "supersecret",
				Role:     "company",
			},
			wantErr: true,
		},
		{
			name: "short password",
			req: CreateUserRequest{
				FullName: "Jane Doe",
				Email:    "jane@example.com",
				Password: "short",
				Role:     "company",
			},
			wantErr: true,
		},
		{
			name: "unknown role",
			req: CreateUserRequest{
				FullName: "Jane Doe",
				Email:    "jane@example.com",
				Password: "supersecret",
				Role:     "admin",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestLoginRequestValidate tests validation of login requests.
func TestLoginRequestValidate(t *testing.T) {
	valid := LoginRequest{Email: "jane@example.com", Password: "supersecret"}
	assert.NoError(t, valid.Validate())

	missing := LoginRequest{Email: "jane@example.com"}
	assert.Error(t, missing.Validate())
}

// TestUpdatePasswordRequestValidate tests that a current password is optional
// but the new password must meet the minimum length.
func TestUpdatePasswordRequestValidate(t *testing.T) {
	setInitial := UpdatePasswordRequest{NewPassword: "supersecret"}
	assert.NoError(t, setInitial.Validate())

	tooShort := UpdatePasswordRequest{CurrentPassword: "supersecret", NewPassword: "short"}
	assert.Error(t, tooShort.Validate())
}
