package validation

import (
	"testing"

	"github.com/Silexemple/satoshi-casino21/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name      string
		request   models.RegisterRequest
		wantError bool
		errorMsg  string
	}{
		{
			name: "Valid request",
			request: models.RegisterRequest{
				Email:    "alice@example.com",
				Username: "alice_01",
				Password: "Password123!",
			},
			wantError: false,
		},
		{
			name: "Missing email",
			request: models.RegisterRequest{
				Username: "alice_01",
				Password: "Password123!",
			},
			wantError: true,
			errorMsg:  "email is required",
		},
		{
			name: "Invalid email format",
			request: models.RegisterRequest{
				Email:    "not-an-email",
				Username: "alice_01",
				Password: "Password123!",
			},
			wantError: true,
			errorMsg:  "email must be a valid email address",
		},
		{
			name: "Username too short",
			request: models.RegisterRequest{
				Email:    "alice@example.com",
				Username: "ab",
				Password: "Password123!",
			},
			wantError: true,
			errorMsg:  "username must be at least 3 characters long",
		},
		{
			name: "Username with invalid characters",
			request: models.RegisterRequest{
				Email:    "alice@example.com",
				Username: "alice-01!",
				Password: "Password123!",
			},
			wantError: true,
			errorMsg:  "username must contain only letters, numbers, and underscores",
		},
		{
			name: "Weak password",
			request: models.RegisterRequest{
				Email:    "alice@example.com",
				Username: "alice_01",
				Password: "alllowercase1",
			},
			wantError: true,
			errorMsg:  "password must contain at least one uppercase letter",
		},
		{
			name: "Password too short",
			request: models.RegisterRequest{
				Email:    "alice@example.com",
				Username: "alice_01",
				Password: "Pw1!",
			},
			wantError: true,
			errorMsg:  "password must be at least 8 characters long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.request)
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLoginRequest(t *testing.T) {
	err := Validate(models.LoginRequest{EmailOrUsername: "alice", Password: "pw"})
	assert.NoError(t, err)

	err = Validate(models.LoginRequest{Password: "pw"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email_or_username is required")
}
