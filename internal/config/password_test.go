package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewPasswordConfig_Defaults tests the default bcrypt cost
func TestNewPasswordConfig_Defaults(t *testing.T) {
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("PASSWORD_PEPPER", "")

	cfg, err := NewPasswordConfig()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.Pepper)
}

// TestNewPasswordConfig_CostOutOfRange tests cost bounds enforcement
func TestNewPasswordConfig_CostOutOfRange(t *testing.T) {
	for _, v := range []string{"9", "15", "abc"} {
		t.Setenv("BCRYPT_COST", v)
		_, err := NewPasswordConfig()
		assert.Error(t, err, "cost %q should be rejected", v)
	}
}

// TestHashAndVerifyPassword tests the hash/verify round trip
func TestHashAndVerifyPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

// TestVerifyPassword_PepperMismatch tests that pepper participates in verification
func TestVerifyPassword_PepperMismatch(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "global-secret"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("pw123456")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("pw123456", hash))
	assert.False(t, plain.VerifyPassword("pw123456", hash))
}
