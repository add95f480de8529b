package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultSessionCookie is the cookie name used for browser sessions.
const DefaultSessionCookie = "findr_session"

// JWTConfig holds token signing and session cookie settings.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	CookieName      string
	CookieSecure    bool
}

// NewJWTConfig reads JWT_SECRET (required), JWT_EXPIRATION_HOURS
// (default 24), SESSION_COOKIE_NAME and SESSION_COOKIE_SECURE from the
// environment.
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	expirationHours := 24
	if expirationStr := os.Getenv("JWT_EXPIRATION_HOURS"); expirationStr != "" {
		parsed, err := strconv.Atoi(expirationStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		expirationHours = parsed
	}
	if expirationHours < 1 {
		return nil, fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", expirationHours)
	}

	cookieName := os.Getenv("SESSION_COOKIE_NAME")
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}

	return &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
		CookieName:      cookieName,
		CookieSecure:    os.Getenv("SESSION_COOKIE_SECURE") == "true",
	}, nil
}
