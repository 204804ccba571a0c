package supabase

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds the connection and verification options for the backend.
type Config struct {
	// URL is the auth service base URL (e.g. "https://xyz.supabase.co").
	URL string

	// SigningKey verifies HS256-signed access tokens (the project JWT
	// secret). Required unless JWKSetURLs is provided.
	SigningKey string

	// SigningMethod is the expected JWT alg for SigningKey. Default: HS256.
	SigningMethod string

	// JWKSetURLs enables asymmetric verification via remote JWK sets,
	// taking precedence over SigningKey.
	JWKSetURLs []string

	// Issuer to validate against (optional). Default: "{URL}/auth/v1".
	Issuer string

	// Audience to validate against (optional).
	Audience []string

	// HTTPClient used for sign-out and OTP verification calls.
	// Default: http.DefaultClient.
	HTTPClient *http.Client

	// Timeout bounds each outbound call. Default: 10 seconds.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for an HS256 project.
func DefaultConfig(url, signingKey string) Config {
	return Config{
		URL:           url,
		SigningKey:    signingKey,
		SigningMethod: "HS256",
		Timeout:       10 * time.Second,
	}
}

func (c Config) issuer() string {
	if c.Issuer != "" {
		return c.Issuer
	}
	base := strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/auth/v1", base)
}

func (c Config) validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("supabase: URL is required")
	}
	if c.SigningKey == "" && len(c.JWKSetURLs) == 0 {
		return fmt.Errorf("supabase: one of SigningKey or JWKSetURLs is required")
	}
	return nil
}
