// Package edgeguard adapts guard.EdgeSessionGuard to Fiber. It runs before
// any page code and communicates outcome purely through the response:
// pass-through, or auth-cookie invalidation paired with a login redirect.
package edgeguard

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	guard "github.com/goliatone/go-pantry-guard"
)

// Config defines the configuration for the edge guard middleware
type Config struct {
	// Guard decides pass-through versus redirect. Required.
	Guard *guard.EdgeSessionGuard

	// CookiePrefix selects the auth cookies to read and, on invalidation,
	// to clear. Default: guard.DefaultCookiePrefix.
	CookiePrefix string

	// AccessTokenCookie overrides the access token cookie name.
	// Default: "{CookiePrefix}access-token".
	AccessTokenCookie string

	// RefreshTokenCookie overrides the refresh token cookie name.
	// Default: "{CookiePrefix}refresh-token".
	RefreshTokenCookie string

	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool

	// ErrorHandler handles re-raised verification faults.
	// Default: propagate to the app's error handler.
	ErrorHandler fiber.ErrorHandler
}

func configDefaults(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Guard == nil {
		panic("GUARD: edge middleware configuration: Guard is required.")
	}

	if cfg.CookiePrefix == "" {
		cfg.CookiePrefix = guard.DefaultCookiePrefix
	}

	if cfg.AccessTokenCookie == "" {
		cfg.AccessTokenCookie = cfg.CookiePrefix + "access-token"
	}

	if cfg.RefreshTokenCookie == "" {
		cfg.RefreshTokenCookie = cfg.CookiePrefix + "refresh-token"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return err
		}
	}

	return cfg
}

// New returns the edge guard middleware.
func New(config ...Config) fiber.Handler {
	cfg := configDefaults(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		creds := guard.Credentials{
			AccessToken:  c.Cookies(cfg.AccessTokenCookie),
			RefreshToken: c.Cookies(cfg.RefreshTokenCookie),
		}

		decision, err := cfg.Guard.Inspect(c.UserContext(), c.Path(), creds)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		if decision.ClearAuthCookies {
			ClearAuthCookies(c, cfg.CookiePrefix)
		}

		if decision.Action == guard.ActionRedirect {
			return c.Redirect(decision.Location, redirectStatus(c))
		}

		return c.Next()
	}
}

// ClearAuthCookies expires every request cookie carrying the auth prefix.
// Exposed so sign-out handlers can reuse the same cookie hygiene.
func ClearAuthCookies(c *fiber.Ctx, prefix string) {
	names := make([]string, 0, 4)
	c.Request().Header.VisitAllCookie(func(key, value []byte) {
		if strings.HasPrefix(string(key), prefix) {
			names = append(names, string(key))
		}
	})

	for _, name := range names {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Now().Add(-time.Hour * (24 * 365)),
			HTTPOnly: true,
			Secure:   true,
			SameSite: "Lax",
		})
	}
}

func redirectStatus(c *fiber.Ctx) int {
	if c.Method() == fiber.MethodGet {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
