// Package pageguard adapts guard.PageAuthGuard to go-router handlers. It
// guards protected page routes: on success the materialized user lands in
// request locals for the page to render; on failure the request is
// redirected before any page code runs.
package pageguard

import (
	"net/http"
	"time"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is the locals key the materialized user is stored under.
const DefaultContextKey = "current_user"

// Config defines the configuration for the page guard middleware
type Config struct {
	// Guard verifies, redirects, and repairs user state. Required.
	Guard *guard.PageAuthGuard

	// ContextKey is the locals key for the materialized user.
	// Default: DefaultContextKey.
	ContextKey string

	// AccessTokenCookie is the access token cookie name.
	// Default: "{guard.DefaultCookiePrefix}access-token".
	AccessTokenCookie string

	// RefreshTokenCookie is the refresh token cookie name.
	// Default: "{guard.DefaultCookiePrefix}refresh-token".
	RefreshTokenCookie string

	// ErrorHandler handles unclassified verification faults, which are
	// intentionally fatal to the render.
	ErrorHandler router.ErrorHandler
}

func configDefaults(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Guard == nil {
		panic("GUARD: page middleware configuration: Guard is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.AccessTokenCookie == "" {
		cfg.AccessTokenCookie = guard.DefaultCookiePrefix + "access-token"
	}

	if cfg.RefreshTokenCookie == "" {
		cfg.RefreshTokenCookie = guard.DefaultCookiePrefix + "refresh-token"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c router.Context, err error) error {
			return err
		}
	}

	return cfg
}

// New returns the page guard middleware.
func New(config ...Config) router.MiddlewareFunc {
	cfg := configDefaults(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			creds := guard.Credentials{
				AccessToken:  ctx.Cookies(cfg.AccessTokenCookie),
				RefreshToken: ctx.Cookies(cfg.RefreshTokenCookie),
			}

			claims, redirect, err := cfg.Guard.Materialize(ctx.Context(), creds)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if redirect != nil {
				if redirect.ClearAuthCookies {
					cookieDel(ctx, cfg.AccessTokenCookie)
					cookieDel(ctx, cfg.RefreshTokenCookie)
				}
				return ctx.Redirect(redirect.Location, redirectStatus(ctx))
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(guard.WithContext(ctx.Context(), claims))
			return ctx.Next()
		}
	}
}

// FromContext extracts the materialized user stored by the middleware.
func FromContext(ctx router.Context, key string) (*guard.IdentityClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}

	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}

	claims, ok := raw.(*guard.IdentityClaims)
	return claims, ok
}

func cookieDel(c router.Context, name string) {
	c.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func redirectStatus(c router.Context) int {
	if c.Method() == string(router.GET) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}
