package guard

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// DefaultCookiePrefix is the name prefix the auth store uses for its cookies.
const DefaultCookiePrefix = "sb-"

// DefaultRequestTimeout bounds every outbound backend call issued by the
// core; the host network call has no intrinsic deadline.
const DefaultRequestTimeout = 10 * time.Second

// GuardConfig is the concrete Config used by the guards.
type GuardConfig struct {
	LoginPath        string
	LandingPath      string
	CookiePrefix     string
	PublicPrefixes   []string
	HouseholdAPIBase string
	RequestTimeout   time.Duration
}

// NewGuardConfig returns a config with the defaults the pantry app ships
// with: login at /login, landing at /, auth callback and registration public.
func NewGuardConfig(apiBase string) *GuardConfig {
	return &GuardConfig{
		LoginPath:        "/login",
		LandingPath:      "/",
		CookiePrefix:     DefaultCookiePrefix,
		PublicPrefixes:   []string{"/login", "/register", "/auth"},
		HouseholdAPIBase: apiBase,
		RequestTimeout:   DefaultRequestTimeout,
	}
}

// Validate will validate the config
func (c GuardConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LoginPath, validation.Required),
		validation.Field(&c.LandingPath, validation.Required),
		validation.Field(&c.CookiePrefix, validation.Required),
		validation.Field(&c.HouseholdAPIBase, validation.Required),
	)
}

func (c *GuardConfig) GetLoginPath() string {
	return c.LoginPath
}

func (c *GuardConfig) GetLandingPath() string {
	return c.LandingPath
}

func (c *GuardConfig) GetCookiePrefix() string {
	if c.CookiePrefix == "" {
		return DefaultCookiePrefix
	}
	return c.CookiePrefix
}

func (c *GuardConfig) GetPublicPrefixes() []string {
	return c.PublicPrefixes
}

func (c *GuardConfig) GetHouseholdAPIBase() string {
	return c.HouseholdAPIBase
}

func (c *GuardConfig) GetRequestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return DefaultRequestTimeout
	}
	return c.RequestTimeout
}

var _ Config = (*GuardConfig)(nil)
