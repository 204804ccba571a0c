package guard

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Credentials carries the raw auth cookie pair extracted from an inbound
// request. The guard never parses the refresh token, only forwards it.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether the request carried no auth material at all.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// SessionState is the backing store's view of the current session: an opaque
// bearer token plus the expiry owned by the auth store.
type SessionState struct {
	AccessToken string
	ExpiresAt   time.Time
}

// IdentityBackend is the identity service consumed by the guards. VerifyClaims
// must validate credentials without triggering a token refresh as a side
// effect; a nil claims map with a nil error means no session is present.
type IdentityBackend interface {
	VerifyClaims(ctx context.Context, creds Credentials) (map[string]any, error)
	GetSession(ctx context.Context, creds Credentials) (*SessionState, error)
	SignOut(ctx context.Context, accessToken string) error
}

// MembershipStore answers the single existence predicate the core needs:
// does at least one household membership row exist for this user.
type MembershipStore interface {
	SelectMembership(ctx context.Context, userID string) (bool, error)
}

// ProfileStore upserts profile records keyed by identity id.
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *Profile) error
}

// HouseholdCreator is the backend household API surface the bootstrapper
// depends on.
type HouseholdCreator interface {
	CreateHousehold(ctx context.Context, token string, req CreateHouseholdRequest) (*Household, error)
}

// Config holds guard options
type Config interface {
	GetLoginPath() string
	GetLandingPath() string
	GetCookiePrefix() string
	GetPublicPrefixes() []string
	GetHouseholdAPIBase() string
	GetRequestTimeout() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] GUARD "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] GUARD "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] GUARD "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
