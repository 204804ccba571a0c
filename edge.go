package guard

import (
	"context"
	"strings"
)

// EdgeAction is what the edge layer should do with the inbound request.
type EdgeAction int

const (
	// ActionAllow passes the request through unmodified.
	ActionAllow EdgeAction = iota
	// ActionRedirect terminates the request with a redirect.
	ActionRedirect
)

// EdgeDecision is the edge guard's verdict, expressed purely as data: the
// edge layer has no exceptions-as-navigation available, so the outcome is
// communicated via the returned decision and applied to response primitives
// by the transport adapter.
type EdgeDecision struct {
	Action           EdgeAction
	Location         string
	ClearAuthCookies bool
}

// EdgeSessionGuard runs on every inbound request before any page code. It
// decides pass-through versus cookie-clear-and-redirect based on claims
// verification alone.
type EdgeSessionGuard struct {
	verifier *ClaimsVerifier
	cfg      Config
	logger   Logger
}

func NewEdgeSessionGuard(verifier *ClaimsVerifier, cfg Config) *EdgeSessionGuard {
	return &EdgeSessionGuard{
		verifier: verifier,
		cfg:      cfg,
		logger:   defLogger{},
	}
}

func (g *EdgeSessionGuard) WithLogger(l Logger) *EdgeSessionGuard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Inspect classifies the request. An InvalidRefreshToken outcome is terminal:
// clear every auth-prefixed cookie and redirect to login. A missing session
// is allowed only on the unauthenticated surfaces. Unexpected verification
// faults are re-raised: they are configuration or backend problems, not user
// auth conditions, and must fail the request loudly.
func (g *EdgeSessionGuard) Inspect(ctx context.Context, path string, creds Credentials) (EdgeDecision, error) {
	outcome := g.verifier.Verify(ctx, creds)

	switch outcome.Kind {
	case OutcomeInvalidRefreshToken:
		g.logger.Info("edge guard invalidating session", "path", path)
		return EdgeDecision{
			Action:           ActionRedirect,
			Location:         g.cfg.GetLoginPath(),
			ClearAuthCookies: true,
		}, nil

	case OutcomeUnexpectedError:
		return EdgeDecision{}, outcome.Err

	case OutcomeValid:
		return EdgeDecision{Action: ActionAllow}, nil
	}

	// no session: public surfaces pass through unmodified
	if g.isPublicPath(path) {
		return EdgeDecision{Action: ActionAllow}, nil
	}

	return EdgeDecision{
		Action:           ActionRedirect,
		Location:         g.cfg.GetLoginPath(),
		ClearAuthCookies: true,
	}, nil
}

func (g *EdgeSessionGuard) isPublicPath(path string) bool {
	if path == g.cfg.GetLandingPath() {
		return true
	}

	for _, prefix := range g.cfg.GetPublicPrefixes() {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
