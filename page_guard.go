package guard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Redirect signals that rendering must stop and the request be sent
// elsewhere. ClearAuthCookies is true only on the invalid-refresh-token
// path: cookie invalidation never happens without a login redirect.
type Redirect struct {
	Location         string
	ClearAuthCookies bool
}

// PageAuthGuard runs at page-render time for protected routes. It decides
// render versus redirect and triggers the bootstrap side effects.
type PageAuthGuard struct {
	verifier  *ClaimsVerifier
	bootstrap *HouseholdBootstrapper
	profiles  *ProfileSynchronizer
	cfg       Config
	logger    Logger
}

func NewPageAuthGuard(verifier *ClaimsVerifier, bootstrap *HouseholdBootstrapper, profiles *ProfileSynchronizer, cfg Config) *PageAuthGuard {
	return &PageAuthGuard{
		verifier:  verifier,
		bootstrap: bootstrap,
		profiles:  profiles,
		cfg:       cfg,
		logger:    defLogger{},
	}
}

func (g *PageAuthGuard) WithLogger(l Logger) *PageAuthGuard {
	if l != nil {
		g.logger = l
	}
	return g
}

// Guard verifies the request credentials and maps the outcome to a render /
// redirect decision. An invalid refresh token redirects to login with cookie
// invalidation; a missing session redirects to the landing surface, which is
// a normal unauthenticated state and must not imply the session was
// invalidated. The user view is reconstructed directly from the verified
// claims; no separate user-fetch call is issued, to avoid a refresh trigger.
func (g *PageAuthGuard) Guard(ctx context.Context, creds Credentials) (*IdentityClaims, *Redirect, error) {
	outcome := g.verifier.Verify(ctx, creds)

	switch outcome.Kind {
	case OutcomeInvalidRefreshToken:
		return nil, &Redirect{
			Location:         g.cfg.GetLoginPath(),
			ClearAuthCookies: true,
		}, nil

	case OutcomeUnexpectedError:
		// backend/config fault, surfaces as a fatal render error
		return nil, nil, outcome.Err

	case OutcomeNoSession:
		return nil, &Redirect{Location: g.cfg.GetLandingPath()}, nil
	}

	return outcome.Claims, nil, nil
}

// Materialize guards the request, then repairs required user state: profile
// upsert and household bootstrap run concurrently since they are
// independent, so their combined latency is the max of the two. Bootstrap
// and profile failures degrade gracefully; the only escalation out of the
// fan-out is an invalid refresh token discovered mid-bootstrap.
func (g *PageAuthGuard) Materialize(ctx context.Context, creds Credentials) (*IdentityClaims, *Redirect, error) {
	claims, redirect, err := g.Guard(ctx, creds)
	if err != nil || redirect != nil {
		return nil, redirect, err
	}

	grp, grpCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		// best effort: Sync logs its own failures
		g.profiles.Sync(grpCtx, claims)
		return nil
	})

	grp.Go(func() error {
		decision, err := g.bootstrap.Ensure(grpCtx, claims.SubjectID, creds)
		if err != nil {
			return err
		}
		g.logger.Debug("household bootstrap resolved", "user_id", claims.SubjectID, "state", decision.State.String())
		return nil
	})

	if err := grp.Wait(); err != nil {
		if IsRefreshTokenNotFound(err) {
			return nil, &Redirect{
				Location:         g.cfg.GetLoginPath(),
				ClearAuthCookies: true,
			}, nil
		}
		return nil, nil, err
	}

	return claims, nil, nil
}
