package guard

import (
	"context"

	"github.com/goliatone/go-errors"
)

// ClaimsVerifier validates incoming credentials against the identity backend
// and classifies the result. It calls the backend's claims-verification
// primitive exactly once per request and never refreshes credentials; the
// claims-based path exists precisely so guard logic cannot trigger a refresh
// and loop.
type ClaimsVerifier struct {
	backend IdentityBackend
	logger  Logger
}

// NewClaimsVerifier returns a stateless verifier, constructed once per
// process and reused across requests.
func NewClaimsVerifier(backend IdentityBackend) *ClaimsVerifier {
	return &ClaimsVerifier{
		backend: backend,
		logger:  defLogger{},
	}
}

func (v *ClaimsVerifier) WithLogger(l Logger) *ClaimsVerifier {
	if l != nil {
		v.logger = l
	}
	return v
}

// Verify classifies the credentials into an AuthOutcome. Unknown backend
// faults are carried in the outcome for the caller to re-raise; the verifier
// does not swallow them.
func (v *ClaimsVerifier) Verify(ctx context.Context, creds Credentials) AuthOutcome {
	claims, err := v.backend.VerifyClaims(ctx, creds)
	if err != nil {
		if IsRefreshTokenNotFound(err) {
			v.logger.Debug("claims verification found invalid refresh token")
			return AuthOutcome{Kind: OutcomeInvalidRefreshToken}
		}

		return AuthOutcome{
			Kind: OutcomeUnexpectedError,
			Err:  errors.Wrap(err, errors.CategoryAuth, "claims verification failed"),
		}
	}

	user := UserFromClaims(claims)
	if user.SubjectID == "" {
		return AuthOutcome{Kind: OutcomeNoSession}
	}

	return AuthOutcome{Kind: OutcomeValid, Claims: user}
}
