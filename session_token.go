package guard

import (
	"context"

	"github.com/goliatone/go-errors"
)

// SessionTokenAccessor obtains a bearer token for outbound API calls. Absence
// of a session is reported as found=false with a nil error; it is a state,
// not a failure, and callers must treat it as "cannot perform the dependent
// network call".
type SessionTokenAccessor struct {
	backend IdentityBackend
	logger  Logger
}

func NewSessionTokenAccessor(backend IdentityBackend) *SessionTokenAccessor {
	return &SessionTokenAccessor{
		backend: backend,
		logger:  defLogger{},
	}
}

func (a *SessionTokenAccessor) WithLogger(l Logger) *SessionTokenAccessor {
	if l != nil {
		a.logger = l
	}
	return a
}

// Token retrieves the current session token from the backing store. An
// invalid refresh token propagates classified so callers redirect to login;
// any other store error is logged and propagated wrapped.
func (a *SessionTokenAccessor) Token(ctx context.Context, creds Credentials) (string, bool, error) {
	state, err := a.backend.GetSession(ctx, creds)
	if err != nil {
		if IsRefreshTokenNotFound(err) {
			return "", false, ErrInvalidRefreshToken
		}

		a.logger.Error("session token retrieval failed", "error", err)
		return "", false, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve session token")
	}

	if state == nil || state.AccessToken == "" {
		return "", false, nil
	}

	return state.AccessToken, true, nil
}
