package guard_test

import (
	"context"
	"errors"
	"testing"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClaimsVerifierValid(t *testing.T) {
	backend := new(MockIdentityBackend)
	backend.On("VerifyClaims", mock.Anything, mock.Anything).Return(map[string]any{
		"sub":   "11111111-2222-3333-4444-555555555555",
		"email": "ada@example.com",
		"user_metadata": map[string]any{
			"full_name": "Ada Lovelace",
		},
	}, nil)

	verifier := guard.NewClaimsVerifier(backend)
	outcome := verifier.Verify(context.Background(), guard.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
	})

	assert.Equal(t, guard.OutcomeValid, outcome.Kind)
	assert.True(t, outcome.Valid())
	require.NotNil(t, outcome.Claims)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", outcome.Claims.SubjectID)
	assert.Equal(t, "ada@example.com", outcome.Claims.Email)
	assert.Equal(t, "Ada Lovelace", outcome.Claims.FullName())
	assert.NoError(t, outcome.Err)
	backend.AssertExpectations(t)
}

func TestClaimsVerifierNoSession(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
	}{
		{
			name:   "Backend returns nil claims",
			claims: nil,
		},
		{
			name:   "Claims without subject",
			claims: map[string]any{"email": "ada@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := new(MockIdentityBackend)
			backend.On("VerifyClaims", mock.Anything, mock.Anything).Return(tt.claims, nil)

			verifier := guard.NewClaimsVerifier(backend)
			outcome := verifier.Verify(context.Background(), guard.Credentials{})

			assert.Equal(t, guard.OutcomeNoSession, outcome.Kind)
			assert.False(t, outcome.Valid())
			assert.Nil(t, outcome.Claims)
			assert.NoError(t, outcome.Err)
		})
	}
}

func TestClaimsVerifierInvalidRefreshToken(t *testing.T) {
	backend := new(MockIdentityBackend)
	backend.On("VerifyClaims", mock.Anything, mock.Anything).
		Return(nil, guard.ErrInvalidRefreshToken)

	verifier := guard.NewClaimsVerifier(backend)
	outcome := verifier.Verify(context.Background(), guard.Credentials{
		AccessToken:  "stale",
		RefreshToken: "revoked",
	})

	assert.Equal(t, guard.OutcomeInvalidRefreshToken, outcome.Kind)
	assert.False(t, outcome.Valid())
	assert.Nil(t, outcome.Claims)
	assert.NoError(t, outcome.Err)
}

func TestClaimsVerifierUnexpectedError(t *testing.T) {
	backendErr := errors.New("jwks endpoint unreachable")

	backend := new(MockIdentityBackend)
	backend.On("VerifyClaims", mock.Anything, mock.Anything).Return(nil, backendErr)

	verifier := guard.NewClaimsVerifier(backend)
	outcome := verifier.Verify(context.Background(), guard.Credentials{AccessToken: "access"})

	assert.Equal(t, guard.OutcomeUnexpectedError, outcome.Kind)
	assert.False(t, outcome.Valid())
	require.Error(t, outcome.Err)
	assert.ErrorIs(t, outcome.Err, backendErr)
}
