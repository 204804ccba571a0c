package guard_test

import (
	"context"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/stretchr/testify/mock"
)

// MockIdentityBackend implements guard.IdentityBackend
type MockIdentityBackend struct {
	mock.Mock
}

func (m *MockIdentityBackend) VerifyClaims(ctx context.Context, creds guard.Credentials) (map[string]any, error) {
	args := m.Called(ctx, creds)
	var claims map[string]any
	if v := args.Get(0); v != nil {
		claims = v.(map[string]any)
	}
	return claims, args.Error(1)
}

func (m *MockIdentityBackend) GetSession(ctx context.Context, creds guard.Credentials) (*guard.SessionState, error) {
	args := m.Called(ctx, creds)
	var state *guard.SessionState
	if v := args.Get(0); v != nil {
		state = v.(*guard.SessionState)
	}
	return state, args.Error(1)
}

func (m *MockIdentityBackend) SignOut(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

// MockMembershipStore implements guard.MembershipStore
type MockMembershipStore struct {
	mock.Mock
}

func (m *MockMembershipStore) SelectMembership(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockProfileStore implements guard.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) UpsertProfile(ctx context.Context, profile *guard.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockHouseholdCreator implements guard.HouseholdCreator
type MockHouseholdCreator struct {
	mock.Mock
}

func (m *MockHouseholdCreator) CreateHousehold(ctx context.Context, token string, req guard.CreateHouseholdRequest) (*guard.Household, error) {
	args := m.Called(ctx, token, req)
	var household *guard.Household
	if v := args.Get(0); v != nil {
		household = v.(*guard.Household)
	}
	return household, args.Error(1)
}
