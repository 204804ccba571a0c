package guard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateHousehold(t *testing.T) {
	var gotAuth string
	var gotBody guard.CreateHouseholdRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/households/create", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"household_id": "hh-1",
			"name":         "Personal",
			"is_personal":  true,
		})
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	household, err := client.CreateHousehold(context.Background(), "bearer-token", guard.CreateHouseholdRequest{
		Name:       guard.PersonalHouseholdName,
		IsPersonal: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer bearer-token", gotAuth)
	assert.Equal(t, guard.PersonalHouseholdName, gotBody.Name)
	assert.True(t, gotBody.IsPersonal)

	require.NotNil(t, household)
	assert.Equal(t, "hh-1", household.ID)
	assert.True(t, household.IsPersonal)
}

func TestCreateHouseholdAlreadyMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"detail": "User is already a member of a household",
		})
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	_, err := client.CreateHousehold(context.Background(), "bearer-token", guard.CreateHouseholdRequest{
		Name: guard.PersonalHouseholdName,
	})

	require.Error(t, err)
	assert.True(t, guard.IsAlreadyMember(err))
}

func TestCreateHouseholdServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	_, err := client.CreateHousehold(context.Background(), "bearer-token", guard.CreateHouseholdRequest{
		Name: guard.PersonalHouseholdName,
	})

	require.Error(t, err)
	assert.False(t, guard.IsAlreadyMember(err))
}

func TestCreateHouseholdValidatesPayload(t *testing.T) {
	client := guard.NewHouseholdAPIClient("http://unused.invalid")
	_, err := client.CreateHousehold(context.Background(), "bearer-token", guard.CreateHouseholdRequest{})
	require.Error(t, err)
}

func TestCreateHouseholdUndecodableSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	household, err := client.CreateHousehold(context.Background(), "bearer-token", guard.CreateHouseholdRequest{
		Name: guard.PersonalHouseholdName,
	})

	require.NoError(t, err)
	require.NotNil(t, household)
	assert.Empty(t, household.ID)
}

func TestJoinHousehold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/households/join", r.URL.Path)

		var body guard.JoinHouseholdRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ABCD1234", body.InviteCode)

		json.NewEncoder(w).Encode(map[string]any{"id": "hh-2", "name": "Shared"})
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	household, err := client.JoinHousehold(context.Background(), "bearer-token", "ABCD1234")

	require.NoError(t, err)
	require.NotNil(t, household)
	// id fallback when the response has no household_id field
	assert.Equal(t, "hh-2", household.ID)
}

func TestJoinHouseholdValidatesInviteCode(t *testing.T) {
	client := guard.NewHouseholdAPIClient("http://unused.invalid")
	_, err := client.JoinHousehold(context.Background(), "bearer-token", "ab")
	require.Error(t, err)
}

func TestLeaveHousehold(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	err := client.LeaveHousehold(context.Background(), "bearer-token")

	require.NoError(t, err)
	assert.Equal(t, "/households/leave", gotPath)
}

func TestConvertToJoinable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/households/convert-to-joinable", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"household_id": "hh-1",
			"name":         "Family",
			"invite_code":  "ABCD1234",
		})
	}))
	defer srv.Close()

	client := guard.NewHouseholdAPIClient(srv.URL)
	household, err := client.ConvertToJoinable(context.Background(), "bearer-token", "Family")

	require.NoError(t, err)
	require.NotNil(t, household)
	assert.Equal(t, "Family", household.Name)
	assert.Equal(t, "ABCD1234", household.InviteCode)
}
