package guard_test

import (
	"context"
	"database/sql"
	"testing"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateHouseholdMembers = `CREATE TABLE household_members (
    id TEXT NOT NULL PRIMARY KEY,
    household_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT uq_household_members_user UNIQUE (household_id, user_id)
);`
	sqliteCreateProfiles = `CREATE TABLE profiles (
    id TEXT NOT NULL PRIMARY KEY,
    full_name TEXT,
    email TEXT,
    phone_number TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`
)

func setupGuardDB(t *testing.T) (*bun.DB, func()) {
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateHouseholdMembers)
	require.NoError(t, err)
	_, err = bunDB.Exec(sqliteCreateProfiles)
	require.NoError(t, err)

	cleanup := func() {
		_ = bunDB.Close()
		_ = db.Close()
	}

	return bunDB, cleanup
}

func TestSelectMembership(t *testing.T) {
	db, cleanup := setupGuardDB(t)
	defer cleanup()

	repo := guard.NewMembershipsRepository(db)
	ctx := context.Background()

	memberID := uuid.New()
	householdID := uuid.New()

	found, err := repo.SelectMembership(ctx, memberID.String())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.NewInsert().Model(&guard.HouseholdMember{
		ID:          uuid.New(),
		HouseholdID: householdID,
		UserID:      memberID,
	}).Exec(ctx)
	require.NoError(t, err)

	found, err = repo.SelectMembership(ctx, memberID.String())
	require.NoError(t, err)
	assert.True(t, found)

	found, err = repo.SelectMembership(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSelectMembershipNonUUIDSubject(t *testing.T) {
	db, cleanup := setupGuardDB(t)
	defer cleanup()

	repo := guard.NewMembershipsRepository(db)
	ctx := context.Background()

	// membership rows are keyed by the derived UUID, so a non-UUID subject
	// resolves to the same row on every call
	claims := &guard.IdentityClaims{SubjectID: "auth0|user-1"}
	derived, err := claims.SubjectUUID()
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&guard.HouseholdMember{
		ID:          uuid.New(),
		HouseholdID: uuid.New(),
		UserID:      derived,
	}).Exec(ctx)
	require.NoError(t, err)

	found, err := repo.SelectMembership(ctx, "auth0|user-1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSelectMembershipEmptySubject(t *testing.T) {
	db, cleanup := setupGuardDB(t)
	defer cleanup()

	repo := guard.NewMembershipsRepository(db)

	_, err := repo.SelectMembership(context.Background(), "")
	require.Error(t, err)
}
