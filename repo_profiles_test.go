package guard_test

import (
	"context"
	"testing"
	"time"

	guard "github.com/goliatone/go-pantry-guard"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfileIsIdempotent(t *testing.T) {
	db, cleanup := setupGuardDB(t)
	defer cleanup()

	repo := guard.NewProfilesRepository(db)
	ctx := context.Background()

	id := uuid.New()
	now := time.Now().UTC()

	err := repo.UpsertProfile(ctx, &guard.Profile{
		ID:        id,
		FullName:  "Ada Lovelace",
		Email:     "ada@example.com",
		Phone:     "+14155552671",
		UpdatedAt: &now,
	})
	require.NoError(t, err)

	// second upsert with the same id refreshes in place, no duplicate row
	later := now.Add(time.Minute)
	err = repo.UpsertProfile(ctx, &guard.Profile{
		ID:        id,
		FullName:  "Ada King",
		Email:     "ada@example.com",
		UpdatedAt: &later,
	})
	require.NoError(t, err)

	count, err := db.NewSelect().Model((*guard.Profile)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored := &guard.Profile{}
	err = db.NewSelect().Model(stored).Where("id = ?", id).Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", stored.FullName)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Empty(t, stored.Phone)
}

func TestUpsertProfileSeparateIdentities(t *testing.T) {
	db, cleanup := setupGuardDB(t)
	defer cleanup()

	repo := guard.NewProfilesRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, email := range []string{"ada@example.com", "grace@example.com"} {
		err := repo.UpsertProfile(ctx, &guard.Profile{
			ID:        uuid.New(),
			Email:     email,
			UpdatedAt: &now,
		})
		require.NoError(t, err)
	}

	count, err := db.NewSelect().Model((*guard.Profile)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
