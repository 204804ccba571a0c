package guard

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Memberships is the household-membership repository. SelectMembership is the
// only operation the guard core consumes; the full repository surface exists
// for operators and tests.
type Memberships interface {
	repository.Repository[*HouseholdMember]

	SelectMembership(ctx context.Context, userID string) (bool, error)
	SelectMembershipTx(ctx context.Context, tx bun.IDB, userID string) (bool, error)
}

type memberships struct {
	repository.Repository[*HouseholdMember]
	db *bun.DB
}

var (
	_ Memberships     = (*memberships)(nil)
	_ MembershipStore = (*memberships)(nil)
)

func NewMembershipsRepository(db *bun.DB) Memberships {
	repo := repository.NewRepository[*HouseholdMember](db, repository.ModelHandlers[*HouseholdMember]{
		NewRecord: func() *HouseholdMember { return &HouseholdMember{} },
		GetID: func(m *HouseholdMember) uuid.UUID {
			if m == nil {
				return uuid.Nil
			}
			return m.ID
		},
		SetID: func(m *HouseholdMember, id uuid.UUID) {
			if m != nil {
				m.ID = id
			}
		},
	})

	return &memberships{
		Repository: repo,
		db:         db,
	}
}

func (m *memberships) SelectMembership(ctx context.Context, userID string) (bool, error) {
	return m.SelectMembershipTx(ctx, m.db, userID)
}

// SelectMembershipTx reports whether at least one membership row exists for
// the user. Errors are returned unclassified; the bootstrapper owns the
// policy-recursion absorption.
func (m *memberships) SelectMembershipTx(ctx context.Context, tx bun.IDB, userID string) (bool, error) {
	id, err := resolveSubjectUUID(userID)
	if err != nil {
		return false, err
	}

	return tx.NewSelect().
		Model((*HouseholdMember)(nil)).
		Where("?TableAlias.user_id = ?", id).
		Limit(1).
		Exists(ctx)
}
