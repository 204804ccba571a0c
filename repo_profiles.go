package guard

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profiles is the profile repository. UpsertProfile is idempotent by id.
type Profiles interface {
	repository.Repository[*Profile]

	UpsertProfile(ctx context.Context, record *Profile) error
	UpsertProfileTx(ctx context.Context, tx bun.IDB, record *Profile) error
}

type profiles struct {
	repository.Repository[*Profile]
	db *bun.DB
}

var (
	_ Profiles     = (*profiles)(nil)
	_ ProfileStore = (*profiles)(nil)
)

func NewProfilesRepository(db *bun.DB) Profiles {
	repo := repository.NewRepository[*Profile](db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &profiles{
		Repository: repo,
		db:         db,
	}
}

func (p *profiles) UpsertProfile(ctx context.Context, record *Profile) error {
	return p.UpsertProfileTx(ctx, p.db, record)
}

// UpsertProfileTx inserts the profile or, on id conflict, refreshes the
// mutable columns. Concurrent duplicate calls collapse onto the same row.
func (p *profiles) UpsertProfileTx(ctx context.Context, tx bun.IDB, record *Profile) error {
	_, err := tx.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("full_name = EXCLUDED.full_name").
		Set("email = EXCLUDED.email").
		Set("phone_number = EXCLUDED.phone_number").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	return err
}
