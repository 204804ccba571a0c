package guard

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the profile record upserted on every protected-page load,
// keyed by the identity's subject id.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,type:uuid" json:"id,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	Email         string     `bun:"email" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HouseholdMember is a membership row. Existence is the only predicate the
// core reads; full membership semantics belong to the backend.
type HouseholdMember struct {
	bun.BaseModel `bun:"table:household_members,alias:hhm"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	HouseholdID   uuid.UUID  `bun:"household_id,notnull,type:uuid" json:"household_id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Household is the backend API's household resource as the client sees it.
type Household struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	IsPersonal bool   `json:"is_personal,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`
}

// PersonalHouseholdName is the name given to the default household created
// the first time a user is observed without a membership.
const PersonalHouseholdName = "Personal"
