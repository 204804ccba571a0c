package guard

import (
	"context"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// ProfileSynchronizer upserts a profile record keyed by identity id. It runs
// in the same concurrent batch as the household bootstrapper on every
// protected-page load; failures are logged and never block rendering.
type ProfileSynchronizer struct {
	store         ProfileStore
	defaultRegion string
	logger        Logger
}

func NewProfileSynchronizer(store ProfileStore) *ProfileSynchronizer {
	return &ProfileSynchronizer{
		store:         store,
		defaultRegion: "US",
		logger:        defLogger{},
	}
}

func (s *ProfileSynchronizer) WithLogger(l Logger) *ProfileSynchronizer {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithDefaultRegion sets the region used to parse phone metadata that does
// not carry a country prefix.
func (s *ProfileSynchronizer) WithDefaultRegion(region string) *ProfileSynchronizer {
	if region != "" {
		s.defaultRegion = region
	}
	return s
}

// Sync upserts the profile derived from the verified claims. The returned
// error is informational; callers log it and proceed.
func (s *ProfileSynchronizer) Sync(ctx context.Context, claims *IdentityClaims) error {
	if claims == nil {
		return ErrUnableToMapClaims
	}

	id, err := claims.SubjectUUID()
	if err != nil {
		s.logger.Error("profile sync could not resolve subject id", "subject", claims.SubjectID, "error", err)
		return err
	}

	now := time.Now()
	profile := &Profile{
		ID:        id,
		FullName:  claims.FullName(),
		Email:     claims.Email,
		Phone:     s.normalizePhone(claims.Phone()),
		UpdatedAt: &now,
	}

	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		s.logger.Error("profile upsert failed", "subject", claims.SubjectID, "error", err)
		return err
	}

	return nil
}

// normalizePhone formats phone metadata to E.164. Unparseable or invalid
// values are dropped rather than stored raw.
func (s *ProfileSynchronizer) normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}

	num, err := phonenumbers.Parse(raw, s.defaultRegion)
	if err != nil {
		s.logger.Debug("dropping unparseable phone metadata", "error", err)
		return ""
	}

	if !phonenumbers.IsValidNumber(num) {
		return ""
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
