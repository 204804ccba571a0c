package guard

import (
	"fmt"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// IdentityClaims is the request-scoped user view reconstructed from verified
// claims. It is immutable once constructed and must never be derived from a
// full user-fetch call, which could silently trigger a token refresh.
type IdentityClaims struct {
	SubjectID string
	Email     string
	Metadata  map[string]any
}

// UserFromClaims builds the user view directly from a verified claims map.
// It mirrors the identity backend's claim names: sub, email, user_metadata.
func UserFromClaims(claims map[string]any) *IdentityClaims {
	out := &IdentityClaims{
		Metadata: map[string]any{},
	}

	if claims == nil {
		return out
	}

	if sub, ok := claims["sub"].(string); ok {
		out.SubjectID = sub
	}

	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}

	if meta, ok := claims["user_metadata"].(map[string]any); ok {
		out.Metadata = meta
	}

	return out
}

// FullName returns the profile display name carried in the claim metadata.
func (c *IdentityClaims) FullName() string {
	if c.Metadata == nil {
		return ""
	}
	name, _ := c.Metadata["full_name"].(string)
	return name
}

// Phone returns the optional phone number carried in the claim metadata.
func (c *IdentityClaims) Phone() string {
	if c.Metadata == nil {
		return ""
	}
	phone, _ := c.Metadata["phone"].(string)
	return phone
}

// SubjectUUID resolves the durable identity key to a UUID. Subjects that are
// not themselves UUIDs get a deterministic hashid-derived one so repeated
// calls for the same subject always agree.
func (c *IdentityClaims) SubjectUUID() (uuid.UUID, error) {
	return resolveSubjectUUID(c.SubjectID)
}

func resolveSubjectUUID(subject string) (uuid.UUID, error) {
	if subject == "" {
		return uuid.Nil, ErrUnableToMapClaims
	}

	if id, err := uuid.Parse(subject); err == nil {
		return id, nil
	}

	return hashid.NewUUID(subject)
}

// OutcomeKind discriminates the verification outcome variants.
type OutcomeKind int

const (
	// OutcomeValid means the credentials verified and carry a subject.
	OutcomeValid OutcomeKind = iota
	// OutcomeNoSession is the normal unauthenticated state.
	OutcomeNoSession
	// OutcomeInvalidRefreshToken is the terminal credential state.
	OutcomeInvalidRefreshToken
	// OutcomeUnexpectedError covers unclassified backend faults.
	OutcomeUnexpectedError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeValid:
		return "valid"
	case OutcomeNoSession:
		return "no_session"
	case OutcomeInvalidRefreshToken:
		return "invalid_refresh_token"
	case OutcomeUnexpectedError:
		return "unexpected_error"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// AuthOutcome is the tagged result of claims verification. Claims is non-nil
// only for OutcomeValid; Err is non-nil only for OutcomeUnexpectedError.
type AuthOutcome struct {
	Kind   OutcomeKind
	Claims *IdentityClaims
	Err    error
}

// Valid reports whether the request may reach a protected page.
func (o AuthOutcome) Valid() bool {
	return o.Kind == OutcomeValid && o.Claims != nil
}
