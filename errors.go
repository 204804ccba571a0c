package guard

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Backend error discriminators that are contractually significant. The set is
// deliberately closed: a new backend code is a deliberate addition here, not
// a silent fallthrough.
const (
	// CodeRefreshTokenNotFound is the identity backend's discriminator for a
	// terminally invalid refresh token.
	CodeRefreshTokenNotFound = "refresh_token_not_found"
	// CodePolicyRecursion is the storage layer's discriminator for an
	// infinite-recursion fault in a row-level-security policy.
	CodePolicyRecursion = "42P17"
)

// ErrInvalidRefreshToken is the terminal credential state. It is the only
// condition that mandates cookie invalidation, always paired with a redirect
// to the login surface.
var ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode("INVALID_REFRESH_TOKEN").
	WithCode(errors.CodeUnauthorized)

// ErrPolicyRecursion marks a membership query that failed inside the backing
// row-level-security layer. Callers absorb it as "membership probably exists".
var ErrPolicyRecursion = errors.New("membership policy recursion detected", errors.CategoryInternal).
	WithTextCode("POLICY_RECURSION")

// ErrUnableToMapClaims signals a verified token whose claims could not be
// mapped into an identity view.
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode("UNMAPPABLE_CLAIMS")

// ErrAlreadyMember is the benign duplicate-conflict response from the
// household-creation endpoint, absorbed as success by the bootstrapper.
var ErrAlreadyMember = errors.New("user is already a member of a household", errors.CategoryConflict).
	WithTextCode("HOUSEHOLD_ALREADY_MEMBER")

// IsRefreshTokenNotFound checks both our classified error and the raw backend
// discriminator string, since errors may cross the backend boundary unwrapped.
func IsRefreshTokenNotFound(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrInvalidRefreshToken.TextCode {
		return true
	}

	return strings.Contains(err.Error(), CodeRefreshTokenNotFound)
}

// IsPolicyRecursion checks for the row-level-security recursion fault.
func IsPolicyRecursion(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode == ErrPolicyRecursion.TextCode {
		return true
	}

	return strings.Contains(err.Error(), CodePolicyRecursion) ||
		strings.Contains(err.Error(), "infinite recursion detected in policy")
}

// IsAlreadyMember checks for the absorbed duplicate-conflict classification.
func IsAlreadyMember(err error) bool {
	if err == nil {
		return false
	}

	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == ErrAlreadyMember.TextCode
}

// IsAlreadyMemberResponse classifies the household API's known-benign 400
// response body. Matching is on the message substring the backend emits.
func IsAlreadyMemberResponse(status int, body string) bool {
	if status != 400 {
		return false
	}
	return strings.Contains(strings.ToLower(body), "already a member")
}
