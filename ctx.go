package guard

import (
	"context"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the materialized user in the given context
func WithContext(r context.Context, user *IdentityClaims) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the materialized user from the context.
func FromContext(ctx context.Context) (*IdentityClaims, bool) {
	raw, ok := ctx.Value(userCtxKey).(*IdentityClaims)
	return raw, ok
}
