// Package supabase implements guard.IdentityBackend against a GoTrue-style
// auth service: claims are verified locally from the signed access token
// (never via a user-fetch call that could trigger a silent refresh), and the
// session token is read from the same credentials the request carried.
package supabase
