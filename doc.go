// Package guard implements the session-validation and household-bootstrap
// gateway that sits between an identity backend and a pantry application's
// protected pages.
//
// Request flow:
//   - EdgeSessionGuard runs on every inbound request at the network edge. It
//     verifies the identity claims carried by the auth cookies and decides
//     pass-through versus cookie-clear-and-redirect. It never refreshes
//     credentials; claims are validated locally so the guard cannot trigger
//     refresh loops.
//   - PageAuthGuard runs at page-render time for protected routes. It maps
//     the verification outcome to render / redirect-to-login /
//     redirect-to-landing, then repairs required user state: profile upsert
//     and household-membership bootstrap run concurrently per page load.
//   - HouseholdBootstrapper idempotently ensures the authenticated identity
//     has at least one household membership, creating a personal household
//     through the backend API when none exists. Duplicate creations racing
//     from concurrent tabs are absorbed via the backend's conflict response
//     rather than a lock.
//
// Failure taxonomy:
//   - ErrInvalidRefreshToken is the only condition that clears auth cookies,
//     and it always pairs with a redirect to the login surface.
//   - Absence of a session is a normal unauthenticated state, never an error.
//   - Membership-policy recursion faults are absorbed (membership probably
//     exists) so a backend misconfiguration cannot block page render.
//   - Everything unclassified is re-raised loudly; the guards never swallow
//     unknown backend faults.
package guard
