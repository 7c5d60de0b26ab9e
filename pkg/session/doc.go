// Package session composes request-scoped sessions from verified
// identities and orchestrates the login flow.
//
// A Session pairs the provider-verified user with the most recently
// created enrollment (class membership). It is built on demand and
// discarded at the end of the request; the HttpOnly token cookie is the
// only durable session state.
//
// The Orchestrator runs login end to end: dual-namespace rate limiting,
// the provider credential check, limiter resets on success, and a
// best-effort profile fetch whose failure falls back to the identity
// returned by the credential check.
package session
