// Package csrf implements double-submit CSRF protection for mutating
// requests.
//
// SameSite=Lax cookies only cover top-level navigations; POST, PUT,
// PATCH and DELETE need an explicit token. The Guard issues one random
// 256-bit value as an HttpOnly cookie plus a client-readable mirror, and
// verifies that the X-CSRF-Token header matches the HttpOnly cookie
// using a constant-time comparison.
package csrf
