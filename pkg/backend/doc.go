// Package backend is the HTTP client for the external content/identity
// API (a Strapi-compatible service). The API owns user records, roles,
// classes and enrollments; Classgate only consumes them.
//
// Three endpoints matter to the security core: POST /api/auth/local for
// credential checks, GET /api/users/me?populate=role for authoritative
// token validation and profile data, and GET /api/enrollments for
// session composition. All calls carry request-scoped timeouts and are
// never retried automatically.
package backend
