// Package api assembles the HTTP surface of the Classgate gateway: the
// authentication endpoints under /api/auth, health and readiness probes,
// the Prometheus metrics endpoint, and the route guard that fronts the
// application for every other path.
//
// Response code conventions: 401 for a missing or provider-rejected
// session on the identity endpoints, 403 for a failed CSRF check, and
// 200 with a structured error payload for rate-limited login attempts,
// since the calling UI needs the wait time from the body.
package api
