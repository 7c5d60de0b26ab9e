// Package middleware provides the route guard that gates every page
// request, plus client IP resolution for rate-limit keying.
//
// The guard is a fast path: it classifies the path (Protected, AuthOnly,
// Public), runs only the local structural token check, strips dead
// cookies, and redirects with a callbackUrl. It never performs network
// I/O; handlers that need a trusted identity call the provider
// themselves.
package middleware
