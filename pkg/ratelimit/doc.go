// Package ratelimit throttles login attempts with a fixed-window counter
// keyed by arbitrary string identifiers ("ip:1.2.3.4", "account:bob").
//
// Each identifier gets one window (default 15 minutes) and a maximum
// attempt count (default 5). The window is fixed, not sliding: a counter
// resets at a fixed boundary, which permits a burst of up to 2x the limit
// straddling that boundary. That trade-off is accepted for simplicity;
// see DESIGN.md.
//
// Two implementations share the Limiter interface: AttemptLimiter keeps
// counters in process memory behind a mutex, RedisLimiter shares them
// across instances via INCR with a key TTL. The login flow checks two
// identifier namespaces per attempt (source address and account) so that
// neither distributed nor targeted brute force slips through.
package ratelimit
