package middleware

import (
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders is the explicit priority order for proxy-supplied
// client addresses. First present wins; no dynamic header scanning.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
}

// ClientIP resolves the originating client address for rate-limit
// keying. X-Forwarded-For may be a comma-separated chain; the first
// element is the original client. Falls back to the connection's remote
// address, and to "unknown" when even that is unusable, so the limiter
// throttles all unattributable traffic as one bucket rather than not
// at all.
func ClientIP(r *http.Request) string {
	for _, header := range clientIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if first, _, found := strings.Cut(value, ","); found {
			value = first
		}
		if ip := strings.TrimSpace(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
