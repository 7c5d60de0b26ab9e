package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/openlearnco/classgate/pkg/httputil"
	"github.com/openlearnco/classgate/pkg/observability"
)

const (
	// CookieName is the HttpOnly cookie holding the server-side token
	CookieName = "csrf_token"
	// ClientCookieName is the JavaScript-readable mirror of the token
	ClientCookieName = "csrf_token_client"
	// HeaderName is the request header clients echo the token in
	HeaderName = "X-CSRF-Token"

	// tokenBytes gives 256 bits of entropy per token
	tokenBytes = 32
)

// Guard implements double-submit CSRF protection. One random value is
// written to two cookies at issuance: an HttpOnly cookie the browser
// always sends, and a readable cookie same-origin JavaScript copies into
// the X-CSRF-Token header. A cross-origin attacker can trigger the POST
// but cannot read the cookie, so the pair can never match.
type Guard struct {
	ttl    time.Duration
	secure bool
}

// NewGuard creates a CSRF guard. Cookies carry the given TTL and are
// marked Secure when secure is true.
func NewGuard(ttl time.Duration, secure bool) *Guard {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Guard{ttl: ttl, secure: secure}
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// GetOrCreate returns the current CSRF token, generating and persisting a
// new one if the request carries none. Both cookies are (re)written so
// the client-readable mirror always matches the HttpOnly value.
func (g *Guard) GetOrCreate(w http.ResponseWriter, r *http.Request) (string, error) {
	token := cookieValue(r, CookieName)
	if token == "" {
		var err error
		token, err = generateToken()
		if err != nil {
			return "", err
		}
		g.setCookie(w, CookieName, token, true)
	}

	g.setCookie(w, ClientCookieName, token, false)
	return token, nil
}

// Verify compares the X-CSRF-Token header against the HttpOnly cookie.
// Absence of either side is a rejection, not a default-allow.
func (g *Guard) Verify(r *http.Request) bool {
	headerToken := r.Header.Get(HeaderName)
	if headerToken == "" {
		return false
	}

	cookieToken := cookieValue(r, CookieName)
	if cookieToken == "" {
		return false
	}

	return constantTimeEqual(cookieToken, headerToken)
}

// Protect rejects mutating requests that fail verification with a 403.
// Read verbs pass through untouched.
func (g *Guard) Protect(logger *observability.Logger, metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			if !g.Verify(r) {
				if metrics != nil {
					metrics.CSRFFailuresTotal.Inc()
				}
				// Repeated occurrences may indicate an attack in progress
				logger.WithField("path", r.URL.Path).
					WithField("method", r.Method).
					Warn("csrf verification failed")
				httputil.WriteForbidden(w, "Invalid or missing CSRF token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) setCookie(w http.ResponseWriter, name, value string, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: httpOnly,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(g.ttl.Seconds()),
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// constantTimeEqual compares two tokens without leaking the position of
// the first differing byte. A length mismatch rejects immediately; the
// token length is public.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
