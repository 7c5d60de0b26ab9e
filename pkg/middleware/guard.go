package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/observability"
)

// RouteClass tags an incoming path for the guard's branch logic
type RouteClass int

const (
	// RoutePublic paths always pass: static assets, probes, API routes
	// that carry their own checks
	RoutePublic RouteClass = iota
	// RouteProtected paths require a session
	RouteProtected
	// RouteAuthOnly paths (login) bounce already-authenticated users away
	RouteAuthOnly
)

// validationCacheSize bounds the decoded-claims cache. Entries are tiny;
// the cap only matters under token churn.
const validationCacheSize = 1024

// GuardConfig defines path classification and redirect targets
type GuardConfig struct {
	// AuthOnlyPrefixes are login-style pages
	AuthOnlyPrefixes []string
	// PublicPrefixes pass through with no session inspection
	PublicPrefixes []string
	// LoginPath is where unauthenticated users are sent
	LoginPath string
	// HomePath is where authenticated users are sent from auth-only pages
	HomePath string
	// SecureCookies toggles Secure on the cleared cookie
	SecureCookies bool
}

// DefaultGuardConfig returns the standard route classification: the API,
// probes and static assets are public, /login is auth-only, and every
// page route (including the teacher and student trees) is protected.
func DefaultGuardConfig() *GuardConfig {
	return &GuardConfig{
		AuthOnlyPrefixes: []string{"/login"},
		PublicPrefixes:   []string{"/api/", "/healthz", "/readyz", "/metrics", "/static/", "/favicon.ico"},
		LoginPath:        "/login",
		HomePath:         "/",
	}
}

// staticSuffixes marks asset requests as public by extension
var staticSuffixes = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".css", ".js"}

// RouteGuard is the per-request structural gate. It classifies the path,
// validates a present credential cookie structurally, strips dead
// cookies, and redirects, all without ever calling the identity
// provider. Authorization that needs a trusted identity happens
// downstream when a handler composes the full session.
type RouteGuard struct {
	validator *auth.Validator
	config    *GuardConfig
	logger    *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time

	// claims memoizes non-verifying decodes; expiry is re-evaluated per
	// request, so a cached entry can never keep a dead token alive
	claims *lru.Cache[string, *auth.Claims]
}

// NewRouteGuard creates a route guard
func NewRouteGuard(validator *auth.Validator, config *GuardConfig, logger *observability.Logger, metrics *observability.Metrics) (*RouteGuard, error) {
	if config == nil {
		config = DefaultGuardConfig()
	}

	cache, err := lru.New[string, *auth.Claims](validationCacheSize)
	if err != nil {
		return nil, err
	}

	return &RouteGuard{
		validator: validator,
		config:    config,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		claims:    cache,
	}, nil
}

// Classify assigns a RouteClass to a path by static prefix rules
func (g *RouteGuard) Classify(path string) RouteClass {
	for _, prefix := range g.config.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RoutePublic
		}
	}
	for _, suffix := range staticSuffixes {
		if strings.HasSuffix(path, suffix) {
			return RoutePublic
		}
	}
	for _, prefix := range g.config.AuthOnlyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return RouteAuthOnly
		}
	}
	return RouteProtected
}

// Handler runs the guard ahead of every routed request
func (g *RouteGuard) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := g.Classify(r.URL.Path)
		if class == RoutePublic {
			next.ServeHTTP(w, r)
			return
		}

		token := auth.SessionTokenFromRequest(r)

		if token != "" {
			validation := g.validate(token)

			if !validation.Valid {
				// Dead credential: strip it so the client re-authenticates
				auth.ClearSessionCookie(w, g.config.SecureCookies)

				if class == RouteProtected {
					g.redirectToLogin(w, r, "invalid_token")
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			if class == RouteAuthOnly {
				// An authenticated user has no business on the login page.
				// Role-based landing is decided downstream once the full
				// session is composed.
				g.countRedirect("already_authenticated")
				http.Redirect(w, r, g.config.HomePath, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
			return
		}

		if class == RouteProtected {
			g.redirectToLogin(w, r, "no_token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Forget drops a token's cached claims, e.g. after logout
func (g *RouteGuard) Forget(token string) {
	g.claims.Remove(token)
}

// validate runs the structural check, memoizing the decode. Expiry is
// always computed against the current clock.
func (g *RouteGuard) validate(token string) auth.Validation {
	claims, cached := g.claims.Get(token)
	if !cached {
		decoded, err := g.validator.Decode(token)
		if err != nil {
			decoded = nil
		}
		g.claims.Add(token, decoded)
		claims = decoded
	}

	if claims == nil {
		g.countValidation("invalid")
		return auth.Validation{Valid: false, Expired: true}
	}
	if claims.ExpiresAt < g.now().Unix() {
		g.countValidation("expired")
		return auth.Validation{Valid: false, Expired: true}
	}

	g.countValidation("valid")
	return auth.Validation{Valid: true, Claims: claims}
}

// redirectToLogin bounces to the login page, carrying the original path
// so the user returns where they were after re-authenticating.
func (g *RouteGuard) redirectToLogin(w http.ResponseWriter, r *http.Request, reason string) {
	g.countRedirect(reason)

	target := g.config.LoginPath + "?callbackUrl=" + url.QueryEscape(r.URL.Path)
	http.Redirect(w, r, target, http.StatusFound)
}

func (g *RouteGuard) countValidation(result string) {
	if g.metrics != nil {
		g.metrics.TokenValidationsTotal.WithLabelValues(result).Inc()
	}
}

func (g *RouteGuard) countRedirect(reason string) {
	if g.metrics != nil {
		g.metrics.GuardRedirectsTotal.WithLabelValues(reason).Inc()
	}
}
