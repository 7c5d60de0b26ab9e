package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/openlearnco/classgate/pkg/auth"
	"github.com/openlearnco/classgate/pkg/csrf"
	"github.com/openlearnco/classgate/pkg/httputil"
	"github.com/openlearnco/classgate/pkg/middleware"
	"github.com/openlearnco/classgate/pkg/session"
)

// AuthHandlers handles authentication API endpoints
type AuthHandlers struct {
	orchestrator *session.Orchestrator
	composer     *session.Composer
	provider     session.Provider
	csrfGuard    *csrf.Guard
	routeGuard   *middleware.RouteGuard
	sessionTTL   time.Duration
	secure       bool
	logger       *logrus.Logger
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(
	orchestrator *session.Orchestrator,
	composer *session.Composer,
	provider session.Provider,
	csrfGuard *csrf.Guard,
	routeGuard *middleware.RouteGuard,
	sessionTTL time.Duration,
	secure bool,
	logger *logrus.Logger,
) *AuthHandlers {
	return &AuthHandlers{
		orchestrator: orchestrator,
		composer:     composer,
		provider:     provider,
		csrfGuard:    csrfGuard,
		routeGuard:   routeGuard,
		sessionTTL:   sessionTTL,
		secure:       secure,
		logger:       logger,
	}
}

// RegisterRoutes registers authentication routes on the /api subrouter
func (h *AuthHandlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/auth/login", h.login).Methods("POST")
	r.HandleFunc("/auth/logout", h.logout).Methods("POST")
	r.HandleFunc("/auth/me", h.me).Methods("GET")
	r.HandleFunc("/auth/session", h.session).Methods("GET")
	r.HandleFunc("/auth/csrf", h.csrfToken).Methods("GET")
	r.HandleFunc("/auth/clear", h.clear).Methods("GET")
}

// login handles POST /api/auth/login
//
// Rate-limited and failed attempts respond 200 with a structured error
// payload rather than 429: the calling UI renders the human-readable
// wait time and remaining-attempt warning from the body.
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var creds session.Credentials
	if !httputil.ParseJSONOrError(w, r, &creds) {
		return
	}
	if !httputil.RequireNonEmpty(w, creds.Identifier, "identifier") {
		return
	}
	if !httputil.RequireNonEmpty(w, creds.Password, "password") {
		return
	}

	clientIP := middleware.ClientIP(r)
	result := h.orchestrator.Login(r.Context(), creds, clientIP)

	if result.Success {
		auth.SetSessionCookie(w, result.Token, h.sessionTTL, h.secure)
		h.logger.WithFields(logrus.Fields{
			"user_id": result.User.ID,
			"role":    result.User.RoleDisplayName(),
		}).Info("login succeeded")
	}

	httputil.WriteSuccess(w, result)
}

// logout handles POST /api/auth/logout
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionTokenFromRequest(r); token != "" {
		h.routeGuard.Forget(token)
	}
	auth.ClearSessionCookie(w, h.secure)

	httputil.WriteSuccess(w, map[string]bool{"success": true})
}

// me handles GET /api/auth/me
//
// Returns the current identity, verified authoritatively by the
// provider, or 401. This is the full check that the route guard's
// structural validation defers to.
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	token := auth.SessionTokenFromRequest(r)
	if token == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{"user": nil})
		return
	}

	user, err := h.provider.Me(r.Context(), token)
	if err != nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{"user": nil})
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"user": user})
}

// session handles GET /api/auth/session
//
// Composes the request-scoped session: verified identity plus the
// newest enrollment. Enrollment lookup failures degrade to null fields.
func (h *AuthHandlers) session(w http.ResponseWriter, r *http.Request) {
	token := auth.SessionTokenFromRequest(r)
	if token == "" {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	user, err := h.provider.Me(r.Context(), token)
	if err != nil {
		httputil.WriteUnauthorized(w, "not authenticated")
		return
	}

	httputil.WriteSuccess(w, h.composer.Compose(r.Context(), token, user))
}

// csrfToken handles GET /api/auth/csrf
//
// Issues (or returns) the CSRF token and mirrors it to the
// client-readable cookie for same-origin JavaScript to echo back.
func (h *AuthHandlers) csrfToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrfGuard.GetOrCreate(w, r)
	if err != nil {
		h.logger.WithError(err).Error("failed to issue csrf token")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]string{"token": token})
}

// clear handles GET /api/auth/clear
//
// Drops the session cookie and bounces to the login page. Used by the
// web client when the provider rejects a token mid-session.
func (h *AuthHandlers) clear(w http.ResponseWriter, r *http.Request) {
	if token := auth.SessionTokenFromRequest(r); token != "" {
		h.routeGuard.Forget(token)
	}
	auth.ClearSessionCookie(w, h.secure)

	target := "/login?" + url.Values{"error": {"unauthorized"}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}
