package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/openlearnco/classgate/pkg/csrf"
	"github.com/openlearnco/classgate/pkg/httputil"
	"github.com/openlearnco/classgate/pkg/middleware"
	"github.com/openlearnco/classgate/pkg/observability"
)

// ServerOptions carries the collaborators the server wires together
type ServerOptions struct {
	AuthHandlers *AuthHandlers
	RouteGuard   *middleware.RouteGuard
	CSRFGuard    *csrf.Guard
	Health       *observability.HealthChecker
	Logger       *observability.Logger
	Metrics      *observability.Metrics
	Registry     *prometheus.Registry
	HandlerLog   *logrus.Logger

	// App receives every request that is not an API route or probe,
	// after the route guard has run. Typically the UI reverse proxy.
	App http.Handler
}

// Server is the HTTP front door: plumbing middleware, the auth API, the
// probes, and the route guard ahead of the application.
type Server struct {
	router *mux.Router
	opts   ServerOptions
}

// NewServer creates a new API server
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		router: mux.NewRouter(),
		opts:   opts,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures middleware and all routes
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(s.opts.Logger))
	if s.opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.opts.Metrics))
	}
	s.router.Use(httputil.RecoveryMiddleware(s.opts.Logger))

	// Probes and metrics bypass the guard entirely
	s.router.HandleFunc("/healthz", s.opts.Health.Liveness).Methods("GET")
	s.router.HandleFunc("/readyz", s.opts.Health.Readiness).Methods("GET")
	if s.opts.Registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(s.opts.Registry)).Methods("GET")
	}

	// API routes carry their own checks: CSRF on mutating verbs, cookie
	// or bearer validation inside the handlers
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.opts.CSRFGuard.Protect(s.opts.Logger, s.opts.Metrics))
	s.opts.AuthHandlers.RegisterRoutes(apiRouter)

	// Everything else is a page request gated by the route guard
	app := s.opts.App
	if app == nil {
		app = http.NotFoundHandler()
	}
	s.router.PathPrefix("/").Handler(s.opts.RouteGuard.Handler(app))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
