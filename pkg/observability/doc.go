// Package observability provides structured logging, Prometheus metrics,
// health probes, and graceful shutdown for the Classgate gateway.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.Info("Server started")
//
// Context-aware logging:
//
//	logger.WithField("request_id", reqID).WithError(err).Error("Request failed")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
//
// # Health Probes
//
// HealthChecker exposes Liveness and Readiness HTTP handlers. Readiness
// checks the content API (hard dependency) and Redis (soft dependency)
// when configured.
//
// # Graceful Shutdown
//
// ShutdownManager waits for SIGINT/SIGTERM, drains the HTTP server, and
// runs registered cleanup functions under a shared timeout.
package observability
