package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if metrics == nil {
		t.Fatal("Expected non-nil metrics")
	}

	// Counters must be usable right away
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.RateLimitRejections.WithLabelValues("ip").Inc()
	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	metrics.CSRFFailuresTotal.Inc()
	metrics.GuardRedirectsTotal.WithLabelValues("no_token").Inc()
	metrics.RateLimitEntriesActive.Set(3)

	if got := testutil.ToFloat64(metrics.LoginAttemptsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 success login attempt, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.CSRFFailuresTotal); got != 1 {
		t.Errorf("Expected 1 csrf failure, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.RateLimitEntriesActive); got != 3 {
		t.Errorf("Expected gauge 3, got %f", got)
	}
}

func TestNewMetricsDoubleRegisterPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()
	NewMetrics(registry)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	handler := HTTPMetricsMiddleware(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	got := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/dashboard", "404"))
	if got != 1 {
		t.Errorf("Expected 1 request counted, got %f", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	rec := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "classgate_login_attempts_total") {
		t.Error("Expected exposition to include classgate_login_attempts_total")
	}
}
