package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/feedback/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/analysis/run", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		method, path, pattern, status string
	}{
		{"GET", "/feedback/12", "/feedback/{id}", "200"},
		{"GET", "/feedback/13", "/feedback/{id}", "200"},
		{"POST", "/analysis/run", "/analysis/run", "500"},
	}
	for _, tc := range tests {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(tc.method, tc.path, http.NoBody))
		if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.pattern, tc.status)); got < 1 {
			t.Errorf("%s %s: requests_total = %f", tc.method, tc.path, got)
		}
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/feedback/{id}", "200")); got < 2 {
		t.Errorf("ids must collapse into one series, got %f", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestNormalizePath(t *testing.T) {
	if normalizePath("") != "unknown" {
		t.Error("empty pattern should map to unknown")
	}
	if normalizePath("/health") != "/health" {
		t.Error("pattern should pass through")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
	ClassifierResultsTotal.WithLabelValues("fallback").Inc()
	if testutil.ToFloat64(ClassifierResultsTotal.WithLabelValues("fallback")) < 1 {
		t.Error("counter not incremented")
	}
}
