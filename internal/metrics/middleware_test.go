package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing.pdf" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/search", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	h := testRouter()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/records/{id}", "200"))

	for _, id := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		req := httptest.NewRequest(http.MethodGet, "/records/"+id, http.NoBody)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/records/{id}", "200"))
	if got != before+3 {
		t.Errorf("requests_total = %f, want %f", got, before+3)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in flight = %f after requests finished", v)
	}
}

func TestMiddleware_Statuses(t *testing.T) {
	h := testRouter()
	tests := []struct {
		method, path, route, status string
	}{
		{http.MethodGet, "/records/missing.pdf", "/records/{id}", "404"},
		{http.MethodPost, "/search", "/search", "502"},
		{http.MethodGet, "/nowhere", "unmatched", "404"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))
			got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(tc.method, tc.route, tc.status))
			if got != before+1 {
				t.Errorf("requests_total{%s %s %s} = %f, want %f", tc.method, tc.route, tc.status, got, before+1)
			}
		})
	}
}

func TestStatusWriter_FirstHeaderWins(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rr, status: http.StatusOK}
	w.WriteHeader(http.StatusCreated)
	w.WriteHeader(http.StatusInternalServerError)
	if w.status != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.status)
	}
}
