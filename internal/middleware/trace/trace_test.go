package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finledger/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareTagsRequestAndRecordsRoute(t *testing.T) {
	m := metrics.NewCollector("finledger")
	tr := NewMiddleware(nil, func(*http.Request) string { return "203.0.113.1" }, m)

	var seen string
	r := chi.NewRouter()
	r.Use(tr.Middleware)
	r.Get("/api/months/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/months/abc", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id %q not generated", seen)
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header %q, want %q", rec.Header().Get(RequestIDHeader), seen)
	}
	got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/months/{id}", "404"))
	if got != 1 {
		t.Fatalf("route counter = %v, want 1", got)
	}
}

func TestMiddlewareKeepsInboundRequestID(t *testing.T) {
	tr := NewMiddleware(nil, nil, nil)
	var seen string
	h := tr.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-42" {
		t.Fatalf("request id = %q, want client-42", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 100))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("oversized inbound id should be replaced, got %q", seen)
	}
}
