package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Middleware(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/v1/prices/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/prices/"+id, nil))
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/prices/{id}", "404"))
	if got != 3 {
		t.Errorf("requests_total = %v, want 3", got)
	}
	if n := testutil.CollectAndCount(m.RequestsTotal); n != 1 {
		t.Errorf("series = %d, want 1 (route pattern, not path)", n)
	}
	if v := testutil.ToFloat64(m.InFlight); v != 0 {
		t.Errorf("in_flight = %v, want 0", v)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RequestsTotal.WithLabelValues("GET", "/", "200").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"open_prices_http_requests_total", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}
