package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollector("test", prometheus.NewRegistry())
}

func TestCollectorCounters(t *testing.T) {
	c := newTestCollector(t)

	c.IncLookup("sv", true)
	c.IncLookup("sv", true)
	c.IncLookup("sv", false)
	c.IncSelection("EGNOS")
	c.IncDatabaseLoads("embedded", true)
	c.IncDatabaseLoads("embedded", false)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"sv found", testutil.ToFloat64(c.lookups.WithLabelValues("sv", "found")), 2},
		{"sv not found", testutil.ToFloat64(c.lookups.WithLabelValues("sv", "not_found")), 1},
		{"egnos selections", testutil.ToFloat64(c.selections.WithLabelValues("EGNOS")), 1},
		{"successful loads", testutil.ToFloat64(c.databaseLoads.WithLabelValues("embedded", "success")), 1},
		{"failed loads", testutil.ToFloat64(c.databaseLoads.WithLabelValues("embedded", "error")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCollectorGauges(t *testing.T) {
	c := newTestCollector(t)

	c.SetDatabaseEntries(24, 10)

	if got := testutil.ToFloat64(c.databaseEntries); got != 24 {
		t.Errorf("database_entries = %v, want 24", got)
	}
	if got := testutil.ToFloat64(c.databaseRegions); got != 10 {
		t.Errorf("database_coverage_regions = %v, want 10", got)
	}
}

func TestCollectorHistogram(t *testing.T) {
	c := newTestCollector(t)

	c.ObserveSelectionDuration(50 * time.Microsecond)

	if n := testutil.CollectAndCount(c.selectionDuration); n != 1 {
		t.Errorf("selection_duration_seconds series = %d, want 1", n)
	}
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	c := newTestCollector(t)

	router := mux.NewRouter()
	router.Use(c.Middleware)
	router.HandleFunc("/api/v1/sv/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"G01", "E12", "S23"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sv/"+id, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/sv/{id}", "4xx"))
	if got != 3 {
		t.Errorf("http_requests_total = %v, want 3", got)
	}
}

func TestCollectorHandler(t *testing.T) {
	c := newTestCollector(t)
	c.IncSelection("none")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_selections_total{constellation="none"} 1`) {
		t.Errorf("metrics output missing selection counter:\n%s", rec.Body.String())
	}
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{422, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
		{0, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := statusToString(tt.code); got != tt.want {
				t.Errorf("statusToString(%d) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath("/short"); got != "/short" {
		t.Errorf("normalizePath(/short) = %q", got)
	}
	long := "/api/v1/constellations/a-very-long-name"
	if got := normalizePath(long); got != long[:20]+"..." {
		t.Errorf("normalizePath(long) = %q", got)
	}
}
