package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsKGCounters(t *testing.T) {
	m := NewMetrics()

	m.BatchCompleted(1, 3, 250*time.Millisecond)
	m.BatchCompleted(2, 0, time.Second)
	m.BatchCompleted(0, 1, time.Millisecond)
	m.NoteFailed("not_found")
	m.NoteFailed("not_found")
	m.NoteFailed("")
	m.StatusReconciled("exhausted")
	m.OrphansDeleted(4)
	m.OrphansDeleted(0)

	if got := testutil.ToFloat64(m.kgBatches.WithLabelValues("partial")); got != 1 {
		t.Fatalf("partial batches: want 1 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgBatches.WithLabelValues("complete")); got != 1 {
		t.Fatalf("complete batches: want 1 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgBatches.WithLabelValues("none")); got != 1 {
		t.Fatalf("none batches: want 1 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgNotesDeleted); got != 3 {
		t.Fatalf("notes deleted: want 3 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgNotesFailed.WithLabelValues("not_found")); got != 2 {
		t.Fatalf("not_found: want 2 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgNotesFailed.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("unknown reason: want 1 got %v", got)
	}
	if got := testutil.ToFloat64(m.kgOrphansDeleted); got != 4 {
		t.Fatalf("orphans: want 4 got %v", got)
	}
	if got := testutil.CollectAndCount(m.kgReconciles); got != 1 {
		t.Fatalf("reconcile series: want 1 got %d", got)
	}
}

func TestMetricsNilIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.BatchCompleted(1, 1, time.Second)
	m.NoteFailed("x")
	m.StatusReconciled("ok")
	m.OrphansDeleted(1)
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}

func TestMetricsHandlerServesPrometheusText(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/v1/kg/delete-batch", "200", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status: want 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `aura_api_requests_total{method="POST",route="/api/v1/kg/delete-batch",status="200"} 1`) {
		t.Fatalf("api counter missing from exposition:\n%s", rec.Body.String())
	}
}
