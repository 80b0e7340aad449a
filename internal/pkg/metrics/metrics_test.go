package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yigit/studentrecords/internal/docstore"
)

func TestObserveStoreOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStoreOperation(docstore.OpCreate, "students", time.Millisecond, nil)
	m.ObserveStoreOperation(docstore.OpCreate, "students", time.Millisecond, docstore.ErrAlreadyExists)
	m.ObserveStoreOperation(docstore.OpGet, "students", time.Millisecond, docstore.ErrNotFound)
	m.ObserveStoreOperation(docstore.OpScan, "students", time.Millisecond, errors.New("down"))

	cases := []struct {
		op, outcome string
	}{
		{docstore.OpCreate, "ok"},
		{docstore.OpCreate, "conflict"},
		{docstore.OpGet, "not_found"},
		{docstore.OpScan, "error"},
	}
	for _, tc := range cases {
		got := testutil.ToFloat64(m.storeOps.WithLabelValues(tc.op, "students", tc.outcome))
		if got != 1 {
			t.Errorf("%s/%s = %v, want 1", tc.op, tc.outcome, got)
		}
	}
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTPRequest(http.MethodPost, "/submit", http.StatusConflict, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/submit", "409")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(nil)
	m.IncStudentEvent("created")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`studentrecords_students_events_total{event="created"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
