package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yigit/studentrecords/internal/pkg/metrics"
)

func TestRequestID(t *testing.T) {
	var seen string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		header   string
		preserve bool
	}{
		{"generated", "", false},
		{"reused", "req-123", true},
		{"too long", strings.Repeat("x", 200), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header %q, context %q", got, seen)
			}
			if tt.preserve && got != tt.header {
				t.Errorf("id = %q, want %q", got, tt.header)
			}
			if !tt.preserve && got == tt.header {
				t.Errorf("id should have been regenerated")
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"SRV_001"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New(nil)
	router := gin.New()
	router.Use(Metrics(m), RequestLogger())
	router.GET("/get_student_details/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/get_student_details/R1", "/get_student_details/R2", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	out, err := testutil.GatherAndCount(m.Registry(), "studentrecords_http_requests_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	// one series for the route pattern, one for unmatched
	if out != 2 {
		t.Errorf("series = %d, want 2", out)
	}
}
