package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.POST("/api/history/:id/select", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/history/:id/select", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/history/abc/select", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/api/history/:id/select", "204"))
	if after-before != 1 {
		t.Errorf("expected one request recorded under the route pattern, got %v", after-before)
	}
}

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("mock", "error"))
	RecordGeneration("mock", time.Second, 3, false)
	if got := testutil.ToFloat64(generationsTotal.WithLabelValues("mock", "error")) - before; got != 1 {
		t.Errorf("expected 1 error generation, got %v", got)
	}
}

func TestSSEConnected(t *testing.T) {
	before := testutil.ToFloat64(sseConnectionsActive)
	done := SSEConnected()
	if testutil.ToFloat64(sseConnectionsActive) != before+1 {
		t.Error("gauge not incremented")
	}
	done()
	if testutil.ToFloat64(sseConnectionsActive) != before {
		t.Error("gauge not decremented")
	}
}

func TestHandler_Exposition(t *testing.T) {
	RecordPreview("students")
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), `builder_previews_total{template="students"}`) {
		t.Error("preview counter missing from exposition")
	}
}
