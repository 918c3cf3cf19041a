package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_Counters(t *testing.T) {
	e := NewExporter(DefaultConfig())

	e.RecordRewrite(OutcomeSuccess)
	e.RecordRewrite(OutcomeSuccess)
	e.RecordRewrite(OutcomeUpstream)
	e.RecordAttempt(false, 100*time.Millisecond)
	e.RecordAttempt(true, 200*time.Millisecond)
	e.AddInflight(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(e.rewriteRequests.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.rewriteRequests.WithLabelValues(OutcomeUpstream)))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.upstreamAttempts.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.upstreamAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.inflight))
}

func TestExporter_NilSafe(t *testing.T) {
	var e *Exporter
	assert.NotPanics(t, func() {
		e.RecordRewrite(OutcomeSuccess)
		e.RecordAttempt(true, time.Second)
		e.AddInflight(1)
	})
}

func TestExporter_Handler(t *testing.T) {
	e := NewExporter(Config{})
	e.RecordRewrite(OutcomeEmptyOutput)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), `quilllink_rewrite_requests_total{outcome="empty_output"} 1`))
}
