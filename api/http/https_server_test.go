package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"QuillLink/internal/config"
	"QuillLink/internal/metrics"
	"QuillLink/internal/middleware/requestid"
	"QuillLink/internal/modules/rewrite/application/service"
	"QuillLink/internal/modules/rewrite/domain/prompt"
	rewriteHandler "QuillLink/internal/modules/rewrite/interface/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCaller string

func (s staticCaller) Execute(context.Context, prompt.Pair) (string, error) {
	return string(s), nil
}

func newTestEngine(t *testing.T, origins ...string) (*gin.Engine, *metrics.Exporter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conf := config.Default()
	if len(origins) > 0 {
		conf.CorsConfig.AllowedOrigins = origins
	}
	exporter := metrics.NewExporter(metrics.Config{})
	h := rewriteHandler.NewRewriteHandler(service.NewRewriteService(service.Options{
		Caller:    staticCaller("rewritten"),
		ModelName: conf.AIConfig.ChatModel.Model,
		Metrics:   exporter,
	}), conf.RewriteConfig.MaxTextLength)

	GE, err := NewEngine(conf, h, exporter)
	require.NoError(t, err)
	return GE, exporter
}

func TestEngine_HealthzWithCommonHeaders(t *testing.T) {
	GE, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	GE.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"model":"gemini-2.5-flash"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestid.Header))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestEngine_PreflightAllowAll(t *testing.T) {
	GE, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodOptions, "/rewrite", nil)
	req.Header.Set("Origin", "chrome-extension://abcdefghijklmnop")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	w := httptest.NewRecorder()
	GE.ServeHTTP(w, req)

	assert.Less(t, w.Code, 300)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestEngine_RestrictedOrigins(t *testing.T) {
	GE, _ := newTestEngine(t, "https://allowed.example")

	req := httptest.NewRequest(http.MethodGet, "/presets", nil)
	req.Header.Set("Origin", "https://allowed.example")
	w := httptest.NewRecorder()
	GE.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/presets", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	GE.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEngine_InvalidOrigin(t *testing.T) {
	conf := config.Default()
	conf.CorsConfig.AllowedOrigins = []string{"not-a-url"}

	_, err := NewEngine(conf, nil, nil)
	assert.Error(t, err)
}

func TestEngine_RewriteAndMetrics(t *testing.T) {
	GE, _ := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/rewrite", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	GE.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rewritten":"rewritten"}`, w.Body.String())

	w = httptest.NewRecorder()
	GE.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quilllink_rewrite_requests_total{outcome="success"} 1`)
}

func TestEngine_UnknownRouteAndMethodUseDetailBody(t *testing.T) {
	GE, _ := newTestEngine(t)

	w := httptest.NewRecorder()
	GE.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	GE.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rewrite", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"detail":"Method not allowed"}`, w.Body.String())
}
