package ssl

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(sslHost string, redirect bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TlsHandler(sslHost, redirect, false))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestTlsHandler_RedirectsToConfiguredHost(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine("rewrite.example.com", true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://0.0.0.0:8000/healthz", nil))

	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "https://rewrite.example.com/healthz", w.Header().Get("Location"))
}

func TestTlsHandler_HeadersWithoutRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine("", false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
}
