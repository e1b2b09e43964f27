package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(apiKey string) http.Handler {
	return NewRouter(RouterConfig{
		APIKey:         apiKey,
		RequestTimeout: 5 * time.Second,
	})
}

func TestHealthzReturnsOK(t *testing.T) {
	r := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIHealthReturnsEnvelope(t *testing.T) {
	r := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_success":true`)
}

func TestExtractRouteRequiresAPIKey(t *testing.T) {
	r := newTestRouter("topsecret")
	req := httptest.NewRequest(http.MethodPost, "/api/v2/extract/general", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"is_success":false`)
}

func TestRequestIDHeaderIsEchoedBack(t *testing.T) {
	r := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("x-request-id", "fixed-id-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "fixed-id-123", w.Header().Get("x-request-id"))
}
