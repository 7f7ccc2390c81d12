package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fruitstore/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key-123"

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fruit-1-mango.png"), []byte("png"), 0o644))

	reg := prometheus.NewRegistry()
	return New(Handlers{}, Options{
		APIKey:    testAPIKey,
		Gatherer:  reg,
		Metrics:   metrics.New(reg),
		UploadDir: dir,
	}, zerolog.Nop()), dir
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		bodyContains   string
	}{
		{name: "Health", path: "/health", expectedStatus: http.StatusOK, bodyContains: "healthy"},
		{name: "Uploaded file", path: "/uploads/fruit-1-mango.png", expectedStatus: http.StatusOK, bodyContains: "png"},
		{name: "Missing upload", path: "/uploads/nope.png", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.bodyContains != "" {
				assert.Contains(t, w.Body.String(), tt.bodyContains)
			}
		})
	}
}

func TestRouter_MetricsExposeRouteLabels(t *testing.T) {
	r, _ := newTestRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `fruitstore_http_request_duration_seconds_count{method="GET",route="/health",status="200"} 1`)
}

func TestRouter_APIRequiresKey(t *testing.T) {
	r, _ := newTestRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/fruits"},
		{http.MethodPost, "/api/orders"},
		{http.MethodPost, "/api/payments/6f1c8d3e-7a8b-4c2d-9e0f-1a2b3c4d5e6f/approve"},
		{http.MethodGet, "/api/reports/sales"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/vegetables", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_Preflight(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/orders", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
