package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
)

func TestNewRouter_RouteTable(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body := bytes.NewBufferString(`{"smiles":"CCO"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/molecules/analyze", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// No collector configured: /metrics is not routed.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "chemrxn"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	r := NewRouter(RouterConfig{
		Mode:      gin.TestMode,
		Metrics:   metrics,
		Collector: collector,
	})

	body := bytes.NewBufferString(`{"reagents":["KMnO4"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reactions/classify", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "chemrxn_http_requests_total")
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/molecules/analyze", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
