package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemRxn-Engine/pkg/errors"
)

func TestHealthHandler_Liveness(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)

	w := performJSON(t, http.MethodGet, "/healthz", h.Liveness, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_ReadinessAllHealthy(t *testing.T) {
	h := NewHealthHandler(map[string]HealthChecker{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return nil },
	}, nil, nil)

	w := performJSON(t, http.MethodGet, "/readyz", h.Readiness, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "ok", resp.Components["postgres"])
	assert.Equal(t, "ok", resp.Components["redis"])
}

func TestHealthHandler_ReadinessComponentDown(t *testing.T) {
	h := NewHealthHandler(map[string]HealthChecker{
		"postgres": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			return errors.New(errors.ErrCodeCacheError, "redis ping failed")
		},
	}, nil, nil)

	w := performJSON(t, http.MethodGet, "/readyz", h.Readiness, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "unavailable", resp.Status)
	assert.Equal(t, "ok", resp.Components["postgres"])
	assert.Contains(t, resp.Components["redis"], "redis ping failed")
}

func TestHealthHandler_ReadinessNoCheckers(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil)

	w := performJSON(t, http.MethodGet, "/readyz", h.Readiness, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
