package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
)

// HealthChecker probes one backing component.  postgres.Connection and
// redis.Client both expose a HealthCheck method with this shape.
type HealthChecker func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	metrics  *prometheus.AppMetrics
	timeout  time.Duration
	log      logging.Logger
}

// NewHealthHandler constructs a HealthHandler over the named component
// checkers.  metrics may be nil.
func NewHealthHandler(checkers map[string]HealthChecker, metrics *prometheus.AppMetrics, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &HealthHandler{
		checkers: checkers,
		metrics:  metrics,
		timeout:  2 * time.Second,
		log:      log,
	}
}

// Liveness handles GET /healthz.  It answers as long as the process serves
// requests; backing stores are not consulted.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz.  Every registered component must pass its
// probe; a single failure flips the response to 503 with per-component detail.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	components := make(map[string]string, len(h.checkers))
	healthy := true
	for name, check := range h.checkers {
		if err := check(ctx); err != nil {
			healthy = false
			components[name] = err.Error()
			h.setGauge(name, 0)
			h.log.Warn("readiness probe failed",
				logging.String("component", name),
				logging.Err(err))
			continue
		}
		components[name] = "ok"
		h.setGauge(name, 1)
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unavailable"
	}
	c.JSON(status, gin.H{"status": overall, "components": components})
}

func (h *HealthHandler) setGauge(component string, value float64) {
	if h.metrics == nil || h.metrics.HealthCheckStatus == nil {
		return
	}
	h.metrics.HealthCheckStatus.WithLabelValues(component).Set(value)
}
