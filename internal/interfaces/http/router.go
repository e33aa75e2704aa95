// Package http wires the gin engine: middleware, routes, and the metrics
// endpoint.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Engine/internal/interfaces/http/handlers"
	"github.com/turtacn/ChemRxn-Engine/internal/interfaces/http/middleware"
)

// RouterConfig collects everything the router needs.  Nil handlers get
// default instances; a nil collector disables the /metrics endpoint.
type RouterConfig struct {
	Mode      string
	Molecules *handlers.MoleculeHandler
	Reactions *handlers.ReactionHandler
	Health    *handlers.HealthHandler
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
	CORS      *middleware.CORSConfig
	Logger    logging.Logger
}

// NewRouter builds the gin engine with the full middleware chain and route
// table.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Molecules == nil {
		cfg.Molecules = handlers.NewMoleculeHandler(nil, nil, nil, cfg.Metrics, cfg.Logger)
	}
	if cfg.Reactions == nil {
		cfg.Reactions = handlers.NewReactionHandler(nil, nil, cfg.Metrics, cfg.Logger)
	}
	if cfg.Health == nil {
		cfg.Health = handlers.NewHealthHandler(nil, cfg.Metrics, cfg.Logger)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	r.GET("/healthz", cfg.Health.Liveness)
	r.GET("/readyz", cfg.Health.Readiness)
	if cfg.Collector != nil {
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		molecules := v1.Group("/molecules")
		{
			molecules.POST("/analyze", cfg.Molecules.Analyze)
			molecules.POST("/convert", cfg.Molecules.Convert)
			molecules.POST("", cfg.Molecules.Create)
			molecules.GET("", cfg.Molecules.List)
			molecules.GET("/:id", cfg.Molecules.Get)
			molecules.DELETE("/:id", cfg.Molecules.Delete)
		}

		reactions := v1.Group("/reactions")
		{
			reactions.POST("/classify", cfg.Reactions.Classify)
			reactions.POST("/validate", cfg.Reactions.Validate)
			reactions.POST("/transform", cfg.Reactions.Transform)
		}
	}
	return r
}
