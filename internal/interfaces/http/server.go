package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/turtacn/ChemRxn-Engine/internal/config"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/groups"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/layout"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/reaction"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/structure"
	"github.com/turtacn/ChemRxn-Engine/internal/domain/valence"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/database/postgres"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemRxn-Engine/internal/interfaces/http/handlers"
)

// Server bundles the engine's HTTP server with its backing connections so
// entry points share one wiring path.  Backends that cannot be reached at
// startup degrade their feature (storage, caching, events) instead of
// blocking the server.
type Server struct {
	srv      *http.Server
	log      logging.Logger
	cleanups []func()
}

// BuildServer wires metrics, optional backends, the reaction service, and
// the router into a ready-to-run server.
func BuildServer(ctx context.Context, cfg *config.Config, log logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "chemrxn",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, log)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	s := &Server{log: log}
	checkers := map[string]handlers.HealthChecker{}

	// PostgreSQL: molecule persistence.
	var store handlers.MoleculeStore
	conn, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		log.Warn("postgres unavailable, molecule storage disabled", logging.Err(err))
	} else {
		s.cleanups = append(s.cleanups, conn.Close)
		if cfg.Database.MigrationPath != "" {
			if err := conn.RunMigrations(cfg.Database.MigrationPath); err != nil {
				log.Error("migrations failed", logging.Err(err))
			}
		}
		store = postgres.NewMoleculeRepository(conn.Pool(), log)
		checkers["postgres"] = conn.HealthCheck
	}

	// Redis: verdict and analysis caching.
	var cache handlers.VerdictCache
	var analysisCache handlers.AnalysisCache
	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, result caching disabled", logging.Err(err))
	} else {
		s.cleanups = append(s.cleanups, func() { _ = redisClient.Close() })
		cache = redis.NewVerdictCache(redisClient, log,
			redis.WithPrefix(cfg.Redis.KeyPrefix+":verdict:"),
			redis.WithTTL(cfg.Redis.DefaultTTL))
		analysisCache = redis.NewAnalysisCache(redisClient, log,
			redis.WithAnalysisPrefix(cfg.Redis.KeyPrefix+":analysis:"),
			redis.WithAnalysisTTL(cfg.Redis.DefaultTTL))
		checkers["redis"] = redisClient.HealthCheck
	}

	// Kafka: domain event publishing.
	var publisher reaction.Publisher
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("kafka unavailable, event publishing disabled", logging.Err(err))
	} else {
		s.cleanups = append(s.cleanups, func() { _ = producer.Close() })
		publisher = producer
	}

	service := buildService(cfg.Engine, publisher, log)

	router := NewRouter(RouterConfig{
		Mode:      cfg.Server.Mode,
		Molecules: handlers.NewMoleculeHandler(service, store, analysisCache, metrics, log),
		Reactions: handlers.NewReactionHandler(service, cache, metrics, log),
		Health:    handlers.NewHealthHandler(checkers, metrics, log),
		Metrics:   metrics,
		Collector: collector,
		Logger:    log,
	})

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until Shutdown is called.  http.ErrServerClosed is swallowed so
// a clean shutdown returns nil.
func (s *Server) Run() error {
	s.log.Info("HTTP server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	for _, cleanup := range s.cleanups {
		cleanup()
	}
	return err
}

// buildService assembles the reaction service with the configured scoring
// and layout tuning.
func buildService(cfg config.EngineConfig, publisher reaction.Publisher, log logging.Logger) *reaction.Service {
	calculator := valence.NewDefaultCalculator(log)
	analyzer := structure.NewAnalyzer(log)
	detector := groups.NewDetector(log)
	validator := reaction.NewValidator(nil, detector, analyzer, calculator, nil, cfg.Scoring, log)

	layoutOpts := layout.DefaultOptions()
	if cfg.LayoutIterations > 0 {
		layoutOpts.Iterations = cfg.LayoutIterations
	}
	if cfg.LayoutBondLength > 0 {
		layoutOpts.BondLength = cfg.LayoutBondLength
	}
	transformer := reaction.NewTransformerWith(detector, analyzer, layoutOpts, log)

	return reaction.NewServiceWith(calculator, analyzer, detector, validator, transformer, publisher, log)
}
