// The apiserver binary runs the ChemRxn-Engine HTTP API with its optional
// backing services: PostgreSQL molecule storage, Redis verdict caching, and
// Kafka event publishing.  Missing backends degrade the corresponding
// features instead of blocking startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/turtacn/ChemRxn-Engine/internal/config"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemRxn-Engine/internal/interfaces/http"
)

const startupTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log, err := logging.NewLogger(cfg.Log.ToLogging())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	log.Info("starting chemrxn apiserver",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode))

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	srv, err := httpserver.BuildServer(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("server wiring failed", logging.Err(err))
	}

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal("HTTP server error", logging.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", logging.Err(err))
	}
	log.Info("stopped")
}

// loadConfig loads from the named file when given, otherwise from environment
// variables over defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}
