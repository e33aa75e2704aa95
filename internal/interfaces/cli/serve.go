package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemRxn-Engine/internal/config"
	"github.com/turtacn/ChemRxn-Engine/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ChemRxn-Engine/internal/interfaces/http"
)

const serveStartupTimeout = 10 * time.Second

func newServeCmd(opts *RootOptions) *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the ChemRxn HTTP API server",
		Long: "Serve starts the HTTP API with whatever backends the configuration\n" +
			"reaches: PostgreSQL storage, Redis caching, and Kafka events each degrade\n" +
			"independently when unavailable.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg *config.Config
				err error
			)
			if configPath != "" {
				cfg, err = config.Load(configPath)
			} else {
				cfg, err = config.LoadFromEnv()
			}
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}

			log, err := logging.NewLogger(cfg.Log.ToLogging())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), serveStartupTimeout)
			srv, err := httpserver.BuildServer(ctx, cfg, log)
			cancel()
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Run() }()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-quit:
			}

			log.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (overrides config)")
	return cmd
}
