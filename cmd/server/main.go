/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the price engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, env, defaults)
  2. Build the zap logger
  3. Initialize SQLite store
  4. Build the CEL condition evaluator and API handler
  5. Seed rules from rules.seed_file when set
  6. Start the lifecycle scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a config file (default: search pricing.yml)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the lifecycle scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with defaults
  ./server

  # In-memory database on another port
  PRICE_ENGINE_DB_PATH=":memory:" PRICE_ENGINE_HTTP_PORT=3000 ./server

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warp/price-engine/api"
	"github.com/warp/price-engine/conditions"
	"github.com/warp/price-engine/config"
	"github.com/warp/price-engine/store/sqlite"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	evaluator, err := conditions.NewCELEvaluator(logger.Named("conditions"))
	if err != nil {
		return err
	}

	metrics := api.NewLifecycleMetrics(nil)
	handler := api.NewHandler(store, evaluator, metrics, logger)

	if cfg.SeedFile != "" {
		data, err := os.ReadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		ids, err := handler.SeedRules(context.Background(), data)
		if err != nil {
			return err
		}
		logger.Info("seeded rules", zap.String("file", cfg.SeedFile), zap.Int("rules", len(ids)))
	}

	scheduler := handler.Scheduler
	scheduler.StatusInterval = cfg.StatusInterval
	scheduler.CleanupInterval = cfg.CleanupInterval
	scheduler.Enabled = cfg.SchedulerEnabled
	scheduler.Logger = logger.Named("scheduler")
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: splitOrigins(cfg.CORSOrigin)})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
