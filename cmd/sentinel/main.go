package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raaihank/spell-sentinel/internal/cache"
	"github.com/raaihank/spell-sentinel/internal/config"
	"github.com/raaihank/spell-sentinel/internal/dictstore"
	"github.com/raaihank/spell-sentinel/internal/diff"
	"github.com/raaihank/spell-sentinel/internal/engine"
	"github.com/raaihank/spell-sentinel/internal/logger"
	"github.com/raaihank/spell-sentinel/internal/server"
	"github.com/raaihank/spell-sentinel/internal/spelling"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("spell-sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if *healthCheck {
		performHealthCheck(cfg.Server.Port)
		return
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting spell-sentinel",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)
	server.Version = version

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build correction engine", zap.Error(err))
	}

	var resultCache *cache.ResultCache
	if cfg.Cache.Enabled {
		resultCache, err = cache.NewResultCache(&cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			// Corrections still work without the cache
			log.Warn("Result cache unavailable, continuing without it", zap.Error(err))
			resultCache = nil
		} else {
			defer resultCache.Close()
		}
	}

	srv, err := server.New(cfg, log, eng, resultCache)
	if err != nil {
		log.Fatal("Failed to create server", zap.Error(err))
	}

	if err := config.Watch(srv.ApplyConfig, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	}); err != nil {
		log.Debug("Configuration hot reload disabled", zap.Error(err))
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.Start(ctx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			os.Exit(1)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()

		// Give outstanding requests 30 seconds to complete
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()

		if err := srv.Stop(stopCtx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			os.Exit(1)
		}

		log.Info("Server shutdown complete")
	}
}

// buildEngine merges the built-in dictionary with the configured file and
// database sources
func buildEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	var sources []map[string]string

	if cfg.Dictionary.File != "" {
		entries, err := spelling.LoadFile(cfg.Dictionary.File)
		if err != nil {
			return nil, err
		}
		log.Info("Loaded dictionary file",
			zap.String("path", cfg.Dictionary.File),
			zap.Int("entries", len(entries)))
		sources = append(sources, entries)
	}

	if cfg.Dictionary.DatabaseURL != "" {
		store, err := dictstore.NewStore(&dictstore.Config{
			DatabaseURL:     cfg.Dictionary.DatabaseURL,
			MaxOpenConns:    cfg.Dictionary.MaxOpenConns,
			MaxIdleConns:    cfg.Dictionary.MaxIdleConns,
			ConnMaxLifetime: cfg.Dictionary.ConnMaxLifetime,
		}, log.WithComponent("dictstore").Logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		entries, err := store.All(loadCtx)
		if err != nil {
			return nil, err
		}
		log.Info("Loaded dictionary entries from database", zap.Int("entries", len(entries)))
		sources = append(sources, entries)
	}

	dict := spelling.NewDictionary(sources...)
	for _, r := range dict.Rejected() {
		log.Warn("Dropped dictionary entry",
			zap.String("misspelling", r.Misspelling),
			zap.String("correction", r.Correction),
			zap.String("reason", r.Reason))
	}

	mode, err := diff.ParseMode(cfg.Engine.DiffMode)
	if err != nil {
		return nil, err
	}

	return engine.New(dict, nil,
		engine.WithDiffMode(mode),
		engine.WithLogger(log.WithComponent("engine").Logger),
	), nil
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(port int) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%d/health", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
