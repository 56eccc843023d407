package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/raaihank/spell-sentinel/internal/cache"
	"github.com/raaihank/spell-sentinel/internal/config"
	"github.com/raaihank/spell-sentinel/internal/dictstore"
	"github.com/raaihank/spell-sentinel/internal/etl"
	"github.com/raaihank/spell-sentinel/internal/logger"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input dataset file (CSV, Parquet, or JSON lines)")
		source     = flag.String("source", "", "Source label stored with each entry (defaults to the file name)")
		batchSize  = flag.Int("batch-size", 0, "Batch size for database writes (0 uses the config value)")
		workers    = flag.Int("workers", 0, "Number of writer goroutines (0 uses the config value)")
		dryRun     = flag.Bool("dry-run", false, "Validate the dataset without writing to the database")
		keepCache  = flag.Bool("keep-cache", false, "Do not clear cached corrections after importing")
		showStats  = flag.Bool("stats", false, "Show dictionary statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input typos.csv --batch-size 500\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input typos.parquet --workers 8\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input typos.jsonl --dry-run\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling import...")
		cancel()
	}()

	var store *dictstore.Store
	if !*dryRun || *showStats {
		if cfg.Dictionary.DatabaseURL == "" {
			log.Fatal("dictionary.database_url is required unless --dry-run is set")
		}
		store, err = dictstore.NewStore(&dictstore.Config{
			DatabaseURL:     cfg.Dictionary.DatabaseURL,
			MaxOpenConns:    cfg.Dictionary.MaxOpenConns,
			MaxIdleConns:    cfg.Dictionary.MaxIdleConns,
			ConnMaxLifetime: cfg.Dictionary.ConnMaxLifetime,
		}, log.WithComponent("dictstore").Logger)
		if err != nil {
			log.Fatal("Failed to initialize dictionary store", zap.Error(err))
		}
		defer store.Close()
	}

	if *showStats {
		if err := printStats(ctx, store); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	etlConfig := &etl.Config{
		BatchSize:       cfg.Dictionary.Import.BatchSize,
		WorkerCount:     cfg.Dictionary.Import.WorkerCount,
		MaxEditDistance: cfg.Dictionary.Import.MaxEditDistance,
		ValidateData:    cfg.Dictionary.Import.ValidateData,
		DryRun:          *dryRun,
		Source:          *source,
		ProgressReport:  10000,
	}
	if *batchSize > 0 {
		etlConfig.BatchSize = *batchSize
	}
	if *workers > 0 {
		etlConfig.WorkerCount = *workers
	}

	if err := importDataset(ctx, store, etlConfig, *inputFile, log); err != nil {
		log.Fatal("Dictionary import failed", zap.Error(err))
	}

	if !*dryRun && !*keepCache && cfg.Cache.Enabled {
		clearResultCache(ctx, cfg, log)
	}

	log.Info("Dictionary import completed successfully")
}

// importDataset runs the pipeline over one file
func importDataset(ctx context.Context, store *dictstore.Store, etlConfig *etl.Config, inputFile string, log *logger.Logger) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	var sink etl.Sink
	if store != nil {
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = store
	}

	pipeline := etl.NewPipeline(sink, etlConfig, log.WithComponent("etl").Logger)

	result, err := pipeline.ProcessFile(ctx, inputFile)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	log.Info("Dataset processing completed",
		zap.String("file", inputFile),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("valid_records", result.ValidRecords),
		zap.Int64("invalid_records", result.InvalidRecords),
		zap.Int64("upserted", result.Upserted),
		zap.Int64("duplicates", result.Duplicates),
		zap.Duration("total_duration", result.Duration),
		zap.Duration("database_time", result.DatabaseTime))

	for _, verr := range result.ValidationErrors {
		log.Warn("Rejected record", zap.Int64("row", verr.Row), zap.String("field", verr.Field),
			zap.String("value", verr.Value), zap.String("reason", verr.Message))
	}

	if result.FailedBatches > 0 {
		return fmt.Errorf("%d batches failed: %v", result.FailedBatches, result.Errors)
	}
	return nil
}

// clearResultCache drops cached corrections made with the old dictionary.
// Running servers still need a restart to load the new entries.
func clearResultCache(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	rc, err := cache.NewResultCache(&cache.Config{
		RedisURL:       cfg.Cache.RedisURL,
		MaxConnections: 1,
		MinIdleConns:   0,
		DefaultTTL:     cfg.Cache.DefaultTTL,
		KeyPrefix:      cfg.Cache.KeyPrefix,
	}, log.WithComponent("cache").Logger)
	if err != nil {
		log.Warn("Could not connect to result cache, stale corrections expire with their TTL", zap.Error(err))
		return
	}
	defer rc.Close()

	removed, err := rc.Clear(ctx)
	if err != nil {
		log.Warn("Failed to clear result cache", zap.Error(err))
		return
	}
	log.Info("Cleared cached corrections", zap.Int("keys", removed))
}

// printStats displays current dictionary statistics
func printStats(ctx context.Context, store *dictstore.Store) error {
	stats, err := store.GetStats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== spell-sentinel Dictionary Statistics ===\n")
	fmt.Printf("Total Entries:      %d\n", stats.TotalEntries)

	sources := make([]string, 0, len(stats.BySource))
	for s := range stats.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	for _, s := range sources {
		label := s
		if label == "" {
			label = "(none)"
		}
		fmt.Printf("  %-18s %d\n", label+":", stats.BySource[s])
	}

	return nil
}
