package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratama/articleforge/internal/article"
	"github.com/pratama/articleforge/internal/checkpoint"
	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
	"github.com/pratama/articleforge/internal/generator"
	"github.com/pratama/articleforge/internal/indexer"
	"github.com/pratama/articleforge/internal/logger"
	"github.com/pratama/articleforge/internal/monitor"
	"github.com/pratama/articleforge/internal/publisher"
	"github.com/pratama/articleforge/internal/scheduler"
	"github.com/pratama/articleforge/internal/service"
)

// Exit codes: 2 for configuration problems, 1 for job source problems.
// Per-item failures never change the exit code; the summary log and
// the checkpoint carry them.
const (
	exitOK     = 0
	exitSource = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "articleforge",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	keywordsFile := flag.String("keywords", "", "Path to the keywords file (csv or xlsx)")
	workers := flag.Int("workers", 0, "Concurrent workers, overrides config")
	variations := flag.Int("variations", 0, "Pre-generate N variations per keyword in batch mode")
	relatedDepth := flag.Int("related-depth", 0, "Also generate articles for related topics, up to N hops deep")
	clearFailed := flag.Bool("clear-failed", false, "Clear failed keys from the checkpoint so they retry")
	dryRun := flag.Bool("dry-run", false, "Generate and render only, skip uploads and notifications")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Error("Failed to load config")
		return exitConfig
	}
	if *keywordsFile != "" {
		cfg.Run.KeywordsFile = *keywordsFile
	}
	if *workers > 0 {
		cfg.Run.Workers = scheduler.Clamp(*workers)
	}
	if err := cfg.Validate(*dryRun); err != nil {
		appLogger.WithError(err).Error("Invalid configuration")
		return exitConfig
	}

	// Rebuild logger from config
	appLogger = logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "articleforge",
		File:        cfg.Log.File,
	})
	logger.SetDefaultLogger(appLogger)

	appLogger.WithFields(logger.Fields{
		"keywords":      cfg.Run.KeywordsFile,
		"workers":       cfg.Run.Workers,
		"variations":    *variations,
		"related_depth": *relatedDepth,
		"destinations":  cfg.EnabledDestinations(),
		"dry_run":       *dryRun,
	}).Info("Starting article generation")

	// Open checkpoint store
	store, err := checkpoint.Open(cfg)
	if err != nil {
		appLogger.WithError(err).Error("Failed to open checkpoint store")
		return exitConfig
	}
	defer store.Close()

	if *clearFailed {
		if err := store.ClearFailed(); err != nil {
			appLogger.WithError(err).Error("Failed to clear failed keys")
			return exitConfig
		}
		appLogger.Info("Cleared failed keys from checkpoint")
	}

	// Build destinations and pipeline services
	destinations, err := publisher.BuildDestinations(cfg)
	if err != nil {
		appLogger.WithError(err).Error("Failed to initialize destinations")
		return exitConfig
	}
	pub := publisher.New(destinations)

	renderer, err := article.NewRenderer(&cfg.Run)
	if err != nil {
		appLogger.WithError(err).Error("Failed to load template")
		return exitConfig
	}

	gen := generator.New(&cfg.Generation)

	var notifier service.Notifier
	if n := indexer.New(&cfg.Indexing); n != nil {
		notifier = n
	}

	stats := domain.NewRunStats()

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Optional monitor endpoint
	mon := monitor.New(&cfg.Monitor, stats, appLogger)
	mon.Start()
	defer mon.Stop()

	svc := service.NewRunService(cfg, store, gen, renderer, pub, notifier, stats, appLogger, service.Options{
		Variations:   *variations,
		RelatedDepth: *relatedDepth,
		DryRun:       *dryRun,
	})

	if err := svc.Run(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to load job source")
		return exitSource
	}
	return exitOK
}
