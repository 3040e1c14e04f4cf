// Package app wires configuration, storage, the performance engine, and the
// compute worker pool into one initialized core shared by the server binary
// and tests.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/interfaces"
	"github.com/folioworks/folio/internal/services/performance"
	"github.com/folioworks/folio/internal/storage"
	"github.com/folioworks/folio/internal/worker"
)

// App holds all initialized services and infrastructure.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Store       *storage.MarketStore
	Performance interfaces.PerformanceService
	Hub         *worker.EventHub
	Pool        *worker.Pool
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, the market cache, the performance
// service, and the worker pool. configPath may be empty, in which case
// FOLIO_CONFIG and then the binary directory are checked.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("FOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "folio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/folio.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to the binary directory so the server
	// is self-contained wherever it is installed.
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	store, err := storage.NewMarketStore(logger, config.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open market store: %w", err)
	}

	perfService := performance.NewService(store, logger, performance.Options{
		StrictRates:  config.Engine.StrictRates,
		OutlierGuard: config.Engine.OutlierGuard,
	})

	hub := worker.NewEventHub(logger)
	pool := worker.NewPool(worker.NewWorker(perfService, logger, hub), logger, config.Engine.GetWorkers())

	logger.Info().
		Str("environment", config.Environment).
		Str("base_currency", config.BaseCurrency).
		Int("workers", config.Engine.GetWorkers()).
		Dur("elapsed", time.Since(startupStart)).
		Msg("Application initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		Store:       store,
		Performance: perfService,
		Hub:         hub,
		Pool:        pool,
		StartupTime: time.Now(),
	}, nil
}

// Start launches the event hub and worker pool.
func (a *App) Start() {
	go a.Hub.Run()
	a.Pool.Start()
}

// Close stops background work and releases the store.
func (a *App) Close() error {
	a.Pool.Stop()
	a.Hub.Stop()
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close market store: %w", err)
	}
	return nil
}
