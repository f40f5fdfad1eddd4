// Package app assembles the scraper from configuration. Both the HTTP server
// and the CLI start from here.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/browser"
	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/scheduler"
	"github.com/nsac-scraper/internal/scraper"
	"github.com/nsac-scraper/internal/storage"
)

type App struct {
	Config  *config.Config
	Backend *storage.Backend
	Runner  *scheduler.Runner
	Logger  *log.Logger
}

// NewLogger returns a timestamped logger at level. Unknown levels fall back to info.
func NewLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// New opens storage and wires the browser, extractor, orchestrator and runner.
func New(cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = NewLogger(cfg.Log.Level)
	}

	backend, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	launcher, err := browser.NewLauncher(cfg.Browser, logger)
	if err != nil {
		backend.Close()
		return nil, err
	}

	extractor := scraper.NewExtractor(cfg.Scraper, logger)
	orchestrator := scraper.NewOrchestrator(launcher, extractor, cfg.Scraper.Concurrency, logger)

	targetsFile := cfg.Scraper.TargetsFile
	targets := func() (config.Targets, error) {
		return config.LoadTargets(targetsFile)
	}

	runner := scheduler.NewRunner(orchestrator, backend.History, backend.Runs, targets, cfg.Scraper.RunTimeout, logger)

	return &App{
		Config:  cfg,
		Backend: backend,
		Runner:  runner,
		Logger:  logger,
	}, nil
}

func (a *App) Close() error {
	return a.Backend.Close()
}
