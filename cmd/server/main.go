package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nsac-scraper/internal/api"
	"github.com/nsac-scraper/internal/app"
	"github.com/nsac-scraper/internal/config"
	"github.com/nsac-scraper/internal/scheduler"

	_ "github.com/nsac-scraper/docs" // swagger docs
)

// @title NSAC Team Tracker API
// @version 1.0
// @description Scrapes NASA Space Apps Challenge team counts and serves their history.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration", "err", err)
	}

	logger := app.NewLogger(cfg.Log.Level)

	logger.Info("opening storage", "backend", cfg.Storage.Backend)
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", "err", err)
	}
	defer a.Close()

	// Start scheduler
	sched := scheduler.NewScheduler(cfg.Schedule.Cron, a.Runner, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", "err", err)
	}

	handler := api.NewHandler(a.Backend.History, a.Runner, sched, logger)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
	if err := a.Runner.Shutdown(shutdownCtx); err != nil {
		logger.Error("scrape did not stop in time", "err", err)
	}

	logger.Info("server stopped")
}
