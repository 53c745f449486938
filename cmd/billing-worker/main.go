package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"contas/internal/config"
	"contas/internal/core"
	"contas/internal/log"
	"contas/internal/services"
	"contas/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentBilling})
	log.SetDefault(logger)

	logger.Info("starting billing-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize sqlite repository",
			log.FieldError, err.Error(),
			"path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	processor := services.NewBillingProcessor(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := func() {
		rolled, err := processor.ProcessDueBillings(ctx, core.TodayInBrazil())
		if err != nil {
			logger.Error("billing pass failed", log.FieldError, err.Error())
			return
		}
		if rolled > 0 {
			logger.Info("billing pass completed", "rolled", rolled)
		}
	}

	// One pass at startup so a restart never delays overdue rolls by a
	// full interval.
	run()

	ticker := time.NewTicker(cfg.BillingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("billing-worker stopped gracefully")
			return
		case <-ticker.C:
			run()
		}
	}
}
