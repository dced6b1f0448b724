// Package main provides the engine daemon that runs the turn, NPC and war
// expiry jobs on their configured schedules.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/app"
	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/observability"
	"github.com/cory-johannsen/dominion/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	engine, cleanup, err := app.InitializeEngine(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing engine", zap.Error(err))
	}
	defer cleanup()

	runner := engine.NewRunner(nil)
	logger.Info("engine ready",
		zap.Strings("jobs", runner.Jobs()),
		zap.Strings("subscribers", engine.Subscriptions.Names),
		zap.Duration("turn_interval", cfg.Scheduler.TurnInterval),
		zap.Duration("startup", time.Since(start)),
	)

	lc := server.NewLifecycle(logger, cfg.Scheduler.ShutdownTimeout)
	lc.Add("scheduler", runner)
	if err := lc.Run(ctx); err != nil {
		logger.Error("engine stopped with error", zap.Error(err))
		cleanup()
		_ = logger.Sync()
		log.Fatalf("engine: %v", err)
	}
}
