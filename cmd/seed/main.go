// Package main loads a world seed file into the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/observability"
	"github.com/cory-johannsen/dominion/internal/seed"
	"github.com/cory-johannsen/dominion/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	file := flag.String("file", "content/seed/world.yaml", "path to the world seed file")
	check := flag.Bool("check", false, "validate the seed file without touching the database")
	flag.Parse()

	w, err := seed.LoadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *check {
		fmt.Printf("%s: %d alliance(s), %d player(s) OK\n", *file, len(w.Alliances), len(w.Players))
		return
	}

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
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	res, err := seed.Apply(ctx, w, postgres.NewStore(pool.DB()), time.Now(), logger)
	if err != nil {
		logger.Fatal("seeding world", zap.Error(err))
	}
	logger.Info("world seeded",
		zap.String("file", *file),
		zap.Int("alliances", res.Alliances),
		zap.Int("players", res.Players),
		zap.Int("npcs", res.NPCs),
		zap.Int("edicts", res.Edicts),
		zap.Duration("elapsed", time.Since(start)),
	)
}
