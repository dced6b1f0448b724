// Package main runs exactly one engine job and exits, for deployments that
// drive the engine from an external cron instead of the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/app"
	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/observability"
	"github.com/cory-johannsen/dominion/internal/scheduler"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	bad     = color.New(color.FgRed, color.Bold)
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	job := flag.String("job", "", "job to run: turn, npc, wars or score")
	warID := flag.Int64("war", 0, "war id for -job score")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, logger, *job, *warID)
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, job string, warID int64) int {
	engine, cleanup, err := app.InitializeEngine(ctx, cfg, logger)
	if err != nil {
		bad.Fprintf(os.Stderr, "initializing engine: %v\n", err)
		return 1
	}
	defer cleanup()

	if job == "score" {
		return printScore(ctx, engine.Wars, warID)
	}

	runner := engine.NewRunner(printSummary)
	out, err := runner.RunOnce(ctx, job)
	switch out {
	case scheduler.OutcomeSkipped:
		warn.Printf("%s is already running elsewhere, skipped\n", job)
		return 0
	case scheduler.OutcomeFailed:
		bad.Fprintf(os.Stderr, "%s failed: %v\n", job, err)
		return 1
	}
	return 0
}

func printSummary(job string, summary any) {
	heading.Printf("== %s ==\n", job)
	switch s := summary.(type) {
	case turn.Summary:
		good.Printf("users processed:     %s\n", humanize.Comma(int64(s.UsersProcessed)))
		failures(s.UsersFailed, "users failed")
		good.Printf("alliances processed: %s\n", humanize.Comma(int64(s.AlliancesProcessed)))
		failures(s.AlliancesFailed, "alliances failed")
		fmt.Printf("edicts lapsed:       %d\n", s.EdictsLapsed)
		fmt.Printf("elapsed:             %s\n", s.Elapsed.Round(time.Millisecond))
	case npc.CycleSummary:
		fmt.Printf("cycle:     %s\n", s.CycleID)
		good.Printf("succeeded: %d/%d\n", s.Succeeded, s.Agents)
		failures(s.Failed, "failed")
		fmt.Printf("actions:   %d\n", s.Actions)
		fmt.Printf("elapsed:   %s\n", s.Elapsed.Round(time.Millisecond))
	case app.WarSweep:
		good.Printf("wars concluded: %d\n", s.Concluded)
		fmt.Printf("elapsed:        %s\n", s.Elapsed.Round(time.Millisecond))
	}
}

func failures(n int, label string) {
	if n > 0 {
		bad.Printf("%s: %d\n", label, n)
	}
}

func printScore(ctx context.Context, wars *war.Service, warID int64) int {
	if warID == 0 {
		bad.Fprintln(os.Stderr, "-war is required for -job score")
		return 2
	}
	card, err := wars.Score(ctx, warID)
	if err != nil {
		bad.Fprintf(os.Stderr, "scoring war %d: %v\n", warID, err)
		return 1
	}
	heading.Printf("== war %d ==\n", warID)
	for _, c := range card.Categories {
		fmt.Printf("%-10s %3d : %-3d\n", c.Category, c.PointsA, c.PointsB)
	}
	line := fmt.Sprintf("%-10s %3d : %-3d\n", "total", card.TotalA, card.TotalB)
	if card.Leader() == 0 {
		warn.Print(line)
	} else {
		good.Print(line)
	}
	return 0
}
