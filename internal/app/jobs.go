package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/scheduler"
)

// Job names shared by the daemon and the cron runner.
const (
	JobTurn = "turn"
	JobNPC  = "npc"
	JobWars = "wars"
)

// WarSweep reports one war expiry sweep.
type WarSweep struct {
	Concluded int
	Elapsed   time.Duration
}

// Reporter receives the summary of every finished job invocation: a
// turn.Summary, npc.CycleSummary or WarSweep.
type Reporter func(job string, summary any)

// Jobs builds the periodic jobs over the given services. report may be nil.
//
// Postcondition: Returns one job per name in [JobTurn, JobNPC, JobWars].
func Jobs(cfg config.SchedulerConfig, turns *turn.Processor, npcs *npc.Engine, wars *war.Service, now func() time.Time, report Reporter) []scheduler.Job {
	if report == nil {
		report = func(string, any) {}
	}
	return []scheduler.Job{
		{
			Name:     JobTurn,
			Interval: cfg.TurnInterval,
			Run: func(ctx context.Context, logger *zap.Logger) error {
				sum, err := turns.ProcessAllUsers(ctx)
				if err != nil {
					return fmt.Errorf("processing turn: %w", err)
				}
				logger.Info("turn processed",
					zap.Int("users", sum.UsersProcessed),
					zap.Int("users_failed", sum.UsersFailed),
					zap.Int("alliances", sum.AlliancesProcessed),
					zap.Int("edicts_lapsed", sum.EdictsLapsed),
				)
				report(JobTurn, sum)
				return nil
			},
		},
		{
			Name:     JobNPC,
			Interval: cfg.NPCInterval,
			Run: func(ctx context.Context, logger *zap.Logger) error {
				sum, err := npcs.RunCycle(ctx)
				if err != nil {
					return fmt.Errorf("running npc cycle: %w", err)
				}
				logger.Info("npc cycle finished",
					zap.Stringer("cycle_id", sum.CycleID),
					zap.Int("agents", sum.Agents),
					zap.Int("failed", sum.Failed),
				)
				report(JobNPC, sum)
				return nil
			},
		},
		{
			Name:     JobWars,
			Interval: cfg.WarInterval,
			Run: func(ctx context.Context, logger *zap.Logger) error {
				start := time.Now()
				n, err := wars.ConcludeExpired(ctx, now())
				if err != nil {
					return fmt.Errorf("concluding expired wars: %w", err)
				}
				sweep := WarSweep{Concluded: n, Elapsed: time.Since(start)}
				logger.Info("war sweep finished", zap.Int("concluded", n))
				report(JobWars, sweep)
				return nil
			},
		},
	}
}

// NewRunner registers the engine's jobs on a runner guarded by e.Locker.
func (e *Engine) NewRunner(report Reporter) *scheduler.Runner {
	r := scheduler.NewRunner(e.Locker, e.Logger)
	for _, j := range Jobs(e.Config.Scheduler, e.Turns, e.NPCs, e.Wars, time.Now, report) {
		r.Register(j)
	}
	return r
}
