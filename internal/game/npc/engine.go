package npc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/dice"
)

// CycleSummary reports the outcome of one RunCycle.
type CycleSummary struct {
	CycleID   uuid.UUID
	Agents    int
	Succeeded int
	Failed    int
	// Actions is the total number of trace entries across agents.
	Actions int
	Elapsed time.Duration
}

// Engine runs one decision cycle for every NPC agent.
type Engine struct {
	cfg     config.NPCConfig
	env     *Env
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: dir, actions, attacker, src and logger must be non-nil.
func NewEngine(balance config.BalanceConfig, dir Directory, actions Actions, attacker Attacker, src dice.Source, logger *zap.Logger) *Engine {
	return &Engine{
		cfg: balance.NPC,
		env: &Env{
			Config:    balance.NPC,
			Costs:     balance.Costs,
			Actions:   actions,
			Attacker:  attacker,
			Directory: dir,
			Dice:      src,
		},
		limiter: rate.NewLimiter(rate.Limit(balance.NPC.AgentsPerSecond), balance.NPC.Burst),
		logger:  logger,
	}
}

// RunCycle lets every agent act once, in ascending user id order.
//
// One agent's failure or panic is logged and counted without affecting the
// others. The returned error is non-nil only when the agent list cannot be
// read or ctx is cancelled.
func (e *Engine) RunCycle(ctx context.Context) (CycleSummary, error) {
	start := time.Now()
	sum := CycleSummary{CycleID: uuid.New()}
	logger := e.logger.With(zap.String("cycle_id", sum.CycleID.String()))

	agents, err := e.env.Directory.ListNPCs(ctx)
	if err != nil {
		return sum, fmt.Errorf("listing npc agents: %w", err)
	}
	for _, agent := range agents {
		if err := e.limiter.Wait(ctx); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, fmt.Errorf("npc cycle interrupted: %w", err)
		}
		sum.Agents++
		entries, err := e.runAgent(ctx, agent)
		sum.Actions += len(entries)
		if err != nil {
			sum.Failed++
			logger.Error("npc agent failed",
				zap.Int64("user_id", agent.UserID),
				zap.String("archetype", string(agent.Archetype)),
				zap.Strings("trace", entries),
				zap.Error(err),
			)
			continue
		}
		sum.Succeeded++
		logger.Info("npc agent acted",
			zap.Int64("user_id", agent.UserID),
			zap.String("name", agent.Name),
			zap.String("archetype", string(agent.Archetype)),
			zap.Strings("trace", entries),
		)
	}

	sum.Elapsed = time.Since(start)
	logger.Info("npc cycle complete",
		zap.Int("agents", sum.Agents),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("actions", sum.Actions),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}

// runAgent runs one agent, converting a panic into an error.
func (e *Engine) runAgent(ctx context.Context, agent Agent) (entries []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			entries = append(entries, fmt.Sprintf("CRITICAL: agent panicked: %v", r))
			err = fmt.Errorf("agent %d panicked: %v", agent.UserID, r)
		}
	}()
	strategy, err := ForArchetype(agent.Archetype, e.cfg)
	if err != nil {
		return nil, err
	}
	p, err := e.env.Directory.Profile(ctx, agent.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return strategy.Execute(ctx, e.env, agent, p), nil
}
