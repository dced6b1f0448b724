package npc

import (
	"context"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Industrialist builds an economy first and only arms when it must.
type Industrialist struct {
	cfg config.NPCConfig
}

// DetermineState returns growth until the worker and structure targets are
// met, defensive while guards are critically low, and prepare otherwise.
func (s *Industrialist) DetermineState(p *power.Profile) State {
	t := s.cfg.Industrialist
	switch {
	case p.Resources.Workers < t.WorkerTarget,
		p.Structures.Level(economy.StructurePopulation) < t.StructureTarget,
		p.Structures.Level(economy.StructureMining) < t.StructureTarget:
		return StateGrowth
	case p.Resources.Guards < t.CriticalGuards:
		return StateDefensive
	default:
		return StatePrepare
	}
}

// Execute implements Strategy.
func (s *Industrialist) Execute(ctx context.Context, env *Env, agent Agent, p *power.Profile) []string {
	tr := &trace{}
	state := s.DetermineState(p)
	tr.add("state %s", state)
	env.ensureInfrastructure(ctx, tr, agent, p)

	switch state {
	case StateGrowth:
		env.attemptUpgrade(ctx, tr, agent, p, lowest(p.Structures, economy.StructurePopulation, economy.StructureMining))
		need := s.cfg.Industrialist.WorkerTarget - p.Resources.Workers
		env.train(ctx, tr, agent, p, economy.UnitWorker, min(need, env.affordable(p, economy.UnitWorker, env.spendable(p)/2)))
		env.considerCitizenPurchase(ctx, tr, agent, p)
	case StateDefensive:
		need := s.cfg.Industrialist.CriticalGuards - p.Resources.Guards
		env.train(ctx, tr, agent, p, economy.UnitGuard, min(need, env.affordable(p, economy.UnitGuard, env.spendable(p))))
	default:
		env.attemptUpgrade(ctx, tr, agent, p, lowest(p.Structures,
			economy.StructureEconomy, economy.StructureArmory, economy.StructureFortification, economy.StructureResearch))
		env.considerCrystalPurchase(ctx, tr, agent, p)
	}
	return tr.entries
}
