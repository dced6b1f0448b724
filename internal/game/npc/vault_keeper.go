package npc

import (
	"context"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/dice"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// VaultKeeper turtles: fortifications, guards and sentries, then research.
type VaultKeeper struct {
	cfg config.NPCConfig
}

// DetermineState always returns defensive.
func (s *VaultKeeper) DetermineState(*power.Profile) State {
	return StateDefensive
}

// Execute implements Strategy.
func (s *VaultKeeper) Execute(ctx context.Context, env *Env, agent Agent, p *power.Profile) []string {
	tr := &trace{}
	tr.add("state %s", s.DetermineState(p))

	env.attemptUpgrade(ctx, tr, agent, p, economy.StructureFortification)
	vk := s.cfg.VaultKeeper
	env.train(ctx, tr, agent, p, economy.UnitGuard, min(vk.GuardBatch, env.affordable(p, economy.UnitGuard, env.spendable(p))))
	env.train(ctx, tr, agent, p, economy.UnitSentry, min(vk.SentryBatch, env.affordable(p, economy.UnitSentry, env.spendable(p))))
	if dice.Chance(env.Dice, vk.ResearchChance) {
		env.attemptUpgrade(ctx, tr, agent, p, economy.StructureResearch)
	} else {
		tr.add("skip research upgrade: not this cycle")
	}
	return tr.entries
}
