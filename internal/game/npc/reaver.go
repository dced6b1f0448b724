package npc

import (
	"context"

	"github.com/dustin/go-humanize"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/dice"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Reaver attacks a random candidate every cycle it can.
type Reaver struct {
	cfg config.NPCConfig
}

// DetermineState returns recovery when the reaver has no soldiers or no
// attack turns, and aggressive otherwise.
func (s *Reaver) DetermineState(p *power.Profile) State {
	if p.Resources.Soldiers <= 0 || p.Stats.AttackTurns <= 0 {
		return StateRecovery
	}
	return StateAggressive
}

// Execute implements Strategy.
func (s *Reaver) Execute(ctx context.Context, env *Env, agent Agent, p *power.Profile) []string {
	tr := &trace{}
	state := s.DetermineState(p)
	tr.add("state %s", state)

	if state == StateRecovery {
		env.ensureInfrastructure(ctx, tr, agent, p)
		env.attemptUpgrade(ctx, tr, agent, p, economy.StructureEconomy)
		env.considerCitizenPurchase(ctx, tr, agent, p)
		tr.add("skip attack: recovering")
		return tr.entries
	}

	room := s.cfg.Reaver.SoldierCap - p.Resources.Soldiers
	env.train(ctx, tr, agent, p, economy.UnitSoldier, min(room, env.affordable(p, economy.UnitSoldier, env.spendable(p))))
	s.attack(ctx, env, tr, agent)
	return tr.entries
}

func (s *Reaver) attack(ctx context.Context, env *Env, tr *trace, agent Agent) {
	guard(tr, "attack", func() {
		candidates, err := env.Directory.Candidates(ctx, agent.UserID, s.cfg.CandidatePoolSize)
		if err != nil {
			tr.critical("listing attack candidates", err)
			return
		}
		if len(candidates) == 0 {
			tr.add("skip attack: no candidates")
			return
		}
		target := candidates[dice.Pick(env.Dice, len(candidates))]
		res, err := env.Attacker.ConductAttack(ctx, agent.UserID, target.Name, s.cfg.Reaver.AttackType)
		switch {
		case err != nil:
			tr.critical("attack "+target.Name, err)
		case !res.OK():
			tr.add("attack %s failed: %s", target.Name, res.Message)
		default:
			tr.add("attacked %s: %s, plundered %s credits", target.Name, res.Report.Outcome, humanize.Comma(res.Report.CreditsPlundered))
		}
	})
}
