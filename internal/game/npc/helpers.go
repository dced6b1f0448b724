package npc

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/cory-johannsen/dominion/internal/game/dice"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// trace accumulates an agent's human-readable action log.
type trace struct {
	entries []string
}

func (t *trace) add(format string, args ...any) {
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

func (t *trace) critical(what string, err any) {
	t.add("CRITICAL: %s: %v", what, err)
}

// guard runs fn and converts a panic into a critical trace entry.
func guard(tr *trace, what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			tr.critical(what, r)
		}
	}()
	fn()
}

// spendable returns the credits above the configured reserve.
func (e *Env) spendable(p *power.Profile) int64 {
	return max(0, p.Resources.Credits-e.Config.CreditReserve)
}

// debit folds a successful action's delta into the agent's working snapshot
// so later budgets in the same cycle see the spent balance.
func debit(p *power.Profile, d economy.Delta) {
	*p = *p.Apply(d)
}

// attemptUpgrade upgrades kind and records the outcome. Errors never propagate.
func (e *Env) attemptUpgrade(ctx context.Context, tr *trace, agent Agent, p *power.Profile, kind economy.StructureKind) bool {
	ok := false
	guard(tr, "upgrade "+string(kind), func() {
		res, err := e.Actions.UpgradeStructure(ctx, agent.UserID, kind)
		switch {
		case err != nil:
			tr.critical("upgrade "+string(kind), err)
		case !res.OK():
			tr.add("upgrade %s failed: %s", kind, res.Message)
		default:
			ok = true
			debit(p, economy.Delta{
				Resources:  economy.Resources{Credits: -res.Cost},
				Structures: economy.Structures{kind: 1},
			})
			tr.add("upgraded %s to level %d for %s credits", kind, res.Level, humanize.Comma(res.Cost))
		}
	})
	return ok
}

// train trains qty units and records the outcome. qty <= 0 is a skip.
func (e *Env) train(ctx context.Context, tr *trace, agent Agent, p *power.Profile, unit economy.Unit, qty int64) bool {
	if qty <= 0 {
		tr.add("skip training %s: none needed or affordable", unit.Plural())
		return false
	}
	ok := false
	guard(tr, "train "+string(unit), func() {
		res, err := e.Actions.Train(ctx, agent.UserID, unit, qty)
		switch {
		case err != nil:
			tr.critical("train "+string(unit), err)
		case !res.OK():
			tr.add("train %s %s failed: %s", humanize.Comma(qty), unit.Plural(), res.Message)
		default:
			ok = true
			r := economy.Resources{Credits: -res.Cost, Citizens: -qty}
			debit(p, economy.Delta{Resources: r.AddUnits(unit, qty)})
			tr.add("trained %s %s for %s credits", humanize.Comma(qty), unit.Plural(), humanize.Comma(res.Cost))
		}
	})
	return ok
}

// affordable returns how many units fit into budget credits and the citizen pool.
func (e *Env) affordable(p *power.Profile, unit economy.Unit, budget int64) int64 {
	each, ok := e.Actions.UnitCost(p, unit)
	if !ok || each <= 0 || budget <= 0 {
		return 0
	}
	return min(budget/each, p.Resources.Citizens)
}

// ensureInfrastructure upgrades economy and mining when either is below the floor.
func (e *Env) ensureInfrastructure(ctx context.Context, tr *trace, agent Agent, p *power.Profile) {
	for _, kind := range []economy.StructureKind{economy.StructureEconomy, economy.StructureMining} {
		if lvl := p.Structures.Level(kind); lvl < e.Config.InfrastructureFloor {
			tr.add("%s level %d below floor %d", kind, lvl, e.Config.InfrastructureFloor)
			e.attemptUpgrade(ctx, tr, agent, p, kind)
		}
	}
}

// considerCitizenPurchase buys a batch of citizens on a random chance when
// the agent holds enough crystals.
func (e *Env) considerCitizenPurchase(ctx context.Context, tr *trace, agent Agent, p *power.Profile) {
	if !dice.Chance(e.Dice, e.Config.CitizenPurchaseChance) {
		tr.add("skip citizen purchase: not this cycle")
		return
	}
	qty := e.Config.CitizenPurchaseBatch
	if cost := qty * e.Costs.CitizenCrystalCost; p.Resources.Crystals < cost {
		tr.add("skip citizen purchase: need %s crystals, have %s", humanize.Comma(cost), humanize.Comma(p.Resources.Crystals))
		return
	}
	guard(tr, "buy citizens", func() {
		res, err := e.Actions.BuyCitizens(ctx, agent.UserID, qty)
		switch {
		case err != nil:
			tr.critical("buy citizens", err)
		case !res.OK():
			tr.add("buy citizens failed: %s", res.Message)
		default:
			debit(p, economy.Delta{Resources: economy.Resources{Crystals: -res.Cost, Citizens: qty}})
			tr.add("bought %s citizens for %s crystals", humanize.Comma(qty), humanize.Comma(res.Cost))
		}
	})
}

// considerCrystalPurchase buys crystals on a random chance when credits exceed the floor.
func (e *Env) considerCrystalPurchase(ctx context.Context, tr *trace, agent Agent, p *power.Profile) {
	if p.Resources.Credits < e.Config.CrystalPurchaseCreditFloor {
		tr.add("skip crystal purchase: credits %s below floor %s", humanize.Comma(p.Resources.Credits), humanize.Comma(e.Config.CrystalPurchaseCreditFloor))
		return
	}
	if !dice.Chance(e.Dice, e.Config.CrystalPurchaseChance) {
		tr.add("skip crystal purchase: not this cycle")
		return
	}
	qty := e.Config.CrystalPurchaseBatch
	guard(tr, "buy crystals", func() {
		res, err := e.Actions.BuyCrystals(ctx, agent.UserID, qty)
		switch {
		case err != nil:
			tr.critical("buy crystals", err)
		case !res.OK():
			tr.add("buy crystals failed: %s", res.Message)
		default:
			debit(p, economy.Delta{Resources: economy.Resources{Credits: -res.Cost, Crystals: qty}})
			tr.add("bought %s crystals for %s credits", humanize.Comma(qty), humanize.Comma(res.Cost))
		}
	})
}

// lowest returns the kind with the lowest level, preferring earlier kinds on ties.
func lowest(s economy.Structures, kinds ...economy.StructureKind) economy.StructureKind {
	best := kinds[0]
	for _, k := range kinds[1:] {
		if s.Level(k) < s.Level(best) {
			best = k
		}
	}
	return best
}
