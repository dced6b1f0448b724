// Package turn advances every player's economy by one tick.
package turn

import (
	"math"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Charge is one edict upkeep payment due this tick.
type Charge struct {
	EdictID  int64
	Key      string
	Resource economy.ResourceKind
	Amount   int64
}

// Update is the complete per-user change for one tick.
type Update struct {
	UserID   int64
	Income   power.Income
	Interest int64
	// Delta holds income, interest, growth and regeneration.
	Delta economy.Delta
	// Charges are every positive upkeep due this tick. Stores debit each
	// against the locked row and deactivate the edict when the row cannot
	// cover it.
	Charges []Charge
}

// Compute derives the tick update for p. It is a pure function of its inputs.
//
// Postcondition: regenerated counters never exceed their configured maximum.
// Postcondition: every edict with positive upkeep in a known resource
// appears in Charges exactly once.
func Compute(calc *power.Calculator, edicts *edict.Registry, cfg config.TurnConfig, p *power.Profile) Update {
	u := Update{UserID: p.UserID, Income: calc.Income(p)}
	u.Interest = int64(math.Floor(float64(p.Resources.BankedCredits) * cfg.InterestRate))

	u.Delta.Resources = economy.Resources{
		Credits:       u.Income.Credits,
		BankedCredits: u.Interest,
		Citizens:      u.Income.Citizens,
		DarkMatter:    u.Income.DarkMatter,
		ResearchData:  u.Income.ResearchData,
	}
	u.Delta.Stats = economy.Stats{
		AttackTurns:    regen(p.Stats.AttackTurns, cfg.AttackTurnRegen, cfg.MaxAttackTurns),
		SpyTurns:       regen(p.Stats.SpyTurns, cfg.SpyTurnRegen, cfg.MaxSpyTurns),
		DepositCharges: regen(p.Stats.DepositCharges, cfg.DepositChargeRegen, cfg.MaxDepositCharges),
	}

	for _, a := range p.Edicts {
		def, ok := edicts.Get(a.Key)
		if !ok || def.Upkeep.Amount <= 0 {
			continue
		}
		kind := economy.ResourceKind(def.Upkeep.Resource)
		if _, known := p.Resources.Get(kind); !known {
			continue
		}
		u.Charges = append(u.Charges, Charge{EdictID: a.ID, Key: a.Key, Resource: kind, Amount: def.Upkeep.Amount})
	}
	return u
}

// regen returns the increment that moves current toward limit by at most step.
func regen(current, step, limit int64) int64 {
	if step <= 0 || current >= limit {
		return 0
	}
	return min(step, limit-current)
}

// Alliance is the per-alliance input of the alliance pass.
type Alliance struct {
	ID            int64
	Name          string
	BankedCredits int64
	Members       int64
}

// AllianceUpdate is the tick change applied to one alliance treasury.
type AllianceUpdate struct {
	AllianceID int64
	Interest   int64
	Dues       int64
}

// ComputeAlliance derives the treasury update for a.
func ComputeAlliance(cfg config.TurnConfig, a Alliance) AllianceUpdate {
	return AllianceUpdate{
		AllianceID: a.ID,
		Interest:   int64(math.Floor(float64(a.BankedCredits) * cfg.AllianceInterestRate)),
		Dues:       a.Members * cfg.AllianceDuesPerMember,
	}
}
