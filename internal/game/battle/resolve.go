package battle

import (
	"math"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
)

// Engagement is the read-only input of one attack resolution.
type Engagement struct {
	AttackType       config.AttackTypeConfig
	OffensePower     int64
	DefensePower     int64
	AttackerSoldiers int64
	DefenderGuards   int64
	DefenderCredits  int64
	DefenderNetWorth int64
}

// Resolution is the computed outcome of an engagement and the deltas it implies.
type Resolution struct {
	Outcome          Outcome
	Ratio            float64
	AttackerLosses   int64
	DefenderLosses   int64
	CreditsPlundered int64
	NetWorthStolen   int64
	AttackerXP       int64
	DefenderXP       int64
	Prestige         int64
	AttackerDelta    economy.Delta
	DefenderDelta    economy.Delta
}

// Resolve computes the outcome of e. It performs no I/O.
//
// Postcondition: neither side loses more than cfg.MaxLossPercent of its units.
// Postcondition: CreditsPlundered > 0 only on a victory with a plundering attack type.
func Resolve(cfg config.BattleConfig, e Engagement) Resolution {
	res := Resolution{Outcome: Classify(e.OffensePower, e.DefensePower, cfg.StalemateMargin)}

	var winnerPct, loserPct float64
	// On a stalemate both percents are equal so side assignment is moot.
	if res.Outcome == OutcomeDefeat {
		res.Ratio = Ratio(e.DefensePower, e.OffensePower)
		winnerPct, loserPct = LossPercents(cfg, res.Outcome, res.Ratio)
		res.AttackerLosses = Casualties(e.AttackerSoldiers, loserPct)
		res.DefenderLosses = Casualties(e.DefenderGuards, winnerPct)
	} else {
		res.Ratio = Ratio(e.OffensePower, e.DefensePower)
		winnerPct, loserPct = LossPercents(cfg, res.Outcome, res.Ratio)
		res.AttackerLosses = Casualties(e.AttackerSoldiers, winnerPct)
		res.DefenderLosses = Casualties(e.DefenderGuards, loserPct)
	}

	if res.Outcome == OutcomeVictory && e.AttackType.Plunder {
		res.CreditsPlundered = Plunder(cfg, e.DefenderCredits, res.Ratio)
		res.NetWorthStolen = min(e.DefenderNetWorth, int64(math.Floor(float64(res.CreditsPlundered)*cfg.NetWorthPerCredit)))
	}

	res.AttackerXP = res.DefenderLosses*cfg.ExperiencePerKill + int64(math.Floor(float64(res.CreditsPlundered)*cfg.ExperiencePerCredit))
	res.DefenderXP = res.AttackerLosses * cfg.ExperiencePerKill
	if res.Outcome == OutcomeVictory {
		raw := float64(cfg.PrestigeOnVictory) + float64(res.DefenderLosses)*cfg.PrestigePerKill
		res.Prestige = int64(math.Floor(raw * e.AttackType.PrestigeMultiplier))
	}

	res.AttackerDelta = economy.Delta{
		Resources: economy.Resources{Credits: res.CreditsPlundered, Soldiers: -res.AttackerLosses},
		Stats: economy.Stats{
			AttackTurns: -e.AttackType.TurnCost,
			Experience:  res.AttackerXP,
			WarPrestige: res.Prestige,
			NetWorth:    res.NetWorthStolen,
		},
	}
	res.DefenderDelta = economy.Delta{
		Resources: economy.Resources{Credits: -res.CreditsPlundered, Guards: -res.DefenderLosses},
		Stats: economy.Stats{
			Experience: res.DefenderXP,
			NetWorth:   -res.NetWorthStolen,
		},
	}
	return res
}
