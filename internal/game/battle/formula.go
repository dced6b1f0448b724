package battle

import (
	"math"

	"github.com/cory-johannsen/dominion/internal/config"
)

// Classify compares attacker offense with defender defense.
//
// Postcondition: victory iff offense > defense*(1+margin); defeat iff
// defense > offense*(1+margin); stalemate otherwise.
func Classify(offense, defense int64, margin float64) Outcome {
	o, d := float64(offense), float64(defense)
	switch {
	case o > d*(1+margin):
		return OutcomeVictory
	case d > o*(1+margin):
		return OutcomeDefeat
	default:
		return OutcomeStalemate
	}
}

// Ratio returns winner power divided by loser power, or +Inf when the loser has none.
func Ratio(winner, loser int64) float64 {
	if loser <= 0 {
		if winner <= 0 {
			return 1
		}
		return math.Inf(1)
	}
	return float64(winner) / float64(loser)
}

// LossPercents returns the fraction of units the winner and the loser lose.
//
// Postcondition: both values lie in [0, cfg.MaxLossPercent].
func LossPercents(cfg config.BattleConfig, outcome Outcome, ratio float64) (winner, loser float64) {
	if outcome == OutcomeStalemate {
		s := capped(cfg.StalemateLossPercent, 1, cfg.MaxLossPercent)
		return s, s
	}
	loser = capped(cfg.LoserLossPercent, ratio, cfg.MaxLossPercent)
	if !math.IsInf(ratio, 1) && ratio > 0 {
		winner = capped(cfg.WinnerLossPercent, 1/ratio, cfg.MaxLossPercent)
	}
	return winner, loser
}

// capped returns min(limit, base*scale) clamped to [0, limit].
// An infinite scale yields limit for a positive base and 0 otherwise.
func capped(base, scale, limit float64) float64 {
	if limit <= 0 || base <= 0 || math.IsNaN(base) || math.IsNaN(scale) {
		return 0
	}
	if math.IsInf(scale, 1) {
		return limit
	}
	v := base * scale
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return math.Min(limit, v)
}

// Casualties converts a loss fraction into a unit count.
//
// Precondition: pct < 1.
// Postcondition: 0 <= result < units whenever units > 0.
func Casualties(units int64, pct float64) int64 {
	if units <= 0 || pct <= 0 {
		return 0
	}
	return int64(math.Floor(float64(units) * pct))
}

// Plunder returns the credits taken from a defender with the given balance.
//
// Postcondition: result <= floor(credits * cfg.MaxPlunderPercent).
func Plunder(cfg config.BattleConfig, credits int64, ratio float64) int64 {
	if credits <= 0 {
		return 0
	}
	pct := capped(cfg.BasePlunderPercent, ratio, cfg.MaxPlunderPercent)
	if pct <= 0 {
		return 0
	}
	return int64(math.Floor(float64(credits) * pct))
}
