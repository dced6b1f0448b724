// Package action implements the player actions shared by human requests and
// NPC agents: structure upgrades, unit training, black market conversions and
// bank deposits.
package action

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Reason identifies why an action was refused.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonInvalidQuantity      Reason = "invalid_quantity"
	ReasonUnknownStructure     Reason = "unknown_structure"
	ReasonUnknownUnit          Reason = "unknown_unit"
	ReasonInsufficientCredits  Reason = "insufficient_credits"
	ReasonInsufficientCitizens Reason = "insufficient_citizens"
	ReasonInsufficientCrystals Reason = "insufficient_crystals"
	ReasonNoDepositCharges     Reason = "no_deposit_charges"
	ReasonDepositLimit         Reason = "deposit_limit"
)

// Result is returned by every action.
type Result struct {
	Reason  Reason
	Message string
	// Cost is the amount of the paying resource spent; 0 on failure.
	Cost int64
	// Level is the new structure level after an upgrade.
	Level int
}

// OK reports whether the action was applied.
func (r Result) OK() bool { return r.Reason == ReasonNone }

// Store applies single-player mutations.
type Store interface {
	// Mutate locks userID's rows, passes a fresh snapshot to fn, and applies
	// the returned delta atomically. Nothing is written when fn fails or the
	// delta would drive any balance negative.
	Mutate(ctx context.Context, userID int64, fn func(p *power.Profile) (economy.Delta, error)) error
}

type refusal struct {
	reason  Reason
	message string
}

func (r *refusal) Error() string { return string(r.reason) + ": " + r.message }

func refuse(reason Reason, format string, args ...any) error {
	return &refusal{reason: reason, message: fmt.Sprintf(format, args...)}
}

// Service performs player actions.
type Service struct {
	costs  config.CostConfig
	edicts *edict.Registry
	store  Store
	logger *zap.Logger
}

// NewService creates a Service.
//
// Precondition: store and logger must be non-nil.
func NewService(balance config.BalanceConfig, edicts *edict.Registry, store Store, logger *zap.Logger) *Service {
	return &Service{costs: balance.Costs, edicts: edicts, store: store, logger: logger}
}

// run executes fn under Mutate and converts refusals into results.
func (s *Service) run(ctx context.Context, name string, userID int64, fn func(p *power.Profile, res *Result) (economy.Delta, error)) (Result, error) {
	var res Result
	err := s.store.Mutate(ctx, userID, func(p *power.Profile) (economy.Delta, error) {
		return fn(p, &res)
	})
	var ref *refusal
	if errors.As(err, &ref) {
		return Result{Reason: ref.reason, Message: ref.message}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s for user %d: %w", name, userID, err)
	}
	s.logger.Debug("action applied",
		zap.String("action", name),
		zap.Int64("user_id", userID),
		zap.Int64("cost", res.Cost),
	)
	return res, nil
}

// discount returns the charisma price multiplier in (0, 1].
func (s *Service) discount(p *power.Profile) float64 {
	d := math.Min(s.costs.MaxCharismaDiscount, float64(p.Stats.Charisma)*s.costs.CharismaDiscountPercent)
	return 1 - math.Max(0, d)
}

// UpgradeCost returns the credit price of raising kind one level for p, and
// false when the structure has no configured cost.
//
// Postcondition: cost = floor(base * growth^level * max(0, 1+modifier) * charismaDiscount).
func (s *Service) UpgradeCost(p *power.Profile, kind economy.StructureKind) (int64, bool) {
	sc, ok := s.costs.Structures[string(kind)]
	if !ok {
		return 0, false
	}
	raw := float64(sc.Base) * math.Pow(sc.Growth, float64(p.Structures.Level(kind)))
	mod := math.Max(0, 1+edict.Sum(s.edicts, p.Edicts, edict.EffectStructureCostModifier))
	return int64(math.Floor(raw * mod * s.discount(p))), true
}

// UnitCost returns the credit price of one unit for p, and false when the
// unit has no configured cost.
func (s *Service) UnitCost(p *power.Profile, unit economy.Unit) (int64, bool) {
	c, ok := s.costs.Units[string(unit)]
	if !ok {
		return 0, false
	}
	return int64(math.Floor(float64(c) * s.discount(p))), true
}

// UpgradeStructure raises kind by one level.
//
// Postcondition: on success the level increased by exactly one and Cost
// credits were debited.
func (s *Service) UpgradeStructure(ctx context.Context, userID int64, kind economy.StructureKind) (Result, error) {
	return s.run(ctx, "upgrade_structure", userID, func(p *power.Profile, res *Result) (economy.Delta, error) {
		cost, ok := s.UpgradeCost(p, kind)
		if !ok {
			return economy.Delta{}, refuse(ReasonUnknownStructure, "structure %q cannot be upgraded", kind)
		}
		if p.Resources.Credits < cost {
			return economy.Delta{}, refuse(ReasonInsufficientCredits, "upgrading %s costs %d credits, you have %d", kind, cost, p.Resources.Credits)
		}
		res.Cost = cost
		res.Level = p.Structures.Level(kind) + 1
		return economy.Delta{
			Resources:  economy.Resources{Credits: -cost},
			Structures: economy.Structures{kind: 1},
		}, nil
	})
}

// Train converts qty untrained citizens into units of the given type.
func (s *Service) Train(ctx context.Context, userID int64, unit economy.Unit, qty int64) (Result, error) {
	if qty <= 0 {
		return Result{Reason: ReasonInvalidQuantity, Message: "quantity must be positive"}, nil
	}
	return s.run(ctx, "train", userID, func(p *power.Profile, res *Result) (economy.Delta, error) {
		each, ok := s.UnitCost(p, unit)
		if !ok {
			return economy.Delta{}, refuse(ReasonUnknownUnit, "unit %q cannot be trained", unit)
		}
		if p.Resources.Citizens < qty {
			return economy.Delta{}, refuse(ReasonInsufficientCitizens, "training %d %s needs %d citizens, you have %d", qty, unit.Plural(), qty, p.Resources.Citizens)
		}
		cost := each * qty
		if p.Resources.Credits < cost {
			return economy.Delta{}, refuse(ReasonInsufficientCredits, "training %d %s costs %d credits, you have %d", qty, unit.Plural(), cost, p.Resources.Credits)
		}
		res.Cost = cost
		r := economy.Resources{Credits: -cost, Citizens: -qty}
		return economy.Delta{Resources: r.AddUnits(unit, qty)}, nil
	})
}

// BuyCitizens exchanges crystals for citizens on the black market.
func (s *Service) BuyCitizens(ctx context.Context, userID int64, qty int64) (Result, error) {
	if qty <= 0 {
		return Result{Reason: ReasonInvalidQuantity, Message: "quantity must be positive"}, nil
	}
	return s.run(ctx, "buy_citizens", userID, func(p *power.Profile, res *Result) (economy.Delta, error) {
		cost := qty * s.costs.CitizenCrystalCost
		if p.Resources.Crystals < cost {
			return economy.Delta{}, refuse(ReasonInsufficientCrystals, "%d citizens cost %d crystals, you have %d", qty, cost, p.Resources.Crystals)
		}
		res.Cost = cost
		return economy.Delta{Resources: economy.Resources{Crystals: -cost, Citizens: qty}}, nil
	})
}

// BuyCrystals exchanges credits for crystals on the black market.
func (s *Service) BuyCrystals(ctx context.Context, userID int64, qty int64) (Result, error) {
	if qty <= 0 {
		return Result{Reason: ReasonInvalidQuantity, Message: "quantity must be positive"}, nil
	}
	return s.run(ctx, "buy_crystals", userID, func(p *power.Profile, res *Result) (economy.Delta, error) {
		cost := qty * s.costs.CrystalCreditCost
		if p.Resources.Credits < cost {
			return economy.Delta{}, refuse(ReasonInsufficientCredits, "%d crystals cost %d credits, you have %d", qty, cost, p.Resources.Credits)
		}
		res.Cost = cost
		return economy.Delta{Resources: economy.Resources{Credits: -cost, Crystals: qty}}, nil
	})
}

// Deposit moves credits on hand into the bank, consuming one deposit charge.
//
// Precondition: amount <= floor(credits * max_deposit_percent).
func (s *Service) Deposit(ctx context.Context, userID int64, amount int64) (Result, error) {
	if amount <= 0 {
		return Result{Reason: ReasonInvalidQuantity, Message: "amount must be positive"}, nil
	}
	return s.run(ctx, "deposit", userID, func(p *power.Profile, res *Result) (economy.Delta, error) {
		if p.Stats.DepositCharges < 1 {
			return economy.Delta{}, refuse(ReasonNoDepositCharges, "no deposit charges left this turn")
		}
		limit := int64(math.Floor(float64(p.Resources.Credits) * s.costs.MaxDepositPercent))
		if amount > limit {
			return economy.Delta{}, refuse(ReasonDepositLimit, "you may deposit at most %d credits", limit)
		}
		res.Cost = amount
		return economy.Delta{
			Resources: economy.Resources{Credits: -amount, BankedCredits: amount},
			Stats:     economy.Stats{DepositCharges: -1},
		}, nil
	})
}
