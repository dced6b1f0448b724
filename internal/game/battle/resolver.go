package battle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// Resolver conducts attacks and espionage missions.
type Resolver struct {
	battle    config.BattleConfig
	espionage config.EspionageConfig
	calc      *power.Calculator
	edicts    *edict.Registry
	store     Store
	bus       *event.Bus
	logger    *zap.Logger
	now       func() time.Time
}

// NewResolver creates a Resolver.
//
// Precondition: calc, store, bus and logger must be non-nil. edicts may be nil.
func NewResolver(balance config.BalanceConfig, calc *power.Calculator, edicts *edict.Registry, store Store, bus *event.Bus, logger *zap.Logger) *Resolver {
	return &Resolver{
		battle:    balance.Battle,
		espionage: balance.Espionage,
		calc:      calc,
		edicts:    edicts,
		store:     store,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

// ConductAttack resolves one attack by attackerID against the player named targetName.
//
// Precondition: attackType should name a configured attack type.
// Postcondition: on a validation failure or conflict the returned Result
// carries the reason, err is nil and nothing was persisted.
// Postcondition: a non-nil err means the transaction rolled back.
func (r *Resolver) ConductAttack(ctx context.Context, attackerID int64, targetName, attackType string) (Result, error) {
	at, ok := r.battle.AttackTypes[attackType]
	if !ok {
		return Result{Reason: ReasonUnknownAttackType, Message: fmt.Sprintf("unknown attack type %q", attackType)}, nil
	}

	var (
		report Report
		ev     event.BattleConcluded
		phase  = PhaseInitiated
	)
	err := r.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		attacker, defender, err := r.lockPair(ctx, tx, attackerID, targetName)
		if err != nil {
			return err
		}
		if attacker.Resources.Soldiers < 1 {
			return reject(ReasonInsufficientUnits, "you need at least one soldier to attack")
		}
		if attacker.Stats.AttackTurns < at.TurnCost {
			return reject(ReasonInsufficientTurns, "a %s attack costs %d attack turns, you have %d", attackType, at.TurnCost, attacker.Stats.AttackTurns)
		}
		if edict.Has(r.edicts, attacker.Edicts, edict.EffectBlocksAttacking) {
			return reject(ReasonAttackerBlocked, "an active edict forbids you from attacking")
		}
		if edict.Has(r.edicts, defender.Edicts, edict.EffectCannotBeAttacked) {
			return reject(ReasonTargetProtected, "%s cannot be attacked right now", defender.Name)
		}
		phase = PhaseValidated

		offense := r.calc.Offense(attacker)
		defense := r.calc.Defense(defender)
		res := Resolve(r.battle, Engagement{
			AttackType:       at,
			OffensePower:     offense.Total,
			DefensePower:     defense.Total,
			AttackerSoldiers: attacker.Resources.Soldiers,
			DefenderGuards:   defender.Resources.Guards,
			DefenderCredits:  defender.Resources.Credits,
			DefenderNetWorth: defender.Stats.NetWorth,
		})
		phase = PhaseResolved

		if err := tx.ApplyDelta(ctx, attacker.UserID, res.AttackerDelta); err != nil {
			return fmt.Errorf("applying attacker delta: %w", err)
		}
		if err := tx.ApplyDelta(ctx, defender.UserID, res.DefenderDelta); err != nil {
			return fmt.Errorf("applying defender delta: %w", err)
		}
		report = Report{
			AttackerID:         attacker.UserID,
			DefenderID:         defender.UserID,
			AttackerAllianceID: attacker.AllianceID,
			DefenderAllianceID: defender.AllianceID,
			AttackType:         attackType,
			Outcome:            res.Outcome,
			AttackerPower:      offense.Total,
			DefenderPower:      defense.Total,
			AttackerLosses:     res.AttackerLosses,
			DefenderLosses:     res.DefenderLosses,
			CreditsPlundered:   res.CreditsPlundered,
			NetWorthStolen:     res.NetWorthStolen,
			ExperienceGained:   res.AttackerXP,
			PrestigeGained:     res.Prestige,
			CreatedAt:          r.now(),
		}
		if err := tx.InsertBattleReport(ctx, &report); err != nil {
			return fmt.Errorf("inserting battle report: %w", err)
		}
		ev = event.BattleConcluded{
			AttackerID:         attacker.UserID,
			AttackerName:       attacker.Name,
			AttackerAllianceID: attacker.AllianceID,
			DefenderID:         defender.UserID,
			DefenderName:       defender.Name,
			DefenderAllianceID: defender.AllianceID,
			AttackType:         attackType,
			Result:             string(res.Outcome),
			PrestigeGained:     res.Prestige,
			GuardsKilled:       res.DefenderLosses,
			SoldiersLost:       res.AttackerLosses,
			CreditsPlundered:   res.CreditsPlundered,
			OccurredAt:         report.CreatedAt,
		}
		return nil
	})
	if res, handled := r.classify(err, phase); handled {
		return res, nil
	}
	if err != nil {
		return Result{Phase: phase}, fmt.Errorf("conducting attack: %w", err)
	}

	ev.ReportID = report.ID
	r.logger.Info("battle resolved",
		zap.Int64("report_id", report.ID),
		zap.Int64("attacker_id", report.AttackerID),
		zap.Int64("defender_id", report.DefenderID),
		zap.String("attack_type", attackType),
		zap.String("outcome", string(report.Outcome)),
		zap.Int64("offense", report.AttackerPower),
		zap.Int64("defense", report.DefenderPower),
		zap.Int64("plundered", report.CreditsPlundered),
	)
	r.bus.Publish(ctx, ev)
	return Result{Phase: PhaseEventEmitted, Report: &report}, nil
}

// lockPair resolves the target, rejects self-targeting, and locks both rows.
func (r *Resolver) lockPair(ctx context.Context, tx Tx, actorID int64, targetName string) (actor, target *power.Profile, err error) {
	targetID, err := tx.UserIDByName(ctx, targetName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, reject(ReasonTargetNotFound, "no player named %q", targetName)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("looking up target: %w", err)
	}
	if targetID == actorID {
		return nil, nil, reject(ReasonSelfTarget, "you cannot target yourself")
	}
	profiles, err := tx.LockProfiles(ctx, actorID, targetID)
	if err != nil {
		return nil, nil, fmt.Errorf("locking profiles: %w", err)
	}
	actor, target = profiles[actorID], profiles[targetID]
	if actor == nil {
		return nil, nil, fmt.Errorf("user %d: %w", actorID, storage.ErrNotFound)
	}
	if target == nil {
		return nil, nil, reject(ReasonTargetNotFound, "no player named %q", targetName)
	}
	return actor, target, nil
}

// classify converts validation rejections and conflicts into typed results.
func (r *Resolver) classify(err error, phase Phase) (Result, bool) {
	var rej *rejection
	switch {
	case err == nil:
		return Result{}, false
	case errors.As(err, &rej):
		return Result{Reason: rej.reason, Message: rej.message, Phase: phase}, true
	case errors.Is(err, storage.ErrConflict):
		r.logger.Warn("engagement lost a concurrent modification race", zap.Error(err))
		return Result{Reason: ReasonConflict, Message: "the battlefield changed, please try again", Phase: phase}, true
	}
	return Result{}, false
}
