package battle

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/event"
)

// ConductEspionage sends spyID's spies against the player named targetName.
//
// A mission succeeds when spy power exceeds sentry power by the configured
// margin. A success reveals the target's military and treasury; a failure
// costs a fraction of the spies sent.
//
// Postcondition: failure reasons and conflicts are reported through Result
// with a nil err and no persisted change.
func (r *Resolver) ConductEspionage(ctx context.Context, spyID int64, targetName string) (Result, error) {
	var (
		report SpyReport
		ev     event.SpyConcluded
		phase  = PhaseInitiated
	)
	err := r.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		spy, target, err := r.lockPair(ctx, tx, spyID, targetName)
		if err != nil {
			return err
		}
		if spy.Resources.Spies < 1 {
			return reject(ReasonInsufficientUnits, "you need at least one spy")
		}
		if spy.Stats.SpyTurns < r.espionage.TurnCost {
			return reject(ReasonInsufficientTurns, "a mission costs %d spy turns, you have %d", r.espionage.TurnCost, spy.Stats.SpyTurns)
		}
		if edict.Has(r.edicts, target.Edicts, edict.EffectCannotBeAttacked) {
			return reject(ReasonTargetProtected, "%s is hidden from your agents", target.Name)
		}
		phase = PhaseValidated

		spyPower := r.calc.Spy(spy).Total
		sentryPower := r.calc.Sentry(target).Total
		success := float64(spyPower) > float64(sentryPower)*(1+r.espionage.SuccessMargin)

		report = SpyReport{
			SpyID:            spy.UserID,
			TargetID:         target.UserID,
			SpyAllianceID:    spy.AllianceID,
			TargetAllianceID: target.AllianceID,
			Success:          success,
			SpyPower:         spyPower,
			SentryPower:      sentryPower,
			CreatedAt:        r.now(),
		}
		if success {
			report.ExperienceGained = r.espionage.ExperiencePerMission
			report.Intel = &Intel{
				Credits:      target.Resources.Credits,
				Soldiers:     target.Resources.Soldiers,
				Guards:       target.Resources.Guards,
				Spies:        target.Resources.Spies,
				Sentries:     target.Resources.Sentries,
				DefensePower: r.calc.Defense(target).Total,
				OffensePower: r.calc.Offense(target).Total,
			}
		} else {
			pct := math.Min(r.battle.MaxLossPercent, r.espionage.FailedSpyLossPercent)
			report.SpiesLost = Casualties(spy.Resources.Spies, pct)
		}
		phase = PhaseResolved

		delta := economy.Delta{
			Resources: economy.Resources{Spies: -report.SpiesLost},
			Stats:     economy.Stats{SpyTurns: -r.espionage.TurnCost, Experience: report.ExperienceGained},
		}
		if err := tx.ApplyDelta(ctx, spy.UserID, delta); err != nil {
			return fmt.Errorf("applying spy delta: %w", err)
		}
		if err := tx.InsertSpyReport(ctx, &report); err != nil {
			return fmt.Errorf("inserting spy report: %w", err)
		}
		ev = event.SpyConcluded{
			SpyID:            spy.UserID,
			SpyName:          spy.Name,
			SpyAllianceID:    spy.AllianceID,
			TargetID:         target.UserID,
			TargetName:       target.Name,
			TargetAllianceID: target.AllianceID,
			Success:          success,
			SpiesLost:        report.SpiesLost,
			OccurredAt:       report.CreatedAt,
		}
		return nil
	})
	if res, handled := r.classify(err, phase); handled {
		return res, nil
	}
	if err != nil {
		return Result{Phase: phase}, fmt.Errorf("conducting espionage: %w", err)
	}

	ev.ReportID = report.ID
	r.logger.Info("spy mission resolved",
		zap.Int64("report_id", report.ID),
		zap.Int64("spy_id", report.SpyID),
		zap.Int64("target_id", report.TargetID),
		zap.Bool("success", report.Success),
		zap.Int64("spies_lost", report.SpiesLost),
	)
	r.bus.Publish(ctx, ev)
	return Result{Phase: PhaseEventEmitted, SpyReport: &report}, nil
}
