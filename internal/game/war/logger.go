package war

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// Logger records engagements between alliances at war and concludes a war
// once a side reaches its goal. It is an event bus subscriber.
type Logger struct {
	store  Store
	bus    *event.Bus
	logger *zap.Logger
	now    func() time.Time
}

// NewLogger creates a Logger.
//
// Precondition: store, bus and logger must be non-nil.
func NewLogger(store Store, bus *event.Bus, logger *zap.Logger) *Logger {
	return &Logger{store: store, bus: bus, logger: logger, now: time.Now}
}

// Handle implements event.Handler.
func (l *Logger) Handle(ctx context.Context, env event.Envelope) error {
	switch ev := env.Event.(type) {
	case event.BattleConcluded:
		return l.recordBattle(ctx, ev)
	case event.SpyConcluded:
		result := SpyFailure
		if ev.Success {
			result = SpySuccess
		}
		_, err := l.record(ctx, &LogEntry{
			Kind:               LogSpy,
			ReportID:           ev.ReportID,
			AttackerAllianceID: ev.SpyAllianceID,
			DefenderAllianceID: ev.TargetAllianceID,
			Result:             result,
			OccurredAt:         ev.OccurredAt,
		})
		return err
	}
	return nil
}

func (l *Logger) recordBattle(ctx context.Context, ev event.BattleConcluded) error {
	entry := &LogEntry{
		Kind:               LogBattle,
		ReportID:           ev.ReportID,
		AttackerAllianceID: ev.AttackerAllianceID,
		DefenderAllianceID: ev.DefenderAllianceID,
		Result:             ev.Result,
		Plunder:            ev.CreditsPlundered,
		Prestige:           ev.PrestigeGained,
		OccurredAt:         ev.OccurredAt,
	}
	w, err := l.record(ctx, entry)
	if err != nil || w == nil {
		return err
	}
	amount := progressFor(w.GoalType, ev)
	if amount <= 0 {
		return nil
	}
	w, err = l.store.AddProgress(ctx, w.ID, ev.AttackerAllianceID, amount)
	if err != nil {
		return fmt.Errorf("adding progress to war %d: %w", entry.WarID, err)
	}
	progress := w.ProgressA
	if ev.AttackerAllianceID == w.AllianceB {
		progress = w.ProgressB
	}
	if progress < w.GoalThreshold {
		return nil
	}
	now := l.now()
	concluded, err := l.store.ConcludeWar(ctx, w.ID, ev.AttackerAllianceID, now)
	if err != nil {
		return fmt.Errorf("concluding war %d: %w", w.ID, err)
	}
	if !concluded {
		return nil
	}
	l.logger.Info("war goal reached",
		zap.Int64("war_id", w.ID),
		zap.Int64("winner_alliance_id", ev.AttackerAllianceID),
		zap.String("goal", string(w.GoalType)),
		zap.Int64("progress", progress),
	)
	l.bus.Publish(ctx, event.StrategicTargetDestroyed{WarID: w.ID, WinningAllianceID: ev.AttackerAllianceID, OccurredAt: now})
	return nil
}

// record persists entry when its two alliances are in an active war, and
// returns that war. It returns nil, nil when no active war applies.
func (l *Logger) record(ctx context.Context, entry *LogEntry) (*War, error) {
	a, d := entry.AttackerAllianceID, entry.DefenderAllianceID
	if a == 0 || d == 0 || a == d {
		return nil, nil
	}
	w, err := l.store.OpenWarBetween(ctx, a, d)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding war between %d and %d: %w", a, d, err)
	}
	if w.Status != StatusActive {
		return nil, nil
	}
	entry.WarID = w.ID
	if err := l.store.InsertWarLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording %s in war %d: %w", entry.Kind, w.ID, err)
	}
	return w, nil
}

func progressFor(goal GoalType, ev event.BattleConcluded) int64 {
	switch goal {
	case GoalPlunder:
		return ev.CreditsPlundered
	case GoalVictories:
		if ev.Result == "victory" {
			return 1
		}
	case GoalPrestige:
		return ev.PrestigeGained
	}
	return 0
}
