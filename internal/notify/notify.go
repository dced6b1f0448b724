// Package notify tells defenders what happened to them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/game/event"
)

// Kind classifies a notification.
type Kind string

const (
	KindAttacked Kind = "attacked"
	KindSpied    Kind = "spied"
)

// Notification is one message for one user.
type Notification struct {
	ID        int64
	UserID    int64
	Kind      Kind
	Message   string
	CreatedAt time.Time
}

// Sink persists or delivers notifications.
type Sink interface {
	InsertNotification(ctx context.Context, n *Notification) error
}

// Dispatcher is an event bus subscriber that notifies the defending player
// of every battle and every detected spy mission.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher.
//
// Precondition: sink and logger must be non-nil.
func NewDispatcher(sink Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger}
}

// Handle implements event.Handler.
func (d *Dispatcher) Handle(ctx context.Context, env event.Envelope) error {
	var n *Notification
	switch ev := env.Event.(type) {
	case event.BattleConcluded:
		n = &Notification{UserID: ev.DefenderID, Kind: KindAttacked, Message: BattleMessage(ev), CreatedAt: ev.OccurredAt}
	case event.SpyConcluded:
		// A successful mission goes unnoticed.
		if ev.Success {
			return nil
		}
		n = &Notification{
			UserID:    ev.TargetID,
			Kind:      KindSpied,
			Message:   fmt.Sprintf("Your sentries caught spies from %s. %s of them were eliminated.", ev.SpyName, humanize.Comma(ev.SpiesLost)),
			CreatedAt: ev.OccurredAt,
		}
	default:
		return nil
	}
	if err := d.sink.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("notifying user %d: %w", n.UserID, err)
	}
	d.logger.Debug("notification stored",
		zap.Int64("user_id", n.UserID),
		zap.String("kind", string(n.Kind)),
		zap.String("event_id", env.ID.String()),
	)
	return nil
}

// BattleMessage renders the defender's view of a battle.
func BattleMessage(ev event.BattleConcluded) string {
	switch ev.Result {
	case "victory":
		return fmt.Sprintf("%s defeated your defenses, killed %s guards and plundered %s credits.",
			ev.AttackerName, humanize.Comma(ev.GuardsKilled), humanize.Comma(ev.CreditsPlundered))
	case "defeat":
		return fmt.Sprintf("You repelled an attack by %s, who lost %s soldiers.",
			ev.AttackerName, humanize.Comma(ev.SoldiersLost))
	default:
		return fmt.Sprintf("An attack by %s ended in a stalemate. You lost %s guards.",
			ev.AttackerName, humanize.Comma(ev.GuardsKilled))
	}
}
