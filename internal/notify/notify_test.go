package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/notify"
)

type recordingSink struct {
	got []notify.Notification
	err error
}

func (s *recordingSink) InsertNotification(_ context.Context, n *notify.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, *n)
	return nil
}

func dispatch(t *testing.T, sink *recordingSink, ev event.Event) error {
	t.Helper()
	d := notify.NewDispatcher(sink, zaptest.NewLogger(t))
	return d.Handle(context.Background(), event.Envelope{Event: ev})
}

func TestBattleNotifiesDefender(t *testing.T) {
	sink := &recordingSink{}
	err := dispatch(t, sink, event.BattleConcluded{
		AttackerID:       1,
		AttackerName:     "Vex",
		DefenderID:       2,
		Result:           "victory",
		GuardsKilled:     1200,
		CreditsPlundered: 100000,
	})
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	assert.Equal(t, int64(2), sink.got[0].UserID)
	assert.Equal(t, notify.KindAttacked, sink.got[0].Kind)
	assert.Equal(t, "Vex defeated your defenses, killed 1,200 guards and plundered 100,000 credits.", sink.got[0].Message)
}

func TestBattleMessage(t *testing.T) {
	assert.Equal(t, "You repelled an attack by Vex, who lost 15 soldiers.",
		notify.BattleMessage(event.BattleConcluded{AttackerName: "Vex", Result: "defeat", SoldiersLost: 15}))
	assert.Equal(t, "An attack by Vex ended in a stalemate. You lost 5 guards.",
		notify.BattleMessage(event.BattleConcluded{AttackerName: "Vex", Result: "stalemate", GuardsKilled: 5}))
}

func TestSpyMissions(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, dispatch(t, sink, event.SpyConcluded{SpyName: "Shade", TargetID: 4, Success: true}))
	assert.Empty(t, sink.got, "successful missions go unnoticed")

	require.NoError(t, dispatch(t, sink, event.SpyConcluded{SpyName: "Shade", TargetID: 4, SpiesLost: 3}))
	require.Len(t, sink.got, 1)
	assert.Equal(t, notify.KindSpied, sink.got[0].Kind)
	assert.Equal(t, int64(4), sink.got[0].UserID)
	assert.Contains(t, sink.got[0].Message, "3 of them were eliminated")
}

func TestUnrelatedEventsIgnored(t *testing.T) {
	sink := &recordingSink{}
	require.NoError(t, dispatch(t, sink, event.StrategicTargetDestroyed{WarID: 1}))
	assert.Empty(t, sink.got)
}

func TestSinkFailureIsReturned(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	err := dispatch(t, sink, event.BattleConcluded{DefenderID: 9, Result: "victory"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifying user 9")
}
