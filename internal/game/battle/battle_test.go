package battle_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/notify"
	"github.com/cory-johannsen/dominion/internal/storage"
	"github.com/cory-johannsen/dominion/internal/storage/memory"
)

type fixture struct {
	store    *memory.Store
	resolver *battle.Resolver
	events   []event.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := edict.NewRegistry()
	reg.Register(&edict.Definition{Key: "prime_directive", Name: "Prime Directive", Effects: map[string]float64{edict.EffectBlocksAttacking: 1}})
	reg.Register(&edict.Definition{Key: "safehouse", Name: "Safehouse", Effects: map[string]float64{edict.EffectCannotBeAttacked: 1}})

	logger := zaptest.NewLogger(t)
	balance := config.Default().Balance
	f := &fixture{store: memory.NewStore()}
	bus := event.NewBus(logger)
	bus.Subscribe("notify", notify.NewDispatcher(f.store, logger).Handle)
	bus.Subscribe("capture", func(_ context.Context, env event.Envelope) error {
		f.events = append(f.events, env.Event)
		return nil
	})
	f.resolver = battle.NewResolver(balance, power.NewCalculator(balance, reg), reg, f.store, bus, logger)
	return f
}

func (f *fixture) addPair() (attackerID, defenderID int64) {
	attackerID = f.store.AddUser(&power.Profile{
		Name:      "raider",
		Resources: economy.Resources{Soldiers: 100_000},
		Stats:     economy.Stats{AttackTurns: 10},
	})
	defenderID = f.store.AddUser(&power.Profile{
		Name:      "farmer",
		Resources: economy.Resources{Guards: 50, Credits: 1_000_000},
	})
	return attackerID, defenderID
}

func TestConductAttack_OverwhelmingVictoryPlundersCap(t *testing.T) {
	f := newFixture(t)
	atk, def := f.addPair()

	res, err := f.resolver.ConductAttack(context.Background(), atk, "farmer", "plunder")
	require.NoError(t, err)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, battle.PhaseEventEmitted, res.Phase)
	require.NotNil(t, res.Report)
	assert.Equal(t, battle.OutcomeVictory, res.Report.Outcome)
	assert.Equal(t, int64(1_000_000), res.Report.AttackerPower)
	assert.Equal(t, int64(500), res.Report.DefenderPower)
	assert.Equal(t, int64(100_000), res.Report.CreditsPlundered)
	assert.Greater(t, res.Report.DefenderLosses, int64(0))

	d := f.store.User(def)
	assert.Equal(t, int64(900_000), d.Resources.Credits)
	assert.Equal(t, 50-res.Report.DefenderLosses, d.Resources.Guards)
	a := f.store.User(atk)
	assert.Equal(t, int64(100_000), a.Resources.Credits)
	assert.Equal(t, int64(9), a.Stats.AttackTurns)
	assert.Positive(t, a.Stats.WarPrestige)

	reports := f.store.BattleReports()
	require.Len(t, reports, 1)
	assert.Equal(t, battle.OutcomeVictory, reports[0].Outcome)

	require.Len(t, f.events, 1)
	ev, ok := f.events[0].(event.BattleConcluded)
	require.True(t, ok)
	assert.Equal(t, reports[0].ID, ev.ReportID)
	assert.Equal(t, "victory", ev.Result)
	assert.Equal(t, int64(100_000), ev.CreditsPlundered)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, def, notes[0].UserID)
	assert.Contains(t, notes[0].Message, "100,000")
}

func TestConductAttack_AssaultDoesNotPlunder(t *testing.T) {
	f := newFixture(t)
	atk, def := f.addPair()

	res, err := f.resolver.ConductAttack(context.Background(), atk, "farmer", "assault")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, battle.OutcomeVictory, res.Report.Outcome)
	assert.Zero(t, res.Report.CreditsPlundered)
	assert.Equal(t, int64(1_000_000), f.store.User(def).Resources.Credits)
	assert.Equal(t, int64(8), f.store.User(atk).Stats.AttackTurns)
}

func TestConductAttack_DefeatCostsAttackerSoldiers(t *testing.T) {
	f := newFixture(t)
	atk := f.store.AddUser(&power.Profile{Name: "weak", Resources: economy.Resources{Soldiers: 100}, Stats: economy.Stats{AttackTurns: 1}})
	f.store.AddUser(&power.Profile{Name: "wall", Resources: economy.Resources{Guards: 10_000, Credits: 500}})

	res, err := f.resolver.ConductAttack(context.Background(), atk, "wall", "plunder")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.Equal(t, battle.OutcomeDefeat, res.Report.Outcome)
	assert.Zero(t, res.Report.CreditsPlundered)
	// ratio 100 saturates the loser curve at the cap.
	assert.Equal(t, int64(15), res.Report.AttackerLosses)
	assert.Equal(t, int64(85), f.store.User(atk).Resources.Soldiers)
}

// Every validation failure returns a distinct reason and persists nothing.
func TestConductAttack_ValidationFailuresAreAtomic(t *testing.T) {
	cases := []struct {
		name       string
		setup      func(f *fixture) (attackerID int64)
		target     string
		attackType string
		want       battle.Reason
	}{
		{
			name:       "unknown attack type",
			setup:      func(f *fixture) int64 { a, _ := f.addPair(); return a },
			target:     "farmer",
			attackType: "orbital_strike",
			want:       battle.ReasonUnknownAttackType,
		},
		{
			name:       "target not found",
			setup:      func(f *fixture) int64 { a, _ := f.addPair(); return a },
			target:     "nobody",
			attackType: "plunder",
			want:       battle.ReasonTargetNotFound,
		},
		{
			name:       "self target",
			setup:      func(f *fixture) int64 { a, _ := f.addPair(); return a },
			target:     "raider",
			attackType: "plunder",
			want:       battle.ReasonSelfTarget,
		},
		{
			name: "no soldiers",
			setup: func(f *fixture) int64 {
				f.store.AddUser(&power.Profile{Name: "farmer", Resources: economy.Resources{Guards: 5}})
				return f.store.AddUser(&power.Profile{Name: "unarmed", Stats: economy.Stats{AttackTurns: 5}})
			},
			target:     "farmer",
			attackType: "plunder",
			want:       battle.ReasonInsufficientUnits,
		},
		{
			name: "not enough turns",
			setup: func(f *fixture) int64 {
				f.store.AddUser(&power.Profile{Name: "farmer", Resources: economy.Resources{Guards: 5}})
				return f.store.AddUser(&power.Profile{Name: "tired", Resources: economy.Resources{Soldiers: 5}, Stats: economy.Stats{AttackTurns: 1}})
			},
			target:     "farmer",
			attackType: "assault",
			want:       battle.ReasonInsufficientTurns,
		},
		{
			name: "attacker under prime directive",
			setup: func(f *fixture) int64 {
				a, _ := f.addPair()
				_, err := f.store.ActivateEdict(a, "prime_directive", nil)
				if err != nil {
					panic(err)
				}
				return a
			},
			target:     "farmer",
			attackType: "plunder",
			want:       battle.ReasonAttackerBlocked,
		},
		{
			name: "defender in safehouse",
			setup: func(f *fixture) int64 {
				a, d := f.addPair()
				if _, err := f.store.ActivateEdict(d, "safehouse", nil); err != nil {
					panic(err)
				}
				return a
			},
			target:     "farmer",
			attackType: "plunder",
			want:       battle.ReasonTargetProtected,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			atk := tc.setup(f)
			before := snapshotAll(f.store)

			res, err := f.resolver.ConductAttack(context.Background(), atk, tc.target, tc.attackType)
			require.NoError(t, err)
			assert.False(t, res.OK())
			assert.Equal(t, tc.want, res.Reason)
			assert.NotEmpty(t, res.Message)
			assert.Nil(t, res.Report)
			assert.False(t, res.Retryable())

			assert.Equal(t, before, snapshotAll(f.store))
			assert.Empty(t, f.store.BattleReports())
			assert.Empty(t, f.events)
			assert.Empty(t, f.store.Notifications())
		})
	}
}

func snapshotAll(s *memory.Store) map[int64]economy.Resources {
	out := make(map[int64]economy.Resources)
	for _, p := range s.Users() {
		out[p.UserID] = p.Resources
	}
	return out
}

func TestConductAttack_ConflictIsRetryable(t *testing.T) {
	f := newFixture(t)
	atk, def := f.addPair()
	f.store.FailNextCommit(fmt.Errorf("serialization failure: %w", storage.ErrConflict))

	res, err := f.resolver.ConductAttack(context.Background(), atk, "farmer", "plunder")
	require.NoError(t, err)
	assert.Equal(t, battle.ReasonConflict, res.Reason)
	assert.True(t, res.Retryable())
	assert.Equal(t, int64(1_000_000), f.store.User(def).Resources.Credits)
	assert.Empty(t, f.store.BattleReports())
	assert.Empty(t, f.events)

	res, err = f.resolver.ConductAttack(context.Background(), atk, "farmer", "plunder")
	require.NoError(t, err)
	assert.True(t, res.OK())
}

func TestConductAttack_UnexpectedErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	atk, def := f.addPair()
	boom := errors.New("disk on fire")
	f.store.FailNextCommit(boom)

	_, err := f.resolver.ConductAttack(context.Background(), atk, "farmer", "plunder")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1_000_000), f.store.User(def).Resources.Credits)
	assert.Equal(t, int64(10), f.store.User(atk).Stats.AttackTurns)
	assert.Empty(t, f.store.BattleReports())
	assert.Empty(t, f.events)
}

func TestConductEspionage_SuccessRevealsIntel(t *testing.T) {
	f := newFixture(t)
	spy := f.store.AddUser(&power.Profile{Name: "shadow", Resources: economy.Resources{Spies: 100}, Stats: economy.Stats{SpyTurns: 3}})
	f.store.AddUser(&power.Profile{Name: "mark", Resources: economy.Resources{Sentries: 10, Guards: 40, Credits: 7000}})

	res, err := f.resolver.ConductEspionage(context.Background(), spy, "mark")
	require.NoError(t, err)
	require.True(t, res.OK())
	require.NotNil(t, res.SpyReport)
	assert.True(t, res.SpyReport.Success)
	require.NotNil(t, res.SpyReport.Intel)
	assert.Equal(t, int64(7000), res.SpyReport.Intel.Credits)
	assert.Equal(t, int64(400), res.SpyReport.Intel.DefensePower)
	assert.Zero(t, res.SpyReport.SpiesLost)

	p := f.store.User(spy)
	assert.Equal(t, int64(2), p.Stats.SpyTurns)
	assert.Equal(t, int64(10), p.Stats.Experience)
	require.Len(t, f.store.SpyReports(), 1)
	// Successful missions go unnoticed.
	assert.Empty(t, f.store.Notifications())
}

func TestConductEspionage_FailureLosesSpies(t *testing.T) {
	f := newFixture(t)
	spy := f.store.AddUser(&power.Profile{Name: "shadow", Resources: economy.Resources{Spies: 100}, Stats: economy.Stats{SpyTurns: 1}})
	mark := f.store.AddUser(&power.Profile{Name: "mark", Resources: economy.Resources{Sentries: 1000}})

	res, err := f.resolver.ConductEspionage(context.Background(), spy, "mark")
	require.NoError(t, err)
	require.True(t, res.OK())
	assert.False(t, res.SpyReport.Success)
	assert.Nil(t, res.SpyReport.Intel)
	assert.Equal(t, int64(5), res.SpyReport.SpiesLost)
	assert.Equal(t, int64(95), f.store.User(spy).Resources.Spies)

	notes := f.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, mark, notes[0].UserID)
	assert.Equal(t, notify.KindSpied, notes[0].Kind)
}

func TestConductEspionage_RequiresSpyTurns(t *testing.T) {
	f := newFixture(t)
	spy := f.store.AddUser(&power.Profile{Name: "shadow", Resources: economy.Resources{Spies: 100}})
	f.store.AddUser(&power.Profile{Name: "mark"})

	res, err := f.resolver.ConductEspionage(context.Background(), spy, "mark")
	require.NoError(t, err)
	assert.Equal(t, battle.ReasonInsufficientTurns, res.Reason)
	assert.Empty(t, f.store.SpyReports())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, battle.OutcomeVictory, battle.Classify(1060, 1000, 0.05))
	assert.Equal(t, battle.OutcomeStalemate, battle.Classify(1050, 1000, 0.05))
	assert.Equal(t, battle.OutcomeStalemate, battle.Classify(1000, 1040, 0.05))
	assert.Equal(t, battle.OutcomeDefeat, battle.Classify(1000, 1060, 0.05))
	assert.Equal(t, battle.OutcomeVictory, battle.Classify(1, 0, 0.05))
	assert.Equal(t, battle.OutcomeStalemate, battle.Classify(0, 0, 0.05))
}

func TestResolve_StalemateLosesFlatPercentBothSides(t *testing.T) {
	cfg := config.Default().Balance.Battle
	res := battle.Resolve(cfg, battle.Engagement{
		AttackType:       cfg.AttackTypes["plunder"],
		OffensePower:     1000,
		DefensePower:     1000,
		AttackerSoldiers: 1000,
		DefenderGuards:   500,
		DefenderCredits:  1_000_000,
	})
	assert.Equal(t, battle.OutcomeStalemate, res.Outcome)
	assert.Equal(t, int64(10), res.AttackerLosses)
	assert.Equal(t, int64(5), res.DefenderLosses)
	assert.Zero(t, res.CreditsPlundered)
	assert.Zero(t, res.Prestige)
}

// No outcome ever costs either side more than the configured maximum share
// of its units, and plunder never exceeds its cap.
func TestResolve_Property_LossAndPlunderCaps(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := config.Default().Balance.Battle
		cfg.LoserLossPercent = rapid.Float64Range(0, 0.999).Draw(rt, "loser_loss")
		cfg.WinnerLossPercent = rapid.Float64Range(0, 0.999).Draw(rt, "winner_loss")
		cfg.StalemateLossPercent = rapid.Float64Range(0, 0.999).Draw(rt, "stalemate_loss")
		cfg.BasePlunderPercent = rapid.Float64Range(0, 0.999).Draw(rt, "base_plunder")
		cfg.MaxLossPercent = rapid.Float64Range(0.001, 0.999).Draw(rt, "max_loss")
		cfg.MaxPlunderPercent = rapid.Float64Range(0, 1).Draw(rt, "max_plunder")
		e := battle.Engagement{
			AttackType:       cfg.AttackTypes["plunder"],
			OffensePower:     rapid.Int64Range(0, 1e12).Draw(rt, "offense"),
			DefensePower:     rapid.Int64Range(0, 1e12).Draw(rt, "defense"),
			AttackerSoldiers: rapid.Int64Range(1, 1e9).Draw(rt, "soldiers"),
			DefenderGuards:   rapid.Int64Range(0, 1e9).Draw(rt, "guards"),
			DefenderCredits:  rapid.Int64Range(0, 1e12).Draw(rt, "credits"),
		}
		res := battle.Resolve(cfg, e)
		maxAtk := int64(math.Floor(float64(e.AttackerSoldiers) * cfg.MaxLossPercent))
		maxDef := int64(math.Floor(float64(e.DefenderGuards) * cfg.MaxLossPercent))
		assert.LessOrEqual(rt, res.AttackerLosses, maxAtk)
		assert.LessOrEqual(rt, res.DefenderLosses, maxDef)
		assert.Less(rt, res.AttackerLosses, e.AttackerSoldiers)
		if e.DefenderGuards > 0 {
			assert.Less(rt, res.DefenderLosses, e.DefenderGuards)
		}
		assert.LessOrEqual(rt, res.CreditsPlundered, int64(math.Floor(float64(e.DefenderCredits)*cfg.MaxPlunderPercent)))
		if res.Outcome != battle.OutcomeVictory {
			assert.Zero(rt, res.CreditsPlundered)
		}
		assert.GreaterOrEqual(rt, res.AttackerLosses, int64(0))
		assert.GreaterOrEqual(rt, res.DefenderLosses, int64(0))
	})
}

func TestResolve_UndefendedTargetWithZeroBaseFractions(t *testing.T) {
	full := config.Default()
	full.Balance.Battle.BasePlunderPercent = 0
	full.Balance.Battle.LoserLossPercent = 0
	require.NoError(t, full.Validate())
	cfg := full.Balance.Battle

	res := battle.Resolve(cfg, battle.Engagement{
		AttackType:       cfg.AttackTypes["plunder"],
		OffensePower:     1000,
		DefensePower:     0,
		AttackerSoldiers: 100,
		DefenderGuards:   10,
		DefenderCredits:  1_000_000,
	})
	assert.Equal(t, battle.OutcomeVictory, res.Outcome)
	assert.Zero(t, res.CreditsPlundered)
	assert.Zero(t, res.DefenderLosses)
	assert.Zero(t, res.AttackerLosses)
}

func TestResolve_UndefendedTargetTakesCaps(t *testing.T) {
	cfg := config.Default().Balance.Battle
	res := battle.Resolve(cfg, battle.Engagement{
		AttackType:       cfg.AttackTypes["plunder"],
		OffensePower:     1000,
		DefensePower:     0,
		AttackerSoldiers: 100,
		DefenderGuards:   1000,
		DefenderCredits:  1_000_000,
	})
	assert.Equal(t, battle.OutcomeVictory, res.Outcome)
	assert.Equal(t, int64(math.Floor(1_000_000*cfg.MaxPlunderPercent)), res.CreditsPlundered)
	assert.Equal(t, int64(math.Floor(1000*cfg.MaxLossPercent)), res.DefenderLosses)
}
