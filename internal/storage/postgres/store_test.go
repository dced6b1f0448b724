package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/action"
	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/notify"
	"github.com/cory-johannsen/dominion/internal/storage"
	"github.com/cory-johannsen/dominion/internal/storage/postgres"
	"github.com/cory-johannsen/dominion/internal/testutil"
)

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	return postgres.NewStore(testutil.NewPool(t))
}

func createUser(t *testing.T, s *postgres.Store, p *power.Profile) int64 {
	t.Helper()
	if p.Name == "" {
		p.Name = uniqueName("user")
	}
	id, err := s.CreateUser(context.Background(), p, "")
	require.NoError(t, err)
	return id
}

func TestStore(t *testing.T) {
	s := newStore(t)

	t.Run("profile round trip", func(t *testing.T) {
		ctx := context.Background()
		aid, err := s.CreateAlliance(ctx, uniqueName("alliance"), economy.AllianceBonuses{DefensePercent: 0.1, CreditsFlat: 50}, 0)
		require.NoError(t, err)
		loadout := economy.Loadout{}
		loadout.Equip(economy.UnitSoldier, economy.SlotWeapon, economy.Item{Key: "rifle", Power: 3})
		id := createUser(t, s, &power.Profile{
			AllianceID: aid,
			Resources:  economy.Resources{Credits: 1000, Guards: 50},
			Stats:      economy.Stats{AttackTurns: 10, Charisma: 4},
			Structures: economy.Structures{economy.StructureEconomy: 3},
			Loadout:    loadout,
		})
		past := time.Now().Add(-time.Hour)
		_, err = s.ActivateEdict(ctx, id, "safehouse", &past)
		require.NoError(t, err)
		live, err := s.ActivateEdict(ctx, id, "prime_directive", nil)
		require.NoError(t, err)

		p, err := s.Profile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), p.Resources.Credits)
		assert.Equal(t, int64(50), p.Resources.Guards)
		assert.Equal(t, int64(10), p.Stats.AttackTurns)
		assert.Equal(t, 3, p.Structures.Level(economy.StructureEconomy))
		assert.Equal(t, int64(3), p.Loadout.PerUnitPower(economy.UnitSoldier))
		require.NotNil(t, p.Alliance)
		assert.Equal(t, 0.1, p.Alliance.DefensePercent)
		assert.Equal(t, int64(50), p.Alliance.CreditsFlat)
		require.Len(t, p.Edicts, 1)
		assert.Equal(t, live, p.Edicts[0].ID)

		_, err = s.Profile(ctx, -1)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("duplicate names conflict", func(t *testing.T) {
		name := uniqueName("dup")
		createUser(t, s, &power.Profile{Name: name})
		_, err := s.CreateUser(context.Background(), &power.Profile{Name: name}, "")
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("mutate never drives a balance negative", func(t *testing.T) {
		ctx := context.Background()
		id := createUser(t, s, &power.Profile{Resources: economy.Resources{Credits: 100}})
		err := s.Mutate(ctx, id, func(*power.Profile) (economy.Delta, error) {
			return economy.Delta{
				Resources:  economy.Resources{Credits: -101},
				Structures: economy.Structures{economy.StructureMining: 1},
			}, nil
		})
		assert.ErrorIs(t, err, storage.ErrInsufficient)

		p, err := s.Profile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(100), p.Resources.Credits)
		assert.Zero(t, p.Structures.Level(economy.StructureMining))
	})

	t.Run("turn charges are guarded", func(t *testing.T) {
		ctx := context.Background()
		id := createUser(t, s, &power.Profile{Resources: economy.Resources{Crystals: 150}})
		first, err := s.ActivateEdict(ctx, id, "first", nil)
		require.NoError(t, err)
		second, err := s.ActivateEdict(ctx, id, "second", nil)
		require.NoError(t, err)
		lapsed, err := s.ActivateEdict(ctx, id, "third", nil)
		require.NoError(t, err)

		res, err := s.ApplyTurn(ctx, turn.Update{
			UserID: id,
			Delta:  economy.Delta{Resources: economy.Resources{Credits: 10}, Stats: economy.Stats{AttackTurns: 1}},
			Charges: []turn.Charge{
				{EdictID: first, Key: "first", Resource: economy.ResourceCrystals, Amount: 100},
				{EdictID: second, Key: "second", Resource: economy.ResourceCrystals, Amount: 100},
				{EdictID: lapsed, Key: "third", Resource: economy.ResourceCrystals, Amount: 1000},
			},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"second", "third"}, res.Deactivated)

		p, err := s.Profile(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, int64(50), p.Resources.Crystals)
		assert.Equal(t, int64(10), p.Resources.Credits)
		assert.Equal(t, int64(1), p.Stats.AttackTurns)
		require.Len(t, p.Edicts, 1)
		assert.Equal(t, first, p.Edicts[0].ID)
	})

	t.Run("alliances and paging", func(t *testing.T) {
		ctx := context.Background()
		aid, err := s.CreateAlliance(ctx, uniqueName("pact"), economy.AllianceBonuses{}, 1000)
		require.NoError(t, err)
		createUser(t, s, &power.Profile{AllianceID: aid})
		createUser(t, s, &power.Profile{AllianceID: aid})

		alliances, err := s.ListAlliances(ctx)
		require.NoError(t, err)
		var found *turn.Alliance
		for i := range alliances {
			if alliances[i].ID == aid {
				found = &alliances[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, int64(2), found.Members)

		require.NoError(t, s.ApplyAllianceTurn(ctx, turn.AllianceUpdate{AllianceID: aid, Interest: 5, Dues: 20}))
		alliances, err = s.ListAlliances(ctx)
		require.NoError(t, err)
		for _, a := range alliances {
			if a.ID == aid {
				assert.Equal(t, int64(1025), a.BankedCredits)
			}
		}
		assert.ErrorIs(t, s.ApplyAllianceTurn(ctx, turn.AllianceUpdate{AllianceID: -5}), storage.ErrNotFound)

		var seen []int64
		after := int64(0)
		for {
			page, err := s.ListProfiles(ctx, after, 2)
			require.NoError(t, err)
			if len(page) == 0 {
				break
			}
			for _, p := range page {
				assert.Greater(t, p.UserID, after)
				seen = append(seen, p.UserID)
			}
			after = page[len(page)-1].UserID
		}
		assert.IsIncreasing(t, seen)
	})

	t.Run("npc directory", func(t *testing.T) {
		ctx := context.Background()
		id, err := s.CreateUser(ctx, &power.Profile{Name: uniqueName("reaver"), IsNPC: true}, npc.ArchetypeReaver)
		require.NoError(t, err)
		agents, err := s.ListNPCs(ctx)
		require.NoError(t, err)
		var found bool
		for _, a := range agents {
			if a.UserID == id {
				found = true
				assert.Equal(t, npc.ArchetypeReaver, a.Archetype)
			}
		}
		assert.True(t, found, "npc %d not listed", id)

		targets, err := s.Candidates(ctx, id, 3)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(targets), 3)
		for _, tg := range targets {
			assert.NotEqual(t, id, tg.UserID)
		}
	})

	t.Run("war lifecycle", func(t *testing.T) {
		ctx := context.Background()
		a, err := s.CreateAlliance(ctx, uniqueName("a"), economy.AllianceBonuses{}, 0)
		require.NoError(t, err)
		b, err := s.CreateAlliance(ctx, uniqueName("b"), economy.AllianceBonuses{}, 0)
		require.NoError(t, err)

		w := &war.War{AllianceA: a, AllianceB: b, Status: war.StatusPending, GoalType: war.GoalPlunder,
			GoalThreshold: 1000, Duration: time.Hour, DeclaredAt: time.Now()}
		require.NoError(t, s.InsertWar(ctx, w))

		open, err := s.OpenWarBetween(ctx, b, a)
		require.NoError(t, err)
		assert.Equal(t, w.ID, open.ID)
		assert.Equal(t, time.Hour, open.Duration)

		dup := &war.War{AllianceA: b, AllianceB: a, Status: war.StatusPending, GoalType: war.GoalVictories,
			GoalThreshold: 5, Duration: time.Hour, DeclaredAt: time.Now()}
		assert.ErrorIs(t, s.InsertWar(ctx, dup), war.ErrAlreadyAtWar)

		start := time.Now().Add(-2 * time.Hour).Truncate(time.Microsecond)
		ok, err := s.ActivateWar(ctx, w.ID, start, start.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.ActivateWar(ctx, w.ID, start, start.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := s.AddProgress(ctx, w.ID, b, 400)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.ProgressA)
		assert.Equal(t, int64(400), got.ProgressB)
		_, err = s.AddProgress(ctx, w.ID, -1, 400)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, s.InsertWarLog(ctx, &war.LogEntry{WarID: w.ID, Kind: war.LogBattle, ReportID: 1,
			AttackerAllianceID: b, DefenderAllianceID: a, Result: "victory", Plunder: 400, OccurredAt: time.Now()}))
		logs, err := s.WarLogs(ctx, w.ID)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, war.LogBattle, logs[0].Kind)

		expired, err := s.ExpiredWars(ctx, time.Now())
		require.NoError(t, err)
		ids := make([]int64, 0, len(expired))
		for _, e := range expired {
			ids = append(ids, e.ID)
		}
		assert.Contains(t, ids, w.ID)

		ok, err = s.ConcludeWar(ctx, w.ID, b, time.Now())
		require.NoError(t, err)
		assert.True(t, ok)
		got, err = s.War(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, war.StatusConcluded, got.Status)
		assert.Equal(t, b, got.WinnerAllianceID)
		_, err = s.OpenWarBetween(ctx, a, b)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		rematch := &war.War{AllianceA: b, AllianceB: a, Status: war.StatusPending, GoalType: war.GoalPrestige,
			GoalThreshold: 10, Duration: time.Hour, DeclaredAt: time.Now()}
		assert.NoError(t, s.InsertWar(ctx, rematch), "a concluded war does not block a new one")
	})

	t.Run("notifications", func(t *testing.T) {
		ctx := context.Background()
		id := createUser(t, s, &power.Profile{})
		n := &notify.Notification{UserID: id, Kind: notify.KindAttacked, Message: "hello"}
		require.NoError(t, s.InsertNotification(ctx, n))
		assert.Positive(t, n.ID)
		assert.False(t, n.CreatedAt.IsZero())

		got, err := s.Notifications(ctx, id, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "hello", got[0].Message)
	})
}

func TestResolver_AgainstPostgres(t *testing.T) {
	pool := testutil.NewPool(t)
	s := postgres.NewStore(pool)
	ctx := context.Background()
	balance := config.Default().Balance
	reg := edict.NewRegistry()
	logger := zaptest.NewLogger(t)
	bus := event.NewBus(logger)
	bus.Subscribe("notify", notify.NewDispatcher(s, logger).Handle)
	resolver := battle.NewResolver(balance, power.NewCalculator(balance, reg), reg, s, bus, logger)

	attacker := createUser(t, s, &power.Profile{
		Resources: economy.Resources{Soldiers: 100_000},
		Stats:     economy.Stats{AttackTurns: 10},
	})
	defenderName := uniqueName("defender")
	defender := createUser(t, s, &power.Profile{
		Name:      defenderName,
		Resources: economy.Resources{Guards: 50, Credits: 1_000_000},
	})

	res, err := resolver.ConductAttack(ctx, attacker, defenderName, "plunder")
	require.NoError(t, err)
	require.True(t, res.OK(), res.Message)
	assert.Equal(t, battle.OutcomeVictory, res.Report.Outcome)
	assert.Equal(t, int64(100_000), res.Report.CreditsPlundered)

	a, err := s.Profile(ctx, attacker)
	require.NoError(t, err)
	d, err := s.Profile(ctx, defender)
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), a.Resources.Credits)
	assert.Equal(t, int64(9), a.Stats.AttackTurns)
	assert.Equal(t, int64(900_000), d.Resources.Credits)
	assert.Less(t, d.Resources.Guards, int64(50))

	reports, err := s.BattleReports(ctx, defender, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, res.Report.ID, reports[0].ID)

	notes, err := s.Notifications(ctx, defender, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "100,000")

	// Insufficient turns rejects without writing anything.
	res, err = resolver.ConductAttack(ctx, createUser(t, s, &power.Profile{Resources: economy.Resources{Soldiers: 10}}), defenderName, "plunder")
	require.NoError(t, err)
	assert.Equal(t, battle.ReasonInsufficientTurns, res.Reason)
	reports, err = s.BattleReports(ctx, defender, 10)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestMutate_ThroughActionService(t *testing.T) {
	s := newStore(t)
	balance := config.Default().Balance
	svc := action.NewService(balance, edict.NewRegistry(), s, zaptest.NewLogger(t))
	id := createUser(t, s, &power.Profile{Resources: economy.Resources{Credits: 5000}})

	res, err := svc.UpgradeStructure(context.Background(), id, economy.StructureEconomy)
	require.NoError(t, err)
	require.True(t, res.OK(), res.Message)
	res, err = svc.UpgradeStructure(context.Background(), id, economy.StructureEconomy)
	require.NoError(t, err)
	assert.Equal(t, action.ReasonInsufficientCredits, res.Reason)

	p, err := s.Profile(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, p.Resources.Credits)
	assert.Equal(t, 1, p.Structures.Level(economy.StructureEconomy))
}

func TestLocker(t *testing.T) {
	pool := testutil.NewPool(t)
	l := postgres.NewLocker(pool)
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "turn")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "turn")
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	other, ok, err := l.TryLock(ctx, "npc")
	require.NoError(t, err)
	require.True(t, ok)
	other()

	release()
	again, ok, err := l.TryLock(ctx, "turn")
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}

func TestLocker_ReleaseAfterLostSessionDiscardsConnection(t *testing.T) {
	pool := testutil.NewPool(t)
	l := postgres.NewLocker(pool)
	ctx := context.Background()

	release, ok, err := l.TryLock(ctx, "wars")
	require.NoError(t, err)
	require.True(t, ok)
	held := pool.Stat().TotalConns()

	var pid int32
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT pid FROM pg_locks WHERE locktype = 'advisory' AND granted LIMIT 1`).Scan(&pid))
	_, err = pool.Exec(ctx, `SELECT pg_terminate_backend($1)`, pid)
	require.NoError(t, err)

	require.NotPanics(t, release)
	assert.Less(t, pool.Stat().TotalConns(), held+1, "the dead session is not pooled")

	again, ok, err := l.TryLock(ctx, "wars")
	require.NoError(t, err)
	assert.True(t, ok)
	again()
}
