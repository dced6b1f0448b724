package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/storage"
	"github.com/cory-johannsen/dominion/internal/storage/memory"
)

func TestSnapshot_AttachesAllianceBonuses(t *testing.T) {
	s := memory.NewStore()
	aid := s.AddAlliance("Iron Pact", economy.AllianceBonuses{DefensePercent: 0.1}, 0)
	member := s.AddUser(&power.Profile{Name: "member", AllianceID: aid})
	loner := s.AddUser(&power.Profile{Name: "loner"})

	p := s.User(member)
	require.NotNil(t, p.Alliance)
	assert.Equal(t, 0.1, p.Alliance.DefensePercent)
	assert.Nil(t, s.User(loner).Alliance)
	assert.Nil(t, s.User(999))
}

func TestSnapshot_HidesExpiredEdicts(t *testing.T) {
	s := memory.NewStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })
	id := s.AddUser(&power.Profile{Name: "p"})
	soon := now.Add(time.Hour)
	_, err := s.ActivateEdict(id, "safehouse", &soon)
	require.NoError(t, err)
	_, err = s.ActivateEdict(id, "prime_directive", nil)
	require.NoError(t, err)

	assert.Len(t, s.User(id).Edicts, 2)
	now = now.Add(2 * time.Hour)
	edicts := s.User(id).Edicts
	require.Len(t, edicts, 1)
	assert.Equal(t, "prime_directive", edicts[0].Key)

	_, err = s.ActivateEdict(404, "safehouse", nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMutate_RejectsNegativeBalances(t *testing.T) {
	s := memory.NewStore()
	id := s.AddUser(&power.Profile{Resources: economy.Resources{Credits: 100}})

	err := s.Mutate(context.Background(), id, func(*power.Profile) (economy.Delta, error) {
		return economy.Delta{Resources: economy.Resources{Credits: -101}}, nil
	})
	assert.ErrorIs(t, err, storage.ErrInsufficient)
	assert.Equal(t, int64(100), s.User(id).Resources.Credits)

	err = s.Mutate(context.Background(), id, func(*power.Profile) (economy.Delta, error) {
		return economy.Delta{Resources: economy.Resources{Credits: -100}}, nil
	})
	require.NoError(t, err)
	assert.Zero(t, s.User(id).Resources.Credits)
}

func TestMutate_InjectedFailureWritesNothing(t *testing.T) {
	s := memory.NewStore()
	id := s.AddUser(&power.Profile{Resources: economy.Resources{Credits: 100}})
	s.FailNextCommit(storage.ErrConflict)

	err := s.Mutate(context.Background(), id, func(*power.Profile) (economy.Delta, error) {
		return economy.Delta{Resources: economy.Resources{Credits: 50}}, nil
	})
	assert.True(t, errors.Is(err, storage.ErrConflict))
	assert.Equal(t, int64(100), s.User(id).Resources.Credits)
}

func TestApplyTurn_GuardsEachCharge(t *testing.T) {
	s := memory.NewStore()
	id := s.AddUser(&power.Profile{Resources: economy.Resources{Crystals: 150}})
	a, err := s.ActivateEdict(id, "first", nil)
	require.NoError(t, err)
	b, err := s.ActivateEdict(id, "second", nil)
	require.NoError(t, err)

	res, err := s.ApplyTurn(context.Background(), turn.Update{
		UserID: id,
		Charges: []turn.Charge{
			{EdictID: a, Key: "first", Resource: economy.ResourceCrystals, Amount: 100},
			{EdictID: b, Key: "second", Resource: economy.ResourceCrystals, Amount: 100},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, res.Deactivated)

	p := s.User(id)
	assert.Equal(t, int64(50), p.Resources.Crystals)
	require.Len(t, p.Edicts, 1)
	assert.Equal(t, "first", p.Edicts[0].Key)
}

func TestListProfiles_Pages(t *testing.T) {
	s := memory.NewStore()
	for range 5 {
		s.AddUser(&power.Profile{})
	}
	page, err := s.ListProfiles(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	page, err = s.ListProfiles(context.Background(), page[1].UserID, 10)
	require.NoError(t, err)
	assert.Len(t, page, 3)
}

func TestCandidates_ExcludesSelfAndHonoursLimit(t *testing.T) {
	s := memory.NewStore()
	self := s.AddUser(&power.Profile{Name: "self"})
	s.AddUser(&power.Profile{Name: "a"})
	s.AddUser(&power.Profile{Name: "b"})

	got, err := s.Candidates(context.Background(), self, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)

	got, err = s.Candidates(context.Background(), self, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
