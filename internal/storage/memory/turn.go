package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// ListProfiles implements turn.Store.
func (s *Store) ListProfiles(_ context.Context, afterID int64, limit int) ([]*power.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*power.Profile
	for _, u := range s.sortedUsers() {
		if u.profile.UserID <= afterID {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, s.snapshot(u))
	}
	return out, nil
}

// ApplyTurn implements turn.Store. Upkeep charges are checked against the
// stored balance after the delta; an unaffordable charge deactivates its edict.
func (s *Store) ApplyTurn(_ context.Context, up turn.Update) (turn.Applied, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[up.UserID]
	if !ok {
		return turn.Applied{}, fmt.Errorf("user %d: %w", up.UserID, storage.ErrNotFound)
	}
	if err := s.takeFailure(); err != nil {
		return turn.Applied{}, err
	}
	next, err := applied(u, up.Delta)
	if err != nil {
		return turn.Applied{}, err
	}

	var res turn.Applied
	drop := make(map[int64]bool)
	for _, c := range up.Charges {
		have, _ := next.Resources.Get(c.Resource)
		if have < c.Amount {
			drop[c.EdictID] = true
			res.Deactivated = append(res.Deactivated, c.Key)
			continue
		}
		next.Resources = next.Resources.AddResource(c.Resource, -c.Amount)
	}
	next.Edicts = slices.DeleteFunc(next.Edicts, func(a edict.Active) bool { return drop[a.ID] })
	u.profile = next
	return res, nil
}

// ListAlliances implements turn.Store.
func (s *Store) ListAlliances(_ context.Context) ([]turn.Alliance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make(map[int64]int64)
	for _, u := range s.users {
		if u.profile.AllianceID != 0 {
			members[u.profile.AllianceID]++
		}
	}
	out := make([]turn.Alliance, 0, len(s.alliances))
	for _, a := range s.alliances {
		out = append(out, turn.Alliance{ID: a.id, Name: a.name, BankedCredits: a.bankedCredits, Members: members[a.id]})
	}
	slices.SortFunc(out, func(a, b turn.Alliance) int { return int(a.ID - b.ID) })
	return out, nil
}

// ApplyAllianceTurn implements turn.Store.
func (s *Store) ApplyAllianceTurn(_ context.Context, up turn.AllianceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alliances[up.AllianceID]
	if !ok {
		return fmt.Errorf("alliance %d: %w", up.AllianceID, storage.ErrNotFound)
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	a.bankedCredits += up.Interest + up.Dues
	return nil
}
