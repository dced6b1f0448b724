package memory

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// ListNPCs implements npc.Directory.
func (s *Store) ListNPCs(_ context.Context) ([]npc.Agent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []npc.Agent
	for _, u := range s.sortedUsers() {
		if u.profile.IsNPC {
			out = append(out, npc.Agent{UserID: u.profile.UserID, Name: u.profile.Name, Archetype: u.archetype})
		}
	}
	return out, nil
}

// Profile implements npc.Directory.
func (s *Store) Profile(_ context.Context, userID int64) (*power.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	return s.snapshot(u), nil
}

// Candidates implements npc.Directory.
func (s *Store) Candidates(_ context.Context, excludeID int64, limit int) ([]npc.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []npc.Target
	for _, u := range s.sortedUsers() {
		if len(out) == limit {
			break
		}
		if u.profile.UserID != excludeID {
			out = append(out, npc.Target{UserID: u.profile.UserID, Name: u.profile.Name})
		}
	}
	return out, nil
}
