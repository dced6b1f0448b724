package memory

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/storage"
)

func cloneWar(w *war.War) *war.War {
	c := *w
	return &c
}

// InsertWar implements war.Store.
func (s *Store) InsertWar(_ context.Context, w *war.War) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.wars {
		if o.Status != war.StatusConcluded &&
			min(o.AllianceA, o.AllianceB) == min(w.AllianceA, w.AllianceB) &&
			max(o.AllianceA, o.AllianceB) == max(w.AllianceA, w.AllianceB) {
			return fmt.Errorf("war between %d and %d: %w", w.AllianceA, w.AllianceB, war.ErrAlreadyAtWar)
		}
	}
	w.ID = s.nextID()
	s.wars[w.ID] = cloneWar(w)
	return nil
}

// War implements war.Store.
func (s *Store) War(_ context.Context, id int64) (*war.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wars[id]
	if !ok {
		return nil, fmt.Errorf("war %d: %w", id, storage.ErrNotFound)
	}
	return cloneWar(w), nil
}

// OpenWarBetween implements war.Store.
func (s *Store) OpenWarBetween(_ context.Context, a, b int64) (*war.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wars {
		if w.Status == war.StatusConcluded {
			continue
		}
		if (w.AllianceA == a && w.AllianceB == b) || (w.AllianceA == b && w.AllianceB == a) {
			return cloneWar(w), nil
		}
	}
	return nil, fmt.Errorf("war between %d and %d: %w", a, b, storage.ErrNotFound)
}

// ActivateWar implements war.Store.
func (s *Store) ActivateWar(_ context.Context, id int64, startedAt, endsAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wars[id]
	if !ok || w.Status != war.StatusPending {
		return false, nil
	}
	w.Status, w.StartedAt, w.EndsAt = war.StatusActive, &startedAt, &endsAt
	return true, nil
}

// ConcludeWar implements war.Store.
func (s *Store) ConcludeWar(_ context.Context, id, winnerAllianceID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wars[id]
	if !ok || w.Status != war.StatusActive {
		return false, nil
	}
	w.Status, w.WinnerAllianceID, w.ConcludedAt = war.StatusConcluded, winnerAllianceID, &at
	return true, nil
}

// AddProgress implements war.Store.
func (s *Store) AddProgress(_ context.Context, id, allianceID, amount int64) (*war.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wars[id]
	if !ok {
		return nil, fmt.Errorf("war %d: %w", id, storage.ErrNotFound)
	}
	switch allianceID {
	case w.AllianceA:
		w.ProgressA += amount
	case w.AllianceB:
		w.ProgressB += amount
	default:
		return nil, fmt.Errorf("alliance %d is not a side of war %d", allianceID, id)
	}
	return cloneWar(w), nil
}

// InsertWarLog implements war.Store.
func (s *Store) InsertWarLog(_ context.Context, e *war.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID()
	s.warLogs = append(s.warLogs, *e)
	return nil
}

// WarLogs implements war.Store.
func (s *Store) WarLogs(_ context.Context, warID int64) ([]war.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []war.LogEntry
	for _, e := range s.warLogs {
		if e.WarID == warID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ExpiredWars implements war.Store.
func (s *Store) ExpiredWars(_ context.Context, now time.Time) ([]*war.War, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*war.War
	for _, w := range s.wars {
		if w.Status == war.StatusActive && w.EndsAt != nil && !w.EndsAt.After(now) {
			out = append(out, cloneWar(w))
		}
	}
	slices.SortFunc(out, func(a, b *war.War) int { return int(a.ID - b.ID) })
	return out, nil
}
