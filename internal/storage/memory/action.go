package memory

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// Mutate implements action.Store.
func (s *Store) Mutate(_ context.Context, userID int64, fn func(p *power.Profile) (economy.Delta, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	d, err := fn(s.snapshot(u))
	if err != nil {
		return err
	}
	if err := s.takeFailure(); err != nil {
		return err
	}
	next, err := applied(u, d)
	if err != nil {
		return err
	}
	u.profile = next
	return nil
}
