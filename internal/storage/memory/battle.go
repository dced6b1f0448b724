package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// battleTx buffers writes until the transaction commits.
type battleTx struct {
	s          *Store
	deltas     map[int64]economy.Delta
	order      []int64
	reports    []battle.Report
	spyReports []battle.SpyReport
}

// RunInTx implements battle.Store.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx battle.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &battleTx{s: s, deltas: make(map[int64]economy.Delta)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := s.takeFailure(); err != nil {
		return err
	}

	next := make(map[int64]*power.Profile, len(tx.deltas))
	for _, id := range tx.order {
		p, err := applied(s.users[id], tx.deltas[id])
		if err != nil {
			return err
		}
		next[id] = p
	}
	for id, p := range next {
		s.users[id].profile = p
	}
	s.battleReports = append(s.battleReports, tx.reports...)
	s.spyReports = append(s.spyReports, tx.spyReports...)
	return nil
}

func (tx *battleTx) UserIDByName(_ context.Context, name string) (int64, error) {
	for _, u := range tx.s.users {
		if u.profile.Name == name {
			return u.profile.UserID, nil
		}
	}
	return 0, fmt.Errorf("user %q: %w", name, storage.ErrNotFound)
}

func (tx *battleTx) LockProfiles(_ context.Context, userIDs ...int64) (map[int64]*power.Profile, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	out := make(map[int64]*power.Profile, len(ids))
	for _, id := range ids {
		if u, ok := tx.s.users[id]; ok {
			out[id] = tx.s.snapshot(u)
		}
	}
	return out, nil
}

func (tx *battleTx) ApplyDelta(_ context.Context, userID int64, d economy.Delta) error {
	if _, ok := tx.s.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	if _, seen := tx.deltas[userID]; !seen {
		tx.order = append(tx.order, userID)
	}
	tx.deltas[userID] = addDelta(tx.deltas[userID], d)
	return nil
}

func (tx *battleTx) InsertBattleReport(_ context.Context, r *battle.Report) error {
	r.ID = tx.s.nextID()
	tx.reports = append(tx.reports, *r)
	return nil
}

func (tx *battleTx) InsertSpyReport(_ context.Context, r *battle.SpyReport) error {
	r.ID = tx.s.nextID()
	tx.spyReports = append(tx.spyReports, *r)
	return nil
}
