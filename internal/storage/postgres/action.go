package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Mutate implements action.Store.
func (s *Store) Mutate(ctx context.Context, userID int64, fn func(p *power.Profile) (economy.Delta, error)) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		p, err := loadProfile(ctx, tx, s.now(), userID, true)
		if err != nil {
			return err
		}
		d, err := fn(p)
		if err != nil {
			return err
		}
		return applyDelta(ctx, tx, userID, d)
	})
}
