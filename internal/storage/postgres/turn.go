package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// ListProfiles implements turn.Store.
func (s *Store) ListProfiles(ctx context.Context, afterID int64, limit int) ([]*power.Profile, error) {
	return loadProfiles(ctx, s.db, s.now(), ` WHERE u.id > $1 ORDER BY u.id LIMIT $2`, afterID, limit)
}

// ApplyTurn implements turn.Store. Each upkeep charge is a guarded
// decrement; a charge the locked row cannot cover deactivates its edict
// instead.
func (s *Store) ApplyTurn(ctx context.Context, u turn.Update) (turn.Applied, error) {
	var res turn.Applied
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		res = turn.Applied{}
		if err := applyDelta(ctx, tx, u.UserID, u.Delta); err != nil {
			return err
		}
		var drop []int64
		for _, c := range u.Charges {
			col, ok := resourceColumns[c.Resource]
			if !ok {
				continue
			}
			tag, err := tx.Exec(ctx, fmt.Sprintf(
				`UPDATE user_resources SET %[1]s = %[1]s - $2 WHERE user_id = $1 AND %[1]s >= $2`, col),
				u.UserID, c.Amount)
			if err != nil {
				return fmt.Errorf("charging %s upkeep: %w", c.Key, err)
			}
			if tag.RowsAffected() == 0 {
				drop = append(drop, c.EdictID)
				res.Deactivated = append(res.Deactivated, c.Key)
			}
		}
		if len(drop) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE active_edicts SET active = FALSE WHERE id = ANY($1)`, drop); err != nil {
			return fmt.Errorf("deactivating edicts: %w", err)
		}
		return nil
	})
	if err != nil {
		return turn.Applied{}, err
	}
	return res, nil
}

// ListAlliances implements turn.Store.
func (s *Store) ListAlliances(ctx context.Context) ([]turn.Alliance, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.name, a.banked_credits, COUNT(u.id)
		FROM alliances a
		LEFT JOIN users u ON u.alliance_id = a.id
		GROUP BY a.id
		ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("listing alliances: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (turn.Alliance, error) {
		var a turn.Alliance
		err := row.Scan(&a.ID, &a.Name, &a.BankedCredits, &a.Members)
		return a, err
	})
}

// ApplyAllianceTurn implements turn.Store.
func (s *Store) ApplyAllianceTurn(ctx context.Context, u turn.AllianceUpdate) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE alliances SET banked_credits = banked_credits + $2 WHERE id = $1`,
		u.AllianceID, u.Interest+u.Dues)
	if err != nil {
		return fmt.Errorf("crediting alliance %d: %w", u.AllianceID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("alliance %d: %w", u.AllianceID, storage.ErrNotFound)
	}
	return nil
}
