package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

// CreateAlliance inserts an alliance and returns its id.
//
// Postcondition: Returns storage.ErrConflict if the name is taken.
func (s *Store) CreateAlliance(ctx context.Context, name string, b economy.AllianceBonuses, bankedCredits int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO alliances (name, banked_credits, offense_percent, defense_percent, spy_percent,
		                       sentry_percent, income_percent, credits_flat, citizens_flat)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		name, bankedCredits, b.OffensePercent, b.DefensePercent, b.SpyPercent,
		b.SentryPercent, b.IncomePercent, b.CreditsFlat, b.CitizensFlat,
	).Scan(&id)
	if isDuplicateKeyError(err) {
		return 0, fmt.Errorf("alliance %q: %w", name, storage.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("inserting alliance: %w", err)
	}
	return id, nil
}

// CreateUser inserts a player with p's rows and returns the new user id.
// archetype is stored only when p.IsNPC is set.
//
// Precondition: p.Name must be non-empty.
// Postcondition: Returns storage.ErrConflict if the name is taken.
func (s *Store) CreateUser(ctx context.Context, p *power.Profile, archetype npc.Archetype) (int64, error) {
	var id int64
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var arch *string
		if p.IsNPC {
			a := string(archetype)
			arch = &a
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO users (name, is_npc, npc_archetype, alliance_id)
			VALUES ($1, $2, $3, NULLIF($4::bigint, 0))
			RETURNING id`, p.Name, p.IsNPC, arch, p.AllianceID).Scan(&id)
		if isDuplicateKeyError(err) {
			return fmt.Errorf("user %q: %w", p.Name, storage.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("inserting user: %w", err)
		}

		b := &pgx.Batch{}
		b.Queue(`INSERT INTO user_resources (user_id) VALUES ($1)`, id)
		b.Queue(`INSERT INTO user_stats (user_id, level) VALUES ($1, 0)`, id)
		for unit, slots := range p.Loadout {
			for slot, item := range slots {
				b.Queue(`INSERT INTO user_equipment (user_id, unit, slot, item_key, power) VALUES ($1, $2, $3, $4, $5)`,
					id, string(unit), string(slot), item.Key, item.Power)
			}
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("inserting rows of user %d: %w", id, err)
		}
		return applyDelta(ctx, tx, id, economy.Delta{
			Resources:  p.Resources,
			Stats:      p.Stats,
			Structures: p.Structures,
		})
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// ActivateEdict activates key for userID and returns the active edict id.
// A nil expiresAt lasts until deactivated.
func (s *Store) ActivateEdict(ctx context.Context, userID int64, key string, expiresAt *time.Time) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO active_edicts (user_id, edict_key, activated_at, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, userID, key, s.now(), expiresAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("activating edict %q for user %d: %w", key, userID, err)
	}
	return id, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
