package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

type battleTx struct {
	tx  pgx.Tx
	now time.Time
}

// RunInTx implements battle.Store.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx battle.Tx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return fn(ctx, &battleTx{tx: tx, now: s.now()})
	})
}

func (t *battleTx) UserIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM users WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("user %q: %w", name, storage.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("looking up user %q: %w", name, err)
	}
	return id, nil
}

func (t *battleTx) LockProfiles(ctx context.Context, userIDs ...int64) (map[int64]*power.Profile, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ps, err := loadProfiles(ctx, t.tx, t.now, ` WHERE u.id = ANY($1) ORDER BY u.id`+lockClause, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*power.Profile, len(ps))
	for _, p := range ps {
		out[p.UserID] = p
	}
	return out, nil
}

func (t *battleTx) ApplyDelta(ctx context.Context, userID int64, d economy.Delta) error {
	return applyDelta(ctx, t.tx, userID, d)
}

func (t *battleTx) InsertBattleReport(ctx context.Context, r *battle.Report) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO battle_reports
			(attacker_id, defender_id, attacker_alliance_id, defender_alliance_id, attack_type,
			 attack_result, attacker_power, defender_power, attacker_losses, defender_losses,
			 credits_plundered, net_worth_stolen, experience_gained, prestige_gained)
		VALUES ($1, $2, NULLIF($3::bigint, 0), NULLIF($4::bigint, 0), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`,
		r.AttackerID, r.DefenderID, r.AttackerAllianceID, r.DefenderAllianceID, r.AttackType,
		string(r.Outcome), r.AttackerPower, r.DefenderPower, r.AttackerLosses, r.DefenderLosses,
		r.CreditsPlundered, r.NetWorthStolen, r.ExperienceGained, r.PrestigeGained,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting battle report: %w", err)
	}
	return nil
}

func (t *battleTx) InsertSpyReport(ctx context.Context, r *battle.SpyReport) error {
	err := t.tx.QueryRow(ctx, `
		INSERT INTO spy_reports
			(spy_id, target_id, spy_alliance_id, target_alliance_id, success, spy_power,
			 sentry_power, spies_lost, experience_gained, intel)
		VALUES ($1, $2, NULLIF($3::bigint, 0), NULLIF($4::bigint, 0), $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		r.SpyID, r.TargetID, r.SpyAllianceID, r.TargetAllianceID, r.Success, r.SpyPower,
		r.SentryPower, r.SpiesLost, r.ExperienceGained, r.Intel,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting spy report: %w", err)
	}
	return nil
}

// BattleReports returns the most recent reports involving userID, newest first.
func (s *Store) BattleReports(ctx context.Context, userID int64, limit int) ([]battle.Report, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, attacker_id, defender_id, COALESCE(attacker_alliance_id, 0),
		       COALESCE(defender_alliance_id, 0), attack_type, attack_result, attacker_power,
		       defender_power, attacker_losses, defender_losses, credits_plundered,
		       net_worth_stolen, experience_gained, prestige_gained, created_at
		FROM battle_reports
		WHERE attacker_id = $1 OR defender_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing battle reports: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (battle.Report, error) {
		var r battle.Report
		err := row.Scan(&r.ID, &r.AttackerID, &r.DefenderID, &r.AttackerAllianceID,
			&r.DefenderAllianceID, &r.AttackType, &r.Outcome, &r.AttackerPower,
			&r.DefenderPower, &r.AttackerLosses, &r.DefenderLosses, &r.CreditsPlundered,
			&r.NetWorthStolen, &r.ExperienceGained, &r.PrestigeGained, &r.CreatedAt)
		return r, err
	})
}
