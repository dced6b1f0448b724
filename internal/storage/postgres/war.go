package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/storage"
)

const warColumns = `
	id, alliance_a_id, alliance_b_id, status, goal_type, goal_threshold, progress_a,
	progress_b, duration_seconds, declared_at, started_at, ends_at, concluded_at,
	COALESCE(winner_alliance_id, 0)`

func scanWar(row pgx.Row) (*war.War, error) {
	var (
		w       war.War
		seconds int64
	)
	err := row.Scan(&w.ID, &w.AllianceA, &w.AllianceB, &w.Status, &w.GoalType, &w.GoalThreshold,
		&w.ProgressA, &w.ProgressB, &seconds, &w.DeclaredAt, &w.StartedAt, &w.EndsAt,
		&w.ConcludedAt, &w.WinnerAllianceID)
	if err != nil {
		return nil, err
	}
	w.Duration = time.Duration(seconds) * time.Second
	return &w, nil
}

func (s *Store) queryWar(ctx context.Context, what, sql string, args ...any) (*war.War, error) {
	w, err := scanWar(s.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", what, err)
	}
	return w, nil
}

// InsertWar implements war.Store.
func (s *Store) InsertWar(ctx context.Context, w *war.War) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO wars (alliance_a_id, alliance_b_id, status, goal_type, goal_threshold,
		                  duration_seconds, declared_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		w.AllianceA, w.AllianceB, string(w.Status), string(w.GoalType), w.GoalThreshold,
		int64(w.Duration/time.Second), w.DeclaredAt,
	).Scan(&w.ID)
	if isDuplicateKeyError(err) {
		return fmt.Errorf("war between %d and %d: %w", w.AllianceA, w.AllianceB, war.ErrAlreadyAtWar)
	}
	if err != nil {
		return fmt.Errorf("inserting war: %w", err)
	}
	return nil
}

// War implements war.Store.
func (s *Store) War(ctx context.Context, id int64) (*war.War, error) {
	return s.queryWar(ctx, fmt.Sprintf("war %d", id), `SELECT `+warColumns+` FROM wars WHERE id = $1`, id)
}

// OpenWarBetween implements war.Store.
func (s *Store) OpenWarBetween(ctx context.Context, a, b int64) (*war.War, error) {
	return s.queryWar(ctx, fmt.Sprintf("war between %d and %d", a, b), `
		SELECT `+warColumns+` FROM wars
		WHERE status <> 'concluded'
		  AND ((alliance_a_id = $1 AND alliance_b_id = $2) OR (alliance_a_id = $2 AND alliance_b_id = $1))
		ORDER BY id LIMIT 1`, a, b)
}

// ActivateWar implements war.Store.
func (s *Store) ActivateWar(ctx context.Context, id int64, startedAt, endsAt time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE wars SET status = 'active', started_at = $2, ends_at = $3
		WHERE id = $1 AND status = 'pending'`, id, startedAt, endsAt)
	if err != nil {
		return false, fmt.Errorf("activating war %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// ConcludeWar implements war.Store.
func (s *Store) ConcludeWar(ctx context.Context, id, winnerAllianceID int64, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE wars SET status = 'concluded', winner_alliance_id = NULLIF($2::bigint, 0), concluded_at = $3
		WHERE id = $1 AND status = 'active'`, id, winnerAllianceID, at)
	if err != nil {
		return false, fmt.Errorf("concluding war %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// AddProgress implements war.Store.
func (s *Store) AddProgress(ctx context.Context, id, allianceID, amount int64) (*war.War, error) {
	return s.queryWar(ctx, fmt.Sprintf("war %d side %d", id, allianceID), `
		UPDATE wars SET
			progress_a = progress_a + CASE WHEN alliance_a_id = $2 THEN $3::bigint ELSE 0 END,
			progress_b = progress_b + CASE WHEN alliance_b_id = $2 THEN $3::bigint ELSE 0 END
		WHERE id = $1 AND $2 IN (alliance_a_id, alliance_b_id)
		RETURNING `+warColumns, id, allianceID, amount)
}

// InsertWarLog implements war.Store.
func (s *Store) InsertWarLog(ctx context.Context, e *war.LogEntry) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO war_logs (war_id, kind, report_id, attacker_alliance_id, defender_alliance_id,
		                      result, plunder, prestige, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		e.WarID, string(e.Kind), e.ReportID, e.AttackerAllianceID, e.DefenderAllianceID,
		e.Result, e.Plunder, e.Prestige, e.OccurredAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("inserting war log: %w", err)
	}
	return nil
}

// WarLogs implements war.Store.
func (s *Store) WarLogs(ctx context.Context, warID int64) ([]war.LogEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, war_id, kind, report_id, attacker_alliance_id, defender_alliance_id,
		       result, plunder, prestige, occurred_at
		FROM war_logs WHERE war_id = $1 ORDER BY id`, warID)
	if err != nil {
		return nil, fmt.Errorf("listing logs of war %d: %w", warID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (war.LogEntry, error) {
		var e war.LogEntry
		err := row.Scan(&e.ID, &e.WarID, &e.Kind, &e.ReportID, &e.AttackerAllianceID,
			&e.DefenderAllianceID, &e.Result, &e.Plunder, &e.Prestige, &e.OccurredAt)
		return e, err
	})
}

// ExpiredWars implements war.Store.
func (s *Store) ExpiredWars(ctx context.Context, now time.Time) ([]*war.War, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+warColumns+` FROM wars
		WHERE status = 'active' AND ends_at <= $1
		ORDER BY id`, now)
	if err != nil {
		return nil, fmt.Errorf("listing expired wars: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*war.War, error) {
		return scanWar(row)
	})
}
