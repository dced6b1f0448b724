package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// ListNPCs implements npc.Directory.
func (s *Store) ListNPCs(ctx context.Context) ([]npc.Agent, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(npc_archetype, '')
		FROM users WHERE is_npc ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing npcs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (npc.Agent, error) {
		var (
			a         npc.Agent
			archetype string
		)
		err := row.Scan(&a.UserID, &a.Name, &archetype)
		a.Archetype = npc.Archetype(archetype)
		return a, err
	})
}

// Profile implements npc.Directory.
func (s *Store) Profile(ctx context.Context, userID int64) (*power.Profile, error) {
	return loadProfile(ctx, s.db, s.now(), userID, false)
}

// Candidates implements npc.Directory. Players shielded by an edict are
// still returned; the resolver rejects them.
func (s *Store) Candidates(ctx context.Context, excludeID int64, limit int) ([]npc.Target, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name FROM users WHERE id <> $1 ORDER BY id LIMIT $2`,
		excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attack candidates: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (npc.Target, error) {
		var t npc.Target
		err := row.Scan(&t.UserID, &t.Name)
		return t, err
	})
}
