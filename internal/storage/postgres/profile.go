package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/storage"
)

const profileSelect = `
	SELECT u.id, u.name, u.is_npc, COALESCE(u.alliance_id, 0),
	       r.credits, r.banked_credits, r.citizens, r.workers, r.soldiers, r.guards,
	       r.spies, r.sentries, r.crystals, r.dark_matter, r.research_data,
	       s.level, s.experience, s.strength, s.constitution, s.wealth, s.dexterity,
	       s.charisma, s.attack_turns, s.spy_turns, s.deposit_charges, s.war_prestige, s.net_worth,
	       a.offense_percent, a.defense_percent, a.spy_percent, a.sentry_percent,
	       a.income_percent, a.credits_flat, a.citizens_flat
	FROM users u
	JOIN user_resources r ON r.user_id = u.id
	JOIN user_stats s ON s.user_id = u.id
	LEFT JOIN alliances a ON a.id = u.alliance_id`

// lockClause locks the rows every balance writer touches. Callers order by
// u.id so that locks are always taken in ascending user id order.
const lockClause = ` FOR UPDATE OF r, s`

// resourceColumns maps resource kinds to user_resources columns. Only these
// names are ever interpolated into SQL.
var resourceColumns = map[economy.ResourceKind]string{
	economy.ResourceCredits:       "credits",
	economy.ResourceBankedCredits: "banked_credits",
	economy.ResourceCitizens:      "citizens",
	economy.ResourceCrystals:      "crystals",
	economy.ResourceDarkMatter:    "dark_matter",
	economy.ResourceResearchData:  "research_data",
}

func scanProfile(row pgx.Row) (*power.Profile, error) {
	var p power.Profile
	// Alliance columns are NULL for players without an alliance.
	var offense, defense, spy, sentry, income *float64
	var creditsFlat, citizensFlat *int64
	r, st := &p.Resources, &p.Stats
	err := row.Scan(
		&p.UserID, &p.Name, &p.IsNPC, &p.AllianceID,
		&r.Credits, &r.BankedCredits, &r.Citizens, &r.Workers, &r.Soldiers, &r.Guards,
		&r.Spies, &r.Sentries, &r.Crystals, &r.DarkMatter, &r.ResearchData,
		&st.Level, &st.Experience, &st.Strength, &st.Constitution, &st.Wealth, &st.Dexterity,
		&st.Charisma, &st.AttackTurns, &st.SpyTurns, &st.DepositCharges, &st.WarPrestige, &st.NetWorth,
		&offense, &defense, &spy, &sentry, &income, &creditsFlat, &citizensFlat,
	)
	if err != nil {
		return nil, err
	}
	if p.AllianceID != 0 && offense != nil {
		p.Alliance = &economy.AllianceBonuses{
			OffensePercent: *offense,
			DefensePercent: *defense,
			SpyPercent:     *spy,
			SentryPercent:  *sentry,
			IncomePercent:  *income,
			CreditsFlat:    *creditsFlat,
			CitizensFlat:   *citizensFlat,
		}
	}
	p.Structures = economy.Structures{}
	return &p, nil
}

// loadProfiles runs profileSelect + tail and attaches structures, equipment
// and live edicts with one batched round trip.
func loadProfiles(ctx context.Context, q querier, now time.Time, tail string, args ...any) ([]*power.Profile, error) {
	rows, err := q.Query(ctx, profileSelect+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	var out []*power.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading profiles: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := attachDetails(ctx, q, now, out); err != nil {
		return nil, err
	}
	return out, nil
}

func attachDetails(ctx context.Context, q querier, now time.Time, profiles []*power.Profile) error {
	byID := make(map[int64]*power.Profile, len(profiles))
	ids := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
		ids = append(ids, p.UserID)
	}

	b := &pgx.Batch{}
	b.Queue(`SELECT user_id, kind, level FROM user_structures WHERE user_id = ANY($1)`, ids)
	b.Queue(`SELECT user_id, unit, slot, item_key, power FROM user_equipment WHERE user_id = ANY($1)`, ids)
	b.Queue(`
		SELECT id, user_id, edict_key, activated_at, expires_at
		FROM active_edicts
		WHERE user_id = ANY($1) AND active AND (expires_at IS NULL OR expires_at > $2)
		ORDER BY id`, ids, now)
	br := q.SendBatch(ctx, b)
	defer br.Close()

	rows, err := br.Query()
	if err != nil {
		return fmt.Errorf("querying structures: %w", err)
	}
	for rows.Next() {
		var (
			id    int64
			kind  string
			level int
		)
		if err := rows.Scan(&id, &kind, &level); err != nil {
			rows.Close()
			return fmt.Errorf("scanning structure row: %w", err)
		}
		byID[id].Structures[economy.StructureKind(kind)] = level
	}
	rows.Close()

	rows, err = br.Query()
	if err != nil {
		return fmt.Errorf("querying equipment: %w", err)
	}
	for rows.Next() {
		var (
			id         int64
			unit, slot string
			item       economy.Item
		)
		if err := rows.Scan(&id, &unit, &slot, &item.Key, &item.Power); err != nil {
			rows.Close()
			return fmt.Errorf("scanning equipment row: %w", err)
		}
		p := byID[id]
		if p.Loadout == nil {
			p.Loadout = economy.Loadout{}
		}
		p.Loadout.Equip(economy.Unit(unit), economy.Slot(slot), item)
	}
	rows.Close()

	rows, err = br.Query()
	if err != nil {
		return fmt.Errorf("querying edicts: %w", err)
	}
	for rows.Next() {
		var a edict.Active
		if err := rows.Scan(&a.ID, &a.UserID, &a.Key, &a.ActivatedAt, &a.ExpiresAt); err != nil {
			rows.Close()
			return fmt.Errorf("scanning edict row: %w", err)
		}
		byID[a.UserID].Edicts = append(byID[a.UserID].Edicts, a)
	}
	rows.Close()
	return rows.Err()
}

// loadProfile returns one profile, optionally locking its rows.
func loadProfile(ctx context.Context, q querier, now time.Time, userID int64, lock bool) (*power.Profile, error) {
	tail := ` WHERE u.id = $1`
	if lock {
		tail += lockClause
	}
	ps, err := loadProfiles(ctx, q, now, tail, userID)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	return ps[0], nil
}

// applyDelta adds d to userID's rows in one batch. CHECK constraints reject
// any balance that would go negative.
func applyDelta(ctx context.Context, q querier, userID int64, d economy.Delta) error {
	if d.IsZero() {
		return nil
	}
	r, st := d.Resources, d.Stats
	b := &pgx.Batch{}
	b.Queue(`
		UPDATE user_resources SET
			credits = credits + $2, banked_credits = banked_credits + $3, citizens = citizens + $4,
			workers = workers + $5, soldiers = soldiers + $6, guards = guards + $7,
			spies = spies + $8, sentries = sentries + $9, crystals = crystals + $10,
			dark_matter = dark_matter + $11, research_data = research_data + $12
		WHERE user_id = $1`,
		userID, r.Credits, r.BankedCredits, r.Citizens, r.Workers, r.Soldiers, r.Guards,
		r.Spies, r.Sentries, r.Crystals, r.DarkMatter, r.ResearchData)
	b.Queue(`
		UPDATE user_stats SET
			level = level + $2, experience = experience + $3, strength = strength + $4,
			constitution = constitution + $5, wealth = wealth + $6, dexterity = dexterity + $7,
			charisma = charisma + $8, attack_turns = attack_turns + $9, spy_turns = spy_turns + $10,
			deposit_charges = deposit_charges + $11, war_prestige = war_prestige + $12,
			net_worth = net_worth + $13
		WHERE user_id = $1`,
		userID, st.Level, st.Experience, st.Strength, st.Constitution, st.Wealth, st.Dexterity,
		st.Charisma, st.AttackTurns, st.SpyTurns, st.DepositCharges, st.WarPrestige, st.NetWorth)
	structures := 0
	for kind, n := range d.Structures {
		if n == 0 {
			continue
		}
		structures++
		b.Queue(`
			INSERT INTO user_structures (user_id, kind, level) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, kind) DO UPDATE SET level = user_structures.level + EXCLUDED.level`,
			userID, string(kind), n)
	}

	br := q.SendBatch(ctx, b)
	defer br.Close()
	tag, err := br.Exec()
	if err != nil {
		return fmt.Errorf("updating resources of user %d: %w", userID, mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", userID, storage.ErrNotFound)
	}
	if _, err := br.Exec(); err != nil {
		return fmt.Errorf("updating stats of user %d: %w", userID, mapError(err))
	}
	for range structures {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("updating structures of user %d: %w", userID, mapError(err))
		}
	}
	return nil
}
