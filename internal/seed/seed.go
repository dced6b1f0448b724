package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Seeder persists seeded entities.
type Seeder interface {
	CreateAlliance(ctx context.Context, name string, b economy.AllianceBonuses, bankedCredits int64) (int64, error)
	CreateUser(ctx context.Context, p *power.Profile, archetype npc.Archetype) (int64, error)
	ActivateEdict(ctx context.Context, userID int64, key string, expiresAt *time.Time) (int64, error)
}

// Result counts what Apply created.
type Result struct {
	Alliances int
	Players   int
	NPCs      int
	Edicts    int
}

// Parse decodes and validates a seed document. Unknown fields are rejected.
func Parse(data []byte) (*World, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var w World
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadFile reads and parses the seed file at path.
func LoadFile(path string) (*World, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	return Parse(data)
}

var slots = map[string]bool{
	string(economy.SlotWeapon):  true,
	string(economy.SlotArmor):   true,
	string(economy.SlotUtility): true,
}

// Validate reports every problem in w at once.
//
// Postcondition: a nil result guarantees Apply will not fail on content.
func (w *World) Validate() error {
	var errs []error
	alliances := make(map[string]bool, len(w.Alliances))
	for i, a := range w.Alliances {
		switch {
		case a.Name == "":
			errs = append(errs, fmt.Errorf("alliances[%d]: name is required", i))
		case alliances[a.Name]:
			errs = append(errs, fmt.Errorf("alliances[%d]: duplicate name %q", i, a.Name))
		}
		if a.BankedCredits < 0 {
			errs = append(errs, fmt.Errorf("alliance %q: banked_credits must be >= 0", a.Name))
		}
		alliances[a.Name] = true
	}

	names := make(map[string]bool, len(w.Players))
	for i, p := range w.Players {
		where := fmt.Sprintf("players[%d] %q", i, p.Name)
		switch {
		case p.Name == "":
			errs = append(errs, fmt.Errorf("players[%d]: name is required", i))
		case names[p.Name]:
			errs = append(errs, fmt.Errorf("%s: duplicate name", where))
		}
		names[p.Name] = true
		if p.Alliance != "" && !alliances[p.Alliance] {
			errs = append(errs, fmt.Errorf("%s: unknown alliance %q", where, p.Alliance))
		}
		if p.Archetype != "" {
			if _, err := npc.ParseArchetype(p.Archetype); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
		}
		if err := economy.Resources(p.Resources).NonNegative(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		if err := economy.Stats(p.Stats).NonNegative(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
		for k, lvl := range p.Structures {
			if _, err := economy.ParseStructureKind(k); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
			if lvl < 0 {
				errs = append(errs, fmt.Errorf("%s: structure %s level must be >= 0", where, k))
			}
		}
		seen := map[string]bool{}
		for _, e := range p.Equipment {
			if _, err := economy.ParseUnit(e.Unit); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			}
			if !slots[e.Slot] {
				errs = append(errs, fmt.Errorf("%s: unknown slot %q", where, e.Slot))
			}
			if seen[e.Unit+"/"+e.Slot] {
				errs = append(errs, fmt.Errorf("%s: %s %s slot equipped twice", where, e.Unit, e.Slot))
			}
			seen[e.Unit+"/"+e.Slot] = true
		}
		for _, e := range p.Edicts {
			if e.Key == "" || e.Duration < 0 {
				errs = append(errs, fmt.Errorf("%s: edict needs a key and a non-negative duration", where))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid seed: %w", errors.Join(errs...))
	}
	return nil
}

// Apply creates every alliance, then every player with its edicts.
// Entities are created in file order; the first failure stops the run.
//
// Precondition: w has passed Validate.
func Apply(ctx context.Context, w *World, s Seeder, now time.Time, logger *zap.Logger) (Result, error) {
	var res Result
	ids := make(map[string]int64, len(w.Alliances))
	for _, a := range w.Alliances {
		id, err := s.CreateAlliance(ctx, a.Name, a.Bonuses.model(), a.BankedCredits)
		if err != nil {
			return res, fmt.Errorf("creating alliance %q: %w", a.Name, err)
		}
		ids[a.Name] = id
		res.Alliances++
	}

	for _, p := range w.Players {
		profile, archetype := p.profile(ids[p.Alliance])
		id, err := s.CreateUser(ctx, profile, archetype)
		if err != nil {
			return res, fmt.Errorf("creating player %q: %w", p.Name, err)
		}
		if profile.IsNPC {
			res.NPCs++
		} else {
			res.Players++
		}
		for _, e := range p.Edicts {
			var expires *time.Time
			if e.Duration > 0 {
				at := now.Add(e.Duration)
				expires = &at
			}
			if _, err := s.ActivateEdict(ctx, id, e.Key, expires); err != nil {
				return res, fmt.Errorf("activating %s for %q: %w", e.Key, p.Name, err)
			}
			res.Edicts++
		}
		logger.Debug("seeded player",
			zap.String("name", p.Name),
			zap.Int64("user_id", id),
			zap.String("archetype", string(archetype)),
		)
	}
	return res, nil
}
