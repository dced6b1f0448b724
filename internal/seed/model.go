// Package seed loads a YAML description of a starting world (alliances,
// players and NPC agents) and writes it through a Seeder.
package seed

import (
	"time"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// World is the root of a seed file.
type World struct {
	Alliances []Alliance `yaml:"alliances"`
	Players   []Player   `yaml:"players"`
}

// Alliance describes one alliance and its member-wide bonuses.
type Alliance struct {
	Name          string  `yaml:"name"`
	BankedCredits int64   `yaml:"banked_credits"`
	Bonuses       Bonuses `yaml:"bonuses"`
}

// Bonuses mirrors economy.AllianceBonuses. Percent values are fractions.
type Bonuses struct {
	OffensePercent float64 `yaml:"offense_percent"`
	DefensePercent float64 `yaml:"defense_percent"`
	SpyPercent     float64 `yaml:"spy_percent"`
	SentryPercent  float64 `yaml:"sentry_percent"`
	IncomePercent  float64 `yaml:"income_percent"`
	CreditsFlat    int64   `yaml:"credits_flat"`
	CitizensFlat   int64   `yaml:"citizens_flat"`
}

func (b Bonuses) model() economy.AllianceBonuses {
	return economy.AllianceBonuses(b)
}

// Player describes a human player or, when Archetype is set, an NPC agent.
type Player struct {
	Name       string         `yaml:"name"`
	Alliance   string         `yaml:"alliance"`
	Archetype  string         `yaml:"archetype"`
	Resources  Resources      `yaml:"resources"`
	Stats      Stats          `yaml:"stats"`
	Structures map[string]int `yaml:"structures"`
	Equipment  []Equipment    `yaml:"equipment"`
	Edicts     []Edict        `yaml:"edicts"`
}

// Resources are a player's starting balances.
type Resources struct {
	Credits       int64 `yaml:"credits"`
	BankedCredits int64 `yaml:"banked_credits"`
	Citizens      int64 `yaml:"citizens"`
	Workers       int64 `yaml:"workers"`
	Soldiers      int64 `yaml:"soldiers"`
	Guards        int64 `yaml:"guards"`
	Spies         int64 `yaml:"spies"`
	Sentries      int64 `yaml:"sentries"`
	Crystals      int64 `yaml:"crystals"`
	DarkMatter    int64 `yaml:"dark_matter"`
	ResearchData  int64 `yaml:"research_data"`
}

// Stats are a player's starting attributes and counters.
type Stats struct {
	Level          int64 `yaml:"level"`
	Experience     int64 `yaml:"experience"`
	Strength       int64 `yaml:"strength"`
	Constitution   int64 `yaml:"constitution"`
	Wealth         int64 `yaml:"wealth"`
	Dexterity      int64 `yaml:"dexterity"`
	Charisma       int64 `yaml:"charisma"`
	AttackTurns    int64 `yaml:"attack_turns"`
	SpyTurns       int64 `yaml:"spy_turns"`
	DepositCharges int64 `yaml:"deposit_charges"`
	WarPrestige    int64 `yaml:"war_prestige"`
	NetWorth       int64 `yaml:"net_worth"`
}

// Equipment is one equipped item.
type Equipment struct {
	Unit  string `yaml:"unit"`
	Slot  string `yaml:"slot"`
	Item  string `yaml:"item"`
	Power int64  `yaml:"power"`
}

// Edict is an edict active from the moment of seeding. A zero Duration
// never expires.
type Edict struct {
	Key      string        `yaml:"key"`
	Duration time.Duration `yaml:"duration"`
}

// profile converts p into a power.Profile. allianceID is the id already
// assigned to p.Alliance, or 0.
//
// Precondition: p has passed World.Validate.
func (p Player) profile(allianceID int64) (*power.Profile, npc.Archetype) {
	out := &power.Profile{
		Name:       p.Name,
		AllianceID: allianceID,
		Resources:  economy.Resources(p.Resources),
		Stats:      economy.Stats(p.Stats),
		Structures: economy.Structures{},
		Loadout:    economy.Loadout{},
	}
	for k, lvl := range p.Structures {
		kind, _ := economy.ParseStructureKind(k)
		out.Structures[kind] = lvl
	}
	for _, e := range p.Equipment {
		unit, _ := economy.ParseUnit(e.Unit)
		out.Loadout.Equip(unit, economy.Slot(e.Slot), economy.Item{Key: e.Item, Power: e.Power})
	}
	if p.Archetype == "" {
		return out, ""
	}
	a, _ := npc.ParseArchetype(p.Archetype)
	out.IsNPC = true
	return out, a
}
