// Package economy defines the per-player entity graph mutated by turns,
// battles, and player actions: resources, stats, structures, and loadouts.
package economy

import (
	"fmt"
	"strings"
)

// Unit identifies a trained unit type.
type Unit string

const (
	UnitWorker  Unit = "worker"
	UnitSoldier Unit = "soldier"
	UnitGuard   Unit = "guard"
	UnitSpy     Unit = "spy"
	UnitSentry  Unit = "sentry"
)

// Plural returns the plural form of the unit name.
func (u Unit) Plural() string {
	if u == UnitSentry {
		return "sentries"
	}
	return string(u) + "s"
}

// Units lists every trainable unit type.
var Units = []Unit{UnitWorker, UnitSoldier, UnitGuard, UnitSpy, UnitSentry}

// ParseUnit converts a unit name into a Unit.
func ParseUnit(s string) (Unit, error) {
	for _, u := range Units {
		if string(u) == strings.ToLower(s) {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// ResourceKind names a single spendable resource column.
type ResourceKind string

const (
	ResourceCredits       ResourceKind = "credits"
	ResourceBankedCredits ResourceKind = "banked_credits"
	ResourceCitizens      ResourceKind = "citizens"
	ResourceCrystals      ResourceKind = "crystals"
	ResourceDarkMatter    ResourceKind = "dark_matter"
	ResourceResearchData  ResourceKind = "research_data"
)

// Resources is a player's economy row. The same type doubles as an additive
// delta when used inside Delta.
//
// Invariant: every field of a persisted row is >= 0.
type Resources struct {
	Credits       int64
	BankedCredits int64
	Citizens      int64
	Workers       int64
	Soldiers      int64
	Guards        int64
	Spies         int64
	Sentries      int64
	Crystals      int64
	DarkMatter    int64
	ResearchData  int64
}

// Units returns the count of the given unit type.
func (r Resources) Units(u Unit) int64 {
	switch u {
	case UnitWorker:
		return r.Workers
	case UnitSoldier:
		return r.Soldiers
	case UnitGuard:
		return r.Guards
	case UnitSpy:
		return r.Spies
	case UnitSentry:
		return r.Sentries
	}
	return 0
}

// AddUnits returns a copy of r with n added to the given unit count.
func (r Resources) AddUnits(u Unit, n int64) Resources {
	switch u {
	case UnitWorker:
		r.Workers += n
	case UnitSoldier:
		r.Soldiers += n
	case UnitGuard:
		r.Guards += n
	case UnitSpy:
		r.Spies += n
	case UnitSentry:
		r.Sentries += n
	}
	return r
}

// Get returns the balance of the given resource kind and whether the kind is known.
func (r Resources) Get(k ResourceKind) (int64, bool) {
	switch k {
	case ResourceCredits:
		return r.Credits, true
	case ResourceBankedCredits:
		return r.BankedCredits, true
	case ResourceCitizens:
		return r.Citizens, true
	case ResourceCrystals:
		return r.Crystals, true
	case ResourceDarkMatter:
		return r.DarkMatter, true
	case ResourceResearchData:
		return r.ResearchData, true
	}
	return 0, false
}

// AddResource returns a copy of r with n added to the given resource kind.
// Unknown kinds leave r unchanged.
func (r Resources) AddResource(k ResourceKind, n int64) Resources {
	switch k {
	case ResourceCredits:
		r.Credits += n
	case ResourceBankedCredits:
		r.BankedCredits += n
	case ResourceCitizens:
		r.Citizens += n
	case ResourceCrystals:
		r.Crystals += n
	case ResourceDarkMatter:
		r.DarkMatter += n
	case ResourceResearchData:
		r.ResearchData += n
	}
	return r
}

// Add returns the field-wise sum of r and d.
func (r Resources) Add(d Resources) Resources {
	return Resources{
		Credits:       r.Credits + d.Credits,
		BankedCredits: r.BankedCredits + d.BankedCredits,
		Citizens:      r.Citizens + d.Citizens,
		Workers:       r.Workers + d.Workers,
		Soldiers:      r.Soldiers + d.Soldiers,
		Guards:        r.Guards + d.Guards,
		Spies:         r.Spies + d.Spies,
		Sentries:      r.Sentries + d.Sentries,
		Crystals:      r.Crystals + d.Crystals,
		DarkMatter:    r.DarkMatter + d.DarkMatter,
		ResearchData:  r.ResearchData + d.ResearchData,
	}
}

// NonNegative returns an error naming the first negative field.
func (r Resources) NonNegative() error {
	fields := []struct {
		name string
		v    int64
	}{
		{"credits", r.Credits}, {"banked_credits", r.BankedCredits}, {"citizens", r.Citizens},
		{"workers", r.Workers}, {"soldiers", r.Soldiers}, {"guards", r.Guards},
		{"spies", r.Spies}, {"sentries", r.Sentries}, {"crystals", r.Crystals},
		{"dark_matter", r.DarkMatter}, {"research_data", r.ResearchData},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%s would become negative (%d)", f.name, f.v)
		}
	}
	return nil
}

// Stats holds a player's progression and action-point counters.
//
// Invariant: AttackTurns, SpyTurns and DepositCharges are never negative.
type Stats struct {
	Level          int64
	Experience     int64
	Strength       int64
	Constitution   int64
	Wealth         int64
	Dexterity      int64
	Charisma       int64
	AttackTurns    int64
	SpyTurns       int64
	DepositCharges int64
	WarPrestige    int64
	NetWorth       int64
}

// Add returns the field-wise sum of s and d.
func (s Stats) Add(d Stats) Stats {
	return Stats{
		Level:          s.Level + d.Level,
		Experience:     s.Experience + d.Experience,
		Strength:       s.Strength + d.Strength,
		Constitution:   s.Constitution + d.Constitution,
		Wealth:         s.Wealth + d.Wealth,
		Dexterity:      s.Dexterity + d.Dexterity,
		Charisma:       s.Charisma + d.Charisma,
		AttackTurns:    s.AttackTurns + d.AttackTurns,
		SpyTurns:       s.SpyTurns + d.SpyTurns,
		DepositCharges: s.DepositCharges + d.DepositCharges,
		WarPrestige:    s.WarPrestige + d.WarPrestige,
		NetWorth:       s.NetWorth + d.NetWorth,
	}
}

// NonNegative returns an error if a consumable counter would go negative.
func (s Stats) NonNegative() error {
	switch {
	case s.AttackTurns < 0:
		return fmt.Errorf("attack_turns would become negative (%d)", s.AttackTurns)
	case s.SpyTurns < 0:
		return fmt.Errorf("spy_turns would become negative (%d)", s.SpyTurns)
	case s.DepositCharges < 0:
		return fmt.Errorf("deposit_charges would become negative (%d)", s.DepositCharges)
	}
	return nil
}

// StructureKind identifies an upgradable structure.
type StructureKind string

const (
	StructureEconomy       StructureKind = "economy"
	StructurePopulation    StructureKind = "population"
	StructureMining        StructureKind = "mining"
	StructureResearch      StructureKind = "research"
	StructureArmory        StructureKind = "armory"
	StructureOffense       StructureKind = "offense"
	StructureFortification StructureKind = "fortification"
	StructureSpy           StructureKind = "spy"
	StructureSentry        StructureKind = "sentry"
)

// StructureKinds lists every structure type.
var StructureKinds = []StructureKind{
	StructureEconomy, StructurePopulation, StructureMining, StructureResearch,
	StructureArmory, StructureOffense, StructureFortification, StructureSpy, StructureSentry,
}

// ParseStructureKind converts a name into a StructureKind.
func ParseStructureKind(s string) (StructureKind, error) {
	for _, k := range StructureKinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown structure %q", s)
}

// Structures maps each structure kind to its level. Missing kinds are level 0.
//
// Invariant: levels are monotonically non-decreasing over time.
type Structures map[StructureKind]int

// Level returns the level of kind, or 0 if absent.
func (s Structures) Level(kind StructureKind) int {
	return s[kind]
}

// Clone returns an independent copy of s.
func (s Structures) Clone() Structures {
	out := make(Structures, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Add returns a new Structures with d's levels added to s.
func (s Structures) Add(d Structures) Structures {
	out := s.Clone()
	for k, v := range d {
		out[k] += v
	}
	return out
}

// Slot identifies an equipment position on a unit type.
type Slot string

const (
	SlotWeapon  Slot = "weapon"
	SlotArmor   Slot = "armor"
	SlotUtility Slot = "utility"
)

// Item is an equipped piece of gear. Power is the flat per-unit bonus it grants.
type Item struct {
	Key   string
	Power int64
}

// Loadout holds equipped items.
//
// Invariant: at most one Item per (Unit, Slot).
type Loadout map[Unit]map[Slot]Item

// Equip places item in the given unit slot, replacing any existing item.
//
// Postcondition: l.Equipped(unit, slot) == item.
func (l Loadout) Equip(unit Unit, slot Slot, item Item) {
	if l[unit] == nil {
		l[unit] = make(map[Slot]Item)
	}
	l[unit][slot] = item
}

// Equipped returns the item in the given unit slot and whether one is present.
func (l Loadout) Equipped(unit Unit, slot Slot) (Item, bool) {
	it, ok := l[unit][slot]
	return it, ok
}

// PerUnitPower returns the summed flat power of every item equipped on unit.
func (l Loadout) PerUnitPower(unit Unit) int64 {
	var total int64
	for _, it := range l[unit] {
		total += it.Power
	}
	return total
}

// AllianceBonuses are alliance-wide modifiers applied to every member.
// Percent fields are fractions.
type AllianceBonuses struct {
	OffensePercent float64
	DefensePercent float64
	SpyPercent     float64
	SentryPercent  float64
	IncomePercent  float64
	CreditsFlat    int64
	CitizensFlat   int64
}

// Delta is an additive change to one player's rows.
type Delta struct {
	Resources  Resources
	Stats      Stats
	Structures Structures
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	if d.Resources != (Resources{}) || d.Stats != (Stats{}) {
		return false
	}
	for _, v := range d.Structures {
		if v != 0 {
			return false
		}
	}
	return true
}
