// Package power computes combat power and per-turn income from a player's
// economy snapshot. Every function here is pure.
package power

import (
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
)

// Profile is the complete input bundle for power and income calculation.
type Profile struct {
	UserID int64
	Name   string
	IsNPC  bool
	// AllianceID is 0 when the player belongs to no alliance.
	AllianceID int64
	Resources  economy.Resources
	Stats      economy.Stats
	Structures economy.Structures
	Loadout    economy.Loadout
	// Alliance is nil when AllianceID is 0 or the alliance grants nothing.
	Alliance *economy.AllianceBonuses
	Edicts   []edict.Active
}

// HasAlliance reports whether the profile belongs to an alliance.
func (p *Profile) HasAlliance() bool {
	return p.AllianceID != 0
}

// Clone returns a deep copy of p.
func (p *Profile) Clone() *Profile {
	out := *p
	out.Structures = p.Structures.Clone()
	if p.Loadout != nil {
		out.Loadout = make(economy.Loadout, len(p.Loadout))
		for u, slots := range p.Loadout {
			for s, it := range slots {
				out.Loadout.Equip(u, s, it)
			}
		}
	}
	if p.Alliance != nil {
		a := *p.Alliance
		out.Alliance = &a
	}
	out.Edicts = append([]edict.Active(nil), p.Edicts...)
	return &out
}

// Apply returns a copy of p with d added to its rows.
func (p *Profile) Apply(d economy.Delta) *Profile {
	out := p.Clone()
	out.Resources = out.Resources.Add(d.Resources)
	out.Stats = out.Stats.Add(d.Stats)
	out.Structures = out.Structures.Add(d.Structures)
	return out
}
