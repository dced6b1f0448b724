// Package edict provides edict definitions loaded from YAML and the effect
// lookups applied to players with active edicts.
package edict

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Known effect keys. Percent effects are fractions summed into the matching
// power or income category; citizen_generation_modifier multiplies citizen
// growth; flag effects are active when their value is non-zero.
const (
	EffectOffenseBonus              = "offense_bonus"
	EffectDefenseBonus              = "defense_bonus"
	EffectSpyBonus                  = "spy_bonus"
	EffectSentryBonus               = "sentry_bonus"
	EffectIncomeBonus               = "income_bonus"
	EffectPrimeDirectiveDefense     = "prime_directive_defense_bonus"
	EffectCitizenGenerationModifier = "citizen_generation_modifier"
	EffectStructureCostModifier     = "structure_cost_modifier"
	EffectBlocksAttacking           = "blocks_attacking"
	EffectCannotBeAttacked          = "cannot_be_attacked"
)

// Upkeep is the per-turn cost of keeping an edict active.
type Upkeep struct {
	Resource string `yaml:"resource"`
	Amount   int64  `yaml:"amount"`
}

// Definition is the static definition of an edict, loaded from YAML.
type Definition struct {
	Key           string             `yaml:"key"`
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	DurationTurns int                `yaml:"duration_turns"` // 0 = until revoked
	Upkeep        Upkeep             `yaml:"upkeep"`
	Effects       map[string]float64 `yaml:"effects"`
}

// Validate checks the definition's invariants.
//
// Postcondition: Returns nil iff Key and Name are non-empty and Upkeep.Amount >= 0
// with a resource named whenever the amount is positive.
func (d *Definition) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("edict: key must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("edict %q: name must not be empty", d.Key)
	}
	if d.Upkeep.Amount < 0 {
		return fmt.Errorf("edict %q: upkeep amount must be >= 0", d.Key)
	}
	if d.Upkeep.Amount > 0 && d.Upkeep.Resource == "" {
		return fmt.Errorf("edict %q: upkeep resource must be set when amount > 0", d.Key)
	}
	if d.DurationTurns < 0 {
		return fmt.Errorf("edict %q: duration_turns must be >= 0", d.Key)
	}
	return nil
}

// Registry holds all known edict Definitions keyed by Key.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def to the registry, overwriting any existing entry with the same key.
// Precondition: def must not be nil and def.Key must not be empty.
func (r *Registry) Register(def *Definition) {
	r.defs[def.Key] = def
}

// Get returns the Definition for key, or (nil, false) if not found.
func (r *Registry) Get(key string) (*Definition, bool) {
	if r == nil {
		return nil, false
	}
	d, ok := r.defs[key]
	return d, ok
}

// All returns a snapshot slice of all registered Definitions.
func (r *Registry) All() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Definition,
// and returns a populated Registry.
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading edict dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Definition
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
