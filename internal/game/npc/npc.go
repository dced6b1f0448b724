// Package npc drives autonomous agents that play the game through the same
// action and battle services as human players.
package npc

import (
	"context"
	"fmt"
	"strings"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/action"
	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/dice"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Archetype selects an agent's strategy.
type Archetype string

const (
	ArchetypeIndustrialist Archetype = "industrialist"
	ArchetypeReaver        Archetype = "reaver"
	ArchetypeVaultKeeper   Archetype = "vault_keeper"
)

// Archetypes lists every known archetype.
var Archetypes = []Archetype{ArchetypeIndustrialist, ArchetypeReaver, ArchetypeVaultKeeper}

// ParseArchetype converts a stored archetype name into an Archetype.
func ParseArchetype(s string) (Archetype, error) {
	for _, a := range Archetypes {
		if string(a) == strings.ToLower(s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown archetype %q", s)
}

// State is the behavioural mode an agent is in for one cycle.
type State string

const (
	StateGrowth     State = "growth"
	StatePrepare    State = "prepare"
	StateAggressive State = "aggressive"
	StateDefensive  State = "defensive"
	StateRecovery   State = "recovery"
)

// Agent is one NPC player.
type Agent struct {
	UserID    int64
	Name      string
	Archetype Archetype
}

// Target is an attack candidate.
type Target struct {
	UserID int64
	Name   string
}

// Directory reads agents and the world they act in.
type Directory interface {
	// ListNPCs returns every NPC agent in ascending user id order.
	ListNPCs(ctx context.Context) ([]Agent, error)
	// Profile returns a fresh snapshot of userID.
	Profile(ctx context.Context, userID int64) (*power.Profile, error)
	// Candidates returns up to limit attackable players other than excludeID.
	Candidates(ctx context.Context, excludeID int64, limit int) ([]Target, error)
}

// Actions is the subset of the player action service agents use.
type Actions interface {
	UpgradeStructure(ctx context.Context, userID int64, kind economy.StructureKind) (action.Result, error)
	Train(ctx context.Context, userID int64, unit economy.Unit, qty int64) (action.Result, error)
	BuyCitizens(ctx context.Context, userID int64, qty int64) (action.Result, error)
	BuyCrystals(ctx context.Context, userID int64, qty int64) (action.Result, error)
	UnitCost(p *power.Profile, unit economy.Unit) (int64, bool)
}

// Attacker launches attacks.
type Attacker interface {
	ConductAttack(ctx context.Context, attackerID int64, targetName, attackType string) (battle.Result, error)
}

// Env bundles everything a strategy may call.
type Env struct {
	Config    config.NPCConfig
	Costs     config.CostConfig
	Actions   Actions
	Attacker  Attacker
	Directory Directory
	Dice      dice.Source
}

// Strategy is the behaviour of one archetype.
type Strategy interface {
	// DetermineState is a pure function of the snapshot.
	DetermineState(p *power.Profile) State
	// Execute performs the cycle's actions and returns the ordered trace of
	// every attempted action and its outcome.
	Execute(ctx context.Context, env *Env, agent Agent, p *power.Profile) []string
}

// ForArchetype returns the strategy for a.
func ForArchetype(a Archetype, cfg config.NPCConfig) (Strategy, error) {
	switch a {
	case ArchetypeIndustrialist:
		return &Industrialist{cfg: cfg}, nil
	case ArchetypeReaver:
		return &Reaver{cfg: cfg}, nil
	case ArchetypeVaultKeeper:
		return &VaultKeeper{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("no strategy for archetype %q", a)
	}
}
