// Package event provides the post-commit event bus and the events the
// engine publishes.
package event

import "time"

// Event is a fire-and-forget notification published after a state change commits.
type Event interface {
	// Name returns the stable event type name used in logs.
	Name() string
}

// BattleConcluded is published once per resolved attack.
type BattleConcluded struct {
	ReportID           int64
	AttackerID         int64
	AttackerName       string
	AttackerAllianceID int64
	DefenderID         int64
	DefenderName       string
	DefenderAllianceID int64
	AttackType         string
	// Result is "victory", "defeat" or "stalemate" from the attacker's view.
	Result           string
	PrestigeGained   int64
	GuardsKilled     int64
	SoldiersLost     int64
	CreditsPlundered int64
	OccurredAt       time.Time
}

// Name implements Event.
func (BattleConcluded) Name() string { return "battle_concluded" }

// SpyConcluded is published once per resolved espionage mission.
type SpyConcluded struct {
	ReportID         int64
	SpyID            int64
	SpyName          string
	SpyAllianceID    int64
	TargetID         int64
	TargetName       string
	TargetAllianceID int64
	Success          bool
	SpiesLost        int64
	OccurredAt       time.Time
}

// Name implements Event.
func (SpyConcluded) Name() string { return "spy_concluded" }

// StrategicTargetDestroyed is published when a war goal is reached.
type StrategicTargetDestroyed struct {
	WarID             int64
	WinningAllianceID int64
	OccurredAt        time.Time
}

// Name implements Event.
func (StrategicTargetDestroyed) Name() string { return "strategic_target_destroyed" }
