// Package war tracks wars between alliances and scores them from the battle
// and espionage logs recorded while they are active.
package war

import (
	"context"
	"errors"
	"time"
)

// Status is a war's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusConcluded Status = "concluded"
)

// GoalType selects what counts toward a war's goal threshold.
type GoalType string

const (
	GoalPlunder   GoalType = "plunder"
	GoalVictories GoalType = "victories"
	GoalPrestige  GoalType = "prestige"
)

// Sentinel errors.
var (
	ErrWarNotFound       = errors.New("war not found")
	ErrSameAlliance      = errors.New("an alliance cannot declare war on itself")
	ErrNoAlliance        = errors.New("both sides of a war must be alliances")
	ErrAlreadyAtWar      = errors.New("alliances are already at war")
	ErrInvalidTransition = errors.New("invalid war status transition")
	ErrInvalidGoal       = errors.New("invalid war goal")
)

// War is one conflict between two alliances. AllianceA declared it.
type War struct {
	ID               int64
	AllianceA        int64
	AllianceB        int64
	Status           Status
	GoalType         GoalType
	GoalThreshold    int64
	ProgressA        int64
	ProgressB        int64
	Duration         time.Duration
	DeclaredAt       time.Time
	StartedAt        *time.Time
	EndsAt           *time.Time
	ConcludedAt      *time.Time
	WinnerAllianceID int64
}

// Involves reports whether allianceID is one of the two sides.
func (w *War) Involves(allianceID int64) bool {
	return allianceID != 0 && (w.AllianceA == allianceID || w.AllianceB == allianceID)
}

// LogKind distinguishes battle entries from espionage entries.
type LogKind string

const (
	LogBattle LogKind = "battle"
	LogSpy    LogKind = "spy"
)

// LogEntry is one engagement between the two sides of a war.
type LogEntry struct {
	ID                 int64
	WarID              int64
	Kind               LogKind
	ReportID           int64
	AttackerAllianceID int64
	DefenderAllianceID int64
	// Result is victory/defeat/stalemate for battles and success/failure for spy missions.
	Result     string
	Plunder    int64
	Prestige   int64
	OccurredAt time.Time
}

// Spy mission results.
const (
	SpySuccess = "success"
	SpyFailure = "failure"
)

// Store is the war persistence contract.
type Store interface {
	// InsertWar persists w and sets w.ID. It returns ErrAlreadyAtWar when
	// the pair already has a pending or active war.
	InsertWar(ctx context.Context, w *War) error
	// War returns the war with id, or storage.ErrNotFound.
	War(ctx context.Context, id int64) (*War, error)
	// OpenWarBetween returns the pending or active war between a and b in
	// either direction, or storage.ErrNotFound.
	OpenWarBetween(ctx context.Context, a, b int64) (*War, error)
	// ActivateWar moves a pending war to active. Returns false when the war
	// was not pending.
	ActivateWar(ctx context.Context, id int64, startedAt, endsAt time.Time) (bool, error)
	// ConcludeWar moves an active war to concluded. Returns false when the
	// war was not active.
	ConcludeWar(ctx context.Context, id, winnerAllianceID int64, at time.Time) (bool, error)
	// AddProgress atomically adds amount to allianceID's goal progress and
	// returns the updated war.
	AddProgress(ctx context.Context, id, allianceID, amount int64) (*War, error)
	// InsertWarLog persists e and sets e.ID.
	InsertWarLog(ctx context.Context, e *LogEntry) error
	// WarLogs returns every log entry of the war in insertion order.
	WarLogs(ctx context.Context, warID int64) ([]LogEntry, error)
	// ExpiredWars returns active wars whose EndsAt is at or before now.
	ExpiredWars(ctx context.Context, now time.Time) ([]*War, error)
}
