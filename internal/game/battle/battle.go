// Package battle resolves attacks and espionage missions between two players.
package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Outcome is the attacker-relative result of an engagement.
type Outcome string

const (
	OutcomeVictory   Outcome = "victory"
	OutcomeDefeat    Outcome = "defeat"
	OutcomeStalemate Outcome = "stalemate"
)

// Phase tracks how far an engagement progressed.
type Phase int

const (
	PhaseInitiated Phase = iota
	PhaseValidated
	PhaseResolved
	PhasePersisted
	PhaseEventEmitted
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseInitiated:
		return "initiated"
	case PhaseValidated:
		return "validated"
	case PhaseResolved:
		return "resolved"
	case PhasePersisted:
		return "persisted"
	case PhaseEventEmitted:
		return "event_emitted"
	default:
		return "unknown"
	}
}

// Reason distinguishes every way an engagement can be refused.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonUnknownAttackType Reason = "unknown_attack_type"
	ReasonTargetNotFound    Reason = "target_not_found"
	ReasonSelfTarget        Reason = "self_target"
	ReasonInsufficientUnits Reason = "insufficient_units"
	ReasonInsufficientTurns Reason = "insufficient_turns"
	ReasonAttackerBlocked   Reason = "attacker_blocked"
	ReasonTargetProtected   Reason = "target_protected"
	ReasonConflict          Reason = "conflict"
)

// Result is returned by every resolver operation.
//
// Invariant: Report or SpyReport is non-nil iff OK().
type Result struct {
	Reason    Reason
	Message   string
	Phase     Phase
	Report    *Report
	SpyReport *SpyReport
}

// OK reports whether the engagement was resolved and persisted.
func (r Result) OK() bool { return r.Reason == ReasonNone }

// Retryable reports whether the failure was a lost race that may succeed on retry.
func (r Result) Retryable() bool { return r.Reason == ReasonConflict }

// Report is the immutable record of one resolved attack.
type Report struct {
	ID                 int64
	AttackerID         int64
	DefenderID         int64
	AttackerAllianceID int64
	DefenderAllianceID int64
	AttackType         string
	Outcome            Outcome
	AttackerPower      int64
	DefenderPower      int64
	AttackerLosses     int64
	DefenderLosses     int64
	CreditsPlundered   int64
	NetWorthStolen     int64
	ExperienceGained   int64
	PrestigeGained     int64
	CreatedAt          time.Time
}

// Intel is the snapshot a successful spy mission reveals.
type Intel struct {
	Credits      int64
	Soldiers     int64
	Guards       int64
	Spies        int64
	Sentries     int64
	DefensePower int64
	OffensePower int64
}

// SpyReport is the immutable record of one resolved espionage mission.
type SpyReport struct {
	ID               int64
	SpyID            int64
	TargetID         int64
	SpyAllianceID    int64
	TargetAllianceID int64
	Success          bool
	SpyPower         int64
	SentryPower      int64
	SpiesLost        int64
	ExperienceGained int64
	Intel            *Intel
	CreatedAt        time.Time
}

// Tx is the transactional view the resolver needs. Every method runs inside
// the transaction opened by Store.RunInTx.
type Tx interface {
	// UserIDByName returns the id of the named player or storage.ErrNotFound.
	UserIDByName(ctx context.Context, name string) (int64, error)
	// LockProfiles locks and loads the rows of every id in ascending id order.
	// Missing users are absent from the returned map.
	LockProfiles(ctx context.Context, userIDs ...int64) (map[int64]*power.Profile, error)
	// ApplyDelta adds d to the user's rows.
	ApplyDelta(ctx context.Context, userID int64, d economy.Delta) error
	// InsertBattleReport persists r and sets r.ID.
	InsertBattleReport(ctx context.Context, r *Report) error
	// InsertSpyReport persists r and sets r.ID.
	InsertSpyReport(ctx context.Context, r *SpyReport) error
}

// Store opens transactions for the resolver.
type Store interface {
	// RunInTx runs fn in one transaction, committing iff fn returns nil.
	// Lost races are reported as storage.ErrConflict.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// rejection aborts a transaction with a validation failure.
type rejection struct {
	reason  Reason
	message string
}

func (r *rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.reason, r.message)
}

func reject(reason Reason, format string, args ...any) error {
	return &rejection{reason: reason, message: fmt.Sprintf(format, args...)}
}
