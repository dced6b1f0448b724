package turn

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

// Applied reports what a store did with an Update.
type Applied struct {
	// Deactivated lists the keys of edicts deactivated for unpaid upkeep.
	Deactivated []string
}

// Store is the persistence contract of the turn processor.
type Store interface {
	// ListProfiles returns up to limit profiles with user id > afterID in
	// ascending id order, each with only its live edicts.
	ListProfiles(ctx context.Context, afterID int64, limit int) ([]*power.Profile, error)
	// ApplyTurn applies u to one user atomically.
	ApplyTurn(ctx context.Context, u Update) (Applied, error)
	// ListAlliances returns every alliance with its current member count.
	ListAlliances(ctx context.Context) ([]Alliance, error)
	// ApplyAllianceTurn credits one alliance treasury atomically.
	ApplyAllianceTurn(ctx context.Context, u AllianceUpdate) error
}

// Summary reports the outcome of one ProcessAllUsers invocation.
type Summary struct {
	UsersProcessed     int
	UsersFailed        int
	AlliancesProcessed int
	AlliancesFailed    int
	EdictsLapsed       int
	Elapsed            time.Duration
}

// Processor runs the per-tick economy update across the population.
type Processor struct {
	cfg    config.TurnConfig
	calc   *power.Calculator
	edicts *edict.Registry
	store  Store
	logger *zap.Logger
}

// NewProcessor creates a Processor.
//
// Precondition: calc, store and logger must be non-nil; balance.Turn.BatchSize > 0.
func NewProcessor(balance config.BalanceConfig, calc *power.Calculator, edicts *edict.Registry, store Store, logger *zap.Logger) *Processor {
	return &Processor{cfg: balance.Turn, calc: calc, edicts: edicts, store: store, logger: logger}
}

// ProcessAllUsers applies one tick to every user, then to every alliance.
//
// A failure applying one user or alliance is logged and counted; the rest of
// the population is still processed. The returned error is non-nil only when
// a page or the alliance list cannot be read at all.
//
// Postcondition: UsersProcessed counts only committed user updates.
func (p *Processor) ProcessAllUsers(ctx context.Context) (Summary, error) {
	start := time.Now()
	var sum Summary

	var afterID int64
	for {
		page, err := p.store.ListProfiles(ctx, afterID, p.cfg.BatchSize)
		if err != nil {
			sum.Elapsed = time.Since(start)
			return sum, fmt.Errorf("listing profiles after %d: %w", afterID, err)
		}
		for _, prof := range page {
			afterID = prof.UserID
			u := Compute(p.calc, p.edicts, p.cfg, prof)
			applied, err := p.store.ApplyTurn(ctx, u)
			if err != nil {
				sum.UsersFailed++
				p.logger.Warn("turn update failed",
					zap.Int64("user_id", prof.UserID),
					zap.Error(err),
				)
				continue
			}
			sum.UsersProcessed++
			if len(applied.Deactivated) > 0 {
				sum.EdictsLapsed += len(applied.Deactivated)
				p.logger.Info("edicts lapsed for unpaid upkeep",
					zap.Int64("user_id", prof.UserID),
					zap.Strings("edicts", applied.Deactivated),
				)
			}
		}
		if len(page) < p.cfg.BatchSize {
			break
		}
	}

	alliances, err := p.store.ListAlliances(ctx)
	if err != nil {
		sum.Elapsed = time.Since(start)
		return sum, fmt.Errorf("listing alliances: %w", err)
	}
	for _, a := range alliances {
		if err := p.store.ApplyAllianceTurn(ctx, ComputeAlliance(p.cfg, a)); err != nil {
			sum.AlliancesFailed++
			p.logger.Warn("alliance turn update failed",
				zap.Int64("alliance_id", a.ID),
				zap.Error(err),
			)
			continue
		}
		sum.AlliancesProcessed++
	}

	sum.Elapsed = time.Since(start)
	p.logger.Info("turn processed",
		zap.Int("users_processed", sum.UsersProcessed),
		zap.Int("users_failed", sum.UsersFailed),
		zap.Int("alliances_processed", sum.AlliancesProcessed),
		zap.Int("edicts_lapsed", sum.EdictsLapsed),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}
