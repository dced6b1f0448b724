// Package app assembles the engine's components from configuration and
// exposes them, plus the periodic jobs built on them, to the binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/action"
	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/dice"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/event"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/power"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/notify"
	"github.com/cory-johannsen/dominion/internal/storage/postgres"
)

// Engine is every long-lived component of a running engine.
type Engine struct {
	Config        config.Config
	Logger        *zap.Logger
	Store         *postgres.Store
	Locker        *postgres.Locker
	Bus           *event.Bus
	Subscriptions Subscriptions
	Resolver      *battle.Resolver
	Actions       *action.Service
	Turns         *turn.Processor
	NPCs          *npc.Engine
	Wars          *war.Service
}

// Subscriptions records which handlers were attached to the bus.
type Subscriptions struct {
	Names []string
}

// ProviderSet binds the postgres store to every store contract and builds
// the game services on top of it.
var ProviderSet = wire.NewSet(
	ProvidePool,
	ProvideStore,
	ProvideLocker,
	ProvideBalance,
	ProvideEdicts,
	ProvideDice,
	ProvideScorer,
	ProvideSubscriptions,
	power.NewCalculator,
	event.NewBus,
	battle.NewResolver,
	action.NewService,
	turn.NewProcessor,
	npc.NewEngine,
	war.NewService,
	war.NewLogger,
	notify.NewDispatcher,
	wire.Bind(new(battle.Store), new(*postgres.Store)),
	wire.Bind(new(action.Store), new(*postgres.Store)),
	wire.Bind(new(turn.Store), new(*postgres.Store)),
	wire.Bind(new(npc.Directory), new(*postgres.Store)),
	wire.Bind(new(war.Store), new(*postgres.Store)),
	wire.Bind(new(notify.Sink), new(*postgres.Store)),
	wire.Bind(new(npc.Actions), new(*action.Service)),
	wire.Bind(new(npc.Attacker), new(*battle.Resolver)),
	wire.FieldsOf(new(config.Config), "Database"),
	wire.Struct(new(Engine), "*"),
)

// ProvidePool connects to PostgreSQL and verifies the connection.
//
// Postcondition: the returned cleanup closes the pool.
func ProvidePool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*postgres.Pool, func(), error) {
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Health(ctx, 5*time.Second); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	return pool, pool.Close, nil
}

// ProvideStore wraps the pool in the repository implementing every store contract.
func ProvideStore(pool *postgres.Pool) *postgres.Store {
	return postgres.NewStore(pool.DB())
}

// ProvideLocker returns the advisory locker guarding scheduled jobs.
func ProvideLocker(pool *postgres.Pool) *postgres.Locker {
	return postgres.NewLocker(pool.DB())
}

// ProvideBalance extracts the game balance section.
func ProvideBalance(cfg config.Config) config.BalanceConfig {
	return cfg.Balance
}

// ProvideEdicts loads the edict definitions from the configured directory.
func ProvideEdicts(cfg config.Config, logger *zap.Logger) (*edict.Registry, error) {
	reg, err := edict.LoadDirectory(cfg.Scheduler.EdictsDir)
	if err != nil {
		return nil, fmt.Errorf("loading edicts: %w", err)
	}
	logger.Info("edicts loaded", zap.Int("count", len(reg.All())))
	return reg, nil
}

// ProvideDice returns the production random source. Draws are logged at debug.
func ProvideDice(logger *zap.Logger) dice.Source {
	return dice.NewLoggedSource(dice.NewCryptoSource(), logger)
}

// ProvideScorer builds the war scorer with the configured point ceiling.
func ProvideScorer(store war.Store, balance config.BalanceConfig) *war.Scorer {
	return war.NewScorer(store, balance.War.MaxPoints)
}

// ProvideSubscriptions attaches the war logger and the defender notifier to
// the bus. The war logger is subscribed first so war progress is recorded
// before any notification is written.
func ProvideSubscriptions(bus *event.Bus, wl *war.Logger, d *notify.Dispatcher) Subscriptions {
	bus.Subscribe("war_logger", wl.Handle)
	bus.Subscribe("notify", d.Handle)
	return Subscriptions{Names: []string{"war_logger", "notify"}}
}
