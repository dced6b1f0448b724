// Package config provides Viper-based configuration loading for the Dominion engine.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SchedulerConfig holds the intervals of the periodic jobs run by the daemon.
type SchedulerConfig struct {
	// TurnInterval is the length of one game tick.
	TurnInterval time.Duration `mapstructure:"turn_interval"`
	// NPCInterval is the delay between NPC decision cycles.
	NPCInterval time.Duration `mapstructure:"npc_interval"`
	// WarInterval is the delay between war expiry sweeps.
	WarInterval time.Duration `mapstructure:"war_interval"`
	// EdictsDir is the directory of edict YAML definitions.
	EdictsDir string `mapstructure:"edicts_dir"`
	// ShutdownTimeout bounds how long in-flight jobs may run after a stop signal.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// PowerConfig holds combat power constants.
// Every *Percent field is a fraction: 0.05 means five percent.
type PowerConfig struct {
	OffensePerSoldier float64 `mapstructure:"offense_per_soldier"`
	DefensePerGuard   float64 `mapstructure:"defense_per_guard"`
	SpyPerSpy         float64 `mapstructure:"spy_per_spy"`
	SentryPerSentry   float64 `mapstructure:"sentry_per_sentry"`

	StrengthPercent     float64 `mapstructure:"strength_percent"`
	ConstitutionPercent float64 `mapstructure:"constitution_percent"`
	DexterityPercent    float64 `mapstructure:"dexterity_percent"`
	WealthPercent       float64 `mapstructure:"wealth_percent"`

	OffenseStructurePercent float64 `mapstructure:"offense_structure_percent"`
	FortificationPercent    float64 `mapstructure:"fortification_percent"`
	SpyStructurePercent     float64 `mapstructure:"spy_structure_percent"`
	SentryStructurePercent  float64 `mapstructure:"sentry_structure_percent"`
	ArmoryPercent           float64 `mapstructure:"armory_percent"`
}

// IncomeConfig holds per-turn production constants.
type IncomeConfig struct {
	CreditsPerEconomyLevel     int64 `mapstructure:"credits_per_economy_level"`
	CreditsPerWorker           int64 `mapstructure:"credits_per_worker"`
	CitizensPerPopulationLevel int64 `mapstructure:"citizens_per_population_level"`
	DarkMatterPerMiningLevel   int64 `mapstructure:"dark_matter_per_mining_level"`
	ResearchPerResearchLevel   int64 `mapstructure:"research_per_research_level"`
}

// TurnConfig holds tick regeneration and interest settings.
type TurnConfig struct {
	InterestRate          float64 `mapstructure:"interest_rate"`
	MaxAttackTurns        int64   `mapstructure:"max_attack_turns"`
	MaxSpyTurns           int64   `mapstructure:"max_spy_turns"`
	MaxDepositCharges     int64   `mapstructure:"max_deposit_charges"`
	AttackTurnRegen       int64   `mapstructure:"attack_turn_regen"`
	SpyTurnRegen          int64   `mapstructure:"spy_turn_regen"`
	DepositChargeRegen    int64   `mapstructure:"deposit_charge_regen"`
	BatchSize             int     `mapstructure:"batch_size"`
	AllianceInterestRate  float64 `mapstructure:"alliance_interest_rate"`
	AllianceDuesPerMember int64   `mapstructure:"alliance_dues_per_member"`
}

// AttackTypeConfig describes one attack type.
type AttackTypeConfig struct {
	TurnCost           int64   `mapstructure:"turn_cost"`
	Plunder            bool    `mapstructure:"plunder"`
	PrestigeMultiplier float64 `mapstructure:"prestige_multiplier"`
}

// BattleConfig holds the tunable battle resolution curve.
type BattleConfig struct {
	// StalemateMargin is the relative band around equal power that yields a stalemate.
	StalemateMargin      float64 `mapstructure:"stalemate_margin"`
	LoserLossPercent     float64 `mapstructure:"loser_loss_percent"`
	WinnerLossPercent    float64 `mapstructure:"winner_loss_percent"`
	StalemateLossPercent float64 `mapstructure:"stalemate_loss_percent"`
	// MaxLossPercent caps the fraction of a force lost in one engagement. Must be < 1.
	MaxLossPercent      float64                     `mapstructure:"max_loss_percent"`
	BasePlunderPercent  float64                     `mapstructure:"base_plunder_percent"`
	MaxPlunderPercent   float64                     `mapstructure:"max_plunder_percent"`
	ExperiencePerKill   int64                       `mapstructure:"experience_per_kill"`
	ExperiencePerCredit float64                     `mapstructure:"experience_per_credit"`
	PrestigeOnVictory   int64                       `mapstructure:"prestige_on_victory"`
	PrestigePerKill     float64                     `mapstructure:"prestige_per_kill"`
	NetWorthPerCredit   float64                     `mapstructure:"net_worth_per_credit"`
	AttackTypes         map[string]AttackTypeConfig `mapstructure:"attack_types"`
}

// EspionageConfig holds spy mission settings.
type EspionageConfig struct {
	TurnCost             int64   `mapstructure:"turn_cost"`
	SuccessMargin        float64 `mapstructure:"success_margin"`
	FailedSpyLossPercent float64 `mapstructure:"failed_spy_loss_percent"`
	ExperiencePerMission int64   `mapstructure:"experience_per_mission"`
}

// StructureCostConfig describes the cost curve base * growth^level.
type StructureCostConfig struct {
	Base   int64   `mapstructure:"base"`
	Growth float64 `mapstructure:"growth"`
}

// CostConfig holds player action prices.
type CostConfig struct {
	Structures              map[string]StructureCostConfig `mapstructure:"structures"`
	Units                   map[string]int64               `mapstructure:"units"`
	CitizenCrystalCost      int64                          `mapstructure:"citizen_crystal_cost"`
	CrystalCreditCost       int64                          `mapstructure:"crystal_credit_cost"`
	CharismaDiscountPercent float64                        `mapstructure:"charisma_discount_percent"`
	MaxCharismaDiscount     float64                        `mapstructure:"max_charisma_discount"`
	MaxDepositPercent       float64                        `mapstructure:"max_deposit_percent"`
}

// IndustrialistConfig holds the industrialist archetype thresholds.
type IndustrialistConfig struct {
	WorkerTarget    int64 `mapstructure:"worker_target"`
	StructureTarget int   `mapstructure:"structure_target"`
	CriticalGuards  int64 `mapstructure:"critical_guards"`
}

// ReaverConfig holds the reaver archetype settings.
type ReaverConfig struct {
	SoldierCap int64  `mapstructure:"soldier_cap"`
	AttackType string `mapstructure:"attack_type"`
}

// VaultKeeperConfig holds the vault keeper archetype settings.
type VaultKeeperConfig struct {
	GuardBatch     int64 `mapstructure:"guard_batch"`
	SentryBatch    int64 `mapstructure:"sentry_batch"`
	ResearchChance int   `mapstructure:"research_chance"`
}

// NPCConfig holds NPC decision engine settings. Chances are whole percents.
type NPCConfig struct {
	AgentsPerSecond            float64             `mapstructure:"agents_per_second"`
	Burst                      int                 `mapstructure:"burst"`
	CandidatePoolSize          int                 `mapstructure:"candidate_pool_size"`
	InfrastructureFloor        int                 `mapstructure:"infrastructure_floor"`
	CreditReserve              int64               `mapstructure:"credit_reserve"`
	CitizenPurchaseChance      int                 `mapstructure:"citizen_purchase_chance"`
	CitizenPurchaseBatch       int64               `mapstructure:"citizen_purchase_batch"`
	CrystalPurchaseChance      int                 `mapstructure:"crystal_purchase_chance"`
	CrystalPurchaseCreditFloor int64               `mapstructure:"crystal_purchase_credit_floor"`
	CrystalPurchaseBatch       int64               `mapstructure:"crystal_purchase_batch"`
	Industrialist              IndustrialistConfig `mapstructure:"industrialist"`
	Reaver                     ReaverConfig        `mapstructure:"reaver"`
	VaultKeeper                VaultKeeperConfig   `mapstructure:"vault_keeper"`
}

// WarConfig holds war scoring settings.
type WarConfig struct {
	// MaxPoints is the point pool split between the two sides per category.
	MaxPoints int `mapstructure:"max_points"`
}

// BalanceConfig groups every game balance knob.
type BalanceConfig struct {
	Power     PowerConfig     `mapstructure:"power"`
	Income    IncomeConfig    `mapstructure:"income"`
	Turn      TurnConfig      `mapstructure:"turn"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Espionage EspionageConfig `mapstructure:"espionage"`
	Costs     CostConfig      `mapstructure:"costs"`
	NPC       NPCConfig       `mapstructure:"npc"`
	War       WarConfig       `mapstructure:"war"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Balance   BalanceConfig   `mapstructure:"game_balance"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScheduler(c.Scheduler); err != nil {
		errs = append(errs, err.Error())
	}
	if err := c.Balance.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateScheduler(s SchedulerConfig) error {
	var errs []string
	if s.TurnInterval <= 0 {
		errs = append(errs, "scheduler.turn_interval must be > 0")
	}
	if s.NPCInterval <= 0 {
		errs = append(errs, "scheduler.npc_interval must be > 0")
	}
	if s.WarInterval <= 0 {
		errs = append(errs, "scheduler.war_interval must be > 0")
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, "scheduler.shutdown_timeout must be > 0")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the game balance invariants the engine relies on.
//
// Postcondition: Returns nil iff every constraint holds.
func (b BalanceConfig) Validate() error {
	var errs []string
	if b.Turn.BatchSize < 1 {
		errs = append(errs, fmt.Sprintf("game_balance.turn.batch_size must be >= 1, got %d", b.Turn.BatchSize))
	}
	if b.Turn.InterestRate < 0 || b.Turn.AllianceInterestRate < 0 {
		errs = append(errs, "game_balance.turn interest rates must not be negative")
	}
	if b.Turn.MaxAttackTurns < 0 || b.Turn.MaxSpyTurns < 0 || b.Turn.MaxDepositCharges < 0 {
		errs = append(errs, "game_balance.turn maxima must not be negative")
	}
	if b.Battle.MaxLossPercent <= 0 || b.Battle.MaxLossPercent >= 1 {
		errs = append(errs, fmt.Sprintf("game_balance.battle.max_loss_percent must be in (0, 1), got %v", b.Battle.MaxLossPercent))
	}
	for name, v := range map[string]float64{
		"loser_loss_percent":     b.Battle.LoserLossPercent,
		"winner_loss_percent":    b.Battle.WinnerLossPercent,
		"stalemate_loss_percent": b.Battle.StalemateLossPercent,
		"base_plunder_percent":   b.Battle.BasePlunderPercent,
	} {
		if v < 0 || math.IsNaN(v) {
			errs = append(errs, fmt.Sprintf("game_balance.battle.%s must be >= 0, got %v", name, v))
		}
	}
	if b.Battle.StalemateMargin < 0 {
		errs = append(errs, "game_balance.battle.stalemate_margin must be >= 0")
	}
	if b.Battle.MaxPlunderPercent < 0 || b.Battle.MaxPlunderPercent > 1 {
		errs = append(errs, fmt.Sprintf("game_balance.battle.max_plunder_percent must be in [0, 1], got %v", b.Battle.MaxPlunderPercent))
	}
	if len(b.Battle.AttackTypes) == 0 {
		errs = append(errs, "game_balance.battle.attack_types must not be empty")
	}
	for name, at := range b.Battle.AttackTypes {
		if at.TurnCost < 1 {
			errs = append(errs, fmt.Sprintf("game_balance.battle.attack_types.%s.turn_cost must be >= 1", name))
		}
	}
	if b.Espionage.TurnCost < 1 {
		errs = append(errs, "game_balance.espionage.turn_cost must be >= 1")
	}
	if b.Espionage.FailedSpyLossPercent < 0 || b.Espionage.FailedSpyLossPercent >= 1 {
		errs = append(errs, "game_balance.espionage.failed_spy_loss_percent must be in [0, 1)")
	}
	if b.Costs.MaxDepositPercent < 0 || b.Costs.MaxDepositPercent > 1 {
		errs = append(errs, "game_balance.costs.max_deposit_percent must be in [0, 1]")
	}
	if _, ok := b.Battle.AttackTypes[b.NPC.Reaver.AttackType]; !ok && len(b.Battle.AttackTypes) > 0 {
		errs = append(errs, fmt.Sprintf("game_balance.npc.reaver.attack_type %q is not a configured attack type", b.NPC.Reaver.AttackType))
	}
	if b.NPC.AgentsPerSecond <= 0 {
		errs = append(errs, "game_balance.npc.agents_per_second must be > 0")
	}
	if b.War.MaxPoints < 1 {
		errs = append(errs, fmt.Sprintf("game_balance.war.max_points must be >= 1, got %d", b.War.MaxPoints))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with DOMINION_ prefix
	v.SetEnvPrefix("DOMINION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration produced by the defaults alone.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("config.Default: " + err.Error())
	}
	return cfg
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dominion")
	v.SetDefault("database.password", "dominion")
	v.SetDefault("database.name", "dominion")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.turn_interval", "10m")
	v.SetDefault("scheduler.npc_interval", "30m")
	v.SetDefault("scheduler.war_interval", "5m")
	v.SetDefault("scheduler.edicts_dir", "content/edicts")
	v.SetDefault("scheduler.shutdown_timeout", "30s")

	setBalanceDefaults(v)
}

func setBalanceDefaults(v *viper.Viper) {
	v.SetDefault("game_balance.power.offense_per_soldier", 10)
	v.SetDefault("game_balance.power.defense_per_guard", 10)
	v.SetDefault("game_balance.power.spy_per_spy", 10)
	v.SetDefault("game_balance.power.sentry_per_sentry", 10)
	v.SetDefault("game_balance.power.strength_percent", 0.01)
	v.SetDefault("game_balance.power.constitution_percent", 0.01)
	v.SetDefault("game_balance.power.dexterity_percent", 0.01)
	v.SetDefault("game_balance.power.wealth_percent", 0.01)
	v.SetDefault("game_balance.power.offense_structure_percent", 0.1)
	v.SetDefault("game_balance.power.fortification_percent", 0.1)
	v.SetDefault("game_balance.power.spy_structure_percent", 0.1)
	v.SetDefault("game_balance.power.sentry_structure_percent", 0.1)
	v.SetDefault("game_balance.power.armory_percent", 0.05)

	v.SetDefault("game_balance.income.credits_per_economy_level", 1000)
	v.SetDefault("game_balance.income.credits_per_worker", 5)
	v.SetDefault("game_balance.income.citizens_per_population_level", 1)
	v.SetDefault("game_balance.income.dark_matter_per_mining_level", 10)
	v.SetDefault("game_balance.income.research_per_research_level", 5)

	v.SetDefault("game_balance.turn.interest_rate", 0.00005)
	v.SetDefault("game_balance.turn.max_attack_turns", 50)
	v.SetDefault("game_balance.turn.max_spy_turns", 50)
	v.SetDefault("game_balance.turn.max_deposit_charges", 4)
	v.SetDefault("game_balance.turn.attack_turn_regen", 1)
	v.SetDefault("game_balance.turn.spy_turn_regen", 1)
	v.SetDefault("game_balance.turn.deposit_charge_regen", 1)
	v.SetDefault("game_balance.turn.batch_size", 500)
	v.SetDefault("game_balance.turn.alliance_interest_rate", 0.0001)
	v.SetDefault("game_balance.turn.alliance_dues_per_member", 100)

	v.SetDefault("game_balance.battle.stalemate_margin", 0.05)
	v.SetDefault("game_balance.battle.loser_loss_percent", 0.02)
	v.SetDefault("game_balance.battle.winner_loss_percent", 0.02)
	v.SetDefault("game_balance.battle.stalemate_loss_percent", 0.01)
	v.SetDefault("game_balance.battle.max_loss_percent", 0.15)
	v.SetDefault("game_balance.battle.base_plunder_percent", 0.05)
	v.SetDefault("game_balance.battle.max_plunder_percent", 0.1)
	v.SetDefault("game_balance.battle.experience_per_kill", 2)
	v.SetDefault("game_balance.battle.experience_per_credit", 0.001)
	v.SetDefault("game_balance.battle.prestige_on_victory", 5)
	v.SetDefault("game_balance.battle.prestige_per_kill", 0.1)
	v.SetDefault("game_balance.battle.net_worth_per_credit", 0.01)
	v.SetDefault("game_balance.battle.attack_types", map[string]any{
		"plunder": map[string]any{"turn_cost": 1, "plunder": true, "prestige_multiplier": 1.0},
		"assault": map[string]any{"turn_cost": 2, "plunder": false, "prestige_multiplier": 2.0},
	})

	v.SetDefault("game_balance.espionage.turn_cost", 1)
	v.SetDefault("game_balance.espionage.success_margin", 0)
	v.SetDefault("game_balance.espionage.failed_spy_loss_percent", 0.05)
	v.SetDefault("game_balance.espionage.experience_per_mission", 10)

	v.SetDefault("game_balance.costs.structures", map[string]any{
		"economy":       map[string]any{"base": 5000, "growth": 1.25},
		"population":    map[string]any{"base": 5000, "growth": 1.25},
		"mining":        map[string]any{"base": 8000, "growth": 1.3},
		"research":      map[string]any{"base": 10000, "growth": 1.3},
		"armory":        map[string]any{"base": 10000, "growth": 1.35},
		"offense":       map[string]any{"base": 12000, "growth": 1.35},
		"fortification": map[string]any{"base": 12000, "growth": 1.35},
		"spy":           map[string]any{"base": 9000, "growth": 1.3},
		"sentry":        map[string]any{"base": 9000, "growth": 1.3},
	})
	v.SetDefault("game_balance.costs.units", map[string]any{
		"worker":  100,
		"soldier": 250,
		"guard":   250,
		"spy":     400,
		"sentry":  400,
	})
	v.SetDefault("game_balance.costs.citizen_crystal_cost", 2)
	v.SetDefault("game_balance.costs.crystal_credit_cost", 500)
	v.SetDefault("game_balance.costs.charisma_discount_percent", 0.005)
	v.SetDefault("game_balance.costs.max_charisma_discount", 0.25)
	v.SetDefault("game_balance.costs.max_deposit_percent", 0.8)

	v.SetDefault("game_balance.npc.agents_per_second", 20)
	v.SetDefault("game_balance.npc.burst", 5)
	v.SetDefault("game_balance.npc.candidate_pool_size", 25)
	v.SetDefault("game_balance.npc.infrastructure_floor", 5)
	v.SetDefault("game_balance.npc.credit_reserve", 10000)
	v.SetDefault("game_balance.npc.citizen_purchase_chance", 25)
	v.SetDefault("game_balance.npc.citizen_purchase_batch", 100)
	v.SetDefault("game_balance.npc.crystal_purchase_chance", 20)
	v.SetDefault("game_balance.npc.crystal_purchase_credit_floor", 500000)
	v.SetDefault("game_balance.npc.crystal_purchase_batch", 50)
	v.SetDefault("game_balance.npc.industrialist.worker_target", 5000)
	v.SetDefault("game_balance.npc.industrialist.structure_target", 10)
	v.SetDefault("game_balance.npc.industrialist.critical_guards", 100)
	v.SetDefault("game_balance.npc.reaver.soldier_cap", 20000)
	v.SetDefault("game_balance.npc.reaver.attack_type", "plunder")
	v.SetDefault("game_balance.npc.vault_keeper.guard_batch", 50)
	v.SetDefault("game_balance.npc.vault_keeper.sentry_batch", 25)
	v.SetDefault("game_balance.npc.vault_keeper.research_chance", 30)

	v.SetDefault("game_balance.war.max_points", 20)
}
