package power

import (
	"math"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
)

// Kind identifies one of the four combat power categories.
type Kind string

const (
	KindOffense Kind = "offense"
	KindDefense Kind = "defense"
	KindSpy     Kind = "spy"
	KindSentry  Kind = "sentry"
)

// Breakdown is the itemised result of a combat power calculation.
//
// Invariant: Total == floor(Base * (1 + PercentTotal()) + Equipment), floored at 0.
type Breakdown struct {
	Kind             Kind
	Units            int64
	PerUnit          float64
	Base             float64
	AttributePercent float64
	StructurePercent float64
	AlliancePercent  float64
	EdictPercent     float64
	Equipment        float64
	Total            int64
}

// PercentTotal returns the summed percentage bonus.
func (b Breakdown) PercentTotal() float64 {
	return b.AttributePercent + b.StructurePercent + b.AlliancePercent + b.EdictPercent
}

// Income is the itemised per-turn production of a profile.
type Income struct {
	BaseCredits     int64
	IncomePercent   float64
	Credits         int64
	DarkMatter      int64
	ResearchData    int64
	BaseCitizens    int64
	CitizenModifier float64
	// CitizenPercent is the alliance income percent, which also scales growth.
	CitizenPercent float64
	Citizens       int64
}

// Calculator computes power breakdowns and income.
type Calculator struct {
	power  config.PowerConfig
	income config.IncomeConfig
	edicts *edict.Registry
}

// NewCalculator creates a Calculator.
//
// Precondition: edicts may be nil, in which case edicts contribute nothing.
func NewCalculator(balance config.BalanceConfig, edicts *edict.Registry) *Calculator {
	return &Calculator{power: balance.Power, income: balance.Income, edicts: edicts}
}

// Offense computes the attack power of p's soldiers.
func (c *Calculator) Offense(p *Profile) Breakdown {
	var alliance float64
	if p.HasAlliance() && p.Alliance != nil {
		alliance = p.Alliance.OffensePercent
	}
	return c.combat(p, KindOffense, economy.UnitSoldier, c.power.OffensePerSoldier,
		float64(p.Stats.Strength)*c.power.StrengthPercent,
		float64(p.Structures.Level(economy.StructureOffense))*c.power.OffenseStructurePercent,
		alliance,
		edict.Sum(c.edicts, p.Edicts, edict.EffectOffenseBonus),
	)
}

// Defense computes the defensive power of p's guards.
func (c *Calculator) Defense(p *Profile) Breakdown {
	var alliance float64
	if p.HasAlliance() && p.Alliance != nil {
		alliance = p.Alliance.DefensePercent
	}
	return c.combat(p, KindDefense, economy.UnitGuard, c.power.DefensePerGuard,
		float64(p.Stats.Constitution)*c.power.ConstitutionPercent,
		float64(p.Structures.Level(economy.StructureFortification))*c.power.FortificationPercent,
		alliance,
		edict.Sum(c.edicts, p.Edicts, edict.EffectDefenseBonus)+
			edict.Sum(c.edicts, p.Edicts, edict.EffectPrimeDirectiveDefense),
	)
}

// Spy computes the infiltration power of p's spies.
func (c *Calculator) Spy(p *Profile) Breakdown {
	var alliance float64
	if p.HasAlliance() && p.Alliance != nil {
		alliance = p.Alliance.SpyPercent
	}
	return c.combat(p, KindSpy, economy.UnitSpy, c.power.SpyPerSpy,
		float64(p.Stats.Dexterity)*c.power.DexterityPercent,
		float64(p.Structures.Level(economy.StructureSpy))*c.power.SpyStructurePercent,
		alliance,
		edict.Sum(c.edicts, p.Edicts, edict.EffectSpyBonus),
	)
}

// Sentry computes the counter-espionage power of p's sentries.
func (c *Calculator) Sentry(p *Profile) Breakdown {
	var alliance float64
	if p.HasAlliance() && p.Alliance != nil {
		alliance = p.Alliance.SentryPercent
	}
	return c.combat(p, KindSentry, economy.UnitSentry, c.power.SentryPerSentry,
		float64(p.Stats.Dexterity)*c.power.DexterityPercent,
		float64(p.Structures.Level(economy.StructureSentry))*c.power.SentryStructurePercent,
		alliance,
		edict.Sum(c.edicts, p.Edicts, edict.EffectSentryBonus),
	)
}

// combat applies total = floor(units*perUnit*(1+sum(percents)) + equipment).
// All percentages are summed before the single multiplication.
func (c *Calculator) combat(p *Profile, kind Kind, unit economy.Unit, perUnit, attr, structure, alliance, edicts float64) Breakdown {
	units := p.Resources.Units(unit)
	b := Breakdown{
		Kind:             kind,
		Units:            units,
		PerUnit:          perUnit,
		Base:             float64(units) * perUnit,
		AttributePercent: attr,
		StructurePercent: structure,
		AlliancePercent:  alliance,
		EdictPercent:     edicts,
	}
	if perItem := p.Loadout.PerUnitPower(unit); perItem != 0 {
		armory := float64(p.Structures.Level(economy.StructureArmory)) * c.power.ArmoryPercent
		b.Equipment = float64(perItem) * float64(units) * (1 + armory)
	}
	multiplier := 1 + b.PercentTotal()
	if multiplier < 0 {
		multiplier = 0
	}
	total := math.Floor(b.Base*multiplier + b.Equipment)
	if total > 0 {
		b.Total = int64(total)
	}
	return b
}

// Income computes the per-turn production of p. Bank interest is not included.
func (c *Calculator) Income(p *Profile) Income {
	in := Income{
		BaseCredits: int64(p.Structures.Level(economy.StructureEconomy))*c.income.CreditsPerEconomyLevel +
			p.Resources.Workers*c.income.CreditsPerWorker,
		IncomePercent: float64(p.Stats.Wealth)*c.power.WealthPercent +
			edict.Sum(c.edicts, p.Edicts, edict.EffectIncomeBonus),
		DarkMatter:      int64(p.Structures.Level(economy.StructureMining)) * c.income.DarkMatterPerMiningLevel,
		ResearchData:    int64(p.Structures.Level(economy.StructureResearch)) * c.income.ResearchPerResearchLevel,
		BaseCitizens:    int64(p.Structures.Level(economy.StructurePopulation)) * c.income.CitizensPerPopulationLevel,
		CitizenModifier: edict.Product(c.edicts, p.Edicts, edict.EffectCitizenGenerationModifier),
	}
	var creditsFlat, citizensFlat int64
	if p.HasAlliance() && p.Alliance != nil {
		in.IncomePercent += p.Alliance.IncomePercent
		in.CitizenPercent = p.Alliance.IncomePercent
		creditsFlat = p.Alliance.CreditsFlat
		citizensFlat = p.Alliance.CitizensFlat
	}

	multiplier := 1 + in.IncomePercent
	if multiplier < 0 {
		multiplier = 0
	}
	in.Credits = nonNegative(int64(math.Floor(float64(in.BaseCredits)*multiplier)) + creditsFlat)

	modifier := in.CitizenModifier * (1 + in.CitizenPercent)
	if modifier < 0 {
		modifier = 0
	}
	in.Citizens = nonNegative(int64(math.Floor(float64(in.BaseCitizens)*modifier)) + citizensFlat)
	return in
}

// Summary bundles every calculation for a profile.
type Summary struct {
	Offense Breakdown
	Defense Breakdown
	Spy     Breakdown
	Sentry  Breakdown
	Income  Income
}

// Summarize runs every calculation for p.
func (c *Calculator) Summarize(p *Profile) Summary {
	return Summary{
		Offense: c.Offense(p),
		Defense: c.Defense(p),
		Spy:     c.Spy(p),
		Sentry:  c.Sentry(p),
		Income:  c.Income(p),
	}
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
