package power_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dominion/internal/config"
	"github.com/cory-johannsen/dominion/internal/game/economy"
	"github.com/cory-johannsen/dominion/internal/game/edict"
	"github.com/cory-johannsen/dominion/internal/game/power"
)

func testCalculator() *power.Calculator {
	reg := edict.NewRegistry()
	reg.Register(&edict.Definition{
		Key:  "prime_directive",
		Name: "Prime Directive",
		Effects: map[string]float64{
			edict.EffectPrimeDirectiveDefense: 0.5,
			edict.EffectBlocksAttacking:       1,
		},
	})
	reg.Register(&edict.Definition{
		Key:     "safehouse",
		Name:    "Safehouse",
		Effects: map[string]float64{edict.EffectCitizenGenerationModifier: 0.5},
	})
	reg.Register(&edict.Definition{
		Key:     "war_economy",
		Name:    "War Economy",
		Effects: map[string]float64{edict.EffectOffenseBonus: 0.1, "future_effect": 3},
	})
	return power.NewCalculator(config.Default().Balance, reg)
}

func TestOffense_BaseOnly(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{UserID: 1, Resources: economy.Resources{Soldiers: 1000}}
	b := c.Offense(p)
	assert.Equal(t, int64(10000), b.Total)
	assert.Equal(t, 10000.0, b.Base)
	assert.Equal(t, 0.0, b.PercentTotal())
}

func TestOffense_PercentagesSummedBeforeMultiplying(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		UserID:     1,
		AllianceID: 7,
		Alliance:   &economy.AllianceBonuses{OffensePercent: 0.05},
		Resources:  economy.Resources{Soldiers: 100},
		Stats:      economy.Stats{Strength: 10},
		Structures: economy.Structures{economy.StructureOffense: 2},
		Edicts:     []edict.Active{{Key: "war_economy"}},
	}
	b := c.Offense(p)
	// 1000 * (1 + 0.10 + 0.20 + 0.05 + 0.10)
	assert.InDelta(t, 0.45, b.PercentTotal(), 1e-9)
	assert.Equal(t, int64(1450), b.Total)
}

func TestDefense_PrimeDirectiveBonus(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		Resources: economy.Resources{Guards: 100},
		Edicts:    []edict.Active{{Key: "prime_directive"}},
	}
	assert.Equal(t, int64(1500), c.Defense(p).Total)
}

func TestAllianceBonusIgnoredWithoutAllianceID(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		Alliance:  &economy.AllianceBonuses{DefensePercent: 1},
		Resources: economy.Resources{Guards: 10},
	}
	assert.Equal(t, int64(100), c.Defense(p).Total)
}

func TestUnknownEdictIsNoop(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		Resources: economy.Resources{Spies: 10, Sentries: 10},
		Edicts:    []edict.Active{{Key: "does_not_exist"}},
	}
	assert.Equal(t, int64(100), c.Spy(p).Total)
	assert.Equal(t, int64(100), c.Sentry(p).Total)
}

func TestEquipment_FlatBonusScaledByArmory(t *testing.T) {
	c := testCalculator()
	loadout := economy.Loadout{}
	loadout.Equip(economy.UnitSoldier, economy.SlotWeapon, economy.Item{Key: "rifle", Power: 2})
	p := &power.Profile{
		Resources:  economy.Resources{Soldiers: 100},
		Structures: economy.Structures{economy.StructureArmory: 2},
		Loadout:    loadout,
	}
	b := c.Offense(p)
	// base 1000, equipment 2*100*(1+0.10) = 220
	assert.InDelta(t, 220.0, b.Equipment, 1e-9)
	assert.Equal(t, int64(1220), b.Total)
}

func TestNegativePercentsFloorAtZero(t *testing.T) {
	reg := edict.NewRegistry()
	reg.Register(&edict.Definition{Key: "curse", Name: "Curse", Effects: map[string]float64{edict.EffectOffenseBonus: -5}})
	c := power.NewCalculator(config.Default().Balance, reg)
	p := &power.Profile{Resources: economy.Resources{Soldiers: 10}, Edicts: []edict.Active{{Key: "curse"}}}
	assert.Equal(t, int64(0), c.Offense(p).Total)
}

func TestIncome_EconomyAndPopulation(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		Structures: economy.Structures{
			economy.StructureEconomy:    10,
			economy.StructurePopulation: 10,
			economy.StructureMining:     3,
			economy.StructureResearch:   2,
		},
	}
	in := c.Income(p)
	assert.Equal(t, int64(10000), in.Credits)
	assert.Equal(t, int64(10), in.Citizens)
	assert.Equal(t, int64(30), in.DarkMatter)
	assert.Equal(t, int64(10), in.ResearchData)
}

func TestIncome_CitizenModifierHalves(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		Structures: economy.Structures{economy.StructurePopulation: 11},
		Edicts:     []edict.Active{{Key: "safehouse"}},
	}
	in := c.Income(p)
	assert.Equal(t, 0.5, in.CitizenModifier)
	assert.Equal(t, int64(5), in.Citizens)
}

func TestIncome_AllianceBonuses(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		AllianceID: 3,
		Alliance:   &economy.AllianceBonuses{IncomePercent: 0.1, CreditsFlat: 50, CitizensFlat: 2},
		Resources:  economy.Resources{Workers: 100},
		Stats:      economy.Stats{Wealth: 5},
		Structures: economy.Structures{economy.StructureEconomy: 1, economy.StructurePopulation: 1},
	}
	in := c.Income(p)
	// (1000 + 500) * 1.15 + 50
	assert.Equal(t, int64(1775), in.Credits)
	assert.Equal(t, int64(3), in.Citizens)
}

func TestIncome_AlliancePercentScalesCitizenGrowth(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{
		AllianceID: 4,
		Alliance:   &economy.AllianceBonuses{IncomePercent: 0.5, CitizensFlat: 1},
		Structures: economy.Structures{economy.StructurePopulation: 10},
	}
	assert.Equal(t, int64(16), c.Income(p).Citizens)

	p.Edicts = []edict.Active{{Key: "safehouse"}}
	assert.Equal(t, int64(8), c.Income(p).Citizens)

	p.AllianceID = 0
	assert.Equal(t, int64(5), c.Income(p).Citizens)
}

func TestSummarize(t *testing.T) {
	c := testCalculator()
	p := &power.Profile{Resources: economy.Resources{Soldiers: 1, Guards: 2, Spies: 3, Sentries: 4}}
	s := c.Summarize(p)
	assert.Equal(t, int64(10), s.Offense.Total)
	assert.Equal(t, int64(20), s.Defense.Total)
	assert.Equal(t, int64(30), s.Spy.Total)
	assert.Equal(t, int64(40), s.Sentry.Total)
}

// With no bonuses of any kind, offense is exactly units * per-unit power.
func TestOffense_Property_Additivity(t *testing.T) {
	c := testCalculator()
	per := config.Default().Balance.Power.OffensePerSoldier
	rapid.Check(t, func(rt *rapid.T) {
		soldiers := rapid.Int64Range(0, 1e12).Draw(rt, "soldiers")
		p := &power.Profile{Resources: economy.Resources{Soldiers: soldiers}}
		assert.Equal(rt, int64(float64(soldiers)*per), c.Offense(p).Total)
	})
}

func TestCombat_Property_TotalMatchesBreakdown(t *testing.T) {
	c := testCalculator()
	rapid.Check(t, func(rt *rapid.T) {
		p := &power.Profile{
			Resources:  economy.Resources{Guards: rapid.Int64Range(0, 1e7).Draw(rt, "guards")},
			Stats:      economy.Stats{Constitution: rapid.Int64Range(0, 200).Draw(rt, "con")},
			Structures: economy.Structures{economy.StructureFortification: rapid.IntRange(0, 40).Draw(rt, "fort")},
		}
		b := c.Defense(p)
		want := int64(math.Floor(b.Base*(1+b.PercentTotal()) + b.Equipment))
		assert.Equal(rt, want, b.Total)
		assert.GreaterOrEqual(rt, b.Total, int64(0))
	})
}

func TestProfile_ApplyDoesNotMutate(t *testing.T) {
	p := &power.Profile{
		Resources:  economy.Resources{Credits: 100},
		Structures: economy.Structures{economy.StructureEconomy: 1},
	}
	out := p.Apply(economy.Delta{
		Resources:  economy.Resources{Credits: 50},
		Structures: economy.Structures{economy.StructureEconomy: 1},
	})
	assert.Equal(t, int64(100), p.Resources.Credits)
	assert.Equal(t, 1, p.Structures.Level(economy.StructureEconomy))
	assert.Equal(t, int64(150), out.Resources.Credits)
	assert.Equal(t, 2, out.Structures.Level(economy.StructureEconomy))
}
