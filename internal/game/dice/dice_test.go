package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dominion/internal/game/dice"
)

type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int { return f.v % n }

func TestChance_Bounds(t *testing.T) {
	src := fixedSource{v: 99}
	assert.False(t, dice.Chance(src, 0))
	assert.False(t, dice.Chance(src, -5))
	assert.True(t, dice.Chance(src, 100))
	assert.True(t, dice.Chance(fixedSource{v: 0}, 1))
	assert.False(t, dice.Chance(fixedSource{v: 1}, 1))
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSource_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		n := rapid.IntRange(1, 10000).Draw(rt, "n")
		v := dice.NewSeededSource(seed).Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestCryptoSource_Property_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		v := src.Intn(n)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, n)
	})
}

func TestSources_PanicOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(-1) })
}

func TestPick_SingleElementNeverDraws(t *testing.T) {
	assert.Equal(t, 0, dice.Pick(panicSource{}, 1))
}

func TestLoggedSource_DelegatesToWrapped(t *testing.T) {
	src := dice.NewLoggedSource(fixedSource{v: 7}, zaptest.NewLogger(t))
	assert.Equal(t, 7, src.Intn(10))
}

type panicSource struct{}

func (panicSource) Intn(int) int { panic("unexpected draw") }
