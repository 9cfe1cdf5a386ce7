package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvariants(t *testing.T) {
	snap := Generate(SmallTestConfig())

	require.NotEmpty(t, snap.Cells)
	for i, c := range snap.Cells {
		assert.Equal(t, i, c.ID)
		assert.LessOrEqual(t, len(c.Neighbors), 6)
		assert.GreaterOrEqual(t, c.Height, 0)
		assert.LessOrEqual(t, c.Height, 100)
		if c.IsWater() {
			assert.Equal(t, BiomeMarine, c.Biome)
			assert.Zero(t, c.State)
		}
	}

	capitals := 0
	for _, b := range snap.ActiveBurgs() {
		cell := snap.Cell(b.Cell)
		require.NotNil(t, cell, "burg %d references a missing cell", b.ID)
		assert.Equal(t, b.ID, cell.Burg)
		assert.False(t, cell.IsWater())
		if b.Capital {
			capitals++
			assert.NotZero(t, b.State)
			assert.Equal(t, b.ID, snap.States[b.State].Capital)
		}
	}
	assert.Equal(t, len(snap.States)-1, capitals)
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())
	require.Equal(t, len(a.Cells), len(b.Cells))
	assert.Equal(t, a.Burgs, b.Burgs)
	assert.Equal(t, a.States, b.States)
}

func TestGenerateCultureSeeds(t *testing.T) {
	cfg := SmallTestConfig()
	cfg.Cultures = []CultureSeed{{Name: "Roman", Base: 8}, {Name: "Greek", Base: 7}}
	snap := Generate(cfg)

	names := map[string]int{}
	for _, c := range snap.Cultures[1:] {
		names[c.Name] = c.Base
	}
	assert.Equal(t, 8, names["Roman"])
	for _, st := range snap.ActiveStates() {
		assert.NotZero(t, st.Culture)
	}
}

func TestStateTally(t *testing.T) {
	snap := Generate(SmallTestConfig())
	for _, st := range snap.ActiveStates() {
		assert.Equal(t, len(snap.CellsOfState(st.ID)), st.Cells)
		for _, n := range st.Neighbors {
			assert.NotEqual(t, st.ID, n)
		}
	}
}

func TestDistanceAndLine(t *testing.T) {
	a := HexCoord{Q: 0, R: 0}
	b := HexCoord{Q: 3, R: -1}
	assert.Equal(t, 3, Distance(a, b))

	line := Line(a, b)
	require.Len(t, line, 4)
	assert.Equal(t, a, line[0])
	assert.Equal(t, b, line[3])
	for i := 1; i < len(line); i++ {
		assert.Equal(t, 1, Distance(line[i-1], line[i]))
	}
}

func TestDeriveBiome(t *testing.T) {
	assert.Equal(t, BiomeMarine, deriveBiome(10, 0.5, 0.5))
	assert.Equal(t, BiomeHotDes, deriveBiome(30, 0.1, 0.8))
	assert.Equal(t, BiomeColdDes, deriveBiome(30, 0.1, 0.4))
	assert.Equal(t, BiomeGlacier, deriveBiome(90, 0.5, 0.1))
}

func TestHeightFromElevation(t *testing.T) {
	assert.Less(t, heightFromElevation(0.1, 0.3), SeaLevel)
	assert.GreaterOrEqual(t, heightFromElevation(0.3, 0.3), SeaLevel)
	assert.Equal(t, 100, heightFromElevation(1.0, 0.3))
}
