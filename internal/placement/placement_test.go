package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/world"
)

// strip builds cells in a row, each linked to its left and right neighbor.
func strip(heights ...int) *world.Snapshot {
	snap := world.NewSnapshot(100, 10)
	for i, h := range heights {
		c := world.Cell{ID: i, Height: h, Biome: world.BiomeGrass, X: float64(i * 10), Y: 5}
		if i > 0 {
			c.Neighbors = append(c.Neighbors, i-1)
		}
		if i < len(heights)-1 {
			c.Neighbors = append(c.Neighbors, i+1)
		}
		snap.Cells = append(snap.Cells, c)
	}
	return snap
}

func TestRiverPredicateUsesNeighbors(t *testing.T) {
	snap := strip(30, 30, 30, 30)
	snap.Cells[1].River = 4

	spec := Spec{RequiresRiver: true}
	var cands []Candidate
	for i := range snap.Cells {
		cands = append(cands, Candidate{Cell: i})
	}

	got := Filter(snap, cands, spec)
	cells := make([]int, len(got))
	for i, c := range got {
		cells[i] = c.Cell
	}
	// Cell 3 is two hops from the river.
	assert.Equal(t, []int{0, 1, 2}, cells)
	for _, c := range got {
		assert.True(t, NearRiver(snap, c.Cell))
	}
}

func TestTerrainPredicates(t *testing.T) {
	snap := strip(10, 30, 30, 60, 30, 95)
	snap.Cells[2].Biome = world.BiomeColdDes

	assert.True(t, NearWater(snap, 1))
	assert.False(t, NearWater(snap, 2))
	assert.True(t, NearDesert(snap, 3))
	assert.False(t, NearDesert(snap, 4))
	assert.True(t, NearHighland(snap, 4))
	assert.False(t, IsHighland(&snap.Cells[5]), "95 is above the highland band")
	assert.False(t, NearRiver(snap, 99))
}

func TestFilterPopulationAndPort(t *testing.T) {
	snap := strip(30, 30)
	cands := []Candidate{
		{Cell: 0, Population: 2, Port: true},
		{Cell: 1, Population: 8},
	}
	assert.Len(t, Filter(snap, cands, Spec{MinPopulation: 5}), 1)
	got := Filter(snap, cands, Spec{RequiresPort: true})
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Cell)
	assert.Empty(t, Filter(snap, cands, Spec{RequiresPort: true, MinPopulation: 5}))
}

func TestBorderCell(t *testing.T) {
	snap := strip(30, 30, 30, 30)
	snap.Cells[0].State = 1
	snap.Cells[1].State = 1
	snap.Cells[2].State = 2
	snap.Cells[3].State = 0

	assert.False(t, IsBorderCell(snap, 0))
	assert.True(t, IsBorderCell(snap, 1))
	assert.True(t, IsBorderCell(snap, 2))
	assert.False(t, IsBorderCell(snap, 3), "neutral cells are never border cells")
}

func TestSampleWithoutReplacement(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	weight := func(v int) float64 { return float64(v) }

	for seed := int64(1); seed <= 20; seed++ {
		got := Sample(entropy.NewSeeded(seed), items, weight, 5, false)
		require.Len(t, got, 5)
		seen := map[int]bool{}
		for _, v := range got {
			assert.False(t, seen[v], "duplicate %d", v)
			seen[v] = true
		}
	}

	all := Sample(entropy.NewSeeded(3), items, weight, 50, false)
	assert.ElementsMatch(t, items, all)

	assert.Nil(t, Sample(entropy.NewSeeded(3), items, weight, 0, false))
	assert.Nil(t, Sample[int](entropy.NewSeeded(3), nil, weight, 2, false))
}

func TestSampleWithReplacement(t *testing.T) {
	got := Sample(entropy.NewSeeded(8), []string{"a", "b"}, func(string) float64 { return 1 }, 10, true)
	assert.Len(t, got, 10)
}

func TestSampleZeroWeights(t *testing.T) {
	items := []string{"zero", "one", "also-zero"}
	weight := func(s string) float64 {
		if s == "one" {
			return 1
		}
		return 0
	}
	for seed := int64(1); seed <= 50; seed++ {
		v, ok := SampleOne(entropy.NewSeeded(seed), items, weight)
		require.True(t, ok)
		assert.Equal(t, "one", v)
	}

	// Once the only positive weight is gone the first remaining item is taken.
	got := Sample(entropy.NewSeeded(1), items, weight, 3, false)
	assert.Equal(t, []string{"one", "zero", "also-zero"}, got)

	assert.Equal(t, 0, PickIndex(entropy.NewSeeded(1), []float64{0, 0, -1}))
	assert.Equal(t, -1, PickIndex(entropy.NewSeeded(1), nil))
}

func TestQuota(t *testing.T) {
	assert.Equal(t, 3, Quota(10, 0.3, 1, 1))
	assert.Equal(t, 1, Quota(1, 0.05, 1, 0.5))
	assert.Equal(t, 0, Quota(0, 1, 1, 1))
	assert.Equal(t, 0, Quota(10, 0, 1, 1))
	assert.Equal(t, 4, Quota(4, 2, 1, 1), "capped at the population")
}

func TestPipelineCountIsDeterministic(t *testing.T) {
	snap := strip(30, 30, 30, 30, 30, 30, 30, 30, 30, 30)
	var pop []Candidate
	for i := range snap.Cells {
		pop = append(pop, Candidate{Cell: i})
	}
	job := Job{Family: FamilyLandmark, Civ: "roman", Spec: Spec{Type: "forum", Name: "Forum", Rarity: 0.3}, Population: pop, Trait: 1}

	for seed := int64(1); seed <= 10; seed++ {
		markers := NewPipeline(snap, entropy.NewSeeded(seed)).Run(job)
		assert.Len(t, markers, 3)
		cells := map[int]bool{}
		for _, m := range markers {
			assert.False(t, cells[m.Cell])
			cells[m.Cell] = true
			assert.Equal(t, "Forum", m.Name)
			assert.Equal(t, snap.Cells[m.Cell].X, m.X)
		}
	}
}

func TestPipelineCountCappedByFilter(t *testing.T) {
	snap := strip(30, 30, 30, 30)
	snap.Cells[0].River = 1
	pop := []Candidate{{Cell: 0}, {Cell: 1}, {Cell: 2}, {Cell: 3}}
	job := Job{Spec: Spec{Rarity: 1, RequiresRiver: true}, Population: pop, Trait: 1}

	p := NewPipeline(snap, entropy.NewSeeded(1))
	assert.Equal(t, 4, p.Target(job))
	assert.Len(t, p.Run(job), 2)
}

func TestPipelineZeroTraitPlacesNothing(t *testing.T) {
	snap := strip(30, 30, 30, 30, 30, 30, 30, 30, 30, 30)
	var pop []Candidate
	for i := range snap.Cells {
		pop = append(pop, Candidate{Cell: i})
	}
	job := Job{Spec: Spec{Rarity: 0.5}, Population: pop}

	p := NewPipeline(snap, entropy.NewSeeded(1))
	assert.Zero(t, p.Target(job))
	assert.Empty(t, p.Run(job))

	job.Trait = 0.4
	assert.Equal(t, 2, p.Target(job))
	assert.Len(t, p.Run(job), 2)
}

func TestMarkerSet(t *testing.T) {
	set := NewMarkerSet()
	added := set.Add(
		Marker{Family: FamilyLandmark, Type: "forum", Civilization: "roman", Cell: 3},
		Marker{Family: FamilyFortification, Type: "city_walls", Civilization: "greek", Cell: 3},
	)
	assert.Equal(t, 0, added[0].ID)
	assert.Equal(t, 1, added[1].ID)
	assert.Equal(t, 2, set.Len())
	assert.Len(t, set.AtCell(3), 2)
	assert.Len(t, set.ByCivilization("roman"), 1)
	assert.Len(t, set.ByType("city_walls"), 1)
	assert.Equal(t, map[string]int{FamilyLandmark: 1, FamilyFortification: 1}, set.CountByFamily())

	restored := NewMarkerSet()
	restored.Restore(set.All())
	next := restored.Add(Marker{Type: "x"})
	assert.Equal(t, 2, next[0].ID)
}

func TestPreferenceFor(t *testing.T) {
	s := Spec{Preference: map[string]float64{"roman": 0.9}}
	assert.Equal(t, 0.9, s.PreferenceFor("roman"))
	assert.Equal(t, 1.0, s.PreferenceFor("celtic"))
	s.DefaultPreference = 0.4
	assert.Equal(t, 0.4, s.PreferenceFor("celtic"))
}
