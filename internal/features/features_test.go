package features

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/mode"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

// coast is a ten-cell row: cell 0 is sea, cells 1–5 belong to a Minoan
// state and cells 6–9 to a Roman one.
func coast() *world.Snapshot {
	snap := world.NewSnapshot(100, 10)
	for i := 0; i < 10; i++ {
		c := world.Cell{ID: i, Height: 30, Biome: world.BiomeGrass, X: float64(i * 10), Y: 5}
		if i == 0 {
			c.Height, c.Biome = 10, world.BiomeMarine
		}
		if i > 0 {
			c.Neighbors = append(c.Neighbors, i-1)
		}
		if i < 9 {
			c.Neighbors = append(c.Neighbors, i+1)
		}
		switch {
		case i >= 1 && i <= 5:
			c.State, c.Culture, c.Province = 1, 1, 1
		case i >= 6:
			c.State, c.Culture, c.Province = 2, 2, 2
		}
		snap.Cells = append(snap.Cells, c)
	}
	snap.Cells[1].Harbor = 1

	snap.Cultures = append(snap.Cultures, world.Culture{ID: 1, Name: "Minoan"}, world.Culture{ID: 2, Name: "Roman"})
	snap.States = append(snap.States,
		world.State{ID: 1, Name: "Keftiu", Culture: 1, Capital: 1, Cells: 5, Area: 5},
		world.State{ID: 2, Name: "Latium", Culture: 2, Capital: 2, Cells: 4, Area: 4},
	)
	snap.Provinces = append(snap.Provinces,
		world.Province{ID: 1, Name: "Knossia", State: 1},
		world.Province{ID: 2, Name: "Alba", State: 2},
	)
	snap.Burgs = append(snap.Burgs,
		world.Burg{ID: 1, Name: "Knossos", Cell: 1, X: 10, Y: 5, Population: 10, Capital: true, Port: true, State: 1, Culture: 1},
		world.Burg{ID: 2, Name: "Roma", Cell: 7, X: 70, Y: 5, Population: 3, Capital: true, State: 2, Culture: 2},
	)
	snap.Cells[1].Burg = 1
	snap.Cells[7].Burg = 2
	return snap
}

func newContext(t *testing.T, snap *world.Snapshot, seed int64, civs ...string) Context {
	t.Helper()
	reg, err := civ.Load()
	require.NoError(t, err)
	idx, err := civ.NewCultureIndex(reg, snap.Cultures, nil, nil)
	require.NoError(t, err)
	return Context{
		Registry:  reg,
		Selection: mode.Selection{Enabled: true, Period: "bronzeAge", Civilizations: civs},
		Map:       snap,
		Cultures:  idx,
		Rand:      entropy.NewSeeded(seed),
		Year:      -1500,
	}
}

func TestGeneratorsRequireActiveMode(t *testing.T) {
	ctx := newContext(t, coast(), 1, "minoan")
	cat, err := LoadLandmarks()
	require.NoError(t, err)

	off := ctx
	off.Selection = mode.Selection{}
	_, err = GenerateLandmarks(off, cat)
	assert.ErrorIs(t, err, ErrModeInactive)
	_, err = GenerateFortifications(off)
	assert.ErrorIs(t, err, ErrModeInactive)
	_, _, err = GenerateTradeRoutes(off)
	assert.ErrorIs(t, err, ErrModeInactive)

	empty := ctx
	empty.Selection = mode.Selection{Enabled: true, Period: "bronzeAge"}
	_, err = GenerateReligiousSites(empty)
	assert.ErrorIs(t, err, ErrNoSelection)
	_, err = NewCatalog().GenerateFromFallenCivilizations(empty)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = CityWalls(ctx, "roman")
	assert.ErrorIs(t, err, ErrNoSelection, "roman is not selected")
}

func TestNavalBaseOnSinglePortCapital(t *testing.T) {
	ctx := newContext(t, coast(), 7, "minoan")
	markers, err := NavalBases(ctx, "minoan")
	require.NoError(t, err)
	require.Len(t, markers, 1)

	m := markers[0]
	assert.Equal(t, 1, m.Cell)
	assert.Equal(t, 1, m.Burg)
	assert.Equal(t, "Knossos Naval Base", m.Name)
	assert.Equal(t, placement.FamilyFortification, m.Family)
	assert.Equal(t, "Harbor complex\nKnossos Naval Base", m.Note)
	assert.Equal(t, "A Harbor complex of the Minoan civilization.", m.Legend)
}

func TestCityWallsNeedLargeSettlements(t *testing.T) {
	ctx := newContext(t, coast(), 3, "roman")
	markers, err := CityWalls(ctx, "roman")
	require.NoError(t, err)
	assert.Empty(t, markers, "Roma is below the population floor")

	ctx.Map.Burgs[2].Population = 12
	markers, err = CityWalls(ctx, "roman")
	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, "Roma Walls", markers[0].Name)
}

func TestBorderFortsAndTowersUseRegionNames(t *testing.T) {
	ctx := newContext(t, coast(), 5, "roman")
	forts, err := BorderForts(ctx, "roman")
	require.NoError(t, err)
	require.Len(t, forts, 1, "one border cell gives one fort")
	assert.Equal(t, 6, forts[0].Cell)
	assert.Equal(t, "Alba Fort", forts[0].Name)

	ctx.Map.Cells[8].Height = 70
	towers, err := WatchTowers(ctx, "roman")
	require.NoError(t, err)
	require.Len(t, towers, 1)
	assert.Equal(t, 8, towers[0].Cell)
	assert.Equal(t, "Alba Tower", towers[0].Name)
}

func TestUnmatchedStatesAreSkipped(t *testing.T) {
	snap := coast()
	snap.Cultures[2].Name = "Zzyzx"
	ctx := newContext(t, snap, 1, "minoan")
	assert.Nil(t, ctx.CivOfState(2))
	assert.Empty(t, ctx.StatesOf("roman"))
	require.NotNil(t, ctx.CivOfState(1))
	assert.Equal(t, "minoan", ctx.CivOfState(1).ID)
}

func TestLandmarksNearSettlements(t *testing.T) {
	cat, err := LoadLandmarks()
	require.NoError(t, err)
	ctx := newContext(t, coast(), 11, "minoan")

	markers, err := GenerateLandmarks(ctx, cat)
	require.NoError(t, err)

	p := ctx.Registry.Civilization("minoan")
	require.Len(t, markers, len(p.Landmarks), "one settlement, every type eligible")
	for _, m := range markers {
		assert.True(t, p.HasLandmark(m.Type))
		spec, ok := cat.Spec(m.Type)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(m.Name, spec.Name), m.Name)
		assert.Equal(t, spec.DX, m.DX)
		assert.Equal(t, spec.DY, m.DY)
		d := math.Hypot(m.X-10, m.Y-5)
		assert.GreaterOrEqual(t, d, landmarkMinOffset-1e-9)
		assert.LessOrEqual(t, d, landmarkMaxOffset+1e-9)
	}
}

func TestLandmarkCatalogCoversProfiles(t *testing.T) {
	cat, err := LoadLandmarks()
	require.NoError(t, err)
	reg, err := civ.Load()
	require.NoError(t, err)
	assert.Empty(t, cat.Missing(reg))

	offsets := map[string][3]int{
		"pyramid": {0, 48, 14},
		"sphinx":  {0, 48, 14},
		"thermae": {0, 52, 13},
		"temple":  {0, 0, 14},
		"obelisk": {0, 0, 12},
	}
	for kind, want := range offsets {
		spec, ok := cat.Spec(kind)
		require.True(t, ok, kind)
		assert.Equal(t, want, [3]int{spec.DX, spec.DY, spec.PX}, kind)
	}

	_, err = ParseLandmarks([]byte("landmarks:\n  - name: Nameless\n"))
	assert.Error(t, err)
	_, err = ParseLandmarks([]byte("landmarks:\n  - type: a\n  - type: a\n"))
	assert.Error(t, err)
}

func TestReligiousSiteAtCapital(t *testing.T) {
	ctx := newContext(t, coast(), 9, "minoan")
	sites, err := GenerateReligiousSites(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 1)

	s := sites[0]
	p := ctx.Registry.Civilization("minoan")
	assert.Equal(t, p.Religion.Sites[0], s.SiteType)
	assert.Contains(t, p.Religion.Pantheon.Top(3).Names(), s.Deity)
	assert.Equal(t, SiteIcon(s.SiteType), s.Marker.Icon)
	assert.True(t, strings.HasPrefix(s.Marker.Note, s.Marker.Name+"\nDedicated to "+s.Deity))
	assert.GreaterOrEqual(t, s.Importance, 0.1)
	assert.LessOrEqual(t, s.Importance, 1.0)
}

func TestSiteImportance(t *testing.T) {
	assert.InDelta(t, 1.0, siteImportance(1, true, 0, 1), 1e-9)
	assert.InDelta(t, 0.7*0.75, siteImportance(1, false, 1, 2), 1e-9)
	assert.InDelta(t, 0.1, siteImportance(0, false, 3, 4), 1e-9)
	assert.Equal(t, defaultSiteIcon, SiteIcon("Unknown Shrine"))
}

func TestTradeRouteDistanceBands(t *testing.T) {
	snap := world.NewSnapshot(300, 10)
	for i := 0; i < 3; i++ {
		snap.Cells = append(snap.Cells, world.Cell{ID: i, Height: 30, X: float64(i * 50), Y: 0})
	}
	snap.Burgs = append(snap.Burgs,
		world.Burg{ID: 1, Name: "A", Cell: 0, X: 0, Population: 2, Capital: true, Port: true, State: 1},
		world.Burg{ID: 2, Name: "B", Cell: 1, X: 50, Population: 6, Port: true, State: 2},
		world.Burg{ID: 3, Name: "C", Cell: 2, X: 5, Population: 6, Port: true, State: 1},
	)
	ctx := Context{Map: snap, Rand: entropy.NewSeeded(1)}

	routes := routesFor(ctx, routeRules[0], 0)
	pairs := map[[2]int]bool{}
	for _, r := range routes {
		pairs[[2]int{r.From, r.To}] = true
		assert.Greater(t, r.Distance, 10.0)
		assert.Less(t, r.Distance, 200.0)
		assert.Greater(t, r.Importance, 0.3)
	}
	assert.True(t, pairs[[2]int{1, 2}])
	assert.False(t, pairs[[2]int{1, 3}], "5 units apart is too close")
	assert.True(t, pairs[[2]int{2, 3}])
}

func TestRouteImportance(t *testing.T) {
	a := &world.Burg{Population: 8, Capital: true, State: 1}
	b := &world.Burg{Population: 8, State: 2}
	assert.InDelta(t, 0.8*0.4+0.2+0.3, routeImportance(a, b, 0), 1e-9)
	assert.Equal(t, 1.0, routeImportance(a, b, 0.5))
}

func TestGeneratedWorldIsDeterministic(t *testing.T) {
	cfg := world.SmallTestConfig()
	cfg.Cultures = []world.CultureSeed{{Name: "Roman"}, {Name: "Greek"}, {Name: "Celtic"}}
	snap := world.Generate(cfg)

	run := func() ([]placement.Marker, []Route) {
		ctx := newContext(t, snap, 99, "roman", "greek", "celtic")
		forts, err := GenerateFortifications(ctx)
		require.NoError(t, err)
		routes, _, err := GenerateTradeRoutes(ctx)
		require.NoError(t, err)
		return forts, routes
	}
	f1, r1 := run()
	f2, r2 := run()
	assert.Equal(t, f1, f2)
	assert.Equal(t, r1, r2)
}

func TestCondition(t *testing.T) {
	assert.Equal(t, ConditionWellPreserved, Condition(499))
	assert.Equal(t, ConditionDamaged, Condition(500))
	assert.Equal(t, ConditionRuined, Condition(1000))
	assert.Equal(t, ConditionBarelyVisible, Condition(1500))
}

func TestCatalogGenerateSites(t *testing.T) {
	snap := world.Generate(world.SmallTestConfig())
	ctx := Context{Map: snap, Rand: entropy.NewSeeded(4), Year: 100}

	cat := NewCatalog()
	sites := cat.GenerateSites(ctx, 25)
	require.NotEmpty(t, sites)
	for _, s := range sites {
		st, ok := SiteTypeByKey(s.Type)
		require.True(t, ok)
		assert.False(t, snap.Cells[s.Cell].IsWater())
		assert.GreaterOrEqual(t, s.Age, st.MinAge)
		assert.LessOrEqual(t, s.Age, 2*st.MinAge)
		assert.Equal(t, 100-s.Age, s.FoundedYear)
		assert.Equal(t, Condition(s.Age), s.Condition)
		assert.Empty(t, s.Civilization, "historical mode is off")
		if st.OldCity {
			assert.NotZero(t, snap.Cells[s.Cell].Burg)
		}
	}

	stats := cat.Statistics()
	assert.Equal(t, len(sites), stats.Total)
	assert.Equal(t, stats.Total, stats.Major+stats.Minor)
	assert.Len(t, cat.Markers(), len(sites))

	require.True(t, cat.Discover(sites[0].ID))
	assert.False(t, cat.Discover(-1))
	assert.Equal(t, 1, cat.Statistics().Discovered)

	restored := NewCatalog()
	restored.Import(cat.Export())
	assert.Equal(t, cat.Sites(), restored.Sites())
	more := restored.GenerateSites(ctx, 1)
	if len(more) == 1 {
		assert.Equal(t, len(sites), more[0].ID)
	}

	cat.Clear()
	assert.Zero(t, cat.Statistics().Total)
}

func TestGenerateSiteWithOptions(t *testing.T) {
	ctx := newContext(t, coast(), 6, "minoan")
	cat := NewCatalog()

	cell := 3
	s, err := cat.GenerateSite(ctx, "burialMound", SiteOptions{Cell: &cell, Age: 1200, Artifacts: 4, Discovered: true})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Cell)
	assert.Equal(t, 30.0, s.X)
	assert.Equal(t, 1200, s.Age)
	assert.Equal(t, -1500-1200, s.FoundedYear)
	assert.Equal(t, ConditionRuined, s.Condition)
	assert.Equal(t, 4, s.Artifacts)
	assert.True(t, s.Discovered)
	assert.Equal(t, "minoan", s.Civilization, "drawn from the selection")

	s, err = cat.GenerateSite(ctx, "ancientPalace", SiteOptions{Civilization: "roman"})
	require.NoError(t, err)
	assert.Contains(t, []int{1, 7}, s.Cell, "palaces need a capital")
	assert.Equal(t, "roman", s.Civilization)
	assert.False(t, s.Discovered)
	assert.Equal(t, 1, s.ID)

	_, err = cat.GenerateSite(ctx, "moonBase", SiteOptions{})
	assert.ErrorIs(t, err, ErrUnknownSiteType)
	_, err = cat.GenerateSite(ctx, "pyramid", SiteOptions{})
	assert.ErrorIs(t, err, ErrNoSiteLocation)
	missing := 99
	_, err = cat.GenerateSite(ctx, "burialMound", SiteOptions{Cell: &missing})
	assert.Error(t, err)
	_, err = cat.GenerateSite(ctx, "burialMound", SiteOptions{Civilization: "atlantean"})
	assert.Error(t, err)
	assert.Len(t, cat.Sites(), 2)
}

func TestFallenCivilizationsAreAttributed(t *testing.T) {
	cfg := world.SmallTestConfig()
	cfg.Cultures = []world.CultureSeed{{Name: "Roman"}, {Name: "Greek"}, {Name: "Celtic"}}
	ctx := newContext(t, world.Generate(cfg), 12, "celtic")

	cat := NewCatalog()
	sites, err := cat.GenerateFromFallenCivilizations(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(sites), 5)
	for _, s := range sites {
		assert.Equal(t, "celtic", s.Civilization)
		assert.Equal(t, "ancientRuins", s.Type)
	}
	assert.Len(t, cat.ByCivilization("celtic"), len(sites))
}
