package civ

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/world"
)

func TestLoadReferenceData(t *testing.T) {
	reg, err := Load()
	require.NoError(t, err)

	assert.Len(t, reg.Civilizations(), 10)
	require.Len(t, reg.Periods(), 2)
	assert.Equal(t, "bronzeAge", reg.Periods()[0].ID)

	bronze := reg.Period("bronzeAge")
	require.NotNil(t, bronze)
	assert.Equal(t, -3300, bronze.StartYear)
	assert.Equal(t, -1200, bronze.EndYear)
	assert.Equal(t, []string{"sumerian", "egyptian", "minoan", "hittite", "mycenaean"}, bronze.Civilizations)

	roman := reg.Civilization("roman")
	require.NotNil(t, roman)
	assert.Equal(t, "classical", roman.Period)
	assert.Equal(t, 0.9, roman.Traits.Fortification)
	assert.Equal(t, 8, roman.NameBase)
	assert.True(t, roman.HasLandmark("aqueduct"))
	assert.True(t, roman.SupportsGovernment("republic"))
	assert.Nil(t, reg.Civilization("atlantis"))
}

func TestPantheonOrdered(t *testing.T) {
	reg := MustLoad()
	for _, p := range reg.Civilizations() {
		pan := p.Religion.Pantheon
		require.NotEmpty(t, pan, p.ID)
		for i := 1; i < len(pan); i++ {
			assert.GreaterOrEqual(t, pan[i-1].Importance, pan[i].Importance, p.ID)
		}
	}
	top := reg.Civilization("greek").Religion.Pantheon.Top(3)
	assert.Equal(t, []string{"Zeus", "Athena", "Apollo"}, top.Names())
}

func TestPantheonLookups(t *testing.T) {
	pan := MustLoad().Civilization("roman").Religion.Pantheon

	d, ok := pan.ByDomain("war")
	require.True(t, ok)
	assert.Equal(t, "Mars", d.Name)

	_, ok = pan.ByName("Zeus")
	assert.False(t, ok)

	src := entropy.NewSeeded(5)
	picked := pan.RandomN(src, 4)
	require.Len(t, picked, 4)
	seen := map[string]bool{}
	for _, p := range picked {
		assert.False(t, seen[p.Name], "duplicate deity %s", p.Name)
		seen[p.Name] = true
	}
	assert.Len(t, pan.RandomN(src, 100), len(pan))

	_, ok = Pantheon(nil).Random(src)
	assert.False(t, ok)
}

func TestFormatYear(t *testing.T) {
	assert.Equal(t, "753 BCE", FormatYear(-753))
	assert.Equal(t, "1 BCE/CE", FormatYear(0))
	assert.Equal(t, "476 CE", FormatYear(476))
}

func TestPeriodForYear(t *testing.T) {
	reg := MustLoad()
	assert.Equal(t, "bronzeAge", reg.PeriodForYear(-2000).ID)
	assert.Equal(t, "classical", reg.PeriodForYear(100).ID)
	assert.Nil(t, reg.PeriodForYear(-1000))
	assert.True(t, reg.InPeriod(-800, "classical"))
	assert.False(t, reg.InPeriod(-801, "classical"))
	assert.False(t, reg.InPeriod(0, "nope"))
}

func TestPeriodMidpoint(t *testing.T) {
	assert.Equal(t, -2250, (&Period{StartYear: -3300, EndYear: -1200}).Midpoint())
	assert.Equal(t, -150, (&Period{StartYear: -800, EndYear: 500}).Midpoint())
	assert.Equal(t, -2, (&Period{StartYear: -3, EndYear: 0}).Midpoint())
}

func TestNames(t *testing.T) {
	reg := MustLoad()
	src := entropy.NewSeeded(11)

	roman := reg.Civilization("roman")
	name := roman.LeaderName(src, Male)
	assert.Len(t, splitWords(name), 3, "roman leaders use tria nomina: %q", name)

	egypt := reg.Civilization("egyptian")
	assert.Contains(t, egypt.NamePatterns.LeaderNames["female"], egypt.LeaderName(src, Female))
	assert.NotEmpty(t, egypt.CityName(src))

	empty := &Profile{}
	assert.Equal(t, DefaultTitle, empty.Title(src))
	assert.Equal(t, DefaultDynasty, empty.DynastyName(src))

	full := egypt.FullRulerName(src, Male)
	assert.GreaterOrEqual(t, len(splitWords(full)), 2)
}

func TestUnitOptions(t *testing.T) {
	reg := MustLoad()

	all := reg.UnitOptions("classical", nil)
	assert.Len(t, all, len(reg.UnitsForPeriod("classical")))

	romanOnly := reg.UnitOptions("classical", []string{"roman"})
	var legion *Unit
	for i := range romanOnly {
		assert.True(t, romanOnly[i].AvailableTo("roman"))
		if romanOnly[i].Name == "legionnaires" {
			legion = &romanOnly[i]
		}
	}
	require.NotNil(t, legion)
	// 0.25 rural scaled by 0.45 / 0.2
	assert.InDelta(t, 0.5625, legion.Rural, 1e-9)

	assert.Empty(t, reg.UnitsForPeriod("ironAge"))
}

func TestPresets(t *testing.T) {
	reg := MustLoad()
	require.Len(t, reg.Presets(), 15)

	p := reg.Preset("persianGreekWars")
	require.NotNil(t, p)
	assert.Equal(t, "classical", p.Period)
	assert.Equal(t, []string{"persian", "greek"}, p.Civilizations)
	assert.Equal(t, -480, p.Year)
	assert.Equal(t, 15, p.States)
	assert.Equal(t, "Persian Wars", p.Era)
	assert.Nil(t, reg.Preset("atlantis"))

	bronze := reg.PresetsForPeriod("bronzeAge")
	assert.Len(t, bronze, 7)
	for _, p := range bronze {
		assert.Equal(t, "bronzeAge", p.Period)
	}

	cats := reg.PresetsByCategory()
	assert.Len(t, cats[CategoryBronzeAge], 6)
	assert.Len(t, cats[CategoryClassical], 6)
	assert.Equal(t, []string{"mediterraneanConflict", "persianGreekWars", "aegeanBronzeAge"}, cats[CategoryScenarios])
}

func TestPresetsMustNameTheirPeriod(t *testing.T) {
	fsys := fstest.MapFS{
		"periods.yaml":              {Data: []byte("periods:\n- id: ironAge\n  start_year: -1200\n  end_year: -500\n  civilizations: [dorian]\n")},
		"units.yaml":                {Data: []byte("units: {}\n")},
		"civilizations/dorian.yaml": {Data: []byte("id: dorian\nname: Dorian\nperiod: ironAge\n")},
		"presets.yaml":              {Data: []byte("presets:\n- id: bad\n  period: ironAge\n  civilizations: [roman]\n  states: 2\n")},
	}
	_, err := LoadFS(fsys)
	assert.ErrorContains(t, err, "roman")
}

func TestMissingTraitsDefault(t *testing.T) {
	fsys := fstest.MapFS{
		"periods.yaml":              {Data: []byte("periods:\n- id: ironAge\n  start_year: -1200\n  end_year: -500\n  civilizations: [dorian]\n")},
		"units.yaml":                {Data: []byte("units: {}\n")},
		"civilizations/dorian.yaml": {Data: []byte("id: dorian\nname: Dorian\nperiod: ironAge\ntraits:\n  fortification: 0\n  trade: 0.8\n")},
	}
	reg, err := LoadFS(fsys)
	require.NoError(t, err)

	p := reg.Civilization("dorian")
	require.NotNil(t, p)
	assert.Zero(t, p.Traits.Fortification)
	assert.Equal(t, 0.8, p.Traits.Trade)
	assert.Equal(t, DefaultTrait, p.Traits.MonumentBuilding)
	assert.Equal(t, DefaultTrait, p.Traits.Literacy)
}

func TestCultureIndex(t *testing.T) {
	reg := MustLoad()
	cultures := []world.Culture{
		{},
		{ID: 1, Name: "Roman"},
		{ID: 2, Name: "Greek"},
		{ID: 3, Name: "Romans"},
		{ID: 4, Name: "Akosan", Base: 42},
		{ID: 5, Name: "Pictish"},
		{ID: 6, Name: "Xyz", Base: 7},
	}

	idx, err := NewCultureIndex(reg, cultures, map[int]string{5: "celtic"}, nil)
	require.NoError(t, err)

	assert.Equal(t, Match{CultureID: 1, Culture: "Roman", CivID: "roman", Matched: true, Reason: MatchName}, idx.Lookup(1))
	assert.Equal(t, "greek", idx.Lookup(2).CivID)
	assert.Equal(t, MatchSimilar, idx.Lookup(3).Reason)
	assert.Equal(t, MatchOverride, idx.Lookup(5).Reason)

	// Base 42 and base 7 are shared by several civilizations.
	assert.False(t, idx.Lookup(4).Matched)
	assert.False(t, idx.Lookup(6).Matched)
	assert.False(t, idx.Lookup(99).Matched)
	assert.Len(t, idx.Unmatched(), 2)
	assert.Equal(t, []int{1, 3}, idx.CulturesOf("roman"))

	// Restricting candidates makes base 7 unique to the greeks.
	idx, err = NewCultureIndex(reg, cultures, nil, []string{"greek", "roman"})
	require.NoError(t, err)
	assert.Equal(t, Match{CultureID: 6, Culture: "Xyz", CivID: "greek", Matched: true, Reason: MatchNameBase}, idx.Lookup(6))

	_, err = NewCultureIndex(reg, cultures, map[int]string{1: "atlantis"}, nil)
	assert.Error(t, err)

	// Without the greek profile, "Greek" falls to the Mycenaean display name.
	idx, err = NewCultureIndex(reg, cultures, nil, []string{"mycenaean", "roman"})
	require.NoError(t, err)
	assert.Equal(t, "mycenaean", idx.Lookup(2).CivID)
}

func TestMatchCulturePriority(t *testing.T) {
	pool := []*Profile{
		{ID: "elder", Name: "Old Kingdom"},
		{ID: "kingdom", Name: "Middle Realm"},
		{ID: "younger", Name: "New Kingdom"},
		{ID: "isles", Name: "Sea Peoples"},
		{ID: "hill", Name: "Hill Peoples"},
	}

	p, reason := matchCulture(world.Culture{Name: "Kingdom"}, pool)
	require.NotNil(t, p)
	assert.Equal(t, "kingdom", p.ID)
	assert.Equal(t, MatchName, reason)

	p, _ = matchCulture(world.Culture{Name: "new kingdom"}, pool)
	require.NotNil(t, p)
	assert.Equal(t, "younger", p.ID)

	p, reason = matchCulture(world.Culture{Name: "Peoples"}, pool)
	assert.Nil(t, p)
	assert.Equal(t, MatchUnmatched, reason)

	p, _ = matchCulture(world.Culture{Name: "Realm"}, pool)
	require.NotNil(t, p)
	assert.Equal(t, "kingdom", p.ID)
}

func splitWords(s string) []string {
	var out []string
	word := ""
	for _, r := range s {
		if r == ' ' {
			if word != "" {
				out = append(out, word)
			}
			word = ""
			continue
		}
		word += string(r)
	}
	if word != "" {
		out = append(out, word)
	}
	return out
}
