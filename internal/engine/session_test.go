package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/history"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

func classicalWorld() *world.Snapshot {
	cfg := world.SmallTestConfig()
	cfg.Cultures = []world.CultureSeed{{Name: "Roman"}, {Name: "Greek"}, {Name: "Celtic"}}
	return world.Generate(cfg)
}

func newSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := NewSession(civ.MustLoad(), classicalWorld(), Options{Seed: seed, Year: -300})
	require.NoError(t, err)
	return s
}

func TestGenerateInFantasyModeOnlyPlacesSites(t *testing.T) {
	s := newSession(t, 1)
	sum, err := s.Generate(5, true)
	require.NoError(t, err)

	assert.Zero(t, s.Markers.Len())
	assert.Empty(t, s.Routes())
	assert.Zero(t, sum.Dynasties)
	assert.Contains(t, sum.Skipped, placement.FamilyLandmark)
	assert.Contains(t, sum.Skipped, "fallen civilizations")
	for _, site := range s.Sites.Sites() {
		assert.Empty(t, site.Civilization)
	}
	assert.Len(t, s.Timeline.Years(), 1)
}

func TestGenerateHistorical(t *testing.T) {
	s := newSession(t, 2)
	require.True(t, s.Mode.Enable("classical"))
	s.Mode.SelectCivilizations([]string{"roman", "greek", "celtic"})

	sum, err := s.Generate(4, true)
	require.NoError(t, err)
	assert.Empty(t, sum.Skipped)
	assert.Empty(t, sum.Unmatched)
	assert.Equal(t, s.Markers.Len(), sum.Markers[placement.FamilyLandmark]+
		sum.Markers[placement.FamilyFortification]+
		sum.Markers[placement.FamilyReligious]+
		sum.Markers[placement.FamilyTrade])

	for _, m := range s.Markers.All() {
		c := s.Map.Cell(m.Cell)
		require.NotNil(t, c)
		assert.False(t, c.IsWater() && m.Family == placement.FamilyLandmark, "landmark %s on water", m.Name)
		if m.Civilization != "" {
			assert.Contains(t, []string{"roman", "greek", "celtic"}, m.Civilization)
		}
	}

	for _, st := range s.Map.ActiveStates() {
		assert.True(t, s.Dynasties.Active(st.ID), "state %s has no dynasty", st.Name)
		gov, ok := s.Government(st.ID)
		require.True(t, ok)
		assert.NotEmpty(t, gov.Government)
	}
	assert.Equal(t, len(s.Map.ActiveStates()), sum.Dynasties)

	// A second pass replaces the markers and keeps the founded houses.
	first := sum.Markers
	firstLen := s.Markers.Len()
	sum, err = s.Generate(0, false)
	require.NoError(t, err)
	assert.Zero(t, sum.Dynasties)
	assert.Less(t, s.Markers.Len(), 2*firstLen)
	assert.Equal(t, first[placement.FamilyFortification], sum.Markers[placement.FamilyFortification])
	assert.Equal(t, first[placement.FamilyLandmark], sum.Markers[placement.FamilyLandmark])
	assert.Empty(t, s.Sites.Sites())
	assert.Len(t, s.Routes(), sum.Routes)
	assert.Len(t, s.ReligiousSites(), sum.Markers[placement.FamilyReligious])
}

func TestUnseededSessionUsesCrypto(t *testing.T) {
	s, err := NewSession(civ.MustLoad(), classicalWorld(), Options{Year: -300})
	require.NoError(t, err)
	assert.IsType(t, entropy.Crypto{}, s.rand)
	assert.Zero(t, s.Seed())

	require.True(t, s.Mode.Enable("classical"))
	_, err = s.Generate(2, false)
	require.NoError(t, err)
	assert.NotZero(t, s.Markers.Len())
	assert.Zero(t, s.Export().Seed)
}

func TestGenerateIsDeterministic(t *testing.T) {
	run := func() Bundle {
		s := newSession(t, 9)
		require.True(t, s.Mode.Enable("classical"))
		_, err := s.Generate(6, true)
		require.NoError(t, err)
		return s.Export()
	}
	assert.Equal(t, run(), run())
}

func TestUnknownOverrideFails(t *testing.T) {
	s, err := NewSession(civ.MustLoad(), classicalWorld(), Options{CultureOverrides: map[int]string{1: "atlantean"}})
	require.NoError(t, err)
	s.Mode.Enable("classical")
	_, err = s.Generate(1, false)
	assert.ErrorContains(t, err, "atlantean")
}

func TestBundleRoundTrip(t *testing.T) {
	s := newSession(t, 3)
	require.True(t, s.Mode.Enable("classical"))
	_, err := s.Generate(3, true)
	require.NoError(t, err)
	_, err = s.GenerateEvents(5, 1)
	require.NoError(t, err)
	b := s.Export()
	require.NotEmpty(t, b.Events.Events)
	assert.Equal(t, BundleVersion, b.Version)
	assert.Equal(t, -300, b.Year)

	other, err := NewSession(civ.MustLoad(), classicalWorld(), Options{Seed: 3})
	require.NoError(t, err)
	require.NoError(t, other.Import(b))
	assert.Equal(t, b, other.Export())
	assert.True(t, other.Mode.Enabled())

	b.Version = 99
	assert.Error(t, other.Import(b))
	b.Version = BundleVersion
	b.Selection.Period = "ironAge"
	assert.Error(t, other.Import(b))

	other.Clear()
	assert.Zero(t, other.Markers.Len())
	assert.Empty(t, other.Sites.Sites())
	assert.Empty(t, other.Dynasties.All())
	assert.Zero(t, other.Chronicle.Len())
}

func TestGenerateEvents(t *testing.T) {
	s := newSession(t, 4)
	require.True(t, s.Mode.Enable("classical"))
	s.Mode.SelectCivilizations([]string{"roman", "greek", "celtic"})
	_, err := s.Generate(0, false)
	require.NoError(t, err)

	results, err := s.GenerateEvents(0, 1)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.GenerateEvents(20, 1)
	require.NoError(t, err)
	require.Len(t, results, s.Chronicle.Len())
	assert.GreaterOrEqual(t, len(results), 20)
	assert.LessOrEqual(t, len(results), 40)
	for _, ev := range s.Chronicle.All() {
		assert.GreaterOrEqual(t, ev.Year, -319)
		assert.LessOrEqual(t, ev.Year, -300)
		assert.NotNil(t, s.Map.State(ev.State))
	}

	borders := 0
	for _, res := range results {
		for _, ch := range res.Changes {
			if ch.Effect == history.EffectBorderChange {
				borders++
				assert.NotEmpty(t, s.Timeline.TerritorialHistory(ch.State), "state %d", ch.State)
			}
		}
	}
	assert.NotZero(t, borders)

	// A second era continues the chronicle.
	n := s.Chronicle.Len()
	more, err := s.GenerateEvents(2, 1)
	require.NoError(t, err)
	assert.Len(t, s.Chronicle.All(), n+len(more))
	assert.Equal(t, n, s.Chronicle.All()[n].ID)
}

func TestGenerateEventsWithoutCivilizations(t *testing.T) {
	s := newSession(t, 6)
	results, err := s.GenerateEvents(10, 1)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		for _, ch := range res.Changes {
			assert.Equal(t, history.EffectBorderChange, ch.Effect, "no houses to change")
		}
	}
	assert.Empty(t, s.Dynasties.All())
}

func TestYearFallsBackToPeriod(t *testing.T) {
	s, err := NewSession(civ.MustLoad(), classicalWorld(), Options{})
	require.NoError(t, err)
	assert.Zero(t, s.Year())
	require.True(t, s.Mode.Enable("classical"))
	assert.Equal(t, s.Registry.Period("classical").Midpoint(), s.Year())
}

func TestPlayAdvancesTimeline(t *testing.T) {
	s, err := NewSession(civ.MustLoad(), classicalWorld(), Options{TimelineStart: 0, TimelineEnd: 20})
	require.NoError(t, err)
	s.Timeline.Capture(0, s.Map)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var years []int
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Play(ctx, 1, func(y int) { years = append(years, y) })
	}()
	<-done
	assert.NotEmpty(t, years)
	assert.Equal(t, 20, s.Timeline.CurrentYear())
}
