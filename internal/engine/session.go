// Package engine ties the reference data, mode, generators, timeline and
// dynasty tracker together into one generation session over a host map.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/features"
	"github.com/talgya/antiquity/internal/history"
	"github.com/talgya/antiquity/internal/mode"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/social"
	"github.com/talgya/antiquity/internal/timeline"
	"github.com/talgya/antiquity/internal/world"
)

// Options configure a session.
type Options struct {
	Seed             int64 // 0 draws from crypto/rand
	Year             int   // 0 uses the period's recommended year
	TimelineStart    int
	TimelineEnd      int
	CultureOverrides map[int]string
}

// Session holds the complete state of one generation pass. Generators run
// synchronously; the mutex only guards the session's own bookkeeping so the
// timeline player can run beside read-only callers.
type Session struct {
	Registry  *civ.Registry
	Mode      *mode.State
	Map       *world.Snapshot
	Landmarks *features.LandmarkCatalog
	Markers   *placement.MarkerSet
	Sites     *features.Catalog
	Timeline  *timeline.Store
	Dynasties *social.Tracker
	Chronicle *history.Chronicle

	rand      entropy.Stream
	seed      int64
	year      int
	overrides map[int]string
	pass      int
	eras      int

	mu          sync.RWMutex
	routes      []features.Route
	religious   []features.ReligiousSite
	governments map[int]social.StateConfig
	matches     []civ.Match
}

// Summary counts what one Generate call produced.
type Summary struct {
	Markers   map[string]int `json:"markers"`
	Routes    int            `json:"routes"`
	Sites     int            `json:"sites"`
	Dynasties int            `json:"dynasties"`
	Unmatched []string       `json:"unmatched_cultures,omitempty"`
	Skipped   []string       `json:"skipped,omitempty"`
}

// NewSession wires a session over snap. The landmark catalog is checked
// against the registry so a profile never names a landmark it cannot place.
func NewSession(reg *civ.Registry, snap *world.Snapshot, opts Options) (*Session, error) {
	cat, err := features.LoadLandmarks()
	if err != nil {
		return nil, fmt.Errorf("load landmarks: %w", err)
	}
	events, err := history.LoadTypes()
	if err != nil {
		return nil, fmt.Errorf("load event types: %w", err)
	}
	if missing := cat.Missing(reg); len(missing) > 0 {
		return nil, fmt.Errorf("landmark types without a spec: %v", missing)
	}
	start, end := opts.TimelineStart, opts.TimelineEnd
	if start == 0 && end == 0 {
		start, end = timeline.DefaultStartYear, timeline.DefaultEndYear
	}
	return &Session{
		Registry:    reg,
		Mode:        mode.New(reg),
		Map:         snap,
		Landmarks:   cat,
		Markers:     placement.NewMarkerSet(),
		Sites:       features.NewCatalog(),
		Timeline:    timeline.New(start, end),
		Dynasties:   social.NewTracker(),
		Chronicle:   history.NewChronicle(events),
		rand:        entropy.FromSeed(opts.Seed),
		seed:        opts.Seed,
		year:        opts.Year,
		overrides:   opts.CultureOverrides,
		governments: make(map[int]social.StateConfig),
	}, nil
}

// Seed returns the session seed, 0 for an unseeded session.
func (s *Session) Seed() int64 { return s.seed }

// Year is the year generation is anchored to.
func (s *Session) Year() int {
	if s.year != 0 {
		return s.year
	}
	if st, ok := s.Mode.RecommendedSettings(); ok {
		return st.Year
	}
	return 0
}

// Context builds the generator context for the current selection, salting
// the random stream so each family draws independently.
func (s *Session) Context(salt string) (features.Context, error) {
	sel := s.Mode.Selection()
	idx, err := civ.NewCultureIndex(s.Registry, s.Map.Cultures, s.overrides, sel.Civilizations)
	if err != nil {
		return features.Context{}, fmt.Errorf("culture index: %w", err)
	}
	return features.Context{
		Registry:  s.Registry,
		Selection: sel,
		Map:       s.Map,
		Cultures:  idx,
		Rand:      s.rand.Derive(salt),
		Year:      s.Year(),
	}, nil
}

// Generate runs every marker family, fills the archaeology catalog, founds
// dynasties for mapped states and captures the borders into the timeline.
// Markers, routes and sites from an earlier pass are replaced; dynasties and
// the timeline carry over. Generators that have nothing to do are logged and
// skipped.
func (s *Session) Generate(siteCount int, fallen bool) (Summary, error) {
	var sum Summary
	base, err := s.Context("cultures")
	if err != nil {
		return sum, err
	}
	s.Markers.Restore(nil)
	s.Sites.Clear()
	s.mu.Lock()
	s.routes, s.religious = nil, nil
	s.pass++
	s.mu.Unlock()
	for _, m := range base.Cultures.Unmatched() {
		sum.Unmatched = append(sum.Unmatched, m.Culture)
	}
	s.mu.Lock()
	s.matches = base.Cultures.Matches()
	s.mu.Unlock()

	skip := func(family string, err error) bool {
		if err == nil {
			return false
		}
		if errors.Is(err, features.ErrModeInactive) || errors.Is(err, features.ErrNoSelection) {
			slog.Info("generator skipped", "family", family, "reason", err)
			sum.Skipped = append(sum.Skipped, family)
			return true
		}
		slog.Warn("generator failed", "family", family, "error", err)
		sum.Skipped = append(sum.Skipped, family)
		return true
	}

	if ms, err := features.GenerateLandmarks(s.ctx(base, placement.FamilyLandmark), s.Landmarks); !skip(placement.FamilyLandmark, err) {
		s.Markers.Add(ms...)
	}
	if ms, err := features.GenerateFortifications(s.ctx(base, placement.FamilyFortification)); !skip(placement.FamilyFortification, err) {
		s.Markers.Add(ms...)
	}
	if sites, err := features.GenerateReligiousSites(s.ctx(base, placement.FamilyReligious)); !skip(placement.FamilyReligious, err) {
		stored := make([]features.ReligiousSite, len(sites))
		for i, site := range sites {
			site.Marker = s.Markers.Add(site.Marker)[0]
			stored[i] = site
		}
		s.mu.Lock()
		s.religious = stored
		s.mu.Unlock()
	}
	if routes, ms, err := features.GenerateTradeRoutes(s.ctx(base, placement.FamilyTrade)); !skip(placement.FamilyTrade, err) {
		s.Markers.Add(ms...)
		s.mu.Lock()
		s.routes = routes
		s.mu.Unlock()
	}

	arch := s.ctx(base, placement.FamilyArchaeology)
	placed := len(s.Sites.GenerateSites(arch, siteCount))
	if fallen {
		if sites, err := s.Sites.GenerateFromFallenCivilizations(arch); !skip("fallen civilizations", err) {
			placed += len(sites)
		}
	}

	sum.Dynasties = s.foundDynasties(s.ctx(base, "dynasties"))
	s.Timeline.Capture(s.Year(), s.Map)

	sum.Markers = s.Markers.CountByFamily()
	sum.Markers[placement.FamilyArchaeology] = len(s.Sites.Sites())
	sum.Sites = placed
	sum.Routes = len(s.Routes())
	slog.Info("generation complete",
		"mode", s.Mode.DisplayName(),
		"markers", s.Markers.Len(),
		"routes", sum.Routes,
		"sites", sum.Sites,
		"dynasties", sum.Dynasties,
	)
	return sum, nil
}

// GenerateEvents draws perYear or perYear+1 historical events for each of
// the years leading up to the session year and applies their effects to the
// dynasties and the timeline. Events accumulate across calls. years <= 0
// does nothing.
func (s *Session) GenerateEvents(years, perYear int) ([]history.Result, error) {
	if years <= 0 {
		return nil, nil
	}
	base, err := s.Context("events")
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.eras++
	src := s.rand.Derive(fmt.Sprintf("events/%d", s.eras))
	s.mu.Unlock()

	set := history.Setting{Map: s.Map, Rivals: func(id int) int { return rivalStates(base, id) }}
	if base.Selection.Active() {
		set.Period = base.Selection.Period
	}
	end := s.Year()
	events, err := s.Chronicle.GenerateForPeriod(src, set, end-years+1, end, perYear)
	if err != nil {
		return nil, fmt.Errorf("historical events: %w", err)
	}
	tgt := history.Target{Map: s.Map, Dynasties: s.Dynasties, Timeline: s.Timeline, CivOf: base.CivOfState}
	results := make([]history.Result, 0, len(events))
	applied := 0
	for _, ev := range events {
		res := history.Apply(src, ev, tgt)
		if res.Applied {
			applied++
		}
		results = append(results, res)
	}
	slog.Info("historical events applied", "events", len(events), "applied", applied, "to", end)
	return results, nil
}

// rivalStates counts the neighbours of a state that belong to a different
// selected civilization.
func rivalStates(ctx features.Context, stateID int) int {
	st := ctx.Map.State(stateID)
	own := ctx.CivOfState(stateID)
	if st == nil || own == nil {
		return 0
	}
	n := 0
	for _, id := range st.Neighbors {
		if other := ctx.CivOfState(id); other != nil && other.ID != own.ID {
			n++
		}
	}
	return n
}

// ctx salts the family stream with the pass number so a rerun draws anew.
func (s *Session) ctx(base features.Context, salt string) features.Context {
	base.Rand = s.rand.Derive(fmt.Sprintf("%s/%d", salt, s.pass))
	return base
}

// foundDynasties gives every active state of a selected civilization a
// government and a ruling house, unless it already has one.
func (s *Session) foundDynasties(ctx features.Context) int {
	if ctx.Ready() != nil {
		return 0
	}
	n := 0
	for _, st := range s.Map.ActiveStates() {
		p := ctx.CivOfState(st.ID)
		if p == nil || s.Dynasties.Active(st.ID) {
			continue
		}
		cfg := social.NewStateConfig(ctx.Rand, p, "")
		if _, err := s.Dynasties.Found(ctx.Rand, st.ID, p, ctx.Year); err != nil {
			slog.Warn("dynasty not founded", "state", st.ID, "error", err)
			continue
		}
		s.mu.Lock()
		s.governments[st.ID] = cfg
		s.mu.Unlock()
		n++
	}
	return n
}

// Routes returns the trade routes found so far.
func (s *Session) Routes() []features.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]features.Route(nil), s.routes...)
}

// ReligiousSites returns the sacred sites with their dedications.
func (s *Session) ReligiousSites() []features.ReligiousSite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]features.ReligiousSite(nil), s.religious...)
}

// Government returns the state's government profile, if one was assigned.
func (s *Session) Government(stateID int) (social.StateConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.governments[stateID]
	return cfg, ok
}

// CultureMatches returns how host cultures were mapped in the last run.
func (s *Session) CultureMatches() []civ.Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]civ.Match(nil), s.matches...)
}

// Clear drops everything generated while keeping the mode and map.
func (s *Session) Clear() {
	s.Markers.Restore(nil)
	s.Sites.Clear()
	s.Timeline.Clear()
	s.Dynasties.Clear()
	s.Chronicle.Clear()
	s.mu.Lock()
	s.routes, s.religious, s.matches = nil, nil, nil
	s.governments = make(map[int]social.StateConfig)
	s.mu.Unlock()
}

func sortedStates(m map[int]social.StateConfig) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
