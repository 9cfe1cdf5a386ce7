// Package timeline keeps year-keyed snapshots of state borders and moves a
// host map between them.
package timeline

import (
	"log/slog"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/talgya/antiquity/internal/world"
)

// Default range when none is given.
const (
	DefaultStartYear = -3000
	DefaultEndYear   = 500
)

// StateRecord is one state as captured in a snapshot.
type StateRecord struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Cells     int    `json:"cells"`
	Area      int    `json:"area"`
	Neighbors []int  `json:"neighbors"`
}

// Snapshot is the political map at one year. Owners holds the state id of
// every cell in cell order.
type Snapshot struct {
	Year   int           `json:"year"`
	States []StateRecord `json:"states"`
	Owners []int         `json:"owners,omitempty"`
}

// TerritoryRecord is one entry of a state's territorial history.
type TerritoryRecord struct {
	Year  int     `json:"year"`
	Cells int     `json:"cells"`
	Area  float64 `json:"area"`
}

// Stats summarises the store.
type Stats struct {
	Snapshots     int  `json:"snapshots"`
	TrackedStates int  `json:"tracked_states"`
	YearRange     int  `json:"year_range"`
	CurrentYear   int  `json:"current_year"`
	Playing       bool `json:"playing"`
}

// Export is the persisted form of a store.
type Export struct {
	StartYear   int                       `json:"start_year"`
	EndYear     int                       `json:"end_year"`
	CurrentYear int                       `json:"current_year"`
	Snapshots   []Snapshot                `json:"snapshots"`
	History     map[int][]TerritoryRecord `json:"history"`
}

// Store is the timeline. The map it applies snapshots to is owned by the
// caller; the store never keeps a reference to it between calls.
type Store struct {
	mu        sync.RWMutex
	start     int
	end       int
	current   int
	snapshots map[int]Snapshot
	history   map[int]map[int]TerritoryRecord

	playing atomic.Bool
}

// New creates a store spanning [start, end] with the current year at start.
// A reversed range is swapped.
func New(start, end int) *Store {
	if start > end {
		start, end = end, start
	}
	return &Store{
		start:     start,
		end:       end,
		current:   start,
		snapshots: make(map[int]Snapshot),
		history:   make(map[int]map[int]TerritoryRecord),
	}
}

// Range returns the start and end years.
func (s *Store) Range() (start, end int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.start, s.end
}

// CurrentYear returns the year the timeline is at.
func (s *Store) CurrentYear() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetCurrentYear moves to year and applies the nearest snapshot to snap when
// one exists. Years outside the range are rejected and leave the current
// year unchanged.
func (s *Store) SetCurrentYear(year int, snap *world.Snapshot) bool {
	s.mu.Lock()
	if year < s.start || year > s.end {
		s.mu.Unlock()
		slog.Warn("year outside timeline range", "year", year)
		return false
	}
	s.current = year
	shot, ok := s.nearest(year)
	s.mu.Unlock()

	if ok && snap != nil {
		Apply(shot, snap)
	}
	return true
}

// Capture records the map's current borders at year, replacing any
// snapshot already there.
func (s *Store) Capture(year int, snap *world.Snapshot) Snapshot {
	shot := capture(year, snap)
	s.mu.Lock()
	s.snapshots[year] = shot
	s.mu.Unlock()
	slog.Info("timeline snapshot captured", "year", year, "states", len(shot.States))
	return shot
}

func capture(year int, snap *world.Snapshot) Snapshot {
	shot := Snapshot{Year: year}
	for _, st := range snap.ActiveStates() {
		shot.States = append(shot.States, StateRecord{
			ID:        st.ID,
			Name:      st.Name,
			Color:     st.Color,
			Cells:     st.Cells,
			Area:      st.Area,
			Neighbors: slices.Clone(st.Neighbors),
		})
	}
	shot.Owners = make([]int, len(snap.Cells))
	for i := range snap.Cells {
		shot.Owners[i] = snap.Cells[i].State
	}
	return shot
}

// SnapshotForYear returns the exact snapshot for year, else the nearer of
// the two bounding snapshots. Equal distances resolve to the later year.
// There is no blending.
func (s *Store) SnapshotForYear(year int) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nearest(year)
}

func (s *Store) nearest(year int) (Snapshot, bool) {
	if shot, ok := s.snapshots[year]; ok {
		return shot, true
	}
	years := s.years()
	if len(years) == 0 {
		return Snapshot{}, false
	}

	i := sort.SearchInts(years, year)
	switch {
	case i == 0:
		return s.snapshots[years[0]], true
	case i == len(years):
		return s.snapshots[years[len(years)-1]], true
	}
	before, after := years[i-1], years[i]
	if year-before < after-year {
		return s.snapshots[before], true
	}
	return s.snapshots[after], true
}

func (s *Store) years() []int {
	years := make([]int, 0, len(s.snapshots))
	for y := range s.snapshots {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Years returns the captured years in order.
func (s *Store) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.years()
}

// Apply writes a snapshot's borders onto snap. States absent from the
// snapshot are marked removed; present ones are restored.
func Apply(shot Snapshot, snap *world.Snapshot) {
	present := make(map[int]StateRecord, len(shot.States))
	for _, rec := range shot.States {
		present[rec.ID] = rec
	}
	for i := 1; i < len(snap.States); i++ {
		st := &snap.States[i]
		rec, ok := present[st.ID]
		if !ok {
			st.Removed = true
			continue
		}
		st.Removed = false
		st.Name = rec.Name
		st.Color = rec.Color
		st.Cells = rec.Cells
		st.Area = rec.Area
		st.Neighbors = slices.Clone(rec.Neighbors)
	}
	if len(shot.Owners) == len(snap.Cells) {
		for i, owner := range shot.Owners {
			snap.Cells[i].State = owner
		}
	}
}

// GenerateIntermediate fills steps evenly spaced years between two captured
// years with copies of whichever end is nearer. Returns false if either end
// is missing.
func (s *Store) GenerateIntermediate(year1, year2, steps int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	first, ok1 := s.snapshots[year1]
	second, ok2 := s.snapshots[year2]
	if !ok1 || !ok2 {
		slog.Warn("cannot fill timeline gap: missing snapshot", "from", year1, "to", year2)
		return false
	}
	step := float64(year2-year1) / float64(steps+1)
	for i := 1; i <= steps; i++ {
		year := int(math.Round(float64(year1) + step*float64(i)))
		src := second
		if float64(i)/float64(steps+1) < 0.5 {
			src = first
		}
		copied := src
		copied.Year = year
		s.snapshots[year] = copied
	}
	slog.Info("intermediate snapshots generated", "from", year1, "to", year2, "steps", steps)
	return true
}

// RecordTerritorialChange stores a state's extent at year.
func (s *Store) RecordTerritorialChange(stateID, year, cells int, area float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.history[stateID]
	if !ok {
		h = make(map[int]TerritoryRecord)
		s.history[stateID] = h
	}
	h[year] = TerritoryRecord{Year: year, Cells: cells, Area: area}
}

// TerritorialHistory returns a state's records in year order.
func (s *Store) TerritorialHistory(stateID int) []TerritoryRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TerritoryRecord
	for _, rec := range s.history[stateID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// SimulateTerritorialChange records a state growing or shrinking by
// percent at year. Returns false for an unknown state.
func (s *Store) SimulateTerritorialChange(snap *world.Snapshot, stateID int, percent float64, year int) bool {
	st := snap.State(stateID)
	if st == nil {
		return false
	}
	factor := 1 + percent/100
	s.RecordTerritorialChange(stateID, year, int(math.Round(float64(st.Cells)*factor)), float64(st.Area)*factor)
	slog.Info("territorial change simulated", "state", st.Name, "percent", percent, "year", year)
	return true
}

// Advance moves forward by years, clamped to the end of the range.
func (s *Store) Advance(years int, snap *world.Snapshot) bool {
	_, end := s.Range()
	return s.SetCurrentYear(min(s.CurrentYear()+years, end), snap)
}

// Reverse moves back by years, clamped to the start of the range.
func (s *Store) Reverse(years int, snap *world.Snapshot) bool {
	start, _ := s.Range()
	return s.SetCurrentYear(max(s.CurrentYear()-years, start), snap)
}

// Reset stops playback and returns to the start year.
func (s *Store) Reset(snap *world.Snapshot) {
	s.Stop()
	start, _ := s.Range()
	s.SetCurrentYear(start, snap)
}

// Clear stops playback and drops all snapshots and history.
func (s *Store) Clear() {
	s.Stop()
	s.mu.Lock()
	s.snapshots = make(map[int]Snapshot)
	s.history = make(map[int]map[int]TerritoryRecord)
	s.current = s.start
	s.mu.Unlock()
	slog.Info("timeline cleared")
}

// Statistics summarises the store.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Snapshots:     len(s.snapshots),
		TrackedStates: len(s.history),
		YearRange:     s.end - s.start,
		CurrentYear:   s.current,
		Playing:       s.playing.Load(),
	}
}

// Export returns a copy of the store for persistence.
func (s *Store) Export() Export {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Export{
		StartYear:   s.start,
		EndYear:     s.end,
		CurrentYear: s.current,
		History:     make(map[int][]TerritoryRecord, len(s.history)),
	}
	for _, y := range s.years() {
		out.Snapshots = append(out.Snapshots, s.snapshots[y])
	}
	for id, h := range s.history {
		recs := make([]TerritoryRecord, 0, len(h))
		for _, rec := range h {
			recs = append(recs, rec)
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].Year < recs[j].Year })
		out.History[id] = recs
	}
	return out
}

// Import replaces the store contents. Zero years fall back to the defaults.
func (s *Store) Import(data Export) {
	s.Stop()
	start, end := data.StartYear, data.EndYear
	if start == 0 && end == 0 {
		start, end = DefaultStartYear, DefaultEndYear
	}
	current := data.CurrentYear
	if current < start || current > end {
		current = start
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.start, s.end, s.current = start, end, current
	s.snapshots = make(map[int]Snapshot, len(data.Snapshots))
	for _, shot := range data.Snapshots {
		s.snapshots[shot.Year] = shot
	}
	s.history = make(map[int]map[int]TerritoryRecord, len(data.History))
	for id, recs := range data.History {
		h := make(map[int]TerritoryRecord, len(recs))
		for _, rec := range recs {
			h[rec.Year] = rec
		}
		s.history[id] = h
	}
	slog.Info("timeline imported", "snapshots", len(s.snapshots))
}
