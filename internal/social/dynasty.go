package social

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
)

// Ruler is one reign. EndYear is nil while the ruler still reigns.
type Ruler struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	StartYear int    `json:"start_year"`
	EndYear   *int   `json:"end_year,omitempty"`
}

// Reigning reports whether the reign is ongoing.
func (r Ruler) Reigning() bool { return r.EndYear == nil }

// Dynasty is the ruling house of one state.
type Dynasty struct {
	StateID      int     `json:"state_id"`
	Name         string  `json:"name"`
	Founder      string  `json:"founder"`
	FoundingYear int     `json:"founding_year"`
	Civilization string  `json:"civilization"`
	Rulers       []Ruler `json:"rulers"`
	Active       bool    `json:"active"`
}

// Succession is a proposed change of ruler.
type Succession struct {
	StateID     int    `json:"state_id"`
	Dynasty     string `json:"dynasty"`
	OldRuler    string `json:"old_ruler"`
	NewRuler    string `json:"new_ruler"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// DynastyStats summarises one dynasty at a given year.
type DynastyStats struct {
	Name       string `json:"name"`
	Founder    string `json:"founder"`
	Age        int    `json:"age"`
	RulerCount int    `json:"ruler_count"`
	Active     bool   `json:"active"`
	Current    *Ruler `json:"current,omitempty"`
}

// Tracker keeps one dynasty per state.
type Tracker struct {
	mu        sync.RWMutex
	dynasties map[int]*Dynasty
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{dynasties: make(map[int]*Dynasty)}
}

// Found starts a dynasty for a state, replacing any existing one. The
// dynasty name, founder and title come from the civilization's tables.
func (t *Tracker) Found(src entropy.Source, stateID int, p *civ.Profile, year int) (Dynasty, error) {
	if p == nil {
		return Dynasty{}, fmt.Errorf("found dynasty for state %d: no civilization", stateID)
	}
	founder := p.LeaderName(src, civ.Male)
	d := &Dynasty{
		StateID:      stateID,
		Name:         p.DynastyName(src),
		Founder:      founder,
		FoundingYear: year,
		Civilization: p.ID,
		Rulers:       []Ruler{{Name: founder, Title: p.Title(src), StartYear: year}},
		Active:       true,
	}

	t.mu.Lock()
	t.dynasties[stateID] = d
	t.mu.Unlock()
	slog.Debug("dynasty founded", "state", stateID, "dynasty", d.Name, "founder", founder)
	return cloneDynasty(d), nil
}

// Get returns a copy of the state's dynasty.
func (t *Tracker) Get(stateID int) (Dynasty, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.dynasties[stateID]
	if !ok {
		return Dynasty{}, false
	}
	return cloneDynasty(d), true
}

// All returns every dynasty ordered by state id.
func (t *Tracker) All() []Dynasty {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Dynasty, 0, len(t.dynasties))
	for _, d := range t.dynasties {
		out = append(out, cloneDynasty(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StateID < out[j].StateID })
	return out
}

// CurrentRuler returns the reigning ruler, or the last one once the line
// has ended.
func (t *Tracker) CurrentRuler(stateID int) (Ruler, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.dynasties[stateID]
	if !ok || len(d.Rulers) == 0 {
		return Ruler{}, false
	}
	return currentRuler(d), true
}

func currentRuler(d *Dynasty) Ruler {
	for _, r := range d.Rulers {
		if r.Reigning() {
			return r
		}
	}
	return d.Rulers[len(d.Rulers)-1]
}

// FullRulerName is "<title> <name>" for the current ruler.
func (t *Tracker) FullRulerName(stateID int) string {
	r, ok := t.CurrentRuler(stateID)
	if !ok {
		return ""
	}
	return r.Title + " " + r.Name
}

// FormattedName is "<name> Dynasty".
func (t *Tracker) FormattedName(stateID int) string {
	d, ok := t.Get(stateID)
	if !ok {
		return ""
	}
	return d.Name + " Dynasty"
}

// AddRuler ends the current reign at year and starts a new one with the
// same title.
func (t *Tracker) AddRuler(stateID int, name string, year int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.dynasties[stateID]
	if !ok {
		slog.Warn("no dynasty to add a ruler to", "state", stateID)
		return false
	}
	title := civ.DefaultTitle
	for i := range d.Rulers {
		if d.Rulers[i].Reigning() {
			end := year
			d.Rulers[i].EndYear = &end
			title = d.Rulers[i].Title
		}
	}
	d.Rulers = append(d.Rulers, Ruler{Name: name, Title: title, StartYear: year})
	return true
}

// Succession proposes the next ruler without applying it.
func (t *Tracker) Succession(src entropy.Source, stateID int, p *civ.Profile, year int) (Succession, bool) {
	t.mu.RLock()
	d, ok := t.dynasties[stateID]
	if !ok || len(d.Rulers) == 0 || p == nil {
		t.mu.RUnlock()
		return Succession{}, false
	}
	cur := currentRuler(d)
	name := d.Name
	t.mu.RUnlock()

	heir := p.LeaderName(src, civ.Male)
	return Succession{
		StateID:     stateID,
		Dynasty:     name,
		OldRuler:    cur.Name,
		NewRuler:    heir,
		Year:        year,
		Description: fmt.Sprintf("%s succeeds %s as %s", heir, cur.Name, cur.Title),
	}, true
}

// End closes the dynasty and the current reign at year.
func (t *Tracker) End(stateID, year int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.dynasties[stateID]
	if !ok {
		return
	}
	d.Active = false
	for i := range d.Rulers {
		if d.Rulers[i].Reigning() {
			end := year
			d.Rulers[i].EndYear = &end
		}
	}
	slog.Info("dynasty ended", "dynasty", d.Name, "year", year)
}

// Active reports whether the state has a reigning dynasty.
func (t *Tracker) Active(stateID int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.dynasties[stateID]
	return ok && d.Active
}

// Stats summarises a dynasty as of year.
func (t *Tracker) Stats(stateID, year int) (DynastyStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.dynasties[stateID]
	if !ok {
		return DynastyStats{}, false
	}
	st := DynastyStats{
		Name:       d.Name,
		Founder:    d.Founder,
		Age:        year - d.FoundingYear,
		RulerCount: len(d.Rulers),
		Active:     d.Active,
	}
	if len(d.Rulers) > 0 {
		r := currentRuler(d)
		st.Current = &r
	}
	return st, true
}

// Clear drops every dynasty.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.dynasties = make(map[int]*Dynasty)
	t.mu.Unlock()
}

// Export returns every dynasty for persistence.
func (t *Tracker) Export() []Dynasty {
	return t.All()
}

// Import replaces the tracker contents.
func (t *Tracker) Import(dynasties []Dynasty) {
	m := make(map[int]*Dynasty, len(dynasties))
	for i := range dynasties {
		d := cloneDynasty(&dynasties[i])
		m[d.StateID] = &d
	}
	t.mu.Lock()
	t.dynasties = m
	t.mu.Unlock()
	slog.Info("dynasties imported", "count", len(m))
}

func cloneDynasty(d *Dynasty) Dynasty {
	out := *d
	out.Rulers = make([]Ruler, len(d.Rulers))
	for i, r := range d.Rulers {
		if r.EndYear != nil {
			end := *r.EndYear
			r.EndYear = &end
		}
		out.Rulers[i] = r
	}
	return out
}
