package history

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

// ErrNoStates is returned when the map has no live state to host an event.
var ErrNoStates = errors.New("no states for historical events")

// Event is one generated historical event.
type Event struct {
	ID           int      `json:"id"`
	Type         string   `json:"type"`
	Year         int      `json:"year"`
	State        int      `json:"state"`
	StateName    string   `json:"state_name"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Effects      []string `json:"effects"`
	Icon         string   `json:"icon"`
	Severity     int      `json:"severity"`
	Opponent     int      `json:"opponent,omitempty"`
	OpponentName string   `json:"opponent_name,omitempty"`
}

// Setting is what event generation draws from.
type Setting struct {
	Map    *world.Snapshot
	Period string                // active historical period; empty outside historical mode
	Rivals func(stateID int) int // hostile neighbours of a state; nil counts none
}

func (s Setting) rivals(stateID int) int {
	if s.Rivals == nil {
		return 0
	}
	return s.Rivals(stateID)
}

// Stats summarises a chronicle.
type Stats struct {
	Total     int            `json:"total_events"`
	ByType    map[string]int `json:"by_type"`
	ByState   map[string]int `json:"by_state"`
	FirstYear int            `json:"first_year"`
	LastYear  int            `json:"last_year"`
}

// Export is the persisted form of a chronicle.
type Export struct {
	Events []Event `json:"events"`
	NextID int     `json:"next_id"`
}

// Chronicle records generated events in generation order. Safe for
// concurrent use.
type Chronicle struct {
	types *Types

	mu     sync.RWMutex
	events []Event
	nextID int
}

// NewChronicle creates an empty chronicle over an event table.
func NewChronicle(types *Types) *Chronicle {
	return &Chronicle{types: types}
}

// Types returns the event table.
func (c *Chronicle) Types() *Types { return c.types }

// Generate draws one event for year: a live state uniformly, then an event
// type weighted by its probability for that state. Wars and conquests name
// a neighbouring opponent when the state has one.
func (c *Chronicle) Generate(src entropy.Source, set Setting, year int) (Event, error) {
	states := set.Map.ActiveStates()
	st, ok := entropy.Pick(src, states)
	if !ok {
		return Event{}, ErrNoStates
	}
	rivals := set.rivals(st.ID)
	et, ok := placement.SampleOne(src, c.types.All(), func(t EventType) float64 {
		return t.Probability(st, set.Period, rivals)
	})
	if !ok {
		return Event{}, errors.New("empty event table")
	}

	ev := Event{
		Type:        et.Key,
		Year:        year,
		State:       st.ID,
		StateName:   st.Name,
		Name:        et.Name,
		Description: et.Headline(src, st.Name),
		Effects:     append([]string(nil), et.Effects...),
		Icon:        et.Icon,
		Severity:    entropy.IntRange(src, 1, 5),
	}
	if et.Key == TypeWar || et.Key == TypeConquest {
		if opp, ok := entropy.Pick(src, neighbours(set.Map, st)); ok {
			ev.Opponent, ev.OpponentName = opp.ID, opp.Name
		}
	}

	c.mu.Lock()
	ev.ID = c.nextID
	c.nextID++
	c.events = append(c.events, ev)
	c.mu.Unlock()
	slog.Debug("historical event", "type", ev.Type, "state", ev.StateName, "year", year)
	return ev, nil
}

func neighbours(snap *world.Snapshot, st *world.State) []*world.State {
	var out []*world.State
	for _, id := range st.Neighbors {
		if n := snap.State(id); n != nil && !n.Removed {
			out = append(out, n)
		}
	}
	return out
}

// GenerateForPeriod draws perYear or perYear+1 events, with even odds, for
// every year from start to end inclusive.
func (c *Chronicle) GenerateForPeriod(src entropy.Source, set Setting, start, end, perYear int) ([]Event, error) {
	var out []Event
	for year := start; year <= end; year++ {
		n := perYear
		if !entropy.Chance(src, 0.5) {
			n++
		}
		for range n {
			ev, err := c.Generate(src, set, year)
			if err != nil {
				return out, err
			}
			out = append(out, ev)
		}
	}
	slog.Info("historical events generated", "count", len(out), "from", start, "to", end)
	return out, nil
}

// All returns every event in generation order.
func (c *Chronicle) All() []Event {
	return c.where(func(Event) bool { return true })
}

// ByYear returns the events of one year.
func (c *Chronicle) ByYear(year int) []Event {
	return c.where(func(e Event) bool { return e.Year == year })
}

// ByState returns the events hosted by a state.
func (c *Chronicle) ByState(stateID int) []Event {
	return c.where(func(e Event) bool { return e.State == stateID })
}

// ByType returns the events of one type key.
func (c *Chronicle) ByType(key string) []Event {
	return c.where(func(e Event) bool { return e.Type == key })
}

func (c *Chronicle) where(keep func(Event) bool) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Event
	for _, e := range c.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of recorded events.
func (c *Chronicle) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Statistics tallies events by type and by state name. The year range is
// zero for an empty chronicle.
func (c *Chronicle) Statistics() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Stats{
		Total:   len(c.events),
		ByType:  make(map[string]int),
		ByState: make(map[string]int),
	}
	for i, e := range c.events {
		st.ByType[e.Type]++
		name := e.StateName
		if name == "" {
			name = "Unknown"
		}
		st.ByState[name]++
		if i == 0 || e.Year < st.FirstYear {
			st.FirstYear = e.Year
		}
		if i == 0 || e.Year > st.LastYear {
			st.LastYear = e.Year
		}
	}
	return st
}

// Clear drops every event and resets ids.
func (c *Chronicle) Clear() {
	c.mu.Lock()
	c.events = nil
	c.nextID = 0
	c.mu.Unlock()
}

// Export returns a copy of the chronicle for persistence.
func (c *Chronicle) Export() Export {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Export{Events: append([]Event(nil), c.events...), NextID: c.nextID}
}

// Import replaces the chronicle contents. Ids continue after the highest
// imported id.
func (c *Chronicle) Import(data Export) {
	events := append([]Event(nil), data.Events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	next := data.NextID
	for _, e := range events {
		next = max(next, e.ID+1)
	}
	c.mu.Lock()
	c.events = events
	c.nextID = next
	c.mu.Unlock()
	slog.Info("historical events imported", "count", len(events))
}
