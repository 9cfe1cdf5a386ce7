// Package mode holds the historical/fantasy switch and the civilization
// selection every generator reads before placing anything.
package mode

import (
	"log/slog"
	"sync"

	"github.com/talgya/antiquity/internal/civ"
)

// DefaultPeriod is used when Toggle is called without a period.
const DefaultPeriod = "bronzeAge"

// Selection is an immutable view of the mode state.
type Selection struct {
	Enabled       bool     `json:"enabled"`
	Period        string   `json:"period,omitempty"`
	Civilizations []string `json:"civilizations"`
}

// Active reports whether generators should run at all.
func (s Selection) Active() bool {
	return s.Enabled && len(s.Civilizations) > 0
}

// Has reports whether the civilization is selected.
func (s Selection) Has(id string) bool {
	for _, c := range s.Civilizations {
		if c == id {
			return true
		}
	}
	return false
}

// State is the mutable mode. The selection is always a subset of the active
// period's civilizations.
type State struct {
	reg *civ.Registry

	mu       sync.RWMutex
	enabled  bool
	period   string
	selected []string
}

// New creates a disabled mode backed by reg.
func New(reg *civ.Registry) *State {
	return &State{reg: reg}
}

// Enable switches to historical mode for a period and selects all of its
// civilizations. Unknown periods leave the state untouched and return false.
func (s *State) Enable(periodID string) bool {
	p := s.reg.Period(periodID)
	if p == nil {
		slog.Warn("historical period not found", "period", periodID)
		return false
	}

	s.mu.Lock()
	s.enabled = true
	s.period = periodID
	s.selected = append([]string(nil), p.Civilizations...)
	s.mu.Unlock()

	slog.Info("historical mode enabled", "period", p.DisplayName, "civilizations", len(p.Civilizations))
	return true
}

// Disable returns to fantasy mode and clears the selection.
func (s *State) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.period = ""
	s.selected = nil
	s.mu.Unlock()
	slog.Info("historical mode disabled")
}

// Toggle flips the mode. Enabling with an empty period uses DefaultPeriod.
// Returns whether the mode is enabled afterwards.
func (s *State) Toggle(periodID string) bool {
	if s.Enabled() {
		s.Disable()
		return false
	}
	if periodID == "" {
		periodID = DefaultPeriod
	}
	return s.Enable(periodID)
}

// SelectCivilizations replaces the selection with the ids that belong to the
// active period, in the order given, and returns the result. Without an
// active period nothing changes.
func (s *State) SelectCivilizations(ids []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.reg.Period(s.period)
	if p == nil {
		slog.Warn("cannot select civilizations without a period", "period", s.period)
		return append([]string(nil), s.selected...)
	}

	selected := make([]string, 0, len(ids))
	seen := make(map[string]bool)
	for _, id := range ids {
		if p.HasCivilization(id) && !seen[id] {
			selected = append(selected, id)
			seen[id] = true
		}
	}
	s.selected = selected
	slog.Info("civilizations selected", "civilizations", selected)
	return append([]string(nil), selected...)
}

// Enabled reports whether historical mode is on.
func (s *State) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Selected returns a copy of the selected civilization ids.
func (s *State) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selected...)
}

// Period returns the active period, or nil.
func (s *State) Period() *civ.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Period(s.period)
}

// Selection returns an immutable snapshot for generators.
func (s *State) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Selection{
		Enabled:       s.enabled,
		Period:        s.period,
		Civilizations: append([]string(nil), s.selected...),
	}
}

// Profiles returns the selected civilization profiles in selection order.
func (s *State) Profiles() []*civ.Profile {
	var out []*civ.Profile
	for _, id := range s.Selected() {
		if p := s.reg.Civilization(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Registry returns the reference data backing the mode.
func (s *State) Registry() *civ.Registry { return s.reg }

// Export returns the state for persistence.
func (s *State) Export() Selection {
	return s.Selection()
}

// Import restores an exported state. The period must exist; unknown
// civilizations are dropped. Returns false when the period is unknown.
func (s *State) Import(sel Selection) bool {
	if !sel.Enabled {
		s.Disable()
		return true
	}
	if !s.Enable(sel.Period) {
		return false
	}
	s.SelectCivilizations(sel.Civilizations)
	return true
}
