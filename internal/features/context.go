// Package features holds the marker families built on the placement
// pipeline: landmarks, fortifications, religious sites, trade routes and
// archaeological sites.
package features

import (
	"errors"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/mode"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

// Returned by every civilization-driven generator when there is nothing to
// do. Callers log these and carry on.
var (
	ErrModeInactive = errors.New("historical mode is not enabled")
	ErrNoSelection  = errors.New("no civilizations selected")
)

// Context carries everything a generator reads. Nothing in it is mutated.
type Context struct {
	Registry  *civ.Registry
	Selection mode.Selection
	Map       *world.Snapshot
	Cultures  *civ.CultureIndex
	Rand      entropy.Source
	Year      int // timeline year; archaeological ages count back from it
}

// Ready returns the no-op sentinel when generators should not run.
func (c Context) Ready() error {
	if !c.Selection.Enabled {
		return ErrModeInactive
	}
	if len(c.Selection.Civilizations) == 0 {
		return ErrNoSelection
	}
	return nil
}

// Profiles returns the selected civilization profiles in selection order.
func (c Context) Profiles() []*civ.Profile {
	var out []*civ.Profile
	for _, id := range c.Selection.Civilizations {
		if p := c.Registry.Civilization(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// CivOfState returns the selected civilization a state maps to. Unmatched
// states and states of unselected civilizations return nil.
func (c Context) CivOfState(stateID int) *civ.Profile {
	st := c.Map.State(stateID)
	if st == nil || st.Removed || c.Cultures == nil {
		return nil
	}
	id, ok := c.Cultures.CivFor(st.Culture)
	if !ok || !c.Selection.Has(id) {
		return nil
	}
	return c.Registry.Civilization(id)
}

// StatesOf returns the live states mapped to a civilization.
func (c Context) StatesOf(civID string) []*world.State {
	var out []*world.State
	for _, st := range c.Map.ActiveStates() {
		if p := c.CivOfState(st.ID); p != nil && p.ID == civID {
			out = append(out, st)
		}
	}
	return out
}

// BurgsOf returns the live settlements in states mapped to a civilization.
func (c Context) BurgsOf(civID string) []*world.Burg {
	var out []*world.Burg
	for _, st := range c.StatesOf(civID) {
		out = append(out, c.Map.BurgsOfState(st.ID)...)
	}
	return out
}

// Pipeline returns a placement pipeline over the context's map and source.
func (c Context) Pipeline() *placement.Pipeline {
	return placement.NewPipeline(c.Map, c.Rand)
}

// regionName prefers the cell's province name, then its state name.
func (c Context) regionName(cellID int) string {
	cell := c.Map.Cell(cellID)
	if cell == nil {
		return ""
	}
	if p := c.Map.Province(cell.Province); p != nil && p.Name != "" {
		return p.Name
	}
	if st := c.Map.State(cell.State); st != nil {
		return st.Name
	}
	return ""
}
