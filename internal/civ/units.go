package civ

import (
	"maps"
	"slices"
	"strings"
)

// Unit is a military unit option for a period. Rural and Urban are
// deployment rates per settlement type.
type Unit struct {
	Icon          string   `yaml:"icon" json:"icon"`
	Name          string   `yaml:"name" json:"name"`
	Type          string   `yaml:"type" json:"type"`
	Rural         float64  `yaml:"rural" json:"rural"`
	Urban         float64  `yaml:"urban" json:"urban"`
	Crew          int      `yaml:"crew" json:"crew"`
	Power         float64  `yaml:"power" json:"power"`
	Separate      int      `yaml:"separate" json:"separate"`
	Biomes        []int    `yaml:"biomes" json:"biomes,omitempty"`
	Civilizations []string `yaml:"civilizations" json:"civilizations,omitempty"`
	Description   string   `yaml:"description" json:"description"`
}

// compositionBaseline is the deployment share a unit is tuned for.
const compositionBaseline = 0.2

// AvailableTo reports whether any of the civilizations may field the unit.
// Units without a civilization list are open to everyone.
func (u Unit) AvailableTo(civs ...string) bool {
	if len(u.Civilizations) == 0 {
		return true
	}
	for _, c := range civs {
		for _, uc := range u.Civilizations {
			if uc == c {
				return true
			}
		}
	}
	return false
}

// UnitsForPeriod returns a copy of the period's unit table.
func (r *Registry) UnitsForPeriod(period string) []Unit {
	units := r.units[period]
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// UnitsFor returns the period's units available to at least one of the
// given civilizations.
func (r *Registry) UnitsFor(period string, civs ...string) []Unit {
	var out []Unit
	for _, u := range r.units[period] {
		if u.AvailableTo(civs...) {
			out = append(out, u)
		}
	}
	return out
}

// ApplyComposition scales deployment rates by the civilization's military
// composition. A composition key matches a unit when either name contains
// the other, ignoring case and a trailing plural "s".
func ApplyComposition(units []Unit, p *Profile) []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	if p == nil || len(p.MilitaryComposition) == 0 {
		return out
	}
	for i := range out {
		name := singular(out[i].Name)
		for _, key := range slices.Sorted(maps.Keys(p.MilitaryComposition)) {
			share := p.MilitaryComposition[key]
			k := singular(key)
			if strings.Contains(k, name) || strings.Contains(name, k) {
				out[i].Rural = units[i].Rural * (share / compositionBaseline)
				out[i].Urban = units[i].Urban * (share / compositionBaseline)
			}
		}
	}
	return out
}

// UnitOptions returns the unit table for a selection. With no selection the
// whole period table is returned; a single civilization also gets its
// composition applied.
func (r *Registry) UnitOptions(period string, selected []string) []Unit {
	if len(selected) == 0 {
		return r.UnitsForPeriod(period)
	}
	units := r.UnitsFor(period, selected...)
	if len(selected) == 1 {
		units = ApplyComposition(units, r.Civilization(selected[0]))
	}
	return units
}

func singular(s string) string {
	return strings.TrimSuffix(strings.ToLower(s), "s")
}
