package civ

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data
var dataFS embed.FS

// Registry is the loaded reference data. Safe for concurrent reads.
type Registry struct {
	civs        map[string]*Profile
	civOrder    []string
	periods     map[string]*Period
	periodOrder []string
	units       map[string][]Unit
	presets     map[string]*Preset
	presetOrder []string
}

// Load reads the embedded reference tables.
func Load() (*Registry, error) {
	sub, err := fs.Sub(dataFS, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// MustLoad is Load for callers that cannot proceed without reference data.
func MustLoad() *Registry {
	r, err := Load()
	if err != nil {
		panic(fmt.Sprintf("civ: load reference data: %v", err))
	}
	return r
}

// LoadFS reads periods.yaml, units.yaml, civilizations/*.yaml and the
// optional presets.yaml from fsys.
func LoadFS(fsys fs.FS) (*Registry, error) {
	r := &Registry{
		civs:    make(map[string]*Profile),
		periods: make(map[string]*Period),
		units:   make(map[string][]Unit),
		presets: make(map[string]*Preset),
	}

	var periods struct {
		Periods []Period `yaml:"periods"`
	}
	if err := decodeFile(fsys, "periods.yaml", &periods); err != nil {
		return nil, err
	}
	for i := range periods.Periods {
		p := &periods.Periods[i]
		r.periods[p.ID] = p
		r.periodOrder = append(r.periodOrder, p.ID)
	}

	var units struct {
		Units map[string][]Unit `yaml:"units"`
	}
	if err := decodeFile(fsys, "units.yaml", &units); err != nil {
		return nil, err
	}
	r.units = units.Units

	files, err := fs.Glob(fsys, "civilizations/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, f := range files {
		// Traits the file leaves out keep the default; an explicit 0 stays 0.
		p := Profile{Traits: DefaultTraits()}
		if err := decodeFile(fsys, f, &p); err != nil {
			return nil, err
		}
		if p.ID == "" {
			return nil, fmt.Errorf("%s: missing id", path.Base(f))
		}
		// Most important deity first; ties keep file order.
		sort.SliceStable(p.Religion.Pantheon, func(i, j int) bool {
			return p.Religion.Pantheon[i].Importance > p.Religion.Pantheon[j].Importance
		})
		r.civs[p.ID] = &p
	}

	var presets struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := decodeFile(fsys, "presets.yaml", &presets); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for i := range presets.Presets {
		p := &presets.Presets[i]
		if _, dup := r.presets[p.ID]; dup {
			return nil, fmt.Errorf("preset %q: duplicate id", p.ID)
		}
		r.presets[p.ID] = p
		r.presetOrder = append(r.presetOrder, p.ID)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	if err := r.validatePresets(); err != nil {
		return nil, err
	}

	// Profiles are listed in period order, then by the period's own order.
	for _, pid := range r.periodOrder {
		r.civOrder = append(r.civOrder, r.periods[pid].Civilizations...)
	}
	return r, nil
}

func decodeFile(fsys fs.FS, name string, v any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// validate checks cross references between periods and profiles.
func (r *Registry) validate() error {
	for _, p := range r.civs {
		period, ok := r.periods[p.Period]
		if !ok {
			return fmt.Errorf("civilization %q: unknown period %q", p.ID, p.Period)
		}
		if !period.HasCivilization(p.ID) {
			return fmt.Errorf("civilization %q: not listed by period %q", p.ID, p.Period)
		}
	}
	for _, period := range r.periods {
		for _, id := range period.Civilizations {
			if _, ok := r.civs[id]; !ok {
				return fmt.Errorf("period %q: unknown civilization %q", period.ID, id)
			}
		}
	}
	return nil
}

// Civilization returns the profile for id, or nil.
func (r *Registry) Civilization(id string) *Profile {
	return r.civs[id]
}

// Civilizations returns every profile in period order.
func (r *Registry) Civilizations() []*Profile {
	out := make([]*Profile, 0, len(r.civOrder))
	for _, id := range r.civOrder {
		out = append(out, r.civs[id])
	}
	return out
}

// Period returns the period for id, or nil.
func (r *Registry) Period(id string) *Period {
	return r.periods[id]
}

// Periods returns every period in chronological order.
func (r *Registry) Periods() []*Period {
	out := make([]*Period, 0, len(r.periodOrder))
	for _, id := range r.periodOrder {
		out = append(out, r.periods[id])
	}
	return out
}

// CivilizationsOf returns the profiles listed by a period, in its order.
func (r *Registry) CivilizationsOf(periodID string) []*Profile {
	p := r.periods[periodID]
	if p == nil {
		return nil
	}
	out := make([]*Profile, 0, len(p.Civilizations))
	for _, id := range p.Civilizations {
		out = append(out, r.civs[id])
	}
	return out
}

// PeriodForYear returns the first period containing year, or nil.
func (r *Registry) PeriodForYear(year int) *Period {
	for _, id := range r.periodOrder {
		if p := r.periods[id]; p.Contains(year) {
			return p
		}
	}
	return nil
}

// InPeriod reports whether year lies within the named period.
func (r *Registry) InPeriod(year int, periodID string) bool {
	p := r.periods[periodID]
	return p != nil && p.Contains(year)
}
