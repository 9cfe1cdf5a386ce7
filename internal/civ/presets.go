package civ

import "fmt"

// Preset categories.
const (
	CategoryBronzeAge = "bronzeAge"
	CategoryClassical = "classical"
	CategoryScenarios = "scenarios"
)

// Preset is a quick-start scenario: a period, its civilizations and the
// host map shape that suits them.
type Preset struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	Category      string   `yaml:"category" json:"category"`
	Period        string   `yaml:"period" json:"period"`
	Civilizations []string `yaml:"civilizations" json:"civilizations"`
	Template      string   `yaml:"template" json:"template"`
	Cultures      int      `yaml:"cultures" json:"cultures"`
	States        int      `yaml:"states" json:"states"`
	Towns         int      `yaml:"towns" json:"towns"`
	Religions     int      `yaml:"religions" json:"religions"`
	Year          int      `yaml:"year" json:"year"`
	Era           string   `yaml:"era" json:"era"`
}

// Preset returns the preset for id, or nil.
func (r *Registry) Preset(id string) *Preset {
	return r.presets[id]
}

// Presets returns every preset in table order.
func (r *Registry) Presets() []*Preset {
	out := make([]*Preset, 0, len(r.presetOrder))
	for _, id := range r.presetOrder {
		out = append(out, r.presets[id])
	}
	return out
}

// PresetsForPeriod returns the presets set in a period, scenarios included.
func (r *Registry) PresetsForPeriod(periodID string) []*Preset {
	var out []*Preset
	for _, p := range r.Presets() {
		if p.Period == periodID {
			out = append(out, p)
		}
	}
	return out
}

// PresetsByCategory groups preset ids by category.
func (r *Registry) PresetsByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, p := range r.Presets() {
		out[p.Category] = append(out[p.Category], p.ID)
	}
	return out
}

func (r *Registry) validatePresets() error {
	for _, id := range r.presetOrder {
		p := r.presets[id]
		period := r.periods[p.Period]
		if period == nil {
			return fmt.Errorf("preset %q: unknown period %q", id, p.Period)
		}
		if len(p.Civilizations) == 0 {
			return fmt.Errorf("preset %q: no civilizations", id)
		}
		for _, c := range p.Civilizations {
			if !period.HasCivilization(c) {
				return fmt.Errorf("preset %q: civilization %q is not of period %q", id, c, p.Period)
			}
		}
		if p.States < 1 {
			return fmt.Errorf("preset %q: states must be positive", id)
		}
	}
	return nil
}
