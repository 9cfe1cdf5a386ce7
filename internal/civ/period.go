package civ

import "fmt"

// Period is a historical era grouping civilizations.
type Period struct {
	ID            string   `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	DisplayName   string   `yaml:"display_name" json:"display_name"`
	StartYear     int      `yaml:"start_year" json:"start_year"`
	EndYear       int      `yaml:"end_year" json:"end_year"`
	Civilizations []string `yaml:"civilizations" json:"civilizations"`
	Technology    []string `yaml:"technology" json:"technology"`
	Governments   []string `yaml:"governments" json:"governments"`
	MaxStateSize  int      `yaml:"max_state_size" json:"max_state_size"`
	Description   string   `yaml:"description" json:"description"`
}

// Contains reports whether year falls inside the period, inclusive.
func (p *Period) Contains(year int) bool {
	return year >= p.StartYear && year <= p.EndYear
}

// HasCivilization reports whether the period lists the civilization.
func (p *Period) HasCivilization(id string) bool {
	for _, c := range p.Civilizations {
		if c == id {
			return true
		}
	}
	return false
}

// Midpoint returns the year halfway through the period, rounded down.
func (p *Period) Midpoint() int {
	sum := p.StartYear + p.EndYear
	if sum < 0 && sum%2 != 0 {
		return sum/2 - 1
	}
	return sum / 2
}

// FormatYear renders a year with an era suffix. Year 0 has no historical
// counterpart and renders as "1 BCE/CE".
func FormatYear(year int) string {
	switch {
	case year < 0:
		return fmt.Sprintf("%d BCE", -year)
	case year == 0:
		return "1 BCE/CE"
	default:
		return fmt.Sprintf("%d CE", year)
	}
}
