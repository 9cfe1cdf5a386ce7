// Package placement is the shared candidate → filter → weight → sample
// pipeline every marker family runs through, plus the append-only marker
// set the families write into.
package placement

import (
	"math"

	"github.com/talgya/antiquity/internal/world"
)

// Spec describes one placeable feature type.
type Spec struct {
	Type              string             `yaml:"type" json:"type"`
	Name              string             `yaml:"name" json:"name"`
	Icon              string             `yaml:"icon" json:"icon"`
	Rarity            float64            `yaml:"rarity" json:"rarity"`
	RequiresDesert    bool               `yaml:"requires_desert" json:"requires_desert,omitempty"`
	RequiresRiver     bool               `yaml:"requires_river" json:"requires_river,omitempty"`
	RequiresHighland  bool               `yaml:"requires_highland" json:"requires_highland,omitempty"`
	RequiresCoastal   bool               `yaml:"requires_coastal" json:"requires_coastal,omitempty"`
	RequiresPort      bool               `yaml:"requires_port" json:"requires_port,omitempty"`
	MinPopulation     float64            `yaml:"min_population" json:"min_population,omitempty"`
	Preference        map[string]float64 `yaml:"preference" json:"preference,omitempty"`
	DefaultPreference float64            `yaml:"default_preference" json:"default_preference,omitempty"` // 0 reads as 1
	CapitalBonus      float64            `yaml:"capital_bonus" json:"capital_bonus,omitempty"`
	PortBonus         float64            `yaml:"port_bonus" json:"port_bonus,omitempty"`
	DX                int                `yaml:"dx" json:"dx"`
	DY                int                `yaml:"dy" json:"dy"`
	PX                int                `yaml:"px" json:"px"`
}

// PreferenceFor returns the civilization's affinity for this feature.
func (s Spec) PreferenceFor(civ string) float64 {
	if v, ok := s.Preference[civ]; ok {
		return v
	}
	if s.DefaultPreference == 0 {
		return 1
	}
	return s.DefaultPreference
}

// Candidate is a settlement or bare cell under consideration.
type Candidate struct {
	Cell       int     `json:"cell"`
	Burg       int     `json:"burg,omitempty"`
	State      int     `json:"state,omitempty"`
	Population float64 `json:"population,omitempty"`
	Capital    bool    `json:"capital,omitempty"`
	Port       bool    `json:"port,omitempty"`
}

// BurgCandidate wraps a settlement.
func BurgCandidate(b *world.Burg) Candidate {
	return Candidate{
		Cell:       b.Cell,
		Burg:       b.ID,
		State:      b.State,
		Population: b.Population,
		Capital:    b.Capital,
		Port:       b.Port,
	}
}

// CellCandidate wraps a bare cell, picking up its settlement if it has one.
func CellCandidate(snap *world.Snapshot, cellID int) Candidate {
	c := snap.Cell(cellID)
	if c == nil {
		return Candidate{Cell: cellID}
	}
	if b := snap.Burg(c.Burg); b != nil && !b.Removed {
		return BurgCandidate(b)
	}
	return Candidate{Cell: cellID, State: c.State}
}

// BurgCandidates wraps a list of settlements.
func BurgCandidates(burgs []*world.Burg) []Candidate {
	out := make([]Candidate, 0, len(burgs))
	for _, b := range burgs {
		out = append(out, BurgCandidate(b))
	}
	return out
}

// Quota returns ceil(n × rarity × preference × trait) clamped to [0, n].
func Quota(n int, rarity, preference, trait float64) int {
	if n <= 0 {
		return 0
	}
	// Shave float noise so 10 × 0.3 stays 3.
	q := int(math.Ceil(float64(n)*rarity*preference*trait - 1e-9))
	return max(0, min(q, n))
}
