package mode

import "github.com/talgya/antiquity/internal/civ"

const (
	maxRecommendedStates = 30
	defaultMaxStates     = 100
	culturesSetAntique   = "antique"
)

// Settings are the generation settings suggested for the active period.
type Settings struct {
	States      int    `json:"states"`
	CulturesSet string `json:"cultures_set"`
	Year        int    `json:"year"`
	Era         string `json:"era"`
}

// GenerationParams is the slice of host generation options the mode
// constrains.
type GenerationParams struct {
	MaxStates     int      `json:"max_states"`
	Governments   []string `json:"governments,omitempty"`
	Technology    []string `json:"technology,omitempty"`
	Period        string   `json:"period,omitempty"`
	Civilizations []string `json:"civilizations,omitempty"`
}

// RecommendedSettings suggests state count and year for the active period.
// ok is false in fantasy mode.
func (s *State) RecommendedSettings() (Settings, bool) {
	sel := s.Selection()
	p := s.reg.Period(sel.Period)
	if !sel.Enabled || p == nil {
		return Settings{}, false
	}
	return Settings{
		States:      min(p.MaxStateSize, maxRecommendedStates),
		CulturesSet: culturesSetAntique,
		Year:        p.Midpoint(),
		Era:         p.Name,
	}, true
}

// ApplyConstraints narrows generation params to the active period. In
// fantasy mode params are returned unchanged.
func (s *State) ApplyConstraints(params GenerationParams) GenerationParams {
	sel := s.Selection()
	p := s.reg.Period(sel.Period)
	if !sel.Enabled || p == nil {
		return params
	}
	limit := params.MaxStates
	if limit <= 0 {
		limit = defaultMaxStates
	}
	params.MaxStates = min(limit, p.MaxStateSize)
	params.Governments = append([]string(nil), p.Governments...)
	params.Technology = append([]string(nil), p.Technology...)
	params.Period = p.ID
	params.Civilizations = sel.Civilizations
	return params
}

// DisplayName names the current mode for status lines.
func (s *State) DisplayName() string {
	sel := s.Selection()
	if !sel.Enabled {
		return "Fantasy Mode"
	}
	if p := s.reg.Period(sel.Period); p != nil {
		return p.DisplayName
	}
	return "Historical Mode"
}

// ActiveCivilizations returns the selected profiles that existed in year.
func (s *State) ActiveCivilizations(year int) []*civ.Profile {
	var out []*civ.Profile
	for _, p := range s.Profiles() {
		if p.ActiveIn(year) {
			out = append(out, p)
		}
	}
	return out
}
