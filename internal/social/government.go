// Government types and the state parameters they imply.
// Ancient polities range from the single-city polis to the provincial empire.
package social

import (
	"sort"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
)

// FallbackGovernment is used when a civilization offers no valid choice.
const FallbackGovernment = "monarchy"

// Government describes how a type of polity holds territory.
type Government struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	MaxTerritory    int     `json:"max_territory"` // cells
	CapitalFocus    float64 `json:"capital_focus"`
	ExpansionRate   float64 `json:"expansion_rate"`
	Provinces       bool    `json:"provinces"`
	VassalTendency  float64 `json:"vassal_tendency"`
	TributeTendency float64 `json:"tribute_tendency"`
}

var governments = map[string]Government{
	"cityState":            {"cityState", "City-State", "Independent polis with limited territory", 25, 0.9, 0.5, false, 0.2, 0.3},
	"empire":               {"empire", "Empire", "Large centralized state with provinces", 250, 0.6, 0.95, true, 0.8, 0.9},
	"republic":             {"republic", "Republic", "Representative government with senate/council", 150, 0.7, 0.8, true, 0.6, 0.7},
	"oligarchy":            {"oligarchy", "Oligarchy", "Rule by wealthy elite class", 60, 0.75, 0.6, false, 0.4, 0.5},
	"democracy":            {"democracy", "Democracy", "Direct or representative democracy", 40, 0.8, 0.5, false, 0.2, 0.3},
	"tyranny":              {"tyranny", "Tyranny", "Autocratic rule by single tyrant", 50, 0.85, 0.7, false, 0.3, 0.6},
	"theocracy":            {"theocracy", "Theocracy", "Religious leadership controls state", 80, 0.8, 0.6, false, 0.5, 0.7},
	"principate":           {"principate", "Principate", "First citizen model (Roman-style)", 200, 0.65, 0.9, true, 0.7, 0.8},
	"monarchy":             {"monarchy", "Monarchy", "Traditional hereditary kingship", 100, 0.7, 0.7, true, 0.6, 0.6},
	"kingdom":              {"kingdom", "Kingdom", "Hereditary realm ruled from a royal capital", 120, 0.7, 0.75, true, 0.6, 0.6},
	"thalassocracy":        {"thalassocracy", "Thalassocracy", "Maritime power ruling through its fleets", 70, 0.75, 0.7, false, 0.4, 0.7},
	"palace_economy":       {"palace_economy", "Palace Economy", "Redistributive state centred on a palace", 50, 0.9, 0.5, false, 0.3, 0.5},
	"tribal_confederation": {"tribal_confederation", "Tribal Confederation", "Loose alliance of tribes under elected chiefs", 90, 0.4, 0.6, false, 0.5, 0.4},
	"chiefdom":             {"chiefdom", "Chiefdom", "Ranked society led by a paramount chief", 30, 0.8, 0.4, false, 0.2, 0.3},
	"satrapy_system":       {"satrapy_system", "Satrapy System", "Empire governed through appointed satraps", 300, 0.55, 0.9, true, 0.9, 0.95},
}

// GovernmentByID looks a government type up.
func GovernmentByID(id string) (Government, bool) {
	g, ok := governments[id]
	return g, ok
}

// Governments returns every government type sorted by id.
func Governments() []Government {
	out := make([]Government, 0, len(governments))
	for _, g := range governments {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SelectGovernment picks the civilization's default government when it is
// one of its own types, else one of its types at random, else monarchy.
func SelectGovernment(src entropy.Source, p *civ.Profile) string {
	if p == nil || len(p.Governments) == 0 {
		return FallbackGovernment
	}
	if p.DefaultGovernment != "" && p.SupportsGovernment(p.DefaultGovernment) {
		return p.DefaultGovernment
	}
	g, _ := entropy.Pick(src, p.Governments)
	return g
}

// MaxStateSize is the government's territory cap, further limited by the
// civilization's own cap. Unknown governments allow 100 cells.
func MaxStateSize(gov string, p *civ.Profile) int {
	g, ok := governments[gov]
	if !ok {
		return 100
	}
	size := g.MaxTerritory
	if p != nil && p.Constraints.MaxStateSize > 0 {
		size = min(size, p.Constraints.MaxStateSize)
	}
	return size
}

// Expansionism blends a base tendency evenly with the government's rate.
func Expansionism(gov string, base float64) float64 {
	g, ok := governments[gov]
	if !ok {
		return base
	}
	return base*0.5 + g.ExpansionRate*0.5
}

// HasProvinces reports whether the government divides into provinces.
func HasProvinces(gov string) bool {
	return governments[gov].Provinces
}

// VassalProbability grows with state size up to 100 cells.
func VassalProbability(gov string, stateCells int) float64 {
	g, ok := governments[gov]
	if !ok {
		return 0.3
	}
	return g.VassalTendency * min(float64(stateCells)/100, 1)
}

// TributeProbability is the chance the state extracts tribute.
func TributeProbability(gov string) float64 {
	if g, ok := governments[gov]; ok {
		return g.TributeTendency
	}
	return 0.5
}

// CapitalFocus is how much power sits in the capital.
func CapitalFocus(gov string) float64 {
	if g, ok := governments[gov]; ok {
		return g.CapitalFocus
	}
	return 0.7
}

// StateConfig is the generation profile of one state.
type StateConfig struct {
	Government      string  `json:"government"`
	GovernmentName  string  `json:"government_name"`
	MaxSize         int     `json:"max_size"`
	Expansionism    float64 `json:"expansionism"`
	Provinces       bool    `json:"provinces"`
	CapitalFocus    float64 `json:"capital_focus"`
	VassalTendency  float64 `json:"vassal_tendency"`
	TributeTendency float64 `json:"tribute_tendency"`
}

// NewStateConfig builds a state profile. An empty gov selects one from
// the civilization; an unknown gov falls back to a plain monarchy.
func NewStateConfig(src entropy.Source, p *civ.Profile, gov string) StateConfig {
	if gov == "" {
		gov = SelectGovernment(src, p)
	}
	g, ok := governments[gov]
	if !ok {
		return StateConfig{Government: FallbackGovernment, MaxSize: 100, Expansionism: 0.7, CapitalFocus: 0.7}
	}
	return StateConfig{
		Government:      gov,
		GovernmentName:  g.Name,
		MaxSize:         MaxStateSize(gov, p),
		Expansionism:    g.ExpansionRate,
		Provinces:       g.Provinces,
		CapitalFocus:    g.CapitalFocus,
		VassalTendency:  g.VassalTendency,
		TributeTendency: g.TributeTendency,
	}
}

// ValidFor reports whether the civilization historically used gov. A nil
// profile accepts everything.
func ValidFor(gov string, p *civ.Profile) bool {
	if p == nil || len(p.Governments) == 0 {
		return true
	}
	return p.SupportsGovernment(gov)
}
