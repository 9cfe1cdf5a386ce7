package features

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

// Fortification type tags.
const (
	FortCityWalls  = "city_walls"
	FortBorderFort = "border_fort"
	FortNavalBase  = "naval_base"
	FortWatchTower = "watch_tower"
)

const (
	borderCellsPerFort = 50
	fortHeightMin      = 60
	towerHeightMin     = 65
	towerAreaDivisor   = 100.0
	highGroundBonus    = 0.7
	largePortBonus     = 0.2
	largePortMin       = 10
)

var cityWallsSpec = placement.Spec{
	Type:          FortCityWalls,
	Name:          "City Walls",
	Icon:          "🏰",
	Rarity:        0.6,
	MinPopulation: 5,
	CapitalBonus:  0.3,
	DX:            50, DY: 50, PX: 13,
	Preference: map[string]float64{
		"roman": 0.9, "greek": 0.8, "mycenaean": 0.9, "hittite": 0.8, "egyptian": 0.6,
		"sumerian": 0.7, "persian": 0.7, "celtic": 0.6, "carthaginian": 0.7, "minoan": 0.5,
	},
}

var borderFortSpec = placement.Spec{
	Type: FortBorderFort,
	Name: "Border Fort",
	Icon: "🏯",
	DX:   50, DY: 50, PX: 13,
	Preference: map[string]float64{
		"roman": 1.0, "greek": 0.7, "persian": 0.8, "mycenaean": 0.8, "hittite": 0.9,
		"egyptian": 0.7, "sumerian": 0.6, "celtic": 0.5, "carthaginian": 0.6, "minoan": 0.4,
	},
}

var navalBaseSpec = placement.Spec{
	Type:         FortNavalBase,
	Name:         "Naval Base",
	Icon:         "⚓",
	Rarity:       0.5,
	RequiresPort: true,
	CapitalBonus: 0.4,
	DX:           50, DY: 50, PX: 13,
	Preference: map[string]float64{
		"minoan": 1.0, "carthaginian": 0.9, "greek": 0.8, "roman": 0.8, "persian": 0.6,
		"mycenaean": 0.7, "egyptian": 0.5, "sumerian": 0.4, "hittite": 0.3, "celtic": 0.4,
	},
}

var watchTowerSpec = placement.Spec{
	Type: FortWatchTower,
	Name: "Watch Tower",
	Icon: "🗼",
	DX:   50, DY: 50, PX: 12,
	Preference: map[string]float64{
		"roman": 0.8, "greek": 0.7, "persian": 0.7, "egyptian": 0.6, "mycenaean": 0.7,
		"hittite": 0.7, "sumerian": 0.6, "celtic": 0.5, "carthaginian": 0.6, "minoan": 0.4,
	},
}

// FortStyle names how a civilization builds each fortification type.
type FortStyle struct {
	CityWalls  string
	BorderFort string
	NavalBase  string
	WatchTower string
}

var fortStyles = map[string]FortStyle{
	"roman":        {"Roman stone walls with towers", "Castrum (rectangular fort)", "Naval port with breakwater", "Stone watchtower"},
	"greek":        {"Cyclopean walls", "Hilltop fortress", "Naval base", "Signal tower"},
	"egyptian":     {"Mudbrick walls", "Desert fort", "River port", "Watch post"},
	"persian":      {"Brick walls with gates", "Mountain fortress", "Harbor fortress", "Border outpost"},
	"celtic":       {"Timber and earth ramparts", "Hillfort", "Coastal stronghold", "Signal hill"},
	"carthaginian": {"Triple walls", "Garrison fort", "Cothon (naval harbor)", "Coastal tower"},
	"sumerian":     {"Mudbrick walls", "City outpost", "River dock", "Guard post"},
	"minoan":       {"Palace walls", "Coastal watchtower", "Harbor complex", "Beacon tower"},
	"mycenaean":    {"Cyclopean citadel walls", "Hilltop stronghold", "Naval garrison", "Acropolis tower"},
	"hittite":      {"Stone walls with postern gates", "Mountain fortress", "Fortified port", "Border watchtower"},
}

// StyleFor returns the civilization's style for a fortification type.
func StyleFor(civID, kind string) string {
	s, ok := fortStyles[civID]
	if !ok {
		s = FortStyle{"Stone walls", "Fort", "Naval base", "Watchtower"}
	}
	switch kind {
	case FortCityWalls:
		return s.CityWalls
	case FortBorderFort:
		return s.BorderFort
	case FortNavalBase:
		return s.NavalBase
	default:
		return s.WatchTower
	}
}

func fortNote(kind string, p *civ.Profile) (note, legend func(placement.Candidate, string) string) {
	style := StyleFor(p.ID, kind)
	note = func(_ placement.Candidate, name string) string {
		return style + "\n" + name
	}
	legend = func(placement.Candidate, string) string {
		return fmt.Sprintf("A %s of the %s civilization.", style, p.Name)
	}
	return note, legend
}

// GenerateFortifications runs all four fortification families for every
// selected civilization.
func GenerateFortifications(ctx Context) ([]placement.Marker, error) {
	if err := ctx.Ready(); err != nil {
		return nil, err
	}
	var out []placement.Marker
	for _, p := range ctx.Profiles() {
		out = append(out, cityWalls(ctx, p)...)
		out = append(out, borderForts(ctx, p)...)
		out = append(out, navalBases(ctx, p)...)
		out = append(out, watchTowers(ctx, p)...)
	}
	slog.Info("fortifications placed", "count", len(out))
	return out, nil
}

// CityWalls places walls around a civilization's larger settlements.
func CityWalls(ctx Context, civID string) ([]placement.Marker, error) {
	p, err := selectedProfile(ctx, civID)
	if err != nil {
		return nil, err
	}
	return cityWalls(ctx, p), nil
}

// BorderForts places forts on the edges of a civilization's states.
func BorderForts(ctx Context, civID string) ([]placement.Marker, error) {
	p, err := selectedProfile(ctx, civID)
	if err != nil {
		return nil, err
	}
	return borderForts(ctx, p), nil
}

// NavalBases places bases in a civilization's ports.
func NavalBases(ctx Context, civID string) ([]placement.Marker, error) {
	p, err := selectedProfile(ctx, civID)
	if err != nil {
		return nil, err
	}
	return navalBases(ctx, p), nil
}

// WatchTowers places towers on high ground, harbors and roads.
func WatchTowers(ctx Context, civID string) ([]placement.Marker, error) {
	p, err := selectedProfile(ctx, civID)
	if err != nil {
		return nil, err
	}
	return watchTowers(ctx, p), nil
}

func selectedProfile(ctx Context, civID string) (*civ.Profile, error) {
	if err := ctx.Ready(); err != nil {
		return nil, err
	}
	if !ctx.Selection.Has(civID) {
		return nil, fmt.Errorf("civilization %q: %w", civID, ErrNoSelection)
	}
	p := ctx.Registry.Civilization(civID)
	if p == nil {
		return nil, fmt.Errorf("civilization %q: %w", civID, ErrNoSelection)
	}
	return p, nil
}

func cityWalls(ctx Context, p *civ.Profile) []placement.Marker {
	note, legend := fortNote(FortCityWalls, p)
	return ctx.Pipeline().Run(placement.Job{
		Family:     placement.FamilyFortification,
		Civ:        p.ID,
		Spec:       cityWallsSpec,
		Population: placement.BurgCandidates(ctx.BurgsOf(p.ID)),
		Trait:      p.Traits.Fortification,
		Name:       burgNamed(ctx, "Walls"),
		Note:       note,
		Legend:     legend,
	})
}

func borderForts(ctx Context, p *civ.Profile) []placement.Marker {
	pipe := ctx.Pipeline()
	note, legend := fortNote(FortBorderFort, p)
	base := placement.DefaultWeight(borderFortSpec, p.ID, p.Traits.Fortification)

	var out []placement.Marker
	for _, st := range ctx.StatesOf(p.ID) {
		var border []placement.Candidate
		for _, id := range ctx.Map.CellsOfState(st.ID) {
			if placement.IsBorderCell(ctx.Map, id) {
				border = append(border, placement.Candidate{Cell: id, State: st.ID})
			}
		}
		out = append(out, pipe.Run(placement.Job{
			Family:     placement.FamilyFortification,
			Civ:        p.ID,
			Spec:       borderFortSpec,
			Population: border,
			Trait:      p.Traits.Fortification,
			Target: func(n int) int {
				return int(math.Ceil(float64(n) / borderCellsPerFort))
			},
			Weight: func(c placement.Candidate) float64 {
				w := base(c)
				if cell := ctx.Map.Cell(c.Cell); cell != nil && cell.Height >= fortHeightMin {
					w += highGroundBonus
				}
				return w
			},
			Name:   regionNamed(ctx, "Fort"),
			Note:   note,
			Legend: legend,
		})...)
	}
	return out
}

func navalBases(ctx Context, p *civ.Profile) []placement.Marker {
	note, legend := fortNote(FortNavalBase, p)
	trait := p.Geography.CoastalPreference
	base := placement.DefaultWeight(navalBaseSpec, p.ID, trait)
	return ctx.Pipeline().Run(placement.Job{
		Family:     placement.FamilyFortification,
		Civ:        p.ID,
		Spec:       navalBaseSpec,
		Population: placement.BurgCandidates(ctx.BurgsOf(p.ID)),
		Trait:      trait,
		Weight: func(c placement.Candidate) float64 {
			w := base(c)
			if c.Population > largePortMin {
				w += largePortBonus
			}
			return w
		},
		Name:   burgNamed(ctx, "Naval Base"),
		Note:   note,
		Legend: legend,
	})
}

func watchTowers(ctx Context, p *civ.Profile) []placement.Marker {
	pipe := ctx.Pipeline()
	note, legend := fortNote(FortWatchTower, p)
	pref := watchTowerSpec.PreferenceFor(p.ID)
	trait := p.Traits.Fortification

	var out []placement.Marker
	for _, st := range ctx.StatesOf(p.ID) {
		var sites []placement.Candidate
		for _, id := range ctx.Map.CellsOfState(st.ID) {
			if towerSite(ctx.Map.Cell(id)) {
				sites = append(sites, placement.Candidate{Cell: id, State: st.ID})
			}
		}
		area := st.Area
		out = append(out, pipe.Run(placement.Job{
			Family:     placement.FamilyFortification,
			Civ:        p.ID,
			Spec:       watchTowerSpec,
			Population: sites,
			Trait:      trait,
			Target: func(n int) int {
				return min(n, int(math.Ceil(float64(area)/towerAreaDivisor*pref*trait-1e-9)))
			},
			Name:   regionNamed(ctx, "Tower"),
			Note:   note,
			Legend: legend,
		})...)
	}
	return out
}

func towerSite(c *world.Cell) bool {
	return c.Height >= towerHeightMin || c.Harbor > 0 || c.Road > 0
}

func burgNamed(ctx Context, suffix string) func(placement.Candidate) string {
	return func(c placement.Candidate) string {
		if b := ctx.Map.Burg(c.Burg); b != nil && b.Name != "" {
			return b.Name + " " + suffix
		}
		return suffix
	}
}

func regionNamed(ctx Context, suffix string) func(placement.Candidate) string {
	return func(c placement.Candidate) string {
		if name := ctx.regionName(c.Cell); name != "" {
			return name + " " + suffix
		}
		return suffix
	}
}
