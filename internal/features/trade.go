package features

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/world"
)

// Route kinds.
const (
	RouteSea      = "sea"
	RouteOverland = "overland"
	RouteRiver    = "river"
)

// Route links two settlements.
type Route struct {
	Type       string  `json:"type"`
	From       int     `json:"from"`
	To         int     `json:"to"`
	FromCell   int     `json:"from_cell"`
	ToCell     int     `json:"to_cell"`
	Distance   float64 `json:"distance"`
	Importance float64 `json:"importance"`
}

// routeRule bounds which pairs of settlements form a route of one kind.
type routeRule struct {
	kind        string
	icon        string
	minDist     float64 // exclusive
	maxDist     float64 // exclusive
	threshold   float64 // importance must exceed this
	acceptance  float64 // chance an otherwise valid route is kept; 0 keeps all
	endpoint    func(*world.Snapshot, *world.Burg) bool
	boostingCiv func(*civ.Profile) bool
}

var routeRules = []routeRule{
	{
		kind: RouteSea, icon: "⛵", minDist: 10, maxDist: 200, threshold: 0.3,
		endpoint: func(_ *world.Snapshot, b *world.Burg) bool {
			return b.Port && (b.Capital || b.Population > 5)
		},
		boostingCiv: (*civ.Profile).Maritime,
	},
	{
		kind: RouteOverland, icon: "🐪", minDist: 15, maxDist: 150, threshold: 0.4, acceptance: 0.4,
		endpoint: func(_ *world.Snapshot, b *world.Burg) bool {
			return b.Population > 3
		},
		boostingCiv: func(*civ.Profile) bool { return true },
	},
	{
		kind: RouteRiver, icon: "🛶", minDist: 5, maxDist: 100, threshold: 0.35,
		endpoint: func(snap *world.Snapshot, b *world.Burg) bool {
			return placement.NearRiver(snap, b.Cell)
		},
		boostingCiv: (*civ.Profile).RiverValley,
	},
}

// GenerateTradeRoutes links settlement pairs by sea, overland and river,
// returning the routes and one midpoint marker per route.
func GenerateTradeRoutes(ctx Context) ([]Route, []placement.Marker, error) {
	if err := ctx.Ready(); err != nil {
		return nil, nil, err
	}
	profiles := ctx.Profiles()

	var routes []Route
	var markers []placement.Marker
	for _, rule := range routeRules {
		boost := 0.0
		for _, p := range profiles {
			if rule.boostingCiv(p) {
				boost = p.Traits.Trade * 0.2
				break
			}
		}
		found := routesFor(ctx, rule, boost)
		for _, r := range found {
			markers = append(markers, routeMarker(ctx, rule, r))
		}
		routes = append(routes, found...)
		slog.Info("trade routes found", "type", rule.kind, "count", len(found))
	}
	return routes, markers, nil
}

func routesFor(ctx Context, rule routeRule, boost float64) []Route {
	var ends []*world.Burg
	for _, b := range ctx.Map.ActiveBurgs() {
		if rule.endpoint(ctx.Map, b) {
			ends = append(ends, b)
		}
	}

	var out []Route
	for i := 0; i < len(ends); i++ {
		for j := i + 1; j < len(ends); j++ {
			a, b := ends[i], ends[j]
			dist := math.Hypot(a.X-b.X, a.Y-b.Y)
			if dist <= rule.minDist || dist >= rule.maxDist {
				continue
			}
			imp := routeImportance(a, b, boost)
			if imp <= rule.threshold {
				continue
			}
			if rule.acceptance > 0 && ctx.Rand.Float64() >= rule.acceptance {
				continue
			}
			out = append(out, Route{
				Type:       rule.kind,
				From:       a.ID,
				To:         b.ID,
				FromCell:   a.Cell,
				ToCell:     b.Cell,
				Distance:   dist,
				Importance: imp,
			})
		}
	}
	return out
}

// routeImportance weighs combined population, capitals, crossing a border
// and the trading bent of the boosting civilization.
func routeImportance(a, b *world.Burg, boost float64) float64 {
	v := min(1, (a.Population+b.Population)/20) * 0.4
	if a.Capital {
		v += 0.2
	}
	if b.Capital {
		v += 0.2
	}
	if a.State != b.State {
		v += 0.3
	}
	return min(1, v+boost)
}

func routeMarker(ctx Context, rule routeRule, r Route) placement.Marker {
	a, b := ctx.Map.Burg(r.From), ctx.Map.Burg(r.To)
	x, y := (a.X+b.X)/2, (a.Y+b.Y)/2
	name := fmt.Sprintf("%s route from %s to %s", titleCase(rule.kind), a.Name, b.Name)
	return placement.Marker{
		Family: placement.FamilyTrade,
		Type:   rule.kind + "_route",
		Icon:   rule.icon,
		State:  a.State,
		Cell:   nearestCell(ctx.Map, x, y),
		X:      x,
		Y:      y,
		Name:   name,
		Note:   fmt.Sprintf("%s\nImportance: %.2f\nDistance: %.0f", name, r.Importance, r.Distance),
		DX:     50, DY: 50, PX: 12,
	}
}

func nearestCell(snap *world.Snapshot, x, y float64) int {
	best, bestDist := 0, math.Inf(1)
	for i := range snap.Cells {
		c := &snap.Cells[i]
		if d := math.Hypot(c.X-x, c.Y-y); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
