package features

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/placement"
)

const (
	religiousRarity        = 0.3
	religiousCapitalWeight = 0.5
	religiousPopScale      = 20.0
	topCapitalDeities      = 3
)

var religiousSpec = placement.Spec{
	Type:   "religious_site",
	Name:   "Temple",
	Icon:   defaultSiteIcon,
	Rarity: religiousRarity,
	DX:     50, DY: 50, PX: 13,
}

const defaultSiteIcon = "🏛️"

var siteIcons = map[string]string{
	"Temple": "🏛️", "Ziggurat": "🏯", "Pyramid Complex": "🔺", "Mortuary Temple": "⛩️",
	"Sacred Lake": "🌊", "Oracle": "🔮", "Agora Shrine": "🏛️", "Mystery Sanctuary": "🌙",
	"Panhellenic Sanctuary": "🏛️", "Capitol": "🏛️", "Shrine": "⛩️", "Sacred Grove": "🌳",
	"Vestal Temple": "🔥", "Fire Temple": "🔥", "Royal Palace": "👑", "Apadana": "🏛️",
	"Paradise Garden": "🌺", "Tophet": "🔥", "Temple of Tanit": "🏛️", "Harbor Temple": "⚓",
	"Sacred Precinct": "🏛️", "Nemeton": "🌳", "Spring Sanctuary": "💧", "Hilltop Shrine": "⛰️",
	"Rock Sanctuary": "🪨", "Storm God Shrine": "⚡", "Yazılıkaya": "🪨", "Palace Shrine": "👑",
	"Peak Sanctuary": "⛰️", "Cave Sanctuary": "🕳️", "Megaron": "🏛️", "Tholos Tomb": "⚱️",
	"Cult Center": "🏛️", "Sacred Spring": "💧", "E-temple": "🏯", "Temple Complex": "🏛️",
}

// SiteIcon returns the marker icon for a sacred site type.
func SiteIcon(siteType string) string {
	if icon, ok := siteIcons[siteType]; ok {
		return icon
	}
	return defaultSiteIcon
}

// ReligiousSite is a placed sacred site with its dedication.
type ReligiousSite struct {
	Marker     placement.Marker `json:"marker"`
	SiteType   string           `json:"site_type"`
	Deity      string           `json:"deity"`
	Domain     string           `json:"domain"`
	Importance float64          `json:"importance"`
}

// GenerateReligiousSites places sacred sites in every state mapped to a
// selected civilization.
func GenerateReligiousSites(ctx Context) ([]ReligiousSite, error) {
	if err := ctx.Ready(); err != nil {
		return nil, err
	}
	var out []ReligiousSite
	for _, p := range ctx.Profiles() {
		if len(p.Religion.Sites) == 0 || len(p.Religion.Pantheon) == 0 {
			slog.Info("civilization has no sacred sites", "civilization", p.ID)
			continue
		}
		for _, st := range ctx.StatesOf(p.ID) {
			out = append(out, religiousSitesOfState(ctx, p, st.ID)...)
		}
	}
	slog.Info("religious sites placed", "count", len(out))
	return out, nil
}

func religiousSitesOfState(ctx Context, p *civ.Profile, stateID int) []ReligiousSite {
	pop := placement.BurgCandidates(ctx.Map.BurgsOfState(stateID))
	trait := p.Religion.Importance
	markers := ctx.Pipeline().Run(placement.Job{
		Family:     placement.FamilyReligious,
		Civ:        p.ID,
		Spec:       religiousSpec,
		Population: pop,
		Trait:      trait,
		Weight: func(c placement.Candidate) float64 {
			w := trait * (1 + min(c.Population, religiousPopScale)/religiousPopScale)
			if c.Capital {
				w += religiousCapitalWeight
			}
			return w
		},
	})

	sites := make([]ReligiousSite, 0, len(markers))
	for i, m := range markers {
		b := ctx.Map.Burg(m.Burg)
		capital := b != nil && b.Capital

		siteType := p.Religion.Sites[0]
		if !(capital && i == 0) {
			siteType, _ = entropy.Pick(ctx.Rand, p.Religion.Sites)
		}
		deity := pickDeity(ctx.Rand, p.Religion.Pantheon, capital)

		burgName := ""
		if b != nil {
			burgName = b.Name
		}
		name := religiousName(ctx.Rand, p.ID, siteType, deity.Name, burgName)

		m.Type = siteSlug(siteType)
		m.Icon = SiteIcon(siteType)
		m.Name = name
		m.Note = fmt.Sprintf("%s\nDedicated to %s, %s", name, deity.Name, deity.Domain)
		m.Legend = fmt.Sprintf("A %s of the %s faith.", siteType, p.Name)

		sites = append(sites, ReligiousSite{
			Marker:     m,
			SiteType:   siteType,
			Deity:      deity.Name,
			Domain:     deity.Domain,
			Importance: siteImportance(deity.Importance, capital, i, len(markers)),
		})
	}
	return sites
}

// pickDeity draws uniformly from the top deities for capitals and by
// importance elsewhere.
func pickDeity(src entropy.Source, pantheon civ.Pantheon, capital bool) civ.Deity {
	if capital {
		d, _ := entropy.Pick(src, []civ.Deity(pantheon.Top(topCapitalDeities)))
		return d
	}
	d, _ := pantheon.Random(src)
	return d
}

// siteImportance scores a site from its deity, its setting and its rank
// among the state's sites.
func siteImportance(deityImportance float64, capital bool, index, total int) float64 {
	v := deityImportance * 0.7
	if capital {
		v += 0.2
	}
	if index == 0 {
		v += 0.1
	}
	if total > 0 {
		v *= 1 - float64(index)/float64(2*total)
	}
	return max(0.1, min(1, v))
}

func religiousName(src entropy.Source, civID, siteType, deity, burg string) string {
	patterns := []string{
		siteType + " of " + deity,
		deity + "'s " + siteType,
		"Great " + siteType + " of " + deity,
		"Sacred " + siteType + " of " + deity,
	}
	if burg != "" {
		patterns = append(patterns, siteType+" of "+deity+" at "+burg)
	}
	switch civID {
	case "roman":
		patterns = append(patterns, "Temple of "+deity, "Aedes "+deity)
	case "greek":
		patterns = append(patterns, "Sanctuary of "+deity, deity+"'s Oracle")
	case "egyptian":
		patterns = append(patterns, "House of "+deity, "Temple-Complex of "+deity)
	}
	name, _ := entropy.Pick(src, patterns)
	return name
}

func siteSlug(siteType string) string {
	return strings.ReplaceAll(strings.ToLower(siteType), " ", "_")
}
