package civ

import (
	"github.com/talgya/antiquity/internal/entropy"
)

// Gender selects a leader name list.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Fallbacks used when a profile has no entry in the relevant table.
const (
	DefaultTitle   = "Ruler"
	DefaultDynasty = "Royal"
)

// CityName builds a city name from the extended prefix and suffix tables,
// falling back to the profile's own lists.
func (p *Profile) CityName(src entropy.Source) string {
	prefixes, suffixes := p.NamePatterns.CityPrefixes, p.NamePatterns.CitySuffixes
	if len(prefixes) == 0 || len(suffixes) == 0 {
		prefixes, suffixes = p.CityPrefixes, p.CitySuffixes
	}
	pre, _ := entropy.Pick(src, prefixes)
	suf, _ := entropy.Pick(src, suffixes)
	return pre + suf
}

// CityPrefix returns one of the profile's short city stems.
func (p *Profile) CityPrefix(src entropy.Source) string {
	pre, _ := entropy.Pick(src, p.CityPrefixes)
	return pre
}

// LeaderName returns a personal name. Unknown genders fall back to male
// names; tables keyed by praenomen/nomen/cognomen produce a full tria nomina.
func (p *Profile) LeaderName(src entropy.Source, g Gender) string {
	table := p.NamePatterns.LeaderNames
	if names := table[string(g)]; len(names) > 0 {
		n, _ := entropy.Pick(src, names)
		return n
	}
	if names := table[string(Male)]; len(names) > 0 {
		n, _ := entropy.Pick(src, names)
		return n
	}
	if len(table["praenomen"]) > 0 {
		return p.TriaNomina(src)
	}

	names := p.LeaderNames.Male
	if g == Female && len(p.LeaderNames.Female) > 0 {
		names = p.LeaderNames.Female
	}
	n, _ := entropy.Pick(src, names)
	return n
}

// TriaNomina returns a praenomen nomen cognomen triple, or an empty string
// when the profile has no such table.
func (p *Profile) TriaNomina(src entropy.Source) string {
	table := p.NamePatterns.LeaderNames
	pre, ok1 := entropy.Pick(src, table["praenomen"])
	nom, ok2 := entropy.Pick(src, table["nomen"])
	cog, ok3 := entropy.Pick(src, table["cognomen"])
	if !ok1 || !ok2 || !ok3 {
		return ""
	}
	return pre + " " + nom + " " + cog
}

// Title returns a ruler title, or DefaultTitle.
func (p *Profile) Title(src entropy.Source) string {
	titles := p.NamePatterns.Titles
	if len(titles) == 0 {
		titles = p.RuleTitles
	}
	if t, ok := entropy.Pick(src, titles); ok {
		return t
	}
	return DefaultTitle
}

// DynastyName returns a dynasty name, or DefaultDynasty.
func (p *Profile) DynastyName(src entropy.Source) string {
	names := p.NamePatterns.Dynasties
	if len(names) == 0 {
		names = p.Dynasties
	}
	if d, ok := entropy.Pick(src, names); ok {
		return d
	}
	return DefaultDynasty
}

// Epithet returns a ruler epithet, or an empty string.
func (p *Profile) Epithet(src entropy.Source) string {
	e, _ := entropy.Pick(src, p.Epithets)
	return e
}

// Leader returns "<title> <name>".
func (p *Profile) Leader(src entropy.Source, g Gender) string {
	return p.Title(src) + " " + p.LeaderName(src, g)
}

// FullRulerName returns "<title> <name>" with an epithet appended half the
// time.
func (p *Profile) FullRulerName(src entropy.Source, g Gender) string {
	name := p.LeaderName(src, g)
	title := p.Title(src)
	if entropy.Chance(src, 0.5) {
		if e := p.Epithet(src); e != "" {
			return title + " " + name + " " + e
		}
	}
	return title + " " + name
}
