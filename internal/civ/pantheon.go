package civ

import (
	"strings"

	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/placement"
)

// Deity is one member of a pantheon.
type Deity struct {
	Name        string  `yaml:"name" json:"name"`
	Domain      string  `yaml:"domain" json:"domain"`
	Importance  float64 `yaml:"importance" json:"importance"`
	Description string  `yaml:"description" json:"description"`
}

// Pantheon is ordered by importance, most important first.
type Pantheon []Deity

func deityWeight(d Deity) float64 { return d.Importance }

// Top returns the n most important deities.
func (p Pantheon) Top(n int) Pantheon {
	if n > len(p) {
		n = len(p)
	}
	if n <= 0 {
		return nil
	}
	return p[:n]
}

// ByName finds a deity by exact name.
func (p Pantheon) ByName(name string) (Deity, bool) {
	for _, d := range p {
		if d.Name == name {
			return d, true
		}
	}
	return Deity{}, false
}

// ByDomain finds the first deity whose domain contains the given text,
// ignoring case.
func (p Pantheon) ByDomain(domain string) (Deity, bool) {
	domain = strings.ToLower(domain)
	for _, d := range p {
		if strings.Contains(strings.ToLower(d.Domain), domain) {
			return d, true
		}
	}
	return Deity{}, false
}

// Random draws one deity weighted by importance.
func (p Pantheon) Random(src entropy.Source) (Deity, bool) {
	return placement.SampleOne(src, []Deity(p), deityWeight)
}

// RandomN draws up to n distinct deities weighted by importance.
func (p Pantheon) RandomN(src entropy.Source, n int) Pantheon {
	return placement.Sample(src, []Deity(p), deityWeight, n, false)
}

// Names returns the deity names in order.
func (p Pantheon) Names() []string {
	out := make([]string, len(p))
	for i, d := range p {
		out[i] = d.Name
	}
	return out
}
