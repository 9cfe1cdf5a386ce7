package civ

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/talgya/antiquity/internal/world"
)

// MatchReason records how a host culture was tied to a civilization.
type MatchReason string

const (
	MatchOverride  MatchReason = "override"
	MatchName      MatchReason = "name"
	MatchSimilar   MatchReason = "similar"
	MatchNameBase  MatchReason = "name_base"
	MatchUnmatched MatchReason = "unmatched"
)

// Match is the civilization a host culture maps to. CivID is empty and
// Matched false for the unmatched variant.
type Match struct {
	CultureID int         `json:"culture_id"`
	Culture   string      `json:"culture"`
	CivID     string      `json:"civ_id,omitempty"`
	Matched   bool        `json:"matched"`
	Reason    MatchReason `json:"reason"`
}

// CultureIndex maps host cultures to civilization profiles. Built once per
// generation pass; lookups never guess.
type CultureIndex struct {
	matches map[int]Match
	order   []int
}

// NewCultureIndex resolves every culture in order: explicit override, exact
// name, close spelling, then a name base owned by exactly one candidate.
// Candidates limits matching to the given civilization ids; empty means all.
// An override naming an unknown civilization is an error.
func NewCultureIndex(reg *Registry, cultures []world.Culture, overrides map[int]string, candidates []string) (*CultureIndex, error) {
	pool := make([]*Profile, 0)
	if len(candidates) == 0 {
		pool = reg.Civilizations()
	} else {
		for _, id := range candidates {
			if p := reg.Civilization(id); p != nil {
				pool = append(pool, p)
			}
		}
	}

	idx := &CultureIndex{matches: make(map[int]Match)}
	for _, c := range cultures {
		if c.ID == 0 {
			continue
		}
		m := Match{CultureID: c.ID, Culture: c.Name, Reason: MatchUnmatched}
		if civID, ok := overrides[c.ID]; ok {
			if reg.Civilization(civID) == nil {
				return nil, fmt.Errorf("culture %d override: unknown civilization %q", c.ID, civID)
			}
			m.CivID, m.Matched, m.Reason = civID, true, MatchOverride
		} else if p, reason := matchCulture(c, pool); p != nil {
			m.CivID, m.Matched, m.Reason = p.ID, true, reason
		}
		idx.matches[c.ID] = m
		idx.order = append(idx.order, c.ID)
	}
	return idx, nil
}

func matchCulture(c world.Culture, pool []*Profile) (*Profile, MatchReason) {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	if name == "" {
		return nil, MatchUnmatched
	}

	// Ids beat display names, which beat a last word shared by no other profile.
	for _, exact := range []func(*Profile) bool{
		func(p *Profile) bool { return name == p.ID },
		func(p *Profile) bool { return name == strings.ToLower(p.Name) },
	} {
		for _, p := range pool {
			if exact(p) {
				return p, MatchName
			}
		}
	}
	var byWord *Profile
	for _, p := range pool {
		if name != lastWord(p.Name) {
			continue
		}
		if byWord != nil {
			return nil, MatchUnmatched // ambiguous last word
		}
		byWord = p
	}
	if byWord != nil {
		return byWord, MatchName
	}

	var best *Profile
	bestDist := -1
	for _, p := range pool {
		d := levenshtein.ComputeDistance(name, p.ID)
		if d > similarityLimit(p.ID) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	if best != nil {
		return best, MatchSimilar
	}

	var byBase *Profile
	for _, p := range pool {
		if c.Base != 0 && p.NameBase == c.Base {
			if byBase != nil {
				return nil, MatchUnmatched // ambiguous base
			}
			byBase = p
		}
	}
	if byBase != nil {
		return byBase, MatchNameBase
	}
	return nil, MatchUnmatched
}

// similarityLimit scales the accepted edit distance with word length.
func similarityLimit(s string) int {
	return max(1, len(s)/4)
}

func lastWord(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Lookup returns the match for a culture id. Unknown ids return the
// unmatched variant.
func (x *CultureIndex) Lookup(cultureID int) Match {
	if m, ok := x.matches[cultureID]; ok {
		return m
	}
	return Match{CultureID: cultureID, Reason: MatchUnmatched}
}

// CivFor returns the civilization id for a culture.
func (x *CultureIndex) CivFor(cultureID int) (string, bool) {
	m := x.Lookup(cultureID)
	return m.CivID, m.Matched
}

// CulturesOf returns the culture ids mapped to a civilization.
func (x *CultureIndex) CulturesOf(civID string) []int {
	var out []int
	for _, id := range x.order {
		if x.matches[id].CivID == civID {
			out = append(out, id)
		}
	}
	return out
}

// Matches returns every resolved culture in culture id order.
func (x *CultureIndex) Matches() []Match {
	out := make([]Match, 0, len(x.order))
	for _, id := range x.order {
		out = append(out, x.matches[id])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CultureID < out[j].CultureID })
	return out
}

// Unmatched returns the cultures that map to no civilization.
func (x *CultureIndex) Unmatched() []Match {
	var out []Match
	for _, m := range x.Matches() {
		if !m.Matched {
			out = append(out, m)
		}
	}
	return out
}
