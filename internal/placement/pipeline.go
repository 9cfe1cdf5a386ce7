package placement

import (
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/world"
)

// Job is one run of the pipeline for a single spec and owner.
type Job struct {
	Family     string
	Civ        string
	Spec       Spec
	Population []Candidate // pre-filter population the quota is computed from
	Trait      float64     // cultural multiplier; 0 places nothing

	// Optional hooks. Nil hooks fall back to the defaults noted.
	Target func(n int) int                    // Quota(n, rarity, pref, trait)
	Weight func(Candidate) float64            // DefaultWeight
	Place  func(Candidate) (x, y float64)     // cell centre, or the burg's position
	Name   func(Candidate) string             // spec name
	Note   func(c Candidate, name string) string
	Legend func(c Candidate, name string) string
}

// Pipeline runs jobs against one map with one random source.
type Pipeline struct {
	Snap *world.Snapshot
	Rand entropy.Source
}

// NewPipeline creates a pipeline.
func NewPipeline(snap *world.Snapshot, src entropy.Source) *Pipeline {
	return &Pipeline{Snap: snap, Rand: src}
}

// DefaultWeight is preference × trait plus the capital and port bonuses.
func DefaultWeight(spec Spec, civ string, trait float64) func(Candidate) float64 {
	pref := spec.PreferenceFor(civ)
	return func(c Candidate) float64 {
		w := pref * trait
		if c.Capital {
			w += spec.CapitalBonus
		}
		if c.Port {
			w += spec.PortBonus
		}
		return w
	}
}

// Target returns how many markers the job aims for before filtering.
func (p *Pipeline) Target(job Job) int {
	if job.Target != nil {
		return job.Target(len(job.Population))
	}
	return Quota(len(job.Population), job.Spec.Rarity, job.Spec.PreferenceFor(job.Civ), job.Trait)
}

// Run computes the quota, filters, samples without replacement and builds
// markers. Count is min(quota, eligible); no candidate is picked twice.
func (p *Pipeline) Run(job Job) []Marker {
	target := p.Target(job)
	if target <= 0 {
		return nil
	}
	eligible := Filter(p.Snap, job.Population, job.Spec)
	if len(eligible) == 0 {
		return nil
	}

	weight := job.Weight
	if weight == nil {
		weight = DefaultWeight(job.Spec, job.Civ, job.Trait)
	}
	picked := Sample(p.Rand, eligible, weight, min(target, len(eligible)), false)

	out := make([]Marker, 0, len(picked))
	for _, c := range picked {
		out = append(out, p.marker(job, c))
	}
	return out
}

func (p *Pipeline) marker(job Job, c Candidate) Marker {
	var x, y float64
	if job.Place != nil {
		x, y = job.Place(c)
	} else {
		x, y = p.position(c)
	}

	name := job.Spec.Name
	if job.Name != nil {
		name = job.Name(c)
	}

	m := Marker{
		Family:       job.Family,
		Type:         job.Spec.Type,
		Icon:         job.Spec.Icon,
		Civilization: job.Civ,
		State:        c.State,
		Cell:         c.Cell,
		Burg:         c.Burg,
		X:            x,
		Y:            y,
		Name:         name,
		DX:           job.Spec.DX,
		DY:           job.Spec.DY,
		PX:           job.Spec.PX,
	}
	if job.Note != nil {
		m.Note = job.Note(c, name)
	}
	if job.Legend != nil {
		m.Legend = job.Legend(c, name)
	}
	return m
}

// position returns the burg's coordinates, or the cell centre.
func (p *Pipeline) position(c Candidate) (float64, float64) {
	if b := p.Snap.Burg(c.Burg); b != nil {
		return b.X, b.Y
	}
	if cell := p.Snap.Cell(c.Cell); cell != nil {
		return cell.X, cell.Y
	}
	return 0, 0
}

// Position is the default placement for a candidate.
func (p *Pipeline) Position(c Candidate) (float64, float64) {
	return p.position(c)
}
