package features

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/placement"
)

//go:embed data/landmarks.yaml
var landmarkData []byte

// Landmarks are offset from their settlement by this many map units.
const (
	landmarkMinOffset = 2.0
	landmarkMaxOffset = 5.0
)

// LandmarkCatalog maps landmark type ids to their placement specs.
type LandmarkCatalog struct {
	specs map[string]placement.Spec
	order []string
}

// LoadLandmarks decodes the embedded landmark table.
func LoadLandmarks() (*LandmarkCatalog, error) {
	return ParseLandmarks(landmarkData)
}

// ParseLandmarks decodes a landmark table from YAML.
func ParseLandmarks(data []byte) (*LandmarkCatalog, error) {
	var doc struct {
		Landmarks []placement.Spec `yaml:"landmarks"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode landmarks: %w", err)
	}

	cat := &LandmarkCatalog{specs: make(map[string]placement.Spec, len(doc.Landmarks))}
	for _, s := range doc.Landmarks {
		if s.Type == "" {
			return nil, fmt.Errorf("landmark %q: missing type", s.Name)
		}
		if _, dup := cat.specs[s.Type]; dup {
			return nil, fmt.Errorf("landmark %q: duplicate type", s.Type)
		}
		cat.specs[s.Type] = s
		cat.order = append(cat.order, s.Type)
	}
	return cat, nil
}

// Spec returns the spec for a landmark type.
func (c *LandmarkCatalog) Spec(kind string) (placement.Spec, bool) {
	s, ok := c.specs[kind]
	return s, ok
}

// Types returns the landmark type ids in table order.
func (c *LandmarkCatalog) Types() []string {
	return append([]string(nil), c.order...)
}

// Missing returns the landmark ids declared by profiles that have no spec.
func (c *LandmarkCatalog) Missing(reg *civ.Registry) []string {
	var out []string
	for _, p := range reg.Civilizations() {
		for _, kind := range p.Landmarks {
			if _, ok := c.specs[kind]; !ok {
				out = append(out, p.ID+"/"+kind)
			}
		}
	}
	return out
}

// GenerateLandmarks places each selected civilization's declared landmark
// types near its settlements.
func GenerateLandmarks(ctx Context, cat *LandmarkCatalog) ([]placement.Marker, error) {
	if err := ctx.Ready(); err != nil {
		return nil, err
	}
	pipe := ctx.Pipeline()

	var out []placement.Marker
	for _, p := range ctx.Profiles() {
		var pop []placement.Candidate
		for _, b := range ctx.BurgsOf(p.ID) {
			if b.Population > 0 {
				pop = append(pop, placement.BurgCandidate(b))
			}
		}
		if len(pop) == 0 {
			slog.Info("no settlements for landmarks", "civilization", p.ID)
			continue
		}

		for _, kind := range p.Landmarks {
			spec, ok := cat.Spec(kind)
			if !ok {
				slog.Warn("landmark type has no spec", "civilization", p.ID, "type", kind)
				continue
			}
			markers := pipe.Run(placement.Job{
				Family:     placement.FamilyLandmark,
				Civ:        p.ID,
				Spec:       spec,
				Population: pop,
				Trait:      p.Traits.MonumentBuilding,
				Place:      jitter(pipe),
				Name:       func(placement.Candidate) string { return landmarkName(ctx.Rand, spec, p) },
				Note: func(_ placement.Candidate, name string) string {
					return fmt.Sprintf("%s\nA %s of the %s civilization.", name, spec.Name, p.Name)
				},
				Legend: func(_ placement.Candidate, name string) string {
					return fmt.Sprintf("%s, built by the %s.", name, p.Name)
				},
			})
			out = append(out, markers...)
		}
	}
	slog.Info("landmarks placed", "count", len(out))
	return out, nil
}

// jitter offsets a marker from its settlement at a random angle.
func jitter(pipe *placement.Pipeline) func(placement.Candidate) (float64, float64) {
	return func(c placement.Candidate) (float64, float64) {
		x, y := pipe.Position(c)
		angle := pipe.Rand.Float64() * 2 * math.Pi
		dist := entropy.Between(pipe.Rand, landmarkMinOffset, landmarkMaxOffset)
		return x + math.Cos(angle)*dist, y + math.Sin(angle)*dist
	}
}

func landmarkName(src entropy.Source, spec placement.Spec, p *civ.Profile) string {
	switch src.IntN(3) {
	case 0:
		if pre := p.CityPrefix(src); pre != "" {
			return spec.Name + " of " + pre
		}
	case 1:
		if d, ok := entropy.Pick(src, []civ.Deity(p.Religion.Pantheon.Top(5))); ok {
			return spec.Name + " of " + d.Name
		}
	}
	return spec.Name
}
