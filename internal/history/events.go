// Package history generates historical events (wars, migrations,
// conquests, plagues, dynastic changes) for the states of a host map and
// applies their effects to the dynasty tracker and the timeline.
package history

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/world"
)

//go:embed data/events.yaml
var eventData []byte

// Event type keys.
const (
	TypeWar             = "war"
	TypeMigration       = "migration"
	TypeConquest        = "conquest"
	TypePlague          = "plague"
	TypeFamine          = "famine"
	TypeRebellion       = "rebellion"
	TypeNaturalDisaster = "naturalDisaster"
	TypeFoundation      = "foundation"
	TypeAlliance        = "alliance"
	TypeDynasty         = "dynasty"
)

// Effects an event type can carry. Only some of them change tracked state;
// the rest are descriptive.
const (
	EffectBorderChange    = "borderChange"
	EffectStateAbsorption = "stateAbsorption"
	EffectDynastyChange   = "dynastyChange"
	EffectPoliticalChange = "politicalChange"
)

// Probability modifiers.
const (
	largeStateCells = 50
	largeStateBonus = 1.2
	rivalWarBonus   = 0.1
)

// EventType is one kind of historical event.
type EventType struct {
	Key         string             `yaml:"key" json:"key"`
	Name        string             `yaml:"name" json:"name"`
	Frequency   float64            `yaml:"frequency" json:"frequency"`
	Effects     []string           `yaml:"effects" json:"effects"`
	Description string             `yaml:"description" json:"description"`
	Icon        string             `yaml:"icon" json:"icon"`
	Periods     map[string]float64 `yaml:"periods" json:"periods,omitempty"`
	Headlines   []string           `yaml:"headlines" json:"headlines"`
}

// Probability is the chance weight of the event for a state. Large states
// see more events, wars grow with the number of rivals and the period's
// multiplier applies when period is set.
func (t EventType) Probability(st *world.State, period string, rivals int) float64 {
	p := t.Frequency
	if st != nil && st.Cells > largeStateCells {
		p *= largeStateBonus
	}
	if t.Key == TypeWar && rivals > 0 {
		p *= 1 + float64(rivals)*rivalWarBonus
	}
	if m, ok := t.Periods[period]; ok {
		p *= m
	}
	return p
}

// Headline draws a description line for the event in stateName.
func (t EventType) Headline(src entropy.Source, stateName string) string {
	if stateName == "" {
		stateName = "Unknown State"
	}
	h, ok := entropy.Pick(src, t.Headlines)
	if !ok {
		return "Event in " + stateName
	}
	return strings.ReplaceAll(h, "{state}", stateName)
}

// Has reports whether the type carries an effect.
func (t EventType) Has(effect string) bool {
	for _, e := range t.Effects {
		if e == effect {
			return true
		}
	}
	return false
}

// Types is the loaded event table.
type Types struct {
	byKey map[string]EventType
	order []string
}

// LoadTypes decodes the embedded event table.
func LoadTypes() (*Types, error) {
	return ParseTypes(eventData)
}

// MustLoadTypes is LoadTypes for callers that cannot proceed without it.
func MustLoadTypes() *Types {
	t, err := LoadTypes()
	if err != nil {
		panic(fmt.Sprintf("history: load event types: %v", err))
	}
	return t
}

// ParseTypes decodes an event table from YAML.
func ParseTypes(data []byte) (*Types, error) {
	var doc struct {
		EventTypes []EventType `yaml:"event_types"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode event types: %w", err)
	}
	t := &Types{byKey: make(map[string]EventType, len(doc.EventTypes))}
	for _, et := range doc.EventTypes {
		if et.Key == "" {
			return nil, fmt.Errorf("event type %q: missing key", et.Name)
		}
		if _, dup := t.byKey[et.Key]; dup {
			return nil, fmt.Errorf("event type %q: duplicate key", et.Key)
		}
		if et.Frequency < 0 {
			return nil, fmt.Errorf("event type %q: negative frequency", et.Key)
		}
		t.byKey[et.Key] = et
		t.order = append(t.order, et.Key)
	}
	return t, nil
}

// Get returns the type for key.
func (t *Types) Get(key string) (EventType, bool) {
	et, ok := t.byKey[key]
	return et, ok
}

// All returns every type in table order.
func (t *Types) All() []EventType {
	out := make([]EventType, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.byKey[k])
	}
	return out
}
