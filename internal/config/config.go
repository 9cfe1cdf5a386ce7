// Package config loads the host run configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/world"
)

// Config drives one generation run of the host CLI.
type Config struct {
	Seed     int64    `yaml:"seed"` // 0 draws placement from crypto/rand
	Preset   string   `yaml:"preset,omitempty"`
	World    World    `yaml:"world"`
	Period   string   `yaml:"period"`
	Civs     []string `yaml:"civilizations,omitempty"`
	Year     int      `yaml:"year"`
	Era      string   `yaml:"era,omitempty"`
	LogLevel string   `yaml:"log_level"`

	// CultureOverrides pins host culture ids to civilization ids.
	CultureOverrides map[int]string `yaml:"culture_overrides,omitempty"`

	Archaeology Archaeology `yaml:"archaeology"`
	Events      Events      `yaml:"events"`
	Timeline    Timeline    `yaml:"timeline"`
	Storage     Storage     `yaml:"storage"`
}

// World holds the synthetic map parameters.
type World struct {
	Radius   int                 `yaml:"radius"`
	SeaLevel float64             `yaml:"sea_level"`
	States   int                 `yaml:"states"`
	Towns    int                 `yaml:"towns"`
	Cultures []world.CultureSeed `yaml:"cultures,omitempty"`
}

type Archaeology struct {
	Sites  int  `yaml:"sites"`
	Fallen bool `yaml:"fallen_civilizations"`
}

// Events covers the years leading up to the run's year. Years 0 turns
// event generation off.
type Events struct {
	Years   int `yaml:"years"`
	PerYear int `yaml:"per_year"`
}

type Timeline struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Storage struct {
	DB      string `yaml:"db"`
	Archive string `yaml:"archive"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	gen := world.DefaultGenConfig()
	return Config{
		Seed: 1,
		World: World{
			Radius:   gen.Radius,
			SeaLevel: gen.SeaLevel,
			States:   gen.States,
			Towns:    gen.Towns,
		},
		Period:      "bronzeAge",
		LogLevel:    "info",
		Archaeology: Archaeology{Sites: 12, Fallen: true},
		Events:      Events{Years: 50, PerYear: 1},
		Timeline:    Timeline{Start: -3000, End: 500},
		Storage:     Storage{DB: "antiquity.db", Archive: "timeline.zst"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML over the defaults and validates the result. A named
// preset is applied first so keys set in the file win over it.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	var head struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	if head.Preset != "" {
		reg, err := civ.Load()
		if err != nil {
			return cfg, fmt.Errorf("load presets: %w", err)
		}
		if err := cfg.ApplyPreset(reg, head.Preset); err != nil {
			return cfg, fmt.Errorf("config.yaml: %w", err)
		}
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config.yaml: %w", err)
	}
	return cfg, nil
}

// Validate rejects values generation cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.World.Radius < 2 {
		errs = append(errs, fmt.Errorf("world.radius must be at least 2, got %d", c.World.Radius))
	}
	if c.World.SeaLevel < 0 || c.World.SeaLevel >= 1 {
		errs = append(errs, fmt.Errorf("world.sea_level must be in [0,1), got %g", c.World.SeaLevel))
	}
	if c.World.States < 1 {
		errs = append(errs, fmt.Errorf("world.states must be positive, got %d", c.World.States))
	}
	if c.World.Towns < 0 {
		errs = append(errs, fmt.Errorf("world.towns must not be negative, got %d", c.World.Towns))
	}
	if c.Events.Years < 0 || c.Events.PerYear < 0 {
		errs = append(errs, fmt.Errorf("events.years and events.per_year must not be negative, got %d and %d", c.Events.Years, c.Events.PerYear))
	}
	if c.Archaeology.Sites < 0 {
		errs = append(errs, fmt.Errorf("archaeology.sites must not be negative, got %d", c.Archaeology.Sites))
	}
	if c.Timeline.Start > c.Timeline.End {
		errs = append(errs, fmt.Errorf("timeline.start %d is after timeline.end %d", c.Timeline.Start, c.Timeline.End))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ApplyPreset sets the period, civilizations, year, era and state count of
// a named preset, and seeds one host culture per civilization.
func (c *Config) ApplyPreset(reg *civ.Registry, id string) error {
	p := reg.Preset(id)
	if p == nil {
		return fmt.Errorf("preset: unknown preset %q", id)
	}
	c.Preset = p.ID
	c.Period = p.Period
	c.Civs = append([]string(nil), p.Civilizations...)
	c.Year = p.Year
	c.Era = p.Era
	c.World.States = p.States
	c.World.Cultures = nil
	for _, id := range p.Civilizations {
		prof := reg.Civilization(id)
		c.World.Cultures = append(c.World.Cultures, world.CultureSeed{Name: prof.Name, Base: prof.NameBase})
	}
	return nil
}

// GenConfig converts the world section for world.Generate.
func (c Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Radius:   c.World.Radius,
		Seed:     c.Seed,
		SeaLevel: c.World.SeaLevel,
		States:   c.World.States,
		Towns:    c.World.Towns,
		Cultures: c.World.Cultures,
	}
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
