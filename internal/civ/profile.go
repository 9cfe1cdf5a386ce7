// Package civ holds the static civilization reference data: profiles,
// historical periods, pantheons, naming patterns and military units.
// Everything here is loaded once and treated as immutable.
package civ

// Profile describes one historical civilization.
type Profile struct {
	ID                  string             `yaml:"id" json:"id"`
	Name                string             `yaml:"name" json:"name"`
	Period              string             `yaml:"period" json:"period"`
	NameBase            int                `yaml:"name_base" json:"name_base"`
	CityPrefixes        []string           `yaml:"city_prefixes" json:"city_prefixes"`
	CitySuffixes        []string           `yaml:"city_suffixes" json:"city_suffixes"`
	RuleTitles          []string           `yaml:"rule_titles" json:"rule_titles"`
	LeaderNames         LeaderNames        `yaml:"leader_names" json:"leader_names"`
	Dynasties           []string           `yaml:"dynasties" json:"dynasties"`
	Epithets            []string           `yaml:"epithets" json:"epithets"`
	FamilyNames         []string           `yaml:"family_names" json:"family_names,omitempty"`
	NamePatterns        NamePatterns       `yaml:"name_patterns" json:"name_patterns"`
	Geography           Geography          `yaml:"geography" json:"geography"`
	Governments         []string           `yaml:"governments" json:"governments"`
	DefaultGovernment   string             `yaml:"default_government" json:"default_government"`
	MilitaryComposition map[string]float64 `yaml:"military_composition" json:"military_composition"`
	MilitaryUnits       []string           `yaml:"military_units" json:"military_units"`
	Traits              Traits             `yaml:"traits" json:"traits"`
	Religion            Religion           `yaml:"religion" json:"religion"`
	Landmarks           []string           `yaml:"landmarks" json:"landmarks"`
	Constraints         Constraints        `yaml:"constraints" json:"constraints"`
}

// LeaderNames splits personal names by gender.
type LeaderNames struct {
	Male   []string `yaml:"male" json:"male"`
	Female []string `yaml:"female" json:"female"`
}

// NamePatterns is the extended naming table. Leader names are keyed by
// gender, or by praenomen/nomen/cognomen for Roman-style names.
type NamePatterns struct {
	CityPrefixes []string            `yaml:"city_prefixes" json:"city_prefixes"`
	CitySuffixes []string            `yaml:"city_suffixes" json:"city_suffixes"`
	LeaderNames  map[string][]string `yaml:"leader_names" json:"leader_names"`
	Titles       []string            `yaml:"titles" json:"titles"`
	Dynasties    []string            `yaml:"dynasties" json:"dynasties"`
}

// Geography holds terrain affinities on a 0–1 scale.
type Geography struct {
	RequiresRiver        bool     `yaml:"requires_river" json:"requires_river"`
	PreferredBiomes      []string `yaml:"preferred_biomes" json:"preferred_biomes"`
	RiverValleyDependent float64  `yaml:"river_valley_dependent" json:"river_valley_dependent"`
	CoastalPreference    float64  `yaml:"coastal_preference" json:"coastal_preference"`
	IslandPreference     float64  `yaml:"island_preference" json:"island_preference"`
	ForestPreference     float64  `yaml:"forest_preference" json:"forest_preference"`
	MountainPreference   float64  `yaml:"mountain_preference" json:"mountain_preference"`
	HillPreference       float64  `yaml:"hill_preference" json:"hill_preference"`
	RoadBuilding         float64  `yaml:"road_building" json:"road_building"`
}

// DefaultTrait is the value of a trait a profile leaves out.
const DefaultTrait = 0.5

// Traits are cultural tendencies on a 0–1 scale.
type Traits struct {
	MonumentBuilding float64 `yaml:"monument_building" json:"monument_building"`
	Urbanization     float64 `yaml:"urbanization" json:"urbanization"`
	Fortification    float64 `yaml:"fortification" json:"fortification"`
	Expansion        float64 `yaml:"expansion" json:"expansion"`
	Trade            float64 `yaml:"trade" json:"trade"`
	Literacy         float64 `yaml:"literacy" json:"literacy"`
}

// DefaultTraits has every trait at DefaultTrait.
func DefaultTraits() Traits {
	return Traits{
		MonumentBuilding: DefaultTrait,
		Urbanization:     DefaultTrait,
		Fortification:    DefaultTrait,
		Expansion:        DefaultTrait,
		Trade:            DefaultTrait,
		Literacy:         DefaultTrait,
	}
}

// Religion is a civilization's pantheon and sacred site vocabulary.
type Religion struct {
	Importance float64  `yaml:"importance" json:"importance"`
	Form       string   `yaml:"form" json:"form"`
	Sites      []string `yaml:"sites" json:"sites"`
	Pantheon   Pantheon `yaml:"pantheon" json:"pantheon"`
}

// Constraints bound where and when a civilization fits.
type Constraints struct {
	MinYear      int      `yaml:"min_year" json:"min_year"`
	MaxYear      int      `yaml:"max_year" json:"max_year"`
	MaxStateSize int      `yaml:"max_state_size" json:"max_state_size"`
	Latitude     Latitude `yaml:"latitude" json:"latitude"`
}

// Latitude is a preferred band in degrees.
type Latitude struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// HasLandmark reports whether the profile declares the landmark type.
func (p *Profile) HasLandmark(kind string) bool {
	for _, l := range p.Landmarks {
		if l == kind {
			return true
		}
	}
	return false
}

// SupportsGovernment reports whether the government type is historically
// valid for this civilization.
func (p *Profile) SupportsGovernment(gov string) bool {
	for _, g := range p.Governments {
		if g == gov {
			return true
		}
	}
	return false
}

// ActiveIn reports whether the civilization existed in the given year.
func (p *Profile) ActiveIn(year int) bool {
	return year >= p.Constraints.MinYear && year <= p.Constraints.MaxYear
}

// Maritime reports whether the civilization leans toward the sea.
func (p *Profile) Maritime() bool {
	return p.Geography.CoastalPreference > 0.6
}

// RiverValley reports whether the civilization depends on river valleys.
func (p *Profile) RiverValley() bool {
	return p.Geography.RiverValleyDependent > 0.5
}
