package features

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/placement"
)

// SiteType describes one kind of archaeological site.
type SiteType struct {
	Key         string
	Name        string
	Icon        string
	Description string
	MinAge      int
	Rarity      float64
	Desert      bool
	River       bool
	Highland    bool
	OldCity     bool // must sit on a settlement
	OldCapital  bool // must sit on a capital
	Major       bool
	Religious   bool
	Prehistoric bool
}

// SiteTypes lists every archaeological site type in draw order.
var SiteTypes = []SiteType{
	{Key: "ancientRuins", Name: "Ancient Ruins", Icon: "🏚️", Description: "Remnants of an ancient settlement", MinAge: 500, Rarity: 0.15, OldCity: true},
	{Key: "lostCity", Name: "Lost City", Icon: "🏛️", Description: "A once-great city now abandoned", MinAge: 800, Rarity: 0.05, OldCity: true, Major: true},
	{Key: "pyramid", Name: "Ancient Pyramid", Icon: "🔺", Description: "Monumental tomb structure", MinAge: 1000, Rarity: 0.08, Desert: true},
	{Key: "ziggurat", Name: "Ruined Ziggurat", Icon: "🏯", Description: "Temple tower of an ancient civilization", MinAge: 1200, Rarity: 0.06, River: true},
	{Key: "templeComplex", Name: "Temple Complex", Icon: "⛩️", Description: "Ancient religious site", MinAge: 600, Rarity: 0.12, Religious: true},
	{Key: "ancientFortress", Name: "Ancient Fortress", Icon: "🏰", Description: "Ruined military fortification", MinAge: 700, Rarity: 0.1, Highland: true},
	{Key: "necropolis", Name: "Necropolis", Icon: "⚰️", Description: "Ancient burial ground", MinAge: 500, Rarity: 0.13, OldCity: true},
	{Key: "ancientPalace", Name: "Ancient Palace", Icon: "🏰", Description: "Ruins of royal residence", MinAge: 900, Rarity: 0.07, OldCapital: true},
	{Key: "sacredSite", Name: "Sacred Site", Icon: "🕉️", Description: "Ancient place of worship", MinAge: 400, Rarity: 0.14, Religious: true},
	{Key: "amphitheater", Name: "Ancient Amphitheater", Icon: "🏟️", Description: "Public entertainment venue", MinAge: 600, Rarity: 0.09, OldCity: true},
	{Key: "aqueduct", Name: "Ancient Aqueduct", Icon: "🌉", Description: "Water supply infrastructure", MinAge: 500, Rarity: 0.11, River: true},
	{Key: "stonehenge", Name: "Stone Circle", Icon: "🗿", Description: "Megalithic monument", MinAge: 1500, Rarity: 0.04, Prehistoric: true},
	{Key: "burialMound", Name: "Burial Mound", Icon: "⛰️", Description: "Ancient earthwork tomb", MinAge: 800, Rarity: 0.16},
	{Key: "ancientMine", Name: "Ancient Mine", Icon: "⛏️", Description: "Abandoned mining site", MinAge: 600, Rarity: 0.1, Highland: true},
	{Key: "petroglyphs", Name: "Petroglyphs", Icon: "🖼️", Description: "Ancient rock carvings", MinAge: 1000, Rarity: 0.12, Highland: true, Prehistoric: true},
}

// SiteTypeByKey looks a site type up.
func SiteTypeByKey(key string) (SiteType, bool) {
	for _, t := range SiteTypes {
		if t.Key == key {
			return t, true
		}
	}
	return SiteType{}, false
}

func (t SiteType) spec() placement.Spec {
	return placement.Spec{
		Type:             t.Key,
		RequiresDesert:   t.Desert,
		RequiresRiver:    t.River,
		RequiresHighland: t.Highland,
	}
}

// Site conditions by age.
const (
	ConditionWellPreserved = "well-preserved"
	ConditionDamaged       = "damaged"
	ConditionRuined        = "ruined"
	ConditionBarelyVisible = "barely visible"
)

// Condition grades a site by its age in years.
func Condition(age int) string {
	switch {
	case age < 500:
		return ConditionWellPreserved
	case age < 1000:
		return ConditionDamaged
	case age < 1500:
		return ConditionRuined
	default:
		return ConditionBarelyVisible
	}
}

// Site is one archaeological site in the catalog.
type Site struct {
	ID           int     `json:"id"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Icon         string  `json:"icon"`
	Description  string  `json:"description"`
	Cell         int     `json:"cell"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Age          int     `json:"age"`
	FoundedYear  int     `json:"founded_year"`
	Civilization string  `json:"civilization,omitempty"`
	Discovered   bool    `json:"discovered"`
	Condition    string  `json:"condition"`
	Artifacts    int     `json:"artifacts"`
	Major        bool    `json:"major"`
}

// SiteStats summarises the catalog.
type SiteStats struct {
	Total          int            `json:"total_sites"`
	ByType         map[string]int `json:"by_type"`
	ByCivilization map[string]int `json:"by_civilization"`
	Discovered     int            `json:"discovered"`
	Major          int            `json:"major"`
	Minor          int            `json:"minor"`
	AverageAge     int            `json:"average_age"`
}

// CatalogExport is the persisted form of a catalog.
type CatalogExport struct {
	Sites  []Site `json:"sites"`
	NextID int    `json:"next_id"`
}

// Catalog holds every generated archaeological site. It does not require
// historical mode.
type Catalog struct {
	mu     sync.RWMutex
	sites  []Site
	nextID int
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

var (
	sitePrefixes = []string{"Ancient", "Lost", "Forgotten", "Hidden", "Sacred", "Ruined"}
	siteSuffixes = []string{"of the Ancients", "of Old", "of the Lost", "of the Forgotten"}
)

// GenerateSites draws count site types by rarity and places each on a
// suitable land cell. Types with no suitable cell are skipped.
func (c *Catalog) GenerateSites(ctx Context, count int) []Site {
	var out []Site
	for range count {
		t, ok := placement.SampleOne(ctx.Rand, SiteTypes, func(t SiteType) float64 { return t.Rarity })
		if !ok {
			break
		}
		var owner *civ.Profile
		if ctx.Selection.Active() {
			owner, _ = entropy.Pick(ctx.Rand, ctx.Profiles())
		}
		if s, ok := c.generate(ctx, t, owner, SiteOptions{}); ok {
			out = append(out, s)
		}
	}
	slog.Info("archaeological sites generated", "requested", count, "placed", len(out))
	return out
}

// GenerateFromFallenCivilizations leaves two to five sites of a fitting
// type for each selected civilization.
func (c *Catalog) GenerateFromFallenCivilizations(ctx Context) ([]Site, error) {
	if err := ctx.Ready(); err != nil {
		return nil, err
	}
	var out []Site
	for _, p := range ctx.Profiles() {
		n := entropy.IntRange(ctx.Rand, 2, 5)
		for range n {
			t, _ := SiteTypeByKey(fallenSiteType(ctx.Rand, p.ID))
			if s, ok := c.generate(ctx, t, p, SiteOptions{}); ok {
				out = append(out, s)
			}
		}
	}
	slog.Info("sites from fallen civilizations", "count", len(out))
	return out, nil
}

func fallenSiteType(src entropy.Source, civID string) string {
	switch civID {
	case "egyptian":
		if entropy.Chance(src, 0.5) {
			return "pyramid"
		}
		return "necropolis"
	case "sumerian":
		return "ziggurat"
	case "greek", "roman":
		key, _ := entropy.Pick(src, []string{"templeComplex", "amphitheater", "ancientPalace"})
		return key
	default:
		return "ancientRuins"
	}
}

var (
	ErrUnknownSiteType = errors.New("unknown archaeological site type")
	ErrNoSiteLocation  = errors.New("no suitable location")
)

// SiteOptions pin parts of a single generated site. Zero values leave the
// choice to the catalog.
type SiteOptions struct {
	Cell         *int   // fixed cell instead of a suitable random one
	Age          int    // years; 0 draws between the type's minimum age and twice that
	Artifacts    int    // 0 draws one to ten
	Discovered   bool
	Civilization string // owner id; empty draws from the selection when active
}

// GenerateSite places one site of the given type key.
func (c *Catalog) GenerateSite(ctx Context, key string, opts SiteOptions) (Site, error) {
	t, ok := SiteTypeByKey(key)
	if !ok {
		return Site{}, fmt.Errorf("%w: %q", ErrUnknownSiteType, key)
	}
	if opts.Cell != nil && ctx.Map.Cell(*opts.Cell) == nil {
		return Site{}, fmt.Errorf("site cell %d: not on the map", *opts.Cell)
	}
	var owner *civ.Profile
	switch {
	case opts.Civilization != "":
		if owner = ctx.Registry.Civilization(opts.Civilization); owner == nil {
			return Site{}, fmt.Errorf("site owner: unknown civilization %q", opts.Civilization)
		}
	case ctx.Selection.Active():
		owner, _ = entropy.Pick(ctx.Rand, ctx.Profiles())
	}
	s, ok := c.generate(ctx, t, owner, opts)
	if !ok {
		return Site{}, fmt.Errorf("%w for %s", ErrNoSiteLocation, key)
	}
	return s, nil
}

func (c *Catalog) generate(ctx Context, t SiteType, owner *civ.Profile, opts SiteOptions) (Site, bool) {
	var cell int
	if opts.Cell != nil {
		cell = *opts.Cell
	} else {
		var ok bool
		if cell, ok = siteLocation(ctx, t); !ok {
			slog.Debug("no location for archaeological site", "type", t.Key)
			return Site{}, false
		}
	}
	age := opts.Age
	if age <= 0 {
		age = entropy.IntRange(ctx.Rand, t.MinAge, t.MinAge*2)
	}
	s := Site{
		Type:        t.Key,
		Name:        siteName(ctx.Rand, t, owner),
		Icon:        t.Icon,
		Description: t.Description,
		Cell:        cell,
		X:           ctx.Map.Cells[cell].X,
		Y:           ctx.Map.Cells[cell].Y,
		Age:         age,
		FoundedYear: ctx.Year - age,
		Condition:   Condition(age),
		Artifacts:   opts.Artifacts,
		Discovered:  opts.Discovered,
		Major:       t.Major,
	}
	if s.Artifacts <= 0 {
		s.Artifacts = entropy.IntRange(ctx.Rand, 1, 10)
	}
	if owner != nil {
		s.Civilization = owner.ID
	}

	c.mu.Lock()
	s.ID = c.nextID
	c.nextID++
	c.sites = append(c.sites, s)
	c.mu.Unlock()
	return s, true
}

func siteLocation(ctx Context, t SiteType) (int, bool) {
	spec := t.spec()
	var cells []int
	for _, id := range ctx.Map.LandCells() {
		cand := placement.CellCandidate(ctx.Map, id)
		if (t.OldCity || t.OldCapital) && cand.Burg == 0 {
			continue
		}
		if t.OldCapital && !cand.Capital {
			continue
		}
		if placement.Eligible(ctx.Map, cand, spec) {
			cells = append(cells, id)
		}
	}
	return entropy.Pick(ctx.Rand, cells)
}

func siteName(src entropy.Source, t SiteType, owner *civ.Profile) string {
	if owner != nil {
		if city := owner.CityName(src); city != "" {
			return city + " " + t.Name
		}
	}
	name := t.Name
	if entropy.Chance(src, 0.7) {
		pre, _ := entropy.Pick(src, sitePrefixes)
		name = pre + " " + name
	}
	if entropy.Chance(src, 0.3) {
		suf, _ := entropy.Pick(src, siteSuffixes)
		name = name + " " + suf
	}
	return name
}

// Sites returns every site in id order.
func (c *Catalog) Sites() []Site {
	return c.where(func(Site) bool { return true })
}

// ByType returns the sites of one type key.
func (c *Catalog) ByType(key string) []Site {
	return c.where(func(s Site) bool { return s.Type == key })
}

// ByCivilization returns the sites attributed to a civilization.
func (c *Catalog) ByCivilization(civID string) []Site {
	return c.where(func(s Site) bool { return s.Civilization == civID })
}

// Major returns the major sites.
func (c *Catalog) Major() []Site {
	return c.where(func(s Site) bool { return s.Major })
}

func (c *Catalog) where(keep func(Site) bool) []Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Site
	for _, s := range c.sites {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// Discover marks a site as discovered. Returns false for unknown ids.
func (c *Catalog) Discover(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.sites {
		if c.sites[i].ID == id {
			c.sites[i].Discovered = true
			slog.Info("archaeological site discovered", "id", id, "name", c.sites[i].Name)
			return true
		}
	}
	return false
}

// Statistics tallies the catalog.
func (c *Catalog) Statistics() SiteStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := SiteStats{
		Total:          len(c.sites),
		ByType:         make(map[string]int),
		ByCivilization: make(map[string]int),
	}
	total := 0
	for _, s := range c.sites {
		st.ByType[s.Type]++
		if s.Civilization != "" {
			st.ByCivilization[s.Civilization]++
		}
		if s.Discovered {
			st.Discovered++
		}
		if s.Major {
			st.Major++
		} else {
			st.Minor++
		}
		total += s.Age
	}
	if len(c.sites) > 0 {
		st.AverageAge = int(math.Round(float64(total) / float64(len(c.sites))))
	}
	return st
}

// Clear drops every site and resets ids.
func (c *Catalog) Clear() {
	c.mu.Lock()
	c.sites = nil
	c.nextID = 0
	c.mu.Unlock()
}

// Export returns a copy of the catalog for persistence.
func (c *Catalog) Export() CatalogExport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CatalogExport{Sites: append([]Site(nil), c.sites...), NextID: c.nextID}
}

// Import replaces the catalog contents.
func (c *Catalog) Import(data CatalogExport) {
	sites := append([]Site(nil), data.Sites...)
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })
	next := data.NextID
	for _, s := range sites {
		next = max(next, s.ID+1)
	}

	c.mu.Lock()
	c.sites = sites
	c.nextID = next
	c.mu.Unlock()
	slog.Info("archaeological sites imported", "count", len(sites))
}

// Markers renders every site as a map marker.
func (c *Catalog) Markers() []placement.Marker {
	sites := c.Sites()
	out := make([]placement.Marker, 0, len(sites))
	for _, s := range sites {
		out = append(out, placement.Marker{
			Family:       placement.FamilyArchaeology,
			Type:         s.Type,
			Icon:         s.Icon,
			Civilization: s.Civilization,
			Cell:         s.Cell,
			X:            s.X,
			Y:            s.Y,
			Name:         s.Name,
			Note:         fmt.Sprintf("%s\n%s\nAge: %d years\nCondition: %s", s.Name, s.Description, s.Age, s.Condition),
			DX:           50,
			DY:           50,
			PX:           14,
		})
	}
	return out
}
