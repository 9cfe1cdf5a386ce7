// World generation using layered simplex noise.
// Builds heights, biomes and rivers on a hex grid, then hands off to the
// settlement placer and territory pass to produce a complete Snapshot.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius   int           // Hex grid radius (~22 for ~1500 cells)
	Seed     int64         // Random seed (0 = random)
	SeaLevel float64       // Normalized elevation threshold for water (0.0–1.0)
	States   int           // Number of capitals / states
	Towns    int           // Non-capital settlements
	Cultures []CultureSeed // Assigned to states round-robin; empty derives one per state
}

// CultureSeed names a host culture and its name-base index.
type CultureSeed struct {
	Name string `yaml:"name"`
	Base int    `yaml:"base"`
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:   22,
		Seed:     0,
		SeaLevel: 0.32,
		States:   6,
		Towns:    40,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:   8,
		Seed:     42,
		SeaLevel: 0.30,
		States:   3,
		Towns:    10,
	}
}

// Generate creates a complete host map: terrain, rivers, settlements,
// states, provinces, cultures and roads.
func Generate(cfg GenConfig) *Snapshot {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Three noise generators for independent layers.
	elevNoise := opensimplex.NewNormalized(seed)
	rainNoise := opensimplex.NewNormalized(seed + 1)
	tempNoise := opensimplex.NewNormalized(seed + 2)

	side := float64(2*cfg.Radius+1) * HexSize
	snap := NewSnapshot(side, side)
	index := make(map[HexCoord]int)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			// Cube coordinate constraint: max(|q|,|r|,|s|) <= radius
			if max(abs(q), abs(r), abs(-q-r)) > cfg.Radius {
				continue
			}
			coord := HexCoord{Q: q, R: r}

			// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			elev := stretch(octaveNoise(elevNoise, x, y, 4, 0.08, 0.5), 1.8)
			rain := stretch(octaveNoise(rainNoise, x, y, 3, 0.06, 0.5), 2.0)
			temp := octaveNoise(tempNoise, x, y, 3, 0.05, 0.5)

			// Continental shaping: reduce elevation near edges to create ocean border.
			distFromCenter := math.Sqrt(x*x+y*y) / float64(cfg.Radius)
			edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			// Temperature decreases with elevation and distance from equator.
			temp = temp*0.6 + (1.0-math.Abs(y)/float64(cfg.Radius))*0.3 + (1.0-elev)*0.1

			height := heightFromElevation(elev, cfg.SeaLevel)
			px, py := coord.Pixel(side/2, side/2)

			index[coord] = len(snap.Cells)
			snap.Cells = append(snap.Cells, Cell{
				ID:     len(snap.Cells),
				Coord:  coord,
				X:      px,
				Y:      py,
				Height: height,
				Biome:  deriveBiome(height, rain, temp),
			})
		}
	}

	linkNeighbors(snap, index)
	markHarbors(snap)
	placeRivers(snap, seed)

	placeBurgs(snap, cfg, seed)
	assignTerritories(snap, cfg)
	buildRoads(snap, index)

	return snap
}

// heightFromElevation maps normalized elevation onto the 0–100 height scale
// with the sea threshold landing on SeaLevel.
func heightFromElevation(elev, sea float64) int {
	if sea <= 0 || sea >= 1 {
		sea = 0.3
	}
	if elev < sea {
		return int(elev / sea * float64(SeaLevel-1))
	}
	h := SeaLevel + int((elev-sea)/(1-sea)*float64(100-SeaLevel))
	return min(h, 100)
}

// deriveBiome determines the biome id from height, rainfall and temperature.
func deriveBiome(height int, rain, temp float64) int {
	switch {
	case height < SeaLevel:
		return BiomeMarine
	case temp < 0.2 && height > 80:
		return BiomeGlacier
	case temp < 0.2:
		return BiomeTundra
	case temp < 0.35:
		return BiomeTaiga
	case rain < 0.25 && temp > 0.55:
		return BiomeHotDes
	case rain < 0.25:
		return BiomeColdDes
	case rain > 0.7 && height < 35:
		return BiomeWetland
	case temp > 0.65 && rain > 0.6:
		return BiomeTropRain
	case temp > 0.65 && rain > 0.4:
		return BiomeTropSeas
	case temp > 0.65:
		return BiomeSavanna
	case rain > 0.6:
		return BiomeTempRain
	case rain > 0.4:
		return BiomeTempDec
	default:
		return BiomeGrass
	}
}

func linkNeighbors(snap *Snapshot, index map[HexCoord]int) {
	for i := range snap.Cells {
		c := &snap.Cells[i]
		for _, nc := range c.Coord.Neighbors() {
			if id, ok := index[nc]; ok {
				c.Neighbors = append(c.Neighbors, id)
			}
		}
	}
}

// markHarbors counts adjacent water cells for every land cell.
func markHarbors(snap *Snapshot) {
	for i := range snap.Cells {
		c := &snap.Cells[i]
		if c.IsWater() {
			continue
		}
		for _, n := range c.Neighbors {
			if snap.Cells[n].IsWater() {
				c.Harbor++
			}
		}
	}
}

// placeRivers traces paths from high ground down to the sea, tagging each
// traversed land cell with the river's id.
func placeRivers(snap *Snapshot, seed int64) {
	rng := rand.New(rand.NewSource(seed + 100))

	var sources []int
	for i := range snap.Cells {
		if snap.Cells[i].Height >= 55 {
			sources = append(sources, i)
		}
	}

	// Only create a handful of rivers; not every mountain needs one.
	numRivers := len(sources) / 8
	if numRivers < 2 {
		numRivers = 2
	}
	if numRivers > 10 {
		numRivers = 10
	}

	rng.Shuffle(len(sources), func(i, j int) {
		sources[i], sources[j] = sources[j], sources[i]
	})
	if len(sources) > numRivers {
		sources = sources[:numRivers]
	}

	for i, start := range sources {
		traceRiver(snap, start, i+1)
	}
}

// traceRiver follows the steepest descent from a source cell until reaching
// water or running out of downhill path.
func traceRiver(snap *Snapshot, start, id int) {
	current := start
	visited := make(map[int]bool)
	maxSteps := 50

	for step := 0; step < maxSteps; step++ {
		visited[current] = true
		c := &snap.Cells[current]
		if c.IsWater() {
			break
		}
		if c.River == 0 {
			c.River = id
		}

		best := -1
		bestHeight := c.Height
		for _, n := range c.Neighbors {
			if visited[n] {
				continue
			}
			if snap.Cells[n].Height <= bestHeight {
				bestHeight = snap.Cells[n].Height
				best = n
			}
		}
		if best < 0 {
			break // No downhill path, the river ends (lake would form in reality)
		}
		current = best
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// stretch widens noise clustered around 0.5 and clamps it to [0, 1].
func stretch(v, factor float64) float64 {
	v = (v-0.5)*factor + 0.5
	return math.Max(0, math.Min(1, v))
}

// BiomeCounts returns a summary of biome distribution.
func BiomeCounts(snap *Snapshot) map[int]int {
	counts := make(map[int]int)
	for i := range snap.Cells {
		counts[snap.Cells[i].Biome]++
	}
	return counts
}

// BiomeName returns a human-readable name for a biome id.
func BiomeName(b int) string {
	switch b {
	case BiomeMarine:
		return "Marine"
	case BiomeHotDes:
		return "Hot desert"
	case BiomeColdDes:
		return "Cold desert"
	case BiomeSavanna:
		return "Savanna"
	case BiomeGrass:
		return "Grassland"
	case BiomeTropSeas:
		return "Tropical seasonal forest"
	case BiomeTempDec:
		return "Temperate deciduous forest"
	case BiomeTropRain:
		return "Tropical rainforest"
	case BiomeTempRain:
		return "Temperate rainforest"
	case BiomeTaiga:
		return "Taiga"
	case BiomeTundra:
		return "Tundra"
	case BiomeGlacier:
		return "Glacier"
	case BiomeWetland:
		return "Wetland"
	default:
		return "Unknown"
	}
}
