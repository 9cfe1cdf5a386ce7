// Settlement placement: finds suitable cells and seeds capitals and towns.
package world

import (
	"math"
	"math/rand"
	"sort"
)

// placeBurgs scores every land cell, then places capitals and towns at the
// best locations with minimum spacing. Capitals come first so that burg ids
// 1..States are the capitals in order.
func placeBurgs(snap *Snapshot, cfg GenConfig, seed int64) {
	rng := rand.New(rand.NewSource(seed + 200))

	type scored struct {
		cell  int
		score float64
	}
	var candidates []scored

	for _, id := range snap.LandCells() {
		s := settlementScore(snap, id)
		if s > 0 {
			candidates = append(candidates, scored{id, s})
		}
	}

	// Sort by score descending; ties keep cell order so a seed is reproducible.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	minCapitalDist := max(3, cfg.Radius/3)
	minTownDist := 2

	var placed []HexCoord
	tooClose := func(c HexCoord, minDist int) bool {
		for _, p := range placed {
			if Distance(c, p) < minDist {
				return true
			}
		}
		return false
	}

	var cells []int
	for _, c := range candidates {
		if len(cells) >= cfg.States {
			break
		}
		coord := snap.Cells[c.cell].Coord
		if tooClose(coord, minCapitalDist) {
			continue
		}
		placed = append(placed, coord)
		cells = append(cells, c.cell)
	}
	numCapitals := len(cells)

	for _, c := range candidates {
		if len(cells)-numCapitals >= cfg.Towns {
			break
		}
		if snap.Cells[c.cell].Burg != 0 {
			continue
		}
		coord := snap.Cells[c.cell].Coord
		if tooClose(coord, minTownDist) {
			continue
		}
		placed = append(placed, coord)
		cells = append(cells, c.cell)
	}

	names := generateNames(rng, len(cells))
	for i, cellID := range cells {
		cell := &snap.Cells[cellID]
		capital := i < numCapitals
		b := Burg{
			ID:         len(snap.Burgs),
			Name:       names[i],
			Cell:       cellID,
			X:          cell.X,
			Y:          cell.Y,
			Population: populationFor(capital, rng),
			Capital:    capital,
			Port:       cell.Harbor > 0,
		}
		cell.Burg = b.ID
		snap.Burgs = append(snap.Burgs, b)
	}
}

// settlementScore evaluates how desirable a cell is for a settlement.
// Prefers: coast (trade), rivers (water+trade), temperate land, some relief.
func settlementScore(snap *Snapshot, id int) float64 {
	c := &snap.Cells[id]
	score := 0.0

	switch c.Biome {
	case BiomeGrass, BiomeTempDec, BiomeSavanna:
		score += 3.0
	case BiomeTropSeas, BiomeTempRain:
		score += 2.0
	case BiomeHotDes, BiomeColdDes, BiomeWetland, BiomeTaiga:
		score += 0.5
	case BiomeTundra, BiomeTropRain:
		score += 0.3
	default:
		return 0
	}

	if c.Harbor > 0 {
		score += 1.5 // Harbors are prime locations
	}
	if c.River > 0 {
		score += 2.0 // Freshwater + trade arteries
	}
	if c.Height >= HighlandMin {
		score -= 0.5
	}

	// Bonus for nearby biome diversity (economic complexity).
	biomes := make(map[int]bool)
	for _, n := range c.Neighbors {
		if !snap.Cells[n].IsWater() {
			biomes[snap.Cells[n].Biome] = true
		}
	}
	score += float64(len(biomes)) * 0.3

	// Deserts are settled along rivers.
	if (c.Biome == BiomeHotDes || c.Biome == BiomeColdDes) && c.River > 0 {
		score += 1.0
	}

	return score
}

// populationFor returns an initial population in thousands.
func populationFor(capital bool, rng *rand.Rand) float64 {
	if capital {
		return math.Round((10+rng.Float64()*40)*10) / 10
	}
	p := 0.3 + rng.ExpFloat64()*3
	if p > 20 {
		p = 20
	}
	return math.Round(p*10) / 10
}

// generateNames produces procedural settlement names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Ak", "Bel", "Cor", "Dar", "El", "Far", "Gal", "Har", "Il", "Kar",
		"Lar", "Mel", "Nar", "Or", "Par", "Qar", "Ras", "Sal", "Tar", "Ur",
		"Val", "Zan", "Ath", "Ber", "Cyr", "Dor", "Eph", "Hal", "Myr",
	}
	suffixes := []string{
		"os", "ia", "um", "a", "is", "on", "ar", "esh", "ith", "ara",
		"ene", "ium", "opolis", "ud", "ak", "an", "issa", "ona", "eth",
		"ur", "ada", "ikon", "ora", "usa",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] || len(used) >= len(prefixes)*len(suffixes) {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
