package placement

import "github.com/talgya/antiquity/internal/world"

// Filter keeps the candidates satisfying every predicate the spec enables.
// Terrain predicates accept the candidate's own cell or any direct neighbor;
// a site close enough to the feature counts. An empty result is normal.
func Filter(snap *world.Snapshot, candidates []Candidate, spec Spec) []Candidate {
	var out []Candidate
	for _, c := range candidates {
		if Eligible(snap, c, spec) {
			out = append(out, c)
		}
	}
	return out
}

// Eligible reports whether one candidate passes the spec's predicates.
func Eligible(snap *world.Snapshot, c Candidate, spec Spec) bool {
	if spec.MinPopulation > 0 && c.Population < spec.MinPopulation {
		return false
	}
	if spec.RequiresPort && !c.Port {
		return false
	}
	if spec.RequiresDesert && !NearDesert(snap, c.Cell) {
		return false
	}
	if spec.RequiresRiver && !NearRiver(snap, c.Cell) {
		return false
	}
	if spec.RequiresHighland && !NearHighland(snap, c.Cell) {
		return false
	}
	if spec.RequiresCoastal && !c.Port && !NearWater(snap, c.Cell) {
		return false
	}
	return true
}

// IsDesert reports a hot or cold desert biome.
func IsDesert(c *world.Cell) bool {
	return c.Biome == world.BiomeHotDes || c.Biome == world.BiomeColdDes
}

// IsHighland reports a height inside the highland band.
func IsHighland(c *world.Cell) bool {
	return c.Height >= world.HighlandMin && c.Height <= world.HighlandMax
}

// NearDesert reports a desert cell or a cell with a desert neighbor.
func NearDesert(snap *world.Snapshot, cellID int) bool {
	return withinOneHop(snap, cellID, IsDesert)
}

// NearRiver reports a river cell or a cell with a river neighbor.
func NearRiver(snap *world.Snapshot, cellID int) bool {
	return withinOneHop(snap, cellID, func(c *world.Cell) bool { return c.River > 0 })
}

// NearHighland reports a highland cell or a cell with a highland neighbor.
func NearHighland(snap *world.Snapshot, cellID int) bool {
	return withinOneHop(snap, cellID, IsHighland)
}

// NearWater reports a water cell or a cell with a water neighbor.
func NearWater(snap *world.Snapshot, cellID int) bool {
	return withinOneHop(snap, cellID, (*world.Cell).IsWater)
}

// IsBorderCell reports an owned cell touching a different owned state.
func IsBorderCell(snap *world.Snapshot, cellID int) bool {
	c := snap.Cell(cellID)
	if c == nil || c.State == 0 {
		return false
	}
	for _, n := range c.Neighbors {
		other := snap.Cells[n].State
		if other != 0 && other != c.State {
			return true
		}
	}
	return false
}

func withinOneHop(snap *world.Snapshot, cellID int, pred func(*world.Cell) bool) bool {
	c := snap.Cell(cellID)
	if c == nil {
		return false
	}
	if pred(c) {
		return true
	}
	for _, n := range c.Neighbors {
		if nc := snap.Cell(n); nc != nil && pred(nc) {
			return true
		}
	}
	return false
}
