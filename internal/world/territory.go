package world

import (
	"fmt"
	"strings"
)

var stateColors = []string{
	"#c8553d", "#588b8b", "#f28f3b", "#93a8ac", "#6c4b5e",
	"#b3a369", "#4f6d7a", "#a53f2b", "#7c9885", "#d4a373",
}

// assignTerritories founds one state per capital, hands every land cell to
// its nearest capital, then derives provinces, cultures and neighbors.
func assignTerritories(snap *Snapshot, cfg GenConfig) {
	var capitals []*Burg
	for _, b := range snap.ActiveBurgs() {
		if b.Capital {
			capitals = append(capitals, b)
		}
	}
	if len(capitals) == 0 {
		return
	}

	reach := max(4, cfg.Radius/2)

	for i, capital := range capitals {
		st := State{
			ID:      len(snap.States),
			Name:    stateName(capital.Name),
			Color:   stateColors[i%len(stateColors)],
			Capital: capital.ID,
		}
		st.Culture = cultureFor(snap, cfg, i, st.Name)
		capital.State = st.ID
		snap.States = append(snap.States, st)
	}

	// Land cells go to the nearest capital within reach; ties favor the
	// older state.
	for _, id := range snap.LandCells() {
		cell := &snap.Cells[id]
		best, bestDist := 0, reach+1
		for _, capital := range capitals {
			d := Distance(cell.Coord, snap.Cells[capital.Cell].Coord)
			if d < bestDist {
				best, bestDist = capital.State, d
			}
		}
		if best == 0 {
			continue
		}
		cell.State = best
		cell.Culture = snap.States[best].Culture
	}

	for _, b := range snap.ActiveBurgs() {
		cell := &snap.Cells[b.Cell]
		b.State = cell.State
		b.Culture = cell.Culture
	}

	assignProvinces(snap)
	tallyStates(snap)
}

// cultureFor returns the culture id for the i-th state, appending the
// culture to the snapshot on first use.
func cultureFor(snap *Snapshot, cfg GenConfig, i int, stateName string) int {
	seed := CultureSeed{Name: strings.TrimSuffix(stateName, "ia") + "an"}
	if len(cfg.Cultures) > 0 {
		seed = cfg.Cultures[i%len(cfg.Cultures)]
	}
	for _, c := range snap.Cultures {
		if c.ID != 0 && c.Name == seed.Name {
			return c.ID
		}
	}
	id := len(snap.Cultures)
	snap.Cultures = append(snap.Cultures, Culture{ID: id, Name: seed.Name, Base: seed.Base})
	return id
}

// assignProvinces makes each settlement the centre of a province and gives
// each owned cell to the nearest settlement of its own state.
func assignProvinces(snap *Snapshot) {
	byState := make(map[int][]*Burg)
	for _, b := range snap.ActiveBurgs() {
		if b.State == 0 {
			continue
		}
		byState[b.State] = append(byState[b.State], b)
	}

	provinceOf := make(map[int]int) // burg id → province id
	for _, st := range snap.ActiveStates() {
		for _, b := range byState[st.ID] {
			p := Province{ID: len(snap.Provinces), Name: b.Name, State: st.ID}
			snap.Provinces = append(snap.Provinces, p)
			provinceOf[b.ID] = p.ID
		}
	}

	for i := range snap.Cells {
		cell := &snap.Cells[i]
		if cell.State == 0 {
			continue
		}
		best, bestDist := 0, int(^uint(0)>>1)
		for _, b := range byState[cell.State] {
			d := Distance(cell.Coord, snap.Cells[b.Cell].Coord)
			if d < bestDist {
				best, bestDist = b.ID, d
			}
		}
		cell.Province = provinceOf[best]
	}
}

// tallyStates fills cell counts, area and neighbor lists.
func tallyStates(snap *Snapshot) {
	neighbors := make(map[int]map[int]bool)
	for i := range snap.Cells {
		cell := &snap.Cells[i]
		if cell.State == 0 {
			continue
		}
		st := &snap.States[cell.State]
		st.Cells++
		st.Area++
		for _, n := range cell.Neighbors {
			other := snap.Cells[n].State
			if other != 0 && other != cell.State {
				if neighbors[cell.State] == nil {
					neighbors[cell.State] = make(map[int]bool)
				}
				neighbors[cell.State][other] = true
			}
		}
	}
	for id, set := range neighbors {
		st := &snap.States[id]
		for n := 1; n < len(snap.States); n++ {
			if set[n] {
				st.Neighbors = append(st.Neighbors, n)
			}
		}
	}
}

// buildRoads marks land cells on the straight path from each settlement to
// its state capital.
func buildRoads(snap *Snapshot, index map[HexCoord]int) {
	for _, b := range snap.ActiveBurgs() {
		if b.Capital || b.State == 0 {
			continue
		}
		capital := snap.CapitalOf(b.State)
		if capital == nil {
			continue
		}
		from := snap.Cells[b.Cell].Coord
		to := snap.Cells[capital.Cell].Coord
		for _, coord := range Line(from, to) {
			id, ok := index[coord]
			if !ok || snap.Cells[id].IsWater() {
				continue
			}
			snap.Cells[id].Road++
		}
	}
}

func stateName(burg string) string {
	if burg == "" {
		return "Unnamed"
	}
	last := burg[len(burg)-1]
	if strings.ContainsRune("aeiou", rune(last)) {
		return burg[:len(burg)-1] + "ia"
	}
	return fmt.Sprintf("%sia", burg)
}
