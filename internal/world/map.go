package world

import "fmt"

// Terrain thresholds shared by the placement predicates. Heights run 0–100.
const (
	SeaLevel      = 20 // height below this is water
	HighlandMin   = 50
	HighlandMax   = 85
	BiomeMarine   = 0
	BiomeHotDes   = 1
	BiomeColdDes  = 2
	BiomeSavanna  = 3
	BiomeGrass    = 4
	BiomeTropSeas = 5
	BiomeTempDec  = 6
	BiomeTropRain = 7
	BiomeTempRain = 8
	BiomeTaiga    = 9
	BiomeTundra   = 10
	BiomeGlacier  = 11
	BiomeWetland  = 12
)

// Cell is one polygon of the host map.
type Cell struct {
	ID        int      `json:"id"`
	Coord     HexCoord `json:"coord"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Height    int      `json:"height"`
	Biome     int      `json:"biome"`
	River     int      `json:"river"` // 0 = none
	Neighbors []int    `json:"neighbors"`
	State     int      `json:"state"`
	Province  int      `json:"province"`
	Culture   int      `json:"culture"`
	Burg      int      `json:"burg"`
	Harbor    int      `json:"harbor"` // count of adjacent water cells
	Road      int      `json:"road"`
}

// IsWater reports whether the cell is below sea level.
func (c *Cell) IsWater() bool { return c.Height < SeaLevel }

// Burg is a settlement. Population is in thousands.
type Burg struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Cell       int     `json:"cell"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Population float64 `json:"population"`
	Capital    bool    `json:"capital"`
	Port       bool    `json:"port"`
	State      int     `json:"state"`
	Culture    int     `json:"culture"`
	Removed    bool    `json:"removed,omitempty"`
}

// State is a political territory.
type State struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Culture   int    `json:"culture"`
	Capital   int    `json:"capital"` // burg id
	Cells     int    `json:"cells"`
	Area      int    `json:"area"`
	Neighbors []int  `json:"neighbors"`
	Removed   bool   `json:"removed,omitempty"`
}

// Province is a subdivision of a state.
type Province struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State int    `json:"state"`
}

// Culture is a host culture; Base is the host name-base index.
type Culture struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Base int    `json:"base"`
}

// Snapshot is the read-only view of a generated map. Index 0 of Burgs,
// States, Provinces and Cultures is the neutral placeholder; cells are
// indexed from 0 and cell 0 is a real cell.
type Snapshot struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Cells     []Cell     `json:"cells"`
	Burgs     []Burg     `json:"burgs"`
	States    []State    `json:"states"`
	Provinces []Province `json:"provinces"`
	Cultures  []Culture  `json:"cultures"`
}

// NewSnapshot returns an empty snapshot with placeholder entries in place.
func NewSnapshot(width, height float64) *Snapshot {
	return &Snapshot{
		Width:     width,
		Height:    height,
		Burgs:     []Burg{{}},
		States:    []State{{Name: "Neutrals"}},
		Provinces: []Province{{}},
		Cultures:  []Culture{{Name: "Wildlands"}},
	}
}

// Cell returns the cell with the given id, or nil if out of range.
func (s *Snapshot) Cell(id int) *Cell {
	if id < 0 || id >= len(s.Cells) {
		return nil
	}
	return &s.Cells[id]
}

// Burg returns the burg with the given id, or nil for the placeholder or an
// out-of-range id.
func (s *Snapshot) Burg(id int) *Burg {
	if id <= 0 || id >= len(s.Burgs) {
		return nil
	}
	return &s.Burgs[id]
}

// State returns the state with the given id, or nil for neutrals.
func (s *Snapshot) State(id int) *State {
	if id <= 0 || id >= len(s.States) {
		return nil
	}
	return &s.States[id]
}

// Province returns the province with the given id, or nil.
func (s *Snapshot) Province(id int) *Province {
	if id <= 0 || id >= len(s.Provinces) {
		return nil
	}
	return &s.Provinces[id]
}

// Culture returns the culture with the given id, or nil.
func (s *Snapshot) Culture(id int) *Culture {
	if id < 0 || id >= len(s.Cultures) {
		return nil
	}
	return &s.Cultures[id]
}

// ActiveBurgs returns every live settlement, skipping the placeholder.
func (s *Snapshot) ActiveBurgs() []*Burg {
	out := make([]*Burg, 0, len(s.Burgs))
	for i := 1; i < len(s.Burgs); i++ {
		if !s.Burgs[i].Removed {
			out = append(out, &s.Burgs[i])
		}
	}
	return out
}

// ActiveStates returns every live state, skipping neutrals.
func (s *Snapshot) ActiveStates() []*State {
	out := make([]*State, 0, len(s.States))
	for i := 1; i < len(s.States); i++ {
		if !s.States[i].Removed {
			out = append(out, &s.States[i])
		}
	}
	return out
}

// BurgsOfState returns the live settlements belonging to a state.
func (s *Snapshot) BurgsOfState(stateID int) []*Burg {
	var out []*Burg
	for _, b := range s.ActiveBurgs() {
		if b.State == stateID {
			out = append(out, b)
		}
	}
	return out
}

// CellsOfState returns the ids of all cells owned by a state.
func (s *Snapshot) CellsOfState(stateID int) []int {
	var out []int
	for i := range s.Cells {
		if s.Cells[i].State == stateID {
			out = append(out, i)
		}
	}
	return out
}

// LandCells returns the ids of all cells at or above sea level.
func (s *Snapshot) LandCells() []int {
	out := make([]int, 0, len(s.Cells))
	for i := range s.Cells {
		if !s.Cells[i].IsWater() {
			out = append(out, i)
		}
	}
	return out
}

// CapitalOf returns the capital burg of a state, or nil.
func (s *Snapshot) CapitalOf(stateID int) *Burg {
	st := s.State(stateID)
	if st == nil {
		return nil
	}
	return s.Burg(st.Capital)
}

// String returns a summary of the snapshot.
func (s *Snapshot) String() string {
	return fmt.Sprintf("Snapshot(cells=%d, burgs=%d, states=%d)",
		len(s.Cells), len(s.Burgs)-1, len(s.States)-1)
}
