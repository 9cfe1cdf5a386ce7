package placement

import "sync"

// Marker families.
const (
	FamilyLandmark      = "landmark"
	FamilyFortification = "fortification"
	FamilyReligious     = "religious"
	FamilyTrade         = "trade"
	FamilyArchaeology   = "archaeology"
)

// Marker is one placed feature. Never mutated after it is added to a set.
type Marker struct {
	ID           int     `json:"id"`
	Family       string  `json:"family"`
	Type         string  `json:"type"`
	Icon         string  `json:"icon"`
	Civilization string  `json:"civilization,omitempty"`
	State        int     `json:"state,omitempty"`
	Cell         int     `json:"cell"`
	Burg         int     `json:"burg,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Name         string  `json:"name"`
	Note         string  `json:"note,omitempty"`
	Legend       string  `json:"legend,omitempty"`
	DX           int     `json:"dx"`
	DY           int     `json:"dy"`
	PX           int     `json:"px"`
}

// MarkerSet is the append-only marker list. Readers get copies.
type MarkerSet struct {
	mu      sync.RWMutex
	markers []Marker
	nextID  int
}

// NewMarkerSet creates an empty set.
func NewMarkerSet() *MarkerSet {
	return &MarkerSet{}
}

// Add appends markers, assigning ids, and returns them as stored.
func (s *MarkerSet) Add(markers ...Marker) []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Marker, len(markers))
	for i, m := range markers {
		m.ID = s.nextID
		s.nextID++
		s.markers = append(s.markers, m)
		out[i] = m
	}
	return out
}

// Len returns the number of markers.
func (s *MarkerSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.markers)
}

// All returns every marker in insertion order.
func (s *MarkerSet) All() []Marker {
	return s.where(func(Marker) bool { return true })
}

// ByFamily returns the markers of one family.
func (s *MarkerSet) ByFamily(family string) []Marker {
	return s.where(func(m Marker) bool { return m.Family == family })
}

// ByType returns the markers of one type tag.
func (s *MarkerSet) ByType(kind string) []Marker {
	return s.where(func(m Marker) bool { return m.Type == kind })
}

// ByCivilization returns the markers owned by a civilization.
func (s *MarkerSet) ByCivilization(civ string) []Marker {
	return s.where(func(m Marker) bool { return m.Civilization == civ })
}

// AtCell returns the markers placed on a cell.
func (s *MarkerSet) AtCell(cell int) []Marker {
	return s.where(func(m Marker) bool { return m.Cell == cell })
}

// CountByFamily tallies markers per family.
func (s *MarkerSet) CountByFamily() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int)
	for _, m := range s.markers {
		out[m.Family]++
	}
	return out
}

// Restore replaces the contents with previously exported markers, keeping
// their ids.
func (s *MarkerSet) Restore(markers []Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = append([]Marker(nil), markers...)
	s.nextID = 0
	for _, m := range markers {
		if m.ID >= s.nextID {
			s.nextID = m.ID + 1
		}
	}
}

func (s *MarkerSet) where(keep func(Marker) bool) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Marker
	for _, m := range s.markers {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
