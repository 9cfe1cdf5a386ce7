package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/features"
	"github.com/talgya/antiquity/internal/history"
	"github.com/talgya/antiquity/internal/mode"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/social"
	"github.com/talgya/antiquity/internal/timeline"
)

// BundleVersion is bumped whenever the bundle layout changes.
const BundleVersion = 1

// StateGovernment pairs a state with its assigned government profile.
type StateGovernment struct {
	State int `json:"state"`
	social.StateConfig
}

// Bundle is the exported state of a session: every stateful module's
// export in one document.
type Bundle struct {
	Version        int                      `json:"version"`
	Seed           int64                    `json:"seed"`
	Year           int                      `json:"year"`
	Selection      mode.Selection           `json:"selection"`
	Markers        []placement.Marker       `json:"markers"`
	Routes         []features.Route         `json:"routes"`
	ReligiousSites []features.ReligiousSite `json:"religious_sites"`
	Archaeology    features.CatalogExport   `json:"archaeology"`
	Timeline       timeline.Export          `json:"timeline"`
	Dynasties      []social.Dynasty         `json:"dynasties"`
	Governments    []StateGovernment        `json:"governments"`
	Cultures       []civ.Match              `json:"cultures"`
	Events         history.Export           `json:"events"`
}

// Export collects the session into a bundle.
func (s *Session) Export() Bundle {
	s.mu.RLock()
	govs := make([]StateGovernment, 0, len(s.governments))
	for _, id := range sortedStates(s.governments) {
		govs = append(govs, StateGovernment{State: id, StateConfig: s.governments[id]})
	}
	s.mu.RUnlock()

	return Bundle{
		Version:        BundleVersion,
		Seed:           s.Seed(),
		Year:           s.Year(),
		Selection:      s.Mode.Export(),
		Markers:        s.Markers.All(),
		Routes:         s.Routes(),
		ReligiousSites: s.ReligiousSites(),
		Archaeology:    s.Sites.Export(),
		Timeline:       s.Timeline.Export(),
		Dynasties:      s.Dynasties.Export(),
		Governments:    govs,
		Cultures:       s.CultureMatches(),
		Events:         s.Chronicle.Export(),
	}
}

// Import replaces the session state with a bundle. The map is left as is;
// the bundle must have been produced against the same map.
func (s *Session) Import(b Bundle) error {
	if b.Version != BundleVersion {
		return fmt.Errorf("bundle version %d, want %d", b.Version, BundleVersion)
	}
	if !s.Mode.Import(b.Selection) {
		return fmt.Errorf("bundle period %q is unknown", b.Selection.Period)
	}
	s.Markers.Restore(b.Markers)
	s.Sites.Import(b.Archaeology)
	s.Timeline.Import(b.Timeline)
	s.Dynasties.Import(b.Dynasties)
	s.Chronicle.Import(b.Events)

	govs := make(map[int]social.StateConfig, len(b.Governments))
	for _, g := range b.Governments {
		govs[g.State] = g.StateConfig
	}
	s.mu.Lock()
	s.year = b.Year
	s.routes = append([]features.Route(nil), b.Routes...)
	s.religious = append([]features.ReligiousSite(nil), b.ReligiousSites...)
	s.matches = append([]civ.Match(nil), b.Cultures...)
	s.governments = govs
	s.mu.Unlock()

	slog.Info("session imported", "markers", len(b.Markers), "sites", len(b.Archaeology.Sites), "year", b.Year)
	return nil
}

// Play runs timeline playback over the session map until the end of the
// range, Stop or ctx cancellation.
func (s *Session) Play(ctx context.Context, speed int, onStep func(year int)) {
	p := timeline.NewPlayer(s.Timeline, s.Map)
	p.OnStep = onStep
	p.Play(ctx, speed)
}
