package history

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/entropy"
	"github.com/talgya/antiquity/internal/social"
	"github.com/talgya/antiquity/internal/timeline"
	"github.com/talgya/antiquity/internal/world"
)

// Territory swing per severity point, in percent.
const (
	warSwing      = 2.0
	conquestSwing = 3.0
	unrestLoss    = 3.0
)

// Target is the session state an event's effects change. Map, Dynasties
// and Timeline are required. CivOf returns nil for states that map to no
// civilization; a nil CivOf maps none.
type Target struct {
	Map       *world.Snapshot
	Dynasties *social.Tracker
	Timeline  *timeline.Store
	CivOf     func(stateID int) *civ.Profile
}

func (t Target) civOf(stateID int) *civ.Profile {
	if t.CivOf == nil {
		return nil
	}
	return t.CivOf(stateID)
}

// Change is one applied effect.
type Change struct {
	Effect string `json:"effect"`
	State  int    `json:"state"`
	Detail string `json:"detail"`
}

// Result lists what an event changed. Applied is false when none of its
// effects touched tracked state.
type Result struct {
	Event   int      `json:"event"`
	Applied bool     `json:"applied"`
	Changes []Change `json:"changes,omitempty"`
}

// Apply carries out the tracked effects of ev. Border changes move
// territory by severity: a war swings it between the state and its
// opponent in a random direction, a conquest grows the state at the
// opponent's expense and any other event shrinks the state. A severity 5
// conquest absorbs the opponent and ends its dynasty. A dynasty change
// replaces the ruling house; a political change crowns a new ruler of the
// same house. Descriptive effects are ignored.
func Apply(src entropy.Source, ev Event, tgt Target) Result {
	res := Result{Event: ev.ID}
	houseChanged := false
	for _, effect := range ev.Effects {
		switch effect {
		case EffectBorderChange:
			res.Changes = append(res.Changes, borderChange(src, ev, tgt)...)
		case EffectStateAbsorption:
			if ev.Severity >= 5 && ev.Opponent != 0 && tgt.Dynasties.Active(ev.Opponent) {
				tgt.Dynasties.End(ev.Opponent, ev.Year)
				res.Changes = append(res.Changes, Change{
					Effect: effect,
					State:  ev.Opponent,
					Detail: fmt.Sprintf("%s absorbed by %s", ev.OpponentName, ev.StateName),
				})
			}
		case EffectDynastyChange:
			if ch, ok := replaceHouse(src, ev, tgt); ok {
				res.Changes = append(res.Changes, ch)
				houseChanged = true
			}
		case EffectPoliticalChange:
			if houseChanged {
				continue
			}
			if ch, ok := crownHeir(src, ev, tgt); ok {
				res.Changes = append(res.Changes, ch)
			}
		}
	}
	res.Applied = len(res.Changes) > 0
	if res.Applied {
		slog.Info("event effects applied", "event", ev.Name, "state", ev.StateName, "year", ev.Year, "changes", len(res.Changes))
	}
	return res
}

func borderChange(src entropy.Source, ev Event, tgt Target) []Change {
	sev := float64(ev.Severity)
	var gain float64
	switch ev.Type {
	case TypeWar:
		gain = sev * warSwing
		if entropy.Chance(src, 0.5) {
			gain = -gain
		}
	case TypeConquest:
		gain = sev * conquestSwing
	default:
		gain = -sev * unrestLoss
	}

	var out []Change
	if ch, ok := shiftTerritory(tgt, ev.State, gain, ev.Year); ok {
		out = append(out, ch)
	}
	if ev.Opponent != 0 && (ev.Type == TypeWar || ev.Type == TypeConquest) {
		if ch, ok := shiftTerritory(tgt, ev.Opponent, -gain, ev.Year); ok {
			out = append(out, ch)
		}
	}
	return out
}

// shiftTerritory grows or shrinks a state's last recorded extent by percent.
func shiftTerritory(tgt Target, stateID int, percent float64, year int) (Change, bool) {
	st := tgt.Map.State(stateID)
	if st == nil {
		return Change{}, false
	}
	cells, area := float64(st.Cells), float64(st.Area)
	if hist := tgt.Timeline.TerritorialHistory(stateID); len(hist) > 0 {
		last := hist[len(hist)-1]
		cells, area = float64(last.Cells), last.Area
	}
	factor := max(0, 1+percent/100)
	newCells := int(math.Round(cells * factor))
	tgt.Timeline.RecordTerritorialChange(stateID, year, newCells, area*factor)
	return Change{
		Effect: EffectBorderChange,
		State:  stateID,
		Detail: fmt.Sprintf("%s: %d to %d cells", st.Name, int(cells), newCells),
	}, true
}

func replaceHouse(src entropy.Source, ev Event, tgt Target) (Change, bool) {
	p := tgt.civOf(ev.State)
	old, ok := tgt.Dynasties.Get(ev.State)
	if p == nil || !ok || !old.Active {
		return Change{}, false
	}
	tgt.Dynasties.End(ev.State, ev.Year)
	next, err := tgt.Dynasties.Found(src, ev.State, p, ev.Year)
	if err != nil {
		slog.Warn("no new dynasty after event", "state", ev.StateName, "error", err)
		return Change{}, false
	}
	return Change{
		Effect: EffectDynastyChange,
		State:  ev.State,
		Detail: fmt.Sprintf("%s Dynasty replaced by %s Dynasty", old.Name, next.Name),
	}, true
}

func crownHeir(src entropy.Source, ev Event, tgt Target) (Change, bool) {
	if !tgt.Dynasties.Active(ev.State) {
		return Change{}, false
	}
	s, ok := tgt.Dynasties.Succession(src, ev.State, tgt.civOf(ev.State), ev.Year)
	if !ok || !tgt.Dynasties.AddRuler(ev.State, s.NewRuler, ev.Year) {
		return Change{}, false
	}
	return Change{Effect: EffectPoliticalChange, State: ev.State, Detail: s.Description}, true
}
