package timeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/talgya/antiquity/internal/world"
)

// YearsPerStep is how far one playback interval moves at speed 1.
const YearsPerStep = 10

// Player drives a store forward in real time.
type Player struct {
	Store    *Store
	Map      *world.Snapshot
	Interval time.Duration // default 1 second

	// OnStep is called after each successful step with the new year.
	OnStep func(year int)
}

// NewPlayer creates a player with a one-second interval.
func NewPlayer(store *Store, snap *world.Snapshot) *Player {
	return &Player{Store: store, Map: snap, Interval: time.Second}
}

// Play advances YearsPerStep × speed years every interval until the end of
// the range, Stop or ctx cancellation. Blocks; run it on its own goroutine.
// Returns immediately if playback is already running.
func (p *Player) Play(ctx context.Context, speed int) {
	if speed <= 0 {
		speed = 1
	}
	if !p.Store.playing.CompareAndSwap(false, true) {
		return
	}
	defer p.Store.playing.Store(false)

	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("timeline playback started", "speed", speed, "year", p.Store.CurrentYear())
	for {
		select {
		case <-ctx.Done():
			slog.Info("timeline playback cancelled", "year", p.Store.CurrentYear())
			return
		case <-ticker.C:
		}
		if !p.Store.playing.Load() {
			slog.Info("timeline playback stopped", "year", p.Store.CurrentYear())
			return
		}

		_, end := p.Store.Range()
		before := p.Store.CurrentYear()
		if before >= end || !p.Store.Advance(YearsPerStep*speed, p.Map) {
			slog.Info("timeline playback reached the end", "year", before)
			return
		}
		if p.OnStep != nil {
			p.OnStep(p.Store.CurrentYear())
		}
	}
}

// Stop asks a running playback to halt at its next interval.
func (s *Store) Stop() {
	s.playing.Store(false)
}

// Playing reports whether playback is running.
func (s *Store) Playing() bool {
	return s.playing.Load()
}
