// Command antiquity generates a host map, scatters historical markers over
// it and stores the run.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/config"
	"github.com/talgya/antiquity/internal/engine"
	"github.com/talgya/antiquity/internal/persistence"
	"github.com/talgya/antiquity/internal/world"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file (defaults when empty)")
	importPath := flag.String("import", "", "validate a JSON bundle and store it as a run")
	list := flag.Int("runs", 0, "list the N most recent runs and exit")
	play := flag.Duration("play", 0, "play the timeline for this long after generating")
	presets := flag.Bool("presets", false, "list the scenario presets and exit")
	flag.Parse()

	if *presets {
		reg, err := civ.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listPresets(os.Stdout, reg)
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	lvl, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))

	// ── Database ──────────────────────────────────────────────────────
	if err := ensureDir(cfg.Storage.DB); err != nil {
		slog.Error("failed to create data directory", "path", cfg.Storage.DB, "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Storage.DB)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DB)

	switch {
	case *list > 0:
		err = listRuns(db, *list)
	case *importPath != "":
		err = importBundle(db, *importPath)
	default:
		err = generate(cfg, db, *play)
	}
	if err != nil {
		slog.Error("antiquity failed", "error", err)
		db.Close()
		os.Exit(1)
	}
}

// ensureDir creates the directory holding path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func generate(cfg config.Config, db *persistence.DB, play time.Duration) error {
	reg, err := civ.Load()
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	// ── Host map ──────────────────────────────────────────────────────
	slog.Info("generating host map...", "seed", cfg.Seed, "radius", cfg.World.Radius)
	snap := world.Generate(cfg.GenConfig())
	biomes := world.BiomeCounts(snap)
	ids := make([]int, 0, len(biomes))
	for b := range biomes {
		ids = append(ids, b)
	}
	sort.Ints(ids)
	for _, b := range ids {
		slog.Debug("biome", "type", world.BiomeName(b), "cells", biomes[b])
	}

	// ── Session ───────────────────────────────────────────────────────
	sess, err := engine.NewSession(reg, snap, engine.Options{
		Seed:             cfg.Seed,
		Year:             cfg.Year,
		TimelineStart:    cfg.Timeline.Start,
		TimelineEnd:      cfg.Timeline.End,
		CultureOverrides: cfg.CultureOverrides,
	})
	if err != nil {
		return err
	}
	if cfg.Period != "" {
		if !sess.Mode.Enable(cfg.Period) {
			return fmt.Errorf("unknown period %q", cfg.Period)
		}
		if len(cfg.Civs) > 0 {
			kept := sess.Mode.SelectCivilizations(cfg.Civs)
			slog.Info("civilizations selected", "requested", cfg.Civs, "kept", kept)
		}
	}
	slog.Info("mode", "name", sess.Mode.DisplayName(), "year", civ.FormatYear(sess.Year()))

	sum, err := sess.Generate(cfg.Archaeology.Sites, cfg.Archaeology.Fallen)
	if err != nil {
		return err
	}
	for _, c := range sum.Unmatched {
		slog.Warn("culture has no civilization", "culture", c)
	}
	events, err := sess.GenerateEvents(cfg.Events.Years, cfg.Events.PerYear)
	if err != nil {
		return err
	}

	// ── Storage ───────────────────────────────────────────────────────
	bundle := sess.Export()
	runID, err := db.SaveRun(bundle)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if err := db.SaveMeta("last_run", runID); err != nil {
		slog.Warn("failed to record last run", "error", err)
	}
	var archiveSize uint64
	if cfg.Storage.Archive != "" {
		if err := persistence.WriteArchive(cfg.Storage.Archive, runID, bundle.Timeline); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		if fi, err := os.Stat(cfg.Storage.Archive); err == nil {
			archiveSize = uint64(fi.Size())
		}
	}

	printSummary(runID, cfg.Era, sess, sum, len(events), archiveSize)

	if play > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, play)
		defer cancel()
		sess.Play(ctx, 1, func(year int) {
			fmt.Printf("  %s\n", civ.FormatYear(year))
		})
	}
	return nil
}

func printSummary(runID, era string, sess *engine.Session, sum engine.Summary, events int, archiveSize uint64) {
	fmt.Printf("run %s · %s · %s\n", runID, sess.Mode.DisplayName(), civ.FormatYear(sess.Year()))
	if era != "" {
		fmt.Printf("  %s\n", era)
	}
	families := make([]string, 0, len(sum.Markers))
	for f := range sum.Markers {
		families = append(families, f)
	}
	sort.Strings(families)
	for _, f := range families {
		fmt.Printf("  %-14s %s\n", f, humanize.Comma(int64(sum.Markers[f])))
	}
	fmt.Printf("  %-14s %s\n", "routes", humanize.Comma(int64(sum.Routes)))
	fmt.Printf("  %-14s %s\n", "dynasties", humanize.Comma(int64(sum.Dynasties)))
	for _, d := range sess.Dynasties.All() {
		fmt.Printf("    %s, %s\n", sess.Dynasties.FormattedName(d.StateID), sess.Dynasties.FullRulerName(d.StateID))
	}
	if events > 0 {
		fmt.Printf("  %-14s %s\n", "events", humanize.Comma(int64(events)))
		stats := sess.Chronicle.Statistics()
		types := make([]string, 0, len(stats.ByType))
		for k := range stats.ByType {
			types = append(types, k)
		}
		sort.Strings(types)
		for _, k := range types {
			fmt.Printf("    %-16s %s\n", k, humanize.Comma(int64(stats.ByType[k])))
		}
	}
	if archiveSize > 0 {
		fmt.Printf("  archive        %s\n", humanize.Bytes(archiveSize))
	}
}

func importBundle(db *persistence.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b, err := persistence.DecodeBundle(raw)
	if err != nil {
		return err
	}
	id, err := db.SaveRun(b)
	if err != nil {
		return fmt.Errorf("save imported run: %w", err)
	}
	fmt.Printf("imported %s as run %s (%s markers, %s sites)\n",
		filepath.Base(path), id, humanize.Comma(int64(len(b.Markers))), humanize.Comma(int64(len(b.Archaeology.Sites))))
	return nil
}

// listPresets prints the presets grouped by category.
func listPresets(w io.Writer, reg *civ.Registry) {
	groups := reg.PresetsByCategory()
	cats := make([]string, 0, len(groups))
	for c := range groups {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(w, "%s (%s)\n", c, humanize.Comma(int64(len(groups[c]))))
		for _, id := range groups[c] {
			p := reg.Preset(id)
			fmt.Fprintf(w, "  %-22s %-8s %s\n", p.ID, civ.FormatYear(p.Year), p.Name)
		}
	}
}

func listRuns(db *persistence.DB, n int) error {
	runs, err := db.Runs(n)
	if err != nil {
		return err
	}
	for _, r := range runs {
		period := r.Period
		if period == "" {
			period = "fantasy"
		}
		fmt.Printf("%s  %-10s %-10s %6s markers %4s sites  %s\n",
			r.ID, period, civ.FormatYear(r.Year), humanize.Comma(int64(r.Markers)), humanize.Comma(int64(r.Sites)), humanize.Time(r.Created()))
	}
	return nil
}
