// Package persistence stores generation runs in SQLite and timeline
// archives on disk.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	_ "modernc.org/sqlite"

	"github.com/talgya/antiquity/internal/engine"
	"github.com/talgya/antiquity/internal/features"
	"github.com/talgya/antiquity/internal/history"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/social"
)

// ErrRunNotFound is returned when a run id is not stored.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection holding generation runs.
type DB struct {
	conn *sqlx.DB
}

// Run is the summary row of one stored generation pass.
type Run struct {
	ID        string `json:"id"`
	Seed      int64  `json:"seed"`
	Period    string `json:"period"`
	Year      int    `json:"year"`
	Markers   int    `json:"markers"`
	Sites     int    `json:"sites"`
	CreatedAt int64  `json:"created_at"` // unix seconds
}

// Created returns CreatedAt as a time.
func (r Run) Created() time.Time { return time.Unix(r.CreatedAt, 0) }

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Rows scan into the same structs the bundle serialises.
	conn.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		period TEXT NOT NULL,
		year INTEGER NOT NULL,
		markers INTEGER NOT NULL,
		sites INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS markers (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		family TEXT NOT NULL,
		type TEXT NOT NULL,
		icon TEXT NOT NULL,
		civilization TEXT NOT NULL,
		state INTEGER NOT NULL,
		cell INTEGER NOT NULL,
		burg INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		name TEXT NOT NULL,
		note TEXT NOT NULL,
		legend TEXT NOT NULL,
		dx INTEGER NOT NULL,
		dy INTEGER NOT NULL,
		px INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS sites (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		icon TEXT NOT NULL,
		description TEXT NOT NULL,
		cell INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		age INTEGER NOT NULL,
		founded_year INTEGER NOT NULL,
		civilization TEXT NOT NULL,
		discovered INTEGER NOT NULL,
		condition TEXT NOT NULL,
		artifacts INTEGER NOT NULL,
		major INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS dynasties (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		state_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		founder TEXT NOT NULL,
		founding_year INTEGER NOT NULL,
		civilization TEXT NOT NULL,
		active INTEGER NOT NULL,
		rulers_json TEXT NOT NULL,
		PRIMARY KEY (run_id, state_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		id INTEGER NOT NULL,
		type TEXT NOT NULL,
		year INTEGER NOT NULL,
		state INTEGER NOT NULL,
		state_name TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		effects_json TEXT NOT NULL,
		icon TEXT NOT NULL,
		severity INTEGER NOT NULL,
		opponent INTEGER NOT NULL,
		opponent_name TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS bundles (
		run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
		body BLOB NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_markers_family ON markers(run_id, family);
	CREATE INDEX IF NOT EXISTS idx_sites_type ON sites(run_id, type);
	CREATE INDEX IF NOT EXISTS idx_events_type ON events(run_id, type);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun stores a bundle under a fresh run id: the summary row, the
// queryable markers, sites, dynasties and events, and the full bundle body.
func (db *DB) SaveRun(b engine.Bundle) (string, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("encode bundle: %w", err)
	}
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs (id, seed, period, year, markers, sites, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, b.Seed, b.Selection.Period, b.Year, len(b.Markers), len(b.Archaeology.Sites), time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	if err := saveMarkers(tx, id, b.Markers); err != nil {
		return "", err
	}
	if err := saveSites(tx, id, b.Archaeology.Sites); err != nil {
		return "", err
	}
	if err := saveDynasties(tx, id, b.Dynasties); err != nil {
		return "", err
	}
	if err := saveEvents(tx, id, b.Events.Events); err != nil {
		return "", err
	}
	if _, err := tx.Exec("INSERT INTO bundles (run_id, body) VALUES (?, ?)", id, body); err != nil {
		return "", fmt.Errorf("insert bundle: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	slog.Info("run saved", "run", id, "markers", len(b.Markers), "sites", len(b.Archaeology.Sites))
	return id, nil
}

func saveMarkers(tx *sqlx.Tx, runID string, markers []placement.Marker) error {
	stmt, err := tx.Preparex(`INSERT INTO markers
		(run_id, id, family, type, icon, civilization, state, cell, burg, x, y, name, note, legend, dx, dy, px)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range markers {
		_, err := stmt.Exec(runID, m.ID, m.Family, m.Type, m.Icon, m.Civilization, m.State, m.Cell, m.Burg,
			m.X, m.Y, m.Name, m.Note, m.Legend, m.DX, m.DY, m.PX)
		if err != nil {
			return fmt.Errorf("insert marker %d: %w", m.ID, err)
		}
	}
	return nil
}

func saveSites(tx *sqlx.Tx, runID string, sites []features.Site) error {
	stmt, err := tx.Preparex(`INSERT INTO sites
		(run_id, id, type, name, icon, description, cell, x, y, age, founded_year, civilization, discovered, condition, artifacts, major)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range sites {
		_, err := stmt.Exec(runID, s.ID, s.Type, s.Name, s.Icon, s.Description, s.Cell, s.X, s.Y, s.Age,
			s.FoundedYear, s.Civilization, s.Discovered, s.Condition, s.Artifacts, s.Major)
		if err != nil {
			return fmt.Errorf("insert site %d: %w", s.ID, err)
		}
	}
	return nil
}

func saveDynasties(tx *sqlx.Tx, runID string, dynasties []social.Dynasty) error {
	for _, d := range dynasties {
		rulers, err := json.Marshal(d.Rulers)
		if err != nil {
			return fmt.Errorf("encode rulers of %s: %w", d.Name, err)
		}
		_, err = tx.Exec(`INSERT INTO dynasties
			(run_id, state_id, name, founder, founding_year, civilization, active, rulers_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, d.StateID, d.Name, d.Founder, d.FoundingYear, d.Civilization, d.Active, string(rulers),
		)
		if err != nil {
			return fmt.Errorf("insert dynasty %s: %w", d.Name, err)
		}
	}
	return nil
}

func saveEvents(tx *sqlx.Tx, runID string, events []history.Event) error {
	stmt, err := tx.Preparex(`INSERT INTO events
		(run_id, id, type, year, state, state_name, name, description, effects_json, icon, severity, opponent, opponent_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		effects, err := json.Marshal(e.Effects)
		if err != nil {
			return fmt.Errorf("encode effects of event %d: %w", e.ID, err)
		}
		_, err = stmt.Exec(runID, e.ID, e.Type, e.Year, e.State, e.StateName, e.Name, e.Description,
			string(effects), e.Icon, e.Severity, e.Opponent, e.OpponentName)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.ID, err)
		}
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, period, year, markers, sites, created_at FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// Run returns one run's summary row.
func (db *DB) Run(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT id, seed, period, year, markers, sites, created_at FROM runs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// LoadBundle decodes the full bundle stored with a run.
func (db *DB) LoadBundle(runID string) (engine.Bundle, error) {
	var b engine.Bundle
	var body []byte
	err := db.conn.Get(&body, "SELECT body FROM bundles WHERE run_id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return b, fmt.Errorf("bundle %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(body, &b); err != nil {
		return b, fmt.Errorf("decode bundle %s: %w", runID, err)
	}
	return b, nil
}

// Markers returns a run's markers in id order. An empty family returns all.
func (db *DB) Markers(runID, family string) ([]placement.Marker, error) {
	query := `SELECT id, family, type, icon, civilization, state, cell, burg, x, y, name, note, legend, dx, dy, px
		FROM markers WHERE run_id = ?`
	args := []any{runID}
	if family != "" {
		query += " AND family = ?"
		args = append(args, family)
	}
	var markers []placement.Marker
	err := db.conn.Select(&markers, query+" ORDER BY id", args...)
	return markers, err
}

// Sites returns a run's archaeological sites in id order.
func (db *DB) Sites(runID string) ([]features.Site, error) {
	var sites []features.Site
	err := db.conn.Select(&sites,
		`SELECT id, type, name, icon, description, cell, x, y, age, founded_year, civilization,
			discovered, condition, artifacts, major
		FROM sites WHERE run_id = ? ORDER BY id`,
		runID,
	)
	return sites, err
}

type dynastyRow struct {
	StateID      int    `json:"state_id"`
	Name         string `json:"name"`
	Founder      string `json:"founder"`
	FoundingYear int    `json:"founding_year"`
	Civilization string `json:"civilization"`
	Active       bool   `json:"active"`
	Rulers       string `json:"rulers_json"`
}

// Dynasties returns a run's dynasties ordered by state.
func (db *DB) Dynasties(runID string) ([]social.Dynasty, error) {
	var rows []dynastyRow
	err := db.conn.Select(&rows,
		`SELECT state_id, name, founder, founding_year, civilization, active, rulers_json
		FROM dynasties WHERE run_id = ? ORDER BY state_id`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	out := make([]social.Dynasty, len(rows))
	for i, r := range rows {
		out[i] = social.Dynasty{
			StateID:      r.StateID,
			Name:         r.Name,
			Founder:      r.Founder,
			FoundingYear: r.FoundingYear,
			Civilization: r.Civilization,
			Active:       r.Active,
		}
		if err := json.Unmarshal([]byte(r.Rulers), &out[i].Rulers); err != nil {
			return nil, fmt.Errorf("decode rulers of %s: %w", r.Name, err)
		}
	}
	return out, nil
}

type eventRow struct {
	history.Event
	EffectsJSON string `json:"effects_json"`
}

// Events returns a run's historical events in year then id order. An empty
// type returns all.
func (db *DB) Events(runID, typ string) ([]history.Event, error) {
	query := `SELECT id, type, year, state, state_name, name, description, effects_json, icon, severity,
		opponent, opponent_name
		FROM events WHERE run_id = ?`
	args := []any{runID}
	if typ != "" {
		query += " AND type = ?"
		args = append(args, typ)
	}
	var rows []eventRow
	if err := db.conn.Select(&rows, query+" ORDER BY year, id", args...); err != nil {
		return nil, err
	}
	out := make([]history.Event, len(rows))
	for i, r := range rows {
		out[i] = r.Event
		if err := json.Unmarshal([]byte(r.EffectsJSON), &out[i].Effects); err != nil {
			return nil, fmt.Errorf("decode effects of event %d: %w", r.ID, err)
		}
	}
	return out, nil
}

// DeleteRun removes a run and everything stored with it.
func (db *DB) DeleteRun(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"markers", "sites", "dynasties", "events", "bundles"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	return tx.Commit()
}

// SaveMeta stores a key-value pair in the metadata table.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a value from the metadata table.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
