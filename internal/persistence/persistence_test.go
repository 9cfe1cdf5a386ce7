package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/antiquity/internal/civ"
	"github.com/talgya/antiquity/internal/engine"
	"github.com/talgya/antiquity/internal/history"
	"github.com/talgya/antiquity/internal/placement"
	"github.com/talgya/antiquity/internal/timeline"
	"github.com/talgya/antiquity/internal/world"
)

func generatedBundle(t *testing.T) engine.Bundle {
	t.Helper()
	cfg := world.SmallTestConfig()
	cfg.Cultures = []world.CultureSeed{{Name: "Egyptian"}, {Name: "Minoan"}, {Name: "Hittite"}}
	s, err := engine.NewSession(civ.MustLoad(), world.Generate(cfg), engine.Options{Seed: 5})
	require.NoError(t, err)
	require.True(t, s.Mode.Enable("bronzeAge"))
	_, err = s.Generate(4, true)
	require.NoError(t, err)
	_, err = s.GenerateEvents(5, 1)
	require.NoError(t, err)
	return s.Export()
}

func openDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openDB(t)
	b := generatedBundle(t)
	require.NotEmpty(t, b.Markers)

	id, err := db.SaveRun(b)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	run, err := db.Run(id)
	require.NoError(t, err)
	assert.Equal(t, "bronzeAge", run.Period)
	assert.Equal(t, b.Year, run.Year)
	assert.Equal(t, len(b.Markers), run.Markers)
	assert.False(t, run.Created().IsZero())

	loaded, err := db.LoadBundle(id)
	require.NoError(t, err)
	assert.Equal(t, b, loaded)

	markers, err := db.Markers(id, "")
	require.NoError(t, err)
	assert.Equal(t, b.Markers, markers)

	forts, err := db.Markers(id, placement.FamilyFortification)
	require.NoError(t, err)
	for _, m := range forts {
		assert.Equal(t, placement.FamilyFortification, m.Family)
	}

	sites, err := db.Sites(id)
	require.NoError(t, err)
	assert.Equal(t, b.Archaeology.Sites, sites)

	dynasties, err := db.Dynasties(id)
	require.NoError(t, err)
	assert.Equal(t, b.Dynasties, dynasties)

	require.NotEmpty(t, b.Events.Events)
	events, err := db.Events(id, "")
	require.NoError(t, err)
	assert.Equal(t, b.Events.Events, events)

	wars, err := db.Events(id, history.TypeWar)
	require.NoError(t, err)
	for _, e := range wars {
		assert.Equal(t, history.TypeWar, e.Type)
		assert.NotEmpty(t, e.Effects)
	}
}

func TestRunsAndDelete(t *testing.T) {
	db := openDB(t)
	b := generatedBundle(t)
	first, err := db.SaveRun(b)
	require.NoError(t, err)
	second, err := db.SaveRun(b)
	require.NoError(t, err)

	runs, err := db.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)

	require.NoError(t, db.DeleteRun(first))
	assert.ErrorIs(t, db.DeleteRun(first), ErrRunNotFound)
	_, err = db.Run(first)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = db.LoadBundle(first)
	assert.ErrorIs(t, err, ErrRunNotFound)
	markers, err := db.Markers(first, "")
	require.NoError(t, err)
	assert.Empty(t, markers)
	events, err := db.Events(first, "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMeta(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.SaveMeta("last_run", "a"))
	require.NoError(t, db.SaveMeta("last_run", "b"))
	v, err := db.GetMeta("last_run")
	require.NoError(t, err)
	assert.Equal(t, "b", v)
	_, err = db.GetMeta("missing")
	assert.Error(t, err)
}

func TestArchiveRoundTrip(t *testing.T) {
	b := generatedBundle(t)
	path := filepath.Join(t.TempDir(), "nested", "timeline.zst")
	require.NoError(t, WriteArchive(path, "run-1", b.Timeline))

	hdr, data, err := ReadArchive(path)
	require.NoError(t, err)
	assert.Equal(t, "run-1", hdr.RunID)
	assert.Equal(t, len(b.Timeline.Snapshots), hdr.Snapshots)
	assert.Equal(t, b.Timeline, data)

	store := timeline.New(0, 1)
	store.Import(data)
	assert.Equal(t, b.Timeline.CurrentYear, store.CurrentYear())
}

func TestReadArchiveRejectsPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.zst")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	_, _, err := ReadArchive(path)
	assert.Error(t, err)
}

func TestDecodeBundle(t *testing.T) {
	b := generatedBundle(t)
	raw, err := json.Marshal(b)
	require.NoError(t, err)

	got, err := DecodeBundle(raw)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestValidateBundleRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"version":`,
		"wrong version":   `{"version":2,"selection":{"enabled":false,"civilizations":null},"markers":null,"archaeology":{"sites":null,"next_id":0},"timeline":{"start_year":0,"end_year":1,"current_year":0}}`,
		"missing markers": `{"version":1,"selection":{"enabled":false,"civilizations":null},"archaeology":{"sites":null,"next_id":0},"timeline":{"start_year":0,"end_year":1,"current_year":0}}`,
		"bad family":      `{"version":1,"selection":{"enabled":false,"civilizations":null},"markers":[{"id":0,"family":"castle","type":"x","cell":1,"x":0,"y":0,"name":"A"}],"archaeology":{"sites":null,"next_id":0},"timeline":{"start_year":0,"end_year":1,"current_year":0}}`,
		"bad condition":   `{"version":1,"selection":{"enabled":false,"civilizations":null},"markers":[],"archaeology":{"sites":[{"id":0,"type":"tomb","name":"A","cell":1,"age":900,"condition":"pristine"}],"next_id":1},"timeline":{"start_year":0,"end_year":1,"current_year":0}}`,
		"bad severity":    `{"version":1,"selection":{"enabled":false,"civilizations":null},"markers":[],"archaeology":{"sites":null,"next_id":0},"timeline":{"start_year":0,"end_year":1,"current_year":0},"events":{"events":[{"id":0,"type":"war","year":-300,"state":1,"severity":9}],"next_id":1}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateBundle([]byte(doc)))
		})
	}

	ok := `{"version":1,"selection":{"enabled":false,"civilizations":null},"markers":null,"archaeology":{"sites":null,"next_id":0},"timeline":{"start_year":0,"end_year":1,"current_year":0}}`
	assert.NoError(t, ValidateBundle([]byte(ok)))
}
