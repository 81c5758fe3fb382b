package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/server"
)

// seriesConfig writes a config whose database lives in a temp dir and
// returns its path and the database path.
func seriesConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "trackarr.db")
	content := `
[database]
path = "` + filepath.ToSlash(dbPath) + `"

[downloaders.sabnzbd]
url = "http://localhost:8080"
api_key = "key"
` + extra
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath, dbPath
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		jsonOutput = false
		configPath = ""
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeriesList_JSON(t *testing.T) {
	cfgPath, dbPath := seriesConfig(t, "")
	db, err := server.OpenDB(dbPath)
	require.NoError(t, err)
	store := catalog.NewStore(db)
	show := &catalog.Series{Title: "Split Show", TVDBID: 200}
	require.NoError(t, store.AddSeries(show))
	for i := 1; i <= 24; i++ {
		e := &catalog.Episode{SeriesID: show.ID, Season: 1, Episode: i}
		if i == 12 {
			e.FinaleType = catalog.FinaleMidseason
		}
		require.NoError(t, store.AddEpisode(e))
	}
	require.NoError(t, db.Close())

	out, err := runRoot(t, "series", "list", "--json", "--config", cfgPath)
	require.NoError(t, err)

	var items []SeriesJSON
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Split Show", items[0].Title)
	assert.Equal(t, 24, items[0].Episodes)
	assert.Equal(t, []string{"S01E12 midseason"}, items[0].Finales)
}

func TestSeriesList_Empty(t *testing.T) {
	cfgPath, _ := seriesConfig(t, "")

	out, err := runRoot(t, "series", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No series")
}

func TestSeriesSync(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"token":"tok"}}`))
	})
	mux.HandleFunc("GET /series/200", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":200,"name":"Split Show","firstAired":"2024-01-05"}}`))
	})
	mux.HandleFunc("GET /series/200/episodes/default", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"episodes":[
			{"id":1,"seasonNumber":1,"number":1},
			{"id":2,"seasonNumber":1,"number":2,"finaleType":"midseason"},
			{"id":3,"seasonNumber":1,"number":3}
		]},"links":{"next":null}}`))
	})
	tvdbSrv := httptest.NewServer(mux)
	defer tvdbSrv.Close()

	cfgPath, _ := seriesConfig(t, `
[metadata.tvdb]
api_key = "key"
url = "`+tvdbSrv.URL+`"

[[metadata.series]]
tvdb_id = 200
type = "anime"
`)

	out, err := runRoot(t, "series", "sync", "--json", "--config", cfgPath)
	require.NoError(t, err)

	var items []SeriesJSON
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, int64(200), items[0].TVDBID)
	assert.Equal(t, "anime", items[0].Type)
	assert.Equal(t, 2024, items[0].Year)
	assert.Equal(t, 3, items[0].Episodes)
	assert.Equal(t, []string{"S01E02 midseason"}, items[0].Finales)
}

func TestSeriesSync_RequiresTVDB(t *testing.T) {
	cfgPath, _ := seriesConfig(t, "")

	_, err := runRoot(t, "series", "sync", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metadata.tvdb")
}

func TestSeriesSync_RefusedWhileDaemonRuns(t *testing.T) {
	cfgPath, dbPath := seriesConfig(t, `
[metadata.tvdb]
api_key = "key"
`)
	held := flock.New(dbPath + ".lock")
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer func() { _ = held.Unlock() }()

	_, err = runRoot(t, "series", "sync", "--config", cfgPath)
	assert.ErrorIs(t, err, server.ErrAlreadyRunning)
}
