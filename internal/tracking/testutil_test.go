package tracking

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/download"
	"github.com/vmunix/trackarr/internal/history"
	"github.com/vmunix/trackarr/internal/matching"
	"github.com/vmunix/trackarr/internal/migrations"
)

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

type testEnv struct {
	store     *catalog.Store
	history   *history.Store
	downloads *history.DownloadStore
	deps      Deps
}

// newTestEnv opens an in-memory database and wires default deps over it.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)

	env := &testEnv{
		store:     catalog.NewStore(db),
		history:   history.NewStore(db),
		downloads: history.NewDownloadStore(db),
	}
	env.deps = Deps{
		Mapper:          matching.NewMapper(env.store, testLogger()),
		Catalog:         env.store,
		History:         env.history,
		DownloadHistory: env.downloads,
	}
	return env
}

func (env *testEnv) service() *Service {
	return New(env.deps, testLogger())
}

// addSeries adds a series with episodes 1..count of season 1. Episodes
// listed in finales are midseason finales.
func (env *testEnv) addSeries(t *testing.T, title string, tvdbID int64, count int, finales ...int) (*catalog.Series, []*catalog.Episode) {
	t.Helper()
	s := &catalog.Series{Title: title, TVDBID: tvdbID}
	require.NoError(t, env.store.AddSeries(s))

	eps := make([]*catalog.Episode, 0, count)
	for i := 1; i <= count; i++ {
		e := &catalog.Episode{SeriesID: s.ID, Season: 1, Episode: i, AbsoluteEpisode: ptr(i)}
		for _, f := range finales {
			if f == i {
				e.FinaleType = catalog.FinaleMidseason
			}
		}
		require.NoError(t, env.store.AddEpisode(e))
		eps = append(eps, e)
	}
	return s, eps
}

var sabnzbd = download.ClientInfo{ID: 1, Name: "SABnzbd", Protocol: download.ProtocolUsenet}

func clientItem(id, title, path string) *download.ClientItem {
	return &download.ClientItem{
		DownloadID:   id,
		Title:        title,
		Status:       download.StatusDownloading,
		OutputPath:   path,
		TotalSize:    1 << 30,
		CanMoveFiles: true,
		CanBeRemoved: true,
		Client:       sabnzbd,
	}
}

// episodeNumbers returns the season episode numbers td matched.
func episodeNumbers(td *TrackedDownload) []int {
	if td == nil || td.RemoteEpisode == nil {
		return nil
	}
	out := make([]int, len(td.RemoteEpisode.Episodes))
	for i, e := range td.RemoteEpisode.Episodes {
		out[i] = e.Episode
	}
	return out
}
