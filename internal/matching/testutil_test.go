package matching

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/vmunix/trackarr/internal/catalog"
	"github.com/vmunix/trackarr/internal/migrations"
)

func newTestCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(migrations.InitialSQL)
	require.NoError(t, err)
	return catalog.NewStore(db)
}

func ptr[T any](v T) *T {
	return &v
}

// seedShow adds "Show" with 12 episodes in season 1, 3 in season 2 and a
// titled special.
func seedShow(t *testing.T, store *catalog.Store) *catalog.Series {
	t.Helper()
	show := &catalog.Series{Title: "Show", TVDBID: 100}
	require.NoError(t, store.AddSeries(show))

	abs := 0
	add := func(season, ep int, title string) {
		e := &catalog.Episode{SeriesID: show.ID, Season: season, Episode: ep, Title: title}
		if season > 0 {
			abs++
			e.AbsoluteEpisode = ptr(abs)
		}
		require.NoError(t, store.AddEpisode(e))
	}
	for i := 1; i <= 12; i++ {
		add(1, i, "")
	}
	for i := 1; i <= 3; i++ {
		add(2, i, "")
	}
	add(0, 1, "Holiday Special")
	return show
}
