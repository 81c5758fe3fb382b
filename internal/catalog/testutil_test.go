package catalog

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/vmunix/trackarr/internal/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}

func addTestSeries(t *testing.T, store *Store, title string, tvdbID int64) *Series {
	t.Helper()
	s := &Series{Title: title, TVDBID: tvdbID}
	if err := store.AddSeries(s); err != nil {
		t.Fatalf("AddSeries: %v", err)
	}
	return s
}

func addTestEpisode(t *testing.T, store *Store, seriesID int64, season, episode int, finale FinaleType) *Episode {
	t.Helper()
	e := &Episode{SeriesID: seriesID, Season: season, Episode: episode, AbsoluteEpisode: ptr(episode), FinaleType: finale}
	if err := store.AddEpisode(e); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}
	return e
}
