package catalog

import (
	"errors"
	"testing"
)

func TestStore_AddEpisode_Duplicate(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	addTestEpisode(t, store, s.ID, 1, 1, FinaleNone)

	err := store.AddEpisode(&Episode{SeriesID: s.ID, Season: 1, Episode: 1})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestStore_AddEpisode_UnknownSeries(t *testing.T) {
	store := NewStore(setupTestDB(t))

	err := store.AddEpisode(&Episode{SeriesID: 42, Season: 1, Episode: 1})
	if !errors.Is(err, ErrConstraint) {
		t.Errorf("expected ErrConstraint, got %v", err)
	}
}

func TestStore_EpisodesInSeason(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	addTestEpisode(t, store, s.ID, 1, 2, FinaleNone)
	addTestEpisode(t, store, s.ID, 1, 1, FinaleNone)
	addTestEpisode(t, store, s.ID, 1, 3, FinaleMidseason)
	addTestEpisode(t, store, s.ID, 2, 1, FinaleNone)

	eps, err := store.EpisodesInSeason(s.ID, 1)
	if err != nil {
		t.Fatalf("EpisodesInSeason: %v", err)
	}
	if len(eps) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(eps))
	}
	for i, e := range eps {
		if e.Episode != i+1 {
			t.Errorf("eps[%d].Episode = %d, want %d", i, e.Episode, i+1)
		}
	}
	if !eps[2].IsFinale() || eps[2].FinaleType != FinaleMidseason {
		t.Errorf("episode 3 should be a midseason finale, got %q", eps[2].FinaleType)
	}
	if eps[0].IsFinale() {
		t.Error("episode 1 should not be a finale")
	}
}

func TestStore_FindEpisode(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	want := addTestEpisode(t, store, s.ID, 2, 5, FinaleNone)

	got, err := store.FindEpisode(s.ID, 2, 5)
	if err != nil {
		t.Fatalf("FindEpisode: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("got episode %d, want %d", got.ID, want.ID)
	}
	if got.AbsoluteEpisode == nil || *got.AbsoluteEpisode != 5 {
		t.Errorf("AbsoluteEpisode = %v, want 5", got.AbsoluteEpisode)
	}

	if _, err := store.FindEpisode(s.ID, 2, 6); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_FindEpisodesByAbsolute_KeepsRequestOrder(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	for i := 1; i <= 4; i++ {
		addTestEpisode(t, store, s.ID, 1, i, FinaleNone)
	}

	eps, err := store.FindEpisodesByAbsolute(s.ID, 3, 1, 99)
	if err != nil {
		t.Fatalf("FindEpisodesByAbsolute: %v", err)
	}
	if len(eps) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(eps))
	}
	if eps[0].Episode != 3 || eps[1].Episode != 1 {
		t.Errorf("got episodes %d,%d want 3,1", eps[0].Episode, eps[1].Episode)
	}
}

func TestStore_GetEpisodes(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	e1 := addTestEpisode(t, store, s.ID, 1, 1, FinaleNone)
	e2 := addTestEpisode(t, store, s.ID, 1, 2, FinaleNone)

	eps, err := store.GetEpisodes(e2.ID, e1.ID, 999)
	if err != nil {
		t.Fatalf("GetEpisodes: %v", err)
	}
	if len(eps) != 2 || eps[0].ID != e1.ID || eps[1].ID != e2.ID {
		t.Errorf("unexpected episodes %+v", eps)
	}

	none, err := store.GetEpisodes()
	if err != nil || none != nil {
		t.Errorf("GetEpisodes() = %v, %v", none, err)
	}
}

func TestStore_DeleteEpisodes(t *testing.T) {
	store := NewStore(setupTestDB(t))
	s := addTestSeries(t, store, "Show", 1)
	e1 := addTestEpisode(t, store, s.ID, 1, 1, FinaleNone)
	e2 := addTestEpisode(t, store, s.ID, 1, 2, FinaleNone)

	if err := store.DeleteEpisodes(e1.ID); err != nil {
		t.Fatalf("DeleteEpisodes: %v", err)
	}

	eps, err := store.EpisodesInSeason(s.ID, 1)
	if err != nil {
		t.Fatalf("EpisodesInSeason: %v", err)
	}
	if len(eps) != 1 || eps[0].ID != e2.ID {
		t.Errorf("unexpected episodes after delete: %+v", eps)
	}
}
