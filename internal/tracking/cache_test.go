package tracking

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func store(c *cache, td *TrackedDownload) {
	e := c.acquire(td.DownloadID)
	c.set(e, td)
	c.release(td.DownloadID, e)
}

func TestCache_FindReturnsCopy(t *testing.T) {
	c := newCache()
	store(c, &TrackedDownload{DownloadID: "a", Warnings: []string{"w"}})

	got := c.find("a")
	require.NotNil(t, got)
	got.Warnings[0] = "changed"

	assert.Equal(t, []string{"w"}, c.find("a").Warnings)
	assert.Nil(t, c.find("missing"))
}

func TestCache_ReleaseDropsEmptyEntry(t *testing.T) {
	c := newCache()
	e := c.acquire("a")
	c.release("a", e)

	assert.Equal(t, 0, c.size())
	assert.Empty(t, c.list())
}

func TestCache_Rekey(t *testing.T) {
	c := newCache()
	store(c, &TrackedDownload{DownloadID: "new", Indexer: "stale"})

	e := c.acquire("old")
	c.set(e, &TrackedDownload{DownloadID: "new", Indexer: "fresh"})
	c.rekey(e, "old", "new")
	c.release("new", e)

	assert.Nil(t, c.find("old"))
	got := c.find("new")
	require.NotNil(t, got)
	assert.Equal(t, "fresh", got.Indexer)
	assert.Equal(t, 1, c.size())
	assert.Equal(t, "new", c.renamedTo("old"))
}

func TestCache_RenamedToFollowsChain(t *testing.T) {
	c := newCache()
	e := c.acquire("a")
	c.set(e, &TrackedDownload{DownloadID: "c"})
	c.rekey(e, "a", "b")
	c.rekey(e, "b", "c")
	c.release("c", e)

	assert.Equal(t, "c", c.renamedTo("a"))
	assert.Equal(t, "c", c.renamedTo("b"))
	assert.Empty(t, c.renamedTo("c"))
}

func TestCache_ResolveIDs(t *testing.T) {
	c := newCache()
	e := c.acquire("old")
	c.set(e, &TrackedDownload{DownloadID: "new"})
	c.rekey(e, "old", "new")
	c.release("new", e)

	assert.Equal(t, map[string]bool{"old": true, "new": true, "x": true}, c.resolveIDs([]string{"old", "x"}))

	// Reporting only the renamed id keeps the rename.
	c.resolveIDs([]string{"new"})
	assert.Equal(t, "new", c.renamedTo("old"))

	// Once neither id is reported the rename is forgotten.
	assert.Equal(t, map[string]bool{"x": true}, c.resolveIDs([]string{"x"}))
	assert.Empty(t, c.renamedTo("old"))
}

func TestCache_SizeSkipsPendingEntries(t *testing.T) {
	c := newCache()
	store(c, &TrackedDownload{DownloadID: "a"})

	pending := c.acquire("b")
	assert.Equal(t, 1, c.size())
	c.release("b", pending)

	assert.Equal(t, 1, c.size())
}

func TestCache_ListSorted(t *testing.T) {
	c := newCache()
	for _, id := range []string{"c", "a", "b"} {
		store(c, &TrackedDownload{DownloadID: id})
	}

	ids := downloadIDs(c.list())
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestCache_UpdateReportsChanged(t *testing.T) {
	c := newCache()
	store(c, &TrackedDownload{DownloadID: "a", IsTrackable: true})
	store(c, &TrackedDownload{DownloadID: "b", IsTrackable: true})

	changed := c.update(func(td *TrackedDownload) bool {
		if td.DownloadID != "b" {
			return false
		}
		td.IsTrackable = false
		return true
	})

	require.Len(t, changed, 1)
	assert.Equal(t, "b", changed[0].DownloadID)
	assert.False(t, c.find("b").IsTrackable)
	assert.True(t, c.find("a").IsTrackable)
}

func TestCache_Remove(t *testing.T) {
	c := newCache()
	store(c, &TrackedDownload{DownloadID: "a"})
	store(c, &TrackedDownload{DownloadID: "b"})

	removed := c.remove("a", "missing", " ")

	require.Len(t, removed, 1)
	assert.Equal(t, "a", removed[0].DownloadID)
	assert.Nil(t, c.find("a"))
	assert.Equal(t, 1, c.size())
}

func TestCache_SameKeySerialized(t *testing.T) {
	c := newCache()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e := c.acquire("a")
			counter++
			c.set(e, &TrackedDownload{DownloadID: "a"})
			c.release("a", e)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 1, c.size())
}
