package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadStore_LatestByDownloadID(t *testing.T) {
	store := NewDownloadStore(setupTestDB(t))
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Add(&DownloadRecord{DownloadID: "abc", IndexerID: 7, EventType: DownloadGrabbed, Date: base}))
	require.NoError(t, store.Add(&DownloadRecord{DownloadID: "abc", IndexerID: 7, EventType: DownloadImported, Date: base.Add(time.Hour)}))
	require.NoError(t, store.Add(&DownloadRecord{DownloadID: "xyz", EventType: DownloadFailed, Date: base.Add(2 * time.Hour)}))

	got, err := store.LatestByDownloadID("abc")
	require.NoError(t, err)
	assert.Equal(t, DownloadImported, got.EventType)
	assert.Equal(t, int64(7), got.IndexerID)
}

func TestDownloadStore_LatestByDownloadID_NotFound(t *testing.T) {
	store := NewDownloadStore(setupTestDB(t))

	_, err := store.LatestByDownloadID("missing")
	require.ErrorIs(t, err, ErrNotFound)
}
