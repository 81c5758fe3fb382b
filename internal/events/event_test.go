package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "series.added",
		Entity:    EntitySeries,
		ID:        42,
		Timestamp: now,
	}

	assert.Equal(t, "series.added", e.EventType())
	assert.Equal(t, EntitySeries, e.EntityType())
	assert.Equal(t, int64(42), e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent("tracked.refreshed", EntityTrackedDownload, 0)

	assert.Equal(t, "tracked.refreshed", e.EventType())
	assert.Equal(t, EntityTrackedDownload, e.EntityType())
	assert.Equal(t, int64(0), e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}
