package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	db := setupTestDB(t)
	bus := NewBus(NewEventLog(db), nil)
	defer bus.Close()

	ch := bus.Subscribe(10, "test.created")

	e := &testEvent{BaseEvent: NewBaseEvent("test.created", "test", 1), Message: "hello"}
	require.NoError(t, bus.Publish(context.Background(), e))

	received := receive(t, ch)
	assert.Equal(t, "test.created", received.EventType())

	persisted, err := NewEventLog(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestBus_SubscribeMultipleTypes(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(10, "test.first", "test.second")

	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.first", "test", 1)}))
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.other", "test", 2)}))
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.second", "test", 3)}))

	assert.Equal(t, "test.first", receive(t, ch).EventType())
	assert.Equal(t, "test.second", receive(t, ch).EventType())

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.EventType())
	default:
	}
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(10)

	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.first", "test", 1)}))
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.second", "test", 2)}))

	assert.Equal(t, int64(1), receive(t, ch).EntityID())
	assert.Equal(t, int64(2), receive(t, ch).EntityID())
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(10, "test.a", "test.b")
	bus.Unsubscribe(ch)

	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.a", "test", 1)}))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestBus_FullChannelDropsEvent(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(1, "test.event")
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", int64(i))}))
	}

	assert.Len(t, ch, 1)
	assert.Equal(t, int64(0), receive(t, ch).EntityID())
}

func TestBus_PublishCanceledContext(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(1, "test.event")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(ctx, &testEvent{BaseEvent: NewBaseEvent("test.event", "test", 1)})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ch)
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(nil, nil)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	err := bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", 1)})
	assert.NoError(t, err)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.concurrent", "test", int64(n))})
		}(i)
	}
	wg.Wait()

	assert.Len(t, ch, 10)
}
