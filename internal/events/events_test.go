package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(t *testing.T, cfg *BusConfig) *Bus {
	t.Helper()
	bus := NewBus(cfg, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})
	return bus
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := newTestBus(t, &BusConfig{BufferSize: 16, WorkerCount: 1, HandlerTimeout: time.Second})

	received := make(chan Event, 1)
	bus.Subscribe(EventFailCreated, HandlerFunc{
		ID: "test",
		Func: func(_ context.Context, event Event) error {
			received <- event
			return nil
		},
	})

	event := NewEvent(EventFailCreated, 42, map[string]any{"fail_id": int64(7)})
	require.NoError(t, bus.Publish(context.Background(), event))

	select {
	case got := <-received:
		assert.Equal(t, int64(42), got.GetUserID())
		assert.Equal(t, EventFailCreated, got.GetEventType())
		assert.NotEmpty(t, got.GetEventID())
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestPublishIgnoresUnsubscribedTypes(t *testing.T) {
	bus := newTestBus(t, &BusConfig{BufferSize: 16, WorkerCount: 1, HandlerTimeout: time.Second})
	assert.NoError(t, bus.Publish(context.Background(), NewEvent(EventUserLoggedIn, 1, nil)))
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newTestBus(t, &BusConfig{BufferSize: 16, WorkerCount: 1, HandlerTimeout: time.Second})

	var secondRan atomic.Bool
	done := make(chan struct{})
	bus.Subscribe(EventCommentCreated, HandlerFunc{
		ID:   "failing",
		Func: func(context.Context, Event) error { return errors.New("boom") },
	})
	bus.Subscribe(EventCommentCreated, HandlerFunc{
		ID: "following",
		Func: func(context.Context, Event) error {
			secondRan.Store(true)
			close(done)
			return nil
		},
	})

	require.NoError(t, bus.Publish(context.Background(), NewEvent(EventCommentCreated, 1, nil)))

	select {
	case <-done:
		assert.True(t, secondRan.Load())
	case <-time.After(time.Second):
		t.Fatal("second handler did not run")
	}
}

func TestPublishFullQueueDrops(t *testing.T) {
	// No workers drain the queue, so the second publish must not block.
	bus := NewBus(&BusConfig{BufferSize: 1, WorkerCount: 0, HandlerTimeout: time.Second}, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Stop(ctx)
	})

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, NewEvent(EventFailCreated, 1, nil)))
	assert.Error(t, bus.Publish(ctx, NewEvent(EventFailCreated, 2, nil)))
}
