package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/factotum/pkg/channels/gochannel"
	"github.com/dukex/factotum/pkg/events"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return NewWatermillEventBus(pub, sub)
}

func TestWatermillEventBus_PublishAndSubscribe(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan any, 1)

	err := bus.Handle(events.ItemDecidedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.ItemDecided{
		BaseEvent: events.NewBaseEvent(events.ItemDecidedEvent, "wi-1"),
		Decision:  "approved",
		Actor:     "alex",
	}

	require.NoError(t, bus.Publish(ctx, "wi-1", event))

	select {
	case got := <-received:
		decided, ok := got.(*events.ItemDecided)
		require.True(t, ok)
		assert.Equal(t, "wi-1", decided.WorkItemID)
		assert.Equal(t, "alex", decided.Actor)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	bus := newTestBus(t)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered; publish must still succeed and not block.
	event := events.ItemExpired{
		BaseEvent: events.NewBaseEvent(events.ItemExpiredEvent, "wi-1"),
	}

	require.NoError(t, bus.Publish(ctx, "wi-1", event))
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
