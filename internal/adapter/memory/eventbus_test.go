package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/robot-roster/internal/adapter/memory"
	"github.com/alanyang/robot-roster/internal/domain/event"
)

func TestEventBus_DeliversToSubscribers(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	got := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelPool, func(_ context.Context, e event.Event) {
		got <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	id := uuid.New()
	require.NoError(t, bus.Publish(ctx, event.New(event.TypePoolEvaluated, id)))

	select {
	case e := <-got:
		assert.Equal(t, event.TypePoolEvaluated, e.Type)
		assert.Equal(t, id, e.EntityID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_UnsubscribeStopsDelivery(t *testing.T) {
	bus := memory.NewEventBus()
	ctx := context.Background()

	calls := make(chan struct{}, 4)
	sub, err := bus.Subscribe(ctx, event.ChannelPool, func(context.Context, event.Event) {
		calls <- struct{}{}
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, event.New(event.TypePoolReset, uuid.New())))
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, calls)
}

func TestEventBus_PublishWithoutSubscribers(t *testing.T) {
	bus := memory.NewEventBus()
	assert.NoError(t, bus.Publish(context.Background(), event.New(event.TypePoolCreated, uuid.New())))
}
