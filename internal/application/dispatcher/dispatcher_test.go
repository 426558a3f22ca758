package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alloycap/token-lifecycle/internal/domain/event"
)

func TestDispatch(t *testing.T) {
	d := New()
	defer d.Close()

	var received *event.Event
	d.Subscribe(event.TypeStatusChanged, "recorder", func(ctx context.Context, evt *event.Event) error {
		received = evt
		return nil
	})

	evt := event.NewEvent(event.TypeStatusChanged, uuid.New(), map[string]interface{}{
		"new_status": "APPROVED",
	})

	err := d.Dispatch(context.Background(), evt)
	require.NoError(t, err)
	require.NotNil(t, received)
	assert.Equal(t, evt.ID, received.ID)
}

func TestDispatch_OnlyMatchingType(t *testing.T) {
	d := New()
	defer d.Close()

	called := false
	d.Subscribe(event.TypeTokenCreated, "creation-only", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	evt := event.NewEvent(event.TypeStatusChanged, uuid.New(), nil)
	require.NoError(t, d.Dispatch(context.Background(), evt))
	assert.False(t, called, "handler for another event type must not run")
}

func TestDispatch_HandlerError(t *testing.T) {
	d := New()
	defer d.Close()

	d.Subscribe(event.TypeStatusChanged, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("downstream unavailable")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStatusChanged, uuid.New(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
}

func TestDispatch_HandlerPanicIsRecovered(t *testing.T) {
	d := New()
	defer d.Close()

	d.Subscribe(event.TypeStatusChanged, "panicking", func(ctx context.Context, evt *event.Event) error {
		panic("boom")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStatusChanged, uuid.New(), nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestDispatchAsync_WaitsOnClose(t *testing.T) {
	d := New()

	var count atomic.Int32
	d.Subscribe(event.TypeStatusChanged, "counter", func(ctx context.Context, evt *event.Event) error {
		count.Add(1)
		return nil
	})

	for i := 0; i < 10; i++ {
		d.DispatchAsync(context.Background(), event.NewEvent(event.TypeStatusChanged, uuid.New(), nil))
	}

	require.NoError(t, d.Close())
	assert.Equal(t, int32(10), count.Load(), "Close must wait for in-flight async handlers")
}

func TestDispatch_AfterClose(t *testing.T) {
	d := New()
	require.NoError(t, d.Close())

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStatusChanged, uuid.New(), nil))
	assert.Error(t, err)

	// Async dispatch after close is a silent no-op
	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeStatusChanged, uuid.New(), nil))
}
