package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []Event
	dispatcher.Subscribe(EventComplaintLocked, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})
	dispatcher.Subscribe(EventComplaintLocked, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		Type:        EventComplaintLocked,
		ComplaintID: "c-1",
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventComplaintLocked, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventComplaintUnlocked})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	secondCalled := false
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventStatusChanged})
	require.NoError(t, err)
	assert.True(t, secondCalled)
}
