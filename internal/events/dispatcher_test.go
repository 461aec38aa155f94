package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var calls []string
	dispatcher.Subscribe(EventTicketStatusChanged, func(_ context.Context, event Event) error {
		calls = append(calls, "first:"+event.TicketID)
		return nil
	})
	dispatcher.Subscribe(EventTicketStatusChanged, func(_ context.Context, event Event) error {
		calls = append(calls, "second:"+event.TicketID)
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{
		Type:     EventTicketStatusChanged,
		TicketID: "t-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:t-1", "second:t-1"}, calls)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	called := false
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketStatusChanged})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestHandlerFailureDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher(zap.NewNop())

	var reached bool
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated})
	require.NoError(t, err)
	assert.True(t, reached)
}
