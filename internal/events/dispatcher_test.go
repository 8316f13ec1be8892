package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherInvokesSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []string
	dispatcher.Subscribe(EventLeadCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.LeadID)
		return nil
	})
	dispatcher.Subscribe(EventLeadCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.LeadID)
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventLeadCreated, LeadID: "lead-1"}))
	assert.Equal(t, []string{"first:lead-1", "second:lead-1"}, got)
}

func TestDispatcherHandlerErrorDoesNotStopOthers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	called := false
	dispatcher.Subscribe(EventLeadDeleted, func(context.Context, Event) error {
		return errors.New("boom")
	})
	dispatcher.Subscribe(EventLeadDeleted, func(context.Context, Event) error {
		called = true
		return nil
	})

	require.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventLeadDeleted}))
	assert.True(t, called)
}

func TestDispatcherIgnoresUnsubscribedTypes(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	assert.NoError(t, dispatcher.Publish(context.Background(), Event{Type: EventLeadStatusChanged}))
}
