package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/creativa-studio/lead-service/internal/config"
	"github.com/creativa-studio/lead-service/internal/events"
)

func leadCreatedEvent() events.Event {
	return events.Event{
		ID:     "evt-1",
		Type:   events.EventLeadCreated,
		LeadID: "lead-1",
		Payload: events.LeadCreatedPayload{
			Name:    "Ana",
			Email:   "ana@x.com",
			Message: "Hello there, need a quote",
		},
	}
}

func TestNotificationPostsWebhookOnLeadCreated(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: server.URL})
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), leadCreatedEvent()))

	require.NotEmpty(t, body)
	assert.Contains(t, body["text"], "Ana")
	assert.Contains(t, body["text"], "ana@x.com")
	assert.Contains(t, body["text"], "N/A") // phone missing renders as N/A
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: server.URL})
	svc.RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), leadCreatedEvent()))
}

func TestNotificationUnreachableWebhookIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{WebhookURL: server.URL})
	svc.RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), leadCreatedEvent()))
}

func TestNotificationSkippedWithoutWebhookURL(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{})
	svc.RegisterHandlers()

	assert.NoError(t, dispatcher.Publish(context.Background(), leadCreatedEvent()))
}
