package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridesk/facegate/internal/verify"
)

func newTestClient(hub *Hub, sessionID uuid.UUID, buffer int) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, buffer),
	}
}

func receive(t *testing.T, c *Client) verify.Event {
	t.Helper()
	select {
	case message := <-c.send:
		var event verify.Event
		require.NoError(t, json.Unmarshal(message, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return verify.Event{}
	}
}

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := newTestClient(hub, sessionID, 8)
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 1
	}, time.Second, 2*time.Millisecond)

	hub.Publish(verify.Event{SessionID: sessionID, Type: verify.EventState, State: "camera_ready"})

	event := receive(t, client)
	assert.Equal(t, sessionID, event.SessionID)
	assert.Equal(t, "camera_ready", event.State)
}

func TestHubFirehoseReceivesAllSessions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	firehose := newTestClient(hub, uuid.Nil, 8)
	hub.register <- firehose
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(uuid.Nil) == 1
	}, time.Second, 2*time.Millisecond)

	hub.Publish(verify.Event{SessionID: uuid.New(), Type: verify.EventCheckpoint})
	event := receive(t, firehose)
	assert.Equal(t, verify.EventCheckpoint, event.Type)
}

func TestHubScopedClientIgnoresOtherSessions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := newTestClient(hub, sessionID, 8)
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 1
	}, time.Second, 2*time.Millisecond)

	hub.Publish(verify.Event{SessionID: uuid.New(), Type: verify.EventState})
	hub.Publish(verify.Event{SessionID: sessionID, Type: verify.EventResult})

	event := receive(t, client)
	assert.Equal(t, verify.EventResult, event.Type, "only own-session events are delivered")
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := newTestClient(hub, sessionID, 8)
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 1
	}, time.Second, 2*time.Millisecond)

	hub.unregister <- client
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 0
	}, time.Second, 2*time.Millisecond)

	_, open := <-client.send
	assert.False(t, open)
}

func TestHubDropsSlowClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sessionID := uuid.New()
	client := newTestClient(hub, sessionID, 1)
	hub.register <- client
	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 1
	}, time.Second, 2*time.Millisecond)

	hub.Publish(verify.Event{SessionID: sessionID})
	hub.Publish(verify.Event{SessionID: sessionID})

	require.Eventually(t, func() bool {
		return hub.ConnectedClients(sessionID) == 0
	}, time.Second, 2*time.Millisecond)
}
