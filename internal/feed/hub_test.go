package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"telyourstory/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

// Helper to read one event from a WebSocket connection with a timeout.
func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	var ev Event
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	require.NoError(t, json.Unmarshal(p, &ev), "Failed to unmarshal Event JSON")
	return ev
}

func TestHubBroadcastsPublishEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/feed", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/feed", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()

	// Each client gets the ready marker once it is subscribed, so reading it
	// guarantees the hub has registered the client before we broadcast.
	assert.Equal(t, FeedReadyType, readEvent(t, conn1).Type)
	assert.Equal(t, FeedReadyType, readEvent(t, conn2).Type)

	hub.Broadcast <- Event{
		Type:    StoryPublishedType,
		StoryID: "story-1",
		Title:   "A Walk to Remember",
		Author:  "Alice",
		Created: true,
	}

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		ev := readEvent(t, conn)
		assert.Equal(t, StoryPublishedType, ev.Type)
		assert.Equal(t, "story-1", ev.StoryID)
		assert.Equal(t, "A Walk to Remember", ev.Title)
		assert.Equal(t, "Alice", ev.Author)
		assert.True(t, ev.Created)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/feed", nil)
	require.NoError(t, err)
	defer conn1.Close()
	assert.Equal(t, FeedReadyType, readEvent(t, conn1).Type)

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/feed", nil)
	require.NoError(t, err)
	assert.Equal(t, FeedReadyType, readEvent(t, conn2).Type)
	conn2.Close()

	// Give the hub a moment to unregister the closed client, then confirm
	// the surviving client still receives events.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast <- Event{Type: StoryPublishedType, StoryID: "story-2", Title: "Still Here", Author: "Bob"}

	ev := readEvent(t, conn1)
	assert.Equal(t, "story-2", ev.StoryID)
}
