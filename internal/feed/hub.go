package feed

import (
	"encoding/json"

	"telyourstory/pkg/logger"
)

const (
	StoryPublishedType = "STORY_PUBLISHED" // A story was created or updated
	FeedReadyType      = "FEED_READY"      // Sent to a client once it is subscribed
)

// Event is what goes over the wire to every connected browser.
type Event struct {
	Type    string `json:"type"`
	StoryID string `json:"story_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Author  string `json:"author,omitempty"`
	Created bool   `json:"created,omitempty"`
}

// Hub fans publish events out to every connected client. Unlike a per-room
// hub there is a single subscriber set; events are global. All client state
// is owned by the Run goroutine, so no locking is needed.
type Hub struct {
	clients    map[*Client]bool
	Broadcast  chan Event
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan Event, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true

			// Tell the client it is live so it can stop showing a
			// connecting state.
			if ready, err := json.Marshal(Event{Type: FeedReadyType}); err == nil {
				client.Send <- ready
			}

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}

		case ev := <-h.Broadcast:
			payload, err := json.Marshal(ev)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling feed event: %v", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.Send <- payload:
				default:
					// A full send buffer means the client is lagging.
					// Drop it rather than block the hub.
					logger.Sugar.Warnf("Feed client send buffer full, dropping client")
					delete(h.clients, client)
					close(client.Send)
				}
			}
		}
	}
}
