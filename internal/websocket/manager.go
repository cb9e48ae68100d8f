// Package websocket implements the studio change feed: a broadcast-only
// channel telling connected clients that a component changed on the server,
// along with its new version token. The feed is advisory: the edit flow
// never depends on it, and conflicts are still detected by If-Match alone.
package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

const (
	EventComponentUpdated = "component.updated"
	EventComponentDeleted = "component.deleted"
)

// ComponentEvent is the payload pushed to every connected client when a
// component is written or deleted.
type ComponentEvent struct {
	Type        string    `json:"type"`
	ComponentID string    `json:"componentId"`
	ProjectID   string    `json:"projectId"`
	ETag        string    `json:"etag,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Manager struct {
	clientsMutex sync.RWMutex
	clients      map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewManager(writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		writeWait:  writeWait,
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.clientsMutex.Lock()
			m.clients[client] = true
			m.clientsMutex.Unlock()
			log.Printf("[WebSocket] client connected: %s (user %s)", client.ID, client.UserID)

		case client := <-m.Unregister:
			m.clientsMutex.Lock()
			if _, ok := m.clients[client]; ok {
				delete(m.clients, client)
				close(client.Send)
			}
			m.clientsMutex.Unlock()
			log.Printf("[WebSocket] client disconnected: %s", client.ID)

		case message := <-m.broadcast:
			m.clientsMutex.RLock()
			for client := range m.clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop the event rather than block the feed.
				}
			}
			m.clientsMutex.RUnlock()
		}
	}
}

// BroadcastComponentEvent queues an event for every connected client.
// Safe to call from any goroutine.
func (m *Manager) BroadcastComponentEvent(evt *ComponentEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("[WebSocket] failed to marshal component event: %v", err)
		return
	}

	select {
	case m.broadcast <- data:
	default:
		log.Printf("[WebSocket] broadcast queue full, dropping %s for %s", evt.Type, evt.ComponentID)
	}
}
