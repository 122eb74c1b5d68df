package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many events a subscriber may fall behind before
	// it is dropped.
	sendBuffer = 16
)

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the open websocket connections of the sales dashboard. Each
// connection has its own writer goroutine, so Publish never waits on a
// socket.
type Hub struct {
	mu       sync.Mutex
	clients  map[*subscriber]struct{}
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || origin == allowedOrigin
			},
		},
	}
}

// ServeHTTP upgrades the request and holds the connection until the peer
// goes away. Incoming messages are discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[notify] websocket upgrade failed: %v", err)
		return
	}
	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()

	go h.writePump(sub)
	defer h.remove(sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump owns all writes to sub.conn and closes it when sub.send is
// closed or a write fails.
func (h *Hub) writePump(sub *subscriber) {
	defer sub.conn.Close()
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[notify] websocket write failed, dropping subscriber: %v", err)
			h.remove(sub)
			return
		}
	}
	sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// remove unregisters sub. Only the caller that deletes it closes send.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribe(sub)
}

func (h *Hub) unsubscribe(sub *subscriber) {
	if _, ok := h.clients[sub]; ok {
		delete(h.clients, sub)
		close(sub.send)
	}
}

// Len is the number of connected subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues the event for every subscriber. A subscriber whose
// buffer is full is dropped rather than waited on.
func (h *Hub) Publish(_ context.Context, event SaleCommitted) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[notify] encode sale %d: %v", event.SaleID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.clients {
		select {
		case sub.send <- data:
		default:
			log.Printf("[notify] websocket subscriber is %d events behind, dropping it", sendBuffer)
			h.unsubscribe(sub)
		}
	}
}
