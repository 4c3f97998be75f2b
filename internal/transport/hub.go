package transport

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type delivery struct {
	UserID  string  `json:"user_id"`
	Content Content `json:"content"`
}

// Hub delivers content to connected websocket clients, keyed by user. When
// a user has no live connection the delivery is logged and dropped; a real
// chat transport would queue or push instead.
type Hub struct {
	mu    sync.RWMutex
	conns map[string][]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string][]*websocket.Conn)}
}

// Attach registers a connection for a user.
func (h *Hub) Attach(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[userID] = append(h.conns[userID], conn)
}

// Detach removes a connection for a user.
func (h *Hub) Detach(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.conns[userID]
	out := conns[:0]
	for _, c := range conns {
		if c != conn {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		delete(h.conns, userID)
		return
	}
	h.conns[userID] = out
}

func (h *Hub) Deliver(_ context.Context, userID string, content Content) error {
	h.mu.RLock()
	conns := append([]*websocket.Conn(nil), h.conns[userID]...)
	h.mu.RUnlock()

	if len(conns) == 0 {
		log.Printf("transport: no connection for user %s, dropping %s delivery", userID, content.Kind)
		return nil
	}

	msg := delivery{UserID: userID, Content: content}
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("transport: write to user %s failed: %v", userID, err)
		}
	}
	return nil
}
