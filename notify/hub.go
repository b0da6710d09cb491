// Package notify delivers kitchen events to connected displays over
// websockets and to other services over RabbitMQ.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"go-restaurant-pos/models"
)

const writeWait = 5 * time.Second

type client struct {
	conn *websocket.Conn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

func (c *client) send(msg []byte, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub is the registry of connected kitchen displays.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	log     logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{clients: map[string]*client{}, log: log}
}

// Add registers conn and returns its connection id.
func (h *Hub) Add(conn *websocket.Conn) string {
	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = &client{conn: conn}
	h.mu.Unlock()
	h.log.WithFields(logrus.Fields{"action": "ws_connect", "conn_id": id}).Info("kitchen display connected")
	return id
}

// Remove unregisters and closes a connection. Removing twice is harmless.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
		h.log.WithFields(logrus.Fields{"action": "ws_disconnect", "conn_id": id}).Info("kitchen display disconnected")
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve keeps a registered connection open until the peer goes away.
// Displays only listen, so anything they send is discarded.
func (h *Hub) Serve(id string, conn *websocket.Conn) {
	defer h.Remove(id)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Notify sends n to every connected display. Connections that fail to take
// the message are dropped; the broadcast itself never fails.
func (h *Hub) Notify(ctx context.Context, n models.Notification) error {
	msg, err := json.Marshal(n)
	if err != nil {
		return err
	}

	h.mu.RLock()
	snapshot := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.RUnlock()

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	for id, c := range snapshot {
		if err := c.send(msg, deadline); err != nil {
			h.log.WithError(err).WithFields(logrus.Fields{"action": "ws_send", "conn_id": id}).Warn("dropping kitchen display")
			h.Remove(id)
		}
	}
	return nil
}
