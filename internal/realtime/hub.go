// Package realtime pushes per-user analytics updates to websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"trade-journal/internal/observability"
)

// Message is the envelope written to clients.
type Message struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Data   any    `json:"data"`
}

type userMessage struct {
	userID  string
	payload []byte
}

// Hub tracks connected clients by user and fans out messages to them.
// Run must be started before clients register.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	broadcast  chan userMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	count  int
	logger *zap.Logger
}

// NewHub creates a new hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		broadcast:  make(chan userMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("hub"),
	}
}

// Run processes registrations and messages until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case c := <-h.register:
			h.mu.Lock()
			set := h.clients[c.userID]
			if set == nil {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.count++
			n := h.count
			h.mu.Unlock()
			observability.SetWSClients(n)
			h.logger.Debug("client connected", zap.String("user_id", c.userID), zap.Int("clients", n))

		case c := <-h.unregister:
			h.remove(c)

		case m := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients[m.userID]))
			for c := range h.clients[m.userID] {
				targets = append(targets, c)
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- m.payload:
				default:
					h.logger.Warn("dropping slow client", zap.String("user_id", c.userID))
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	set := h.clients[c.userID]
	if _, ok := set[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.count--
	n := h.count
	h.mu.Unlock()

	observability.SetWSClients(n)
	h.logger.Debug("client disconnected", zap.String("user_id", c.userID), zap.Int("clients", n))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			close(c.send)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.count = 0
	observability.SetWSClients(0)
}

// Clients returns the number of connected clients of userID.
func (h *Hub) Clients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish sends msg to every client of msg.UserID. It does not block when the
// hub queue is full; the message is dropped instead.
func (h *Hub) Publish(msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msg.Type, err)
	}

	select {
	case h.broadcast <- userMessage{userID: msg.UserID, payload: payload}:
		return nil
	default:
		return fmt.Errorf("hub queue full, dropped %s message for %s", msg.Type, msg.UserID)
	}
}
