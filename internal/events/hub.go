// Package events broadcasts the live kill feed to WebSocket clients
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/killergame/internal/model"
	"github.com/mcoot/killergame/internal/services/game"
)

// Message is the wire form of an event
type Message struct {
	Type      model.EventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   any             `json:"payload"`
}

// EliminatedPayload is the wire form of a player_eliminated event
type EliminatedPayload struct {
	Nickname       string                 `json:"nickname"`
	By             string                 `json:"by,omitempty"`
	Cause          model.EliminationCause `json:"cause"`
	AliveRemaining int                    `json:"alive_remaining"`
}

// GameOverPayload is the wire form of a game_over event
type GameOverPayload struct {
	Winner string `json:"winner,omitempty"`
}

// Hub fans published events out to every connected client
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

var _ game.Publisher = (*Hub)(nil)

// NewHub creates a new Hub. Call Run to start delivering.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("component", "events")),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and returns once Close is called
func (h *Hub) Run() {
	h.logger.Info("event hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("feed client registered",
				slog.String("remote", client.remote),
				slog.Int("total_clients", count))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("feed client unregistered",
					slog.String("remote", client.remote),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", count))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			dropped := 0
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			h.mu.RUnlock()
			if dropped > 0 {
				h.logger.Warn("feed message dropped for slow clients", slog.Int("dropped", dropped))
			}

		case <-h.done:
			h.mu.Lock()
			count := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("event hub stopped", slog.Int("disconnected_clients", count))
			return
		}
	}
}

// Register adds a client. It is a no-op once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish encodes an event and queues it for every client. It never blocks
// the caller; events are dropped when the hub is saturated or closed.
func (h *Hub) Publish(event model.Event) {
	data, err := json.Marshal(Encode(event))
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("event dropped, hub buffer full", slog.String("type", string(event.Type)))
	}
}

// Close shuts down the hub and disconnects every client
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Encode converts an event to its wire form
func Encode(event model.Event) Message {
	msg := Message{Type: event.Type, Timestamp: event.Timestamp, Payload: event.Payload}
	switch p := event.Payload.(type) {
	case model.PlayerEliminatedPayload:
		msg.Payload = EliminatedPayload{
			Nickname:       p.Nickname,
			By:             p.By,
			Cause:          p.Cause,
			AliveRemaining: p.AliveRemaining,
		}
	case model.GameOverPayload:
		msg.Payload = GameOverPayload{Winner: p.Winner}
	}
	return msg
}
