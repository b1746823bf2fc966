package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/message"
)

// RoomSource loads room state for message enrichment
type RoomSource interface {
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
}

// postRequest is a send-message event routed through the hub's event loop.
// Persisting and broadcasting both happen inside Run, so every client sees
// messages in exactly the order they were appended.
type postRequest struct {
	sender *Client
	body   string
}

// Hub manages the websocket clients bound to a single room
type Hub struct {
	code     model.RoomCode
	messages *message.Service
	rooms    RoomSource
	clients  map[*Client]bool
	mu       sync.RWMutex
	logger   *slog.Logger

	register   chan *Client
	unregister chan *Client
	post       chan postRequest
	done       chan struct{}
}

// NewHub creates a new Hub for a room
func NewHub(code model.RoomCode, messages *message.Service, rooms RoomSource, logger *slog.Logger) *Hub {
	return &Hub{
		code:       code,
		messages:   messages,
		rooms:      rooms,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("room", string(code))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		post:       make(chan postRequest, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("room hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client bound to room",
				slog.String("user_id", string(client.user.ID)),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				clientCount := len(h.clients)
				h.mu.Unlock()
				duration := time.Since(client.connectedAt)
				h.logger.Info("client unbound from room",
					slog.String("user_id", string(client.user.ID)),
					slog.Duration("connection_duration", duration),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case req := <-h.post:
			h.handlePost(req)

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("room hub stopped", slog.Int("unbound_clients", clientCount))
			return
		}
	}
}

// handlePost persists a message and fans it out to every bound client.
// Failures go back to the sender alone.
func (h *Hub) handlePost(req postRequest) {
	ctx := context.Background()

	msg, err := h.messages.Append(ctx, h.code, req.sender.user.ID, req.body)
	if err != nil {
		req.sender.sendEvent(ServerEvent{Type: EventError, RoomCode: h.code, Error: errorPayload(err)})
		return
	}

	room, err := h.rooms.GetRoom(ctx, h.code)
	if err != nil {
		req.sender.sendEvent(ServerEvent{Type: EventError, RoomCode: h.code, Error: errorPayload(err)})
		return
	}

	enriched, err := h.messages.Enrich(ctx, msg, room)
	if err != nil {
		h.logger.Error("failed to enrich message", slog.Any("error", err))
		return
	}

	payload, err := json.Marshal(ServerEvent{Type: EventMessage, RoomCode: h.code, Message: enriched})
	if err != nil {
		h.logger.Error("failed to encode message event", slog.Any("error", err))
		return
	}

	h.mu.RLock()
	droppedCount := 0
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			droppedCount++
			h.logger.Warn("message dropped - client buffer full",
				slog.String("user_id", string(client.user.ID)))
		}
	}
	h.mu.RUnlock()
	if droppedCount > 0 {
		h.logger.Warn("broadcast partial failure", slog.Int("dropped", droppedCount))
	}
}

// Register adds a client to the hub. A no-op on a closed hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub. A no-op on a closed hub.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Post enqueues a send-message event for the hub's event loop
func (h *Hub) Post(sender *Client, body string) {
	select {
	case h.post <- postRequest{sender: sender, body: body}:
	default:
		h.logger.Warn("post dropped - hub buffer full",
			slog.String("user_id", string(sender.user.ID)))
		sender.sendEvent(ServerEvent{Type: EventError, RoomCode: h.code, Error: &ErrorPayload{
			Code:    "overloaded",
			Message: "room is overloaded, try again",
		}})
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	close(h.done)
}

// ClientCount returns the number of bound clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	messages *message.Service
	rooms    RoomSource
	hubs     map[model.RoomCode]*Hub
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(messages *message.Service, rooms RoomSource, logger *slog.Logger) *HubManager {
	return &HubManager{
		messages: messages,
		rooms:    rooms,
		hubs:     make(map[model.RoomCode]*Hub),
		logger:   logger.With(slog.String("component", "ws")),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(code model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		return hub
	}

	hub := NewHub(code, m.messages, m.rooms, m.logger)
	m.hubs[code] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(code model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[code]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(code model.RoomCode) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		hub.Close()
		delete(m.hubs, code)
		m.logger.Info("room hub removed", slog.String("room", string(code)))
	}
}
