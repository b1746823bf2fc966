package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/auth"
	"github.com/dkaymak/roomchat/internal/services/room"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers send Origin; the API is token-authenticated so any origin
	// holding a valid token may connect
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated HTTP requests to websocket connections and
// drives the per-connection event loop
type Handler struct {
	auth   *auth.Service
	rooms  *room.Controller
	hubs   *HubManager
	logger *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(auth *auth.Service, rooms *room.Controller, hubs *HubManager, logger *slog.Logger) *Handler {
	return &Handler{
		auth:   auth,
		rooms:  rooms,
		hubs:   hubs,
		logger: logger.With(slog.String("component", "ws")),
	}
}

// tokenFromRequest pulls the auth token from the token query parameter or
// a bearer Authorization header. Browser websocket clients cannot set
// headers, so the query parameter is the primary path.
func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// ServeHTTP authenticates the request, upgrades it and runs the connection
// until the peer goes away
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := h.auth.VerifyToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := NewClient(conn, user, h.logger)
	go client.writePump()

	// Reconnecting users land back in the room they were last in. Membership
	// was validated when they joined, so no password check here.
	if user.CurrentRoom != nil {
		if hub := h.bindExisting(r.Context(), client, *user.CurrentRoom); hub {
			client.sendEvent(ServerEvent{Type: EventConnected, RoomCode: *user.CurrentRoom})
		} else {
			client.sendEvent(ServerEvent{Type: EventConnected})
		}
	} else {
		client.sendEvent(ServerEvent{Type: EventConnected})
	}

	h.readPump(client)
}

// bindExisting binds a client to a room it already belongs to, reporting
// whether the room still exists
func (h *Handler) bindExisting(ctx context.Context, client *Client, code model.RoomCode) bool {
	if _, err := h.rooms.GetRoom(ctx, code); err != nil {
		return false
	}
	client.bind(h.hubs.GetOrCreateHub(code))
	return true
}

// readPump reads client events until the connection drops. An abrupt
// disconnect only unbinds the socket; room membership survives so the user
// can reconnect into the same room.
func (h *Handler) readPump(client *Client) {
	defer func() {
		client.unbind()
		close(client.done)
		_ = client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.logger.Warn("websocket closed unexpectedly", slog.Any("error", err))
			}
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			client.sendEvent(ServerEvent{Type: EventError, Error: &ErrorPayload{
				Code:    "bad_event",
				Message: "malformed event",
			}})
			continue
		}

		h.dispatch(client, event)
	}
}

// dispatch routes one client event
func (h *Handler) dispatch(client *Client, event ClientEvent) {
	ctx := context.Background()

	switch event.Type {
	case EventJoinRoom:
		// The REST join endpoint owns membership; this event only binds the
		// socket to the room's broadcast hub
		roomState, err := h.rooms.GetRoom(ctx, event.RoomCode)
		if err != nil {
			client.sendEvent(ServerEvent{Type: EventError, RoomCode: event.RoomCode, Error: errorPayload(err)})
			return
		}
		if roomState.GetMember(client.user.ID) == nil {
			client.sendEvent(ServerEvent{Type: EventError, RoomCode: event.RoomCode, Error: &ErrorPayload{
				Code:    "not_a_member",
				Message: "join the room before subscribing to it",
			}})
			return
		}
		client.bind(h.hubs.GetOrCreateHub(event.RoomCode))

	case EventLeaveRoom:
		code := event.RoomCode
		if code == "" {
			if hub := client.Hub(); hub != nil {
				code = hub.code
			}
		}
		if code == "" {
			return
		}
		if err := h.rooms.LeaveRoom(ctx, code, client.user.ID); err != nil {
			client.sendEvent(ServerEvent{Type: EventError, RoomCode: code, Error: errorPayload(err)})
			return
		}
		// Leaving a room other than the bound one keeps the binding
		if hub := client.Hub(); hub != nil && hub.code == code {
			client.unbind()
		}
		// Last member out deletes the room; drop its hub with it
		if _, err := h.rooms.GetRoom(ctx, code); errors.Is(err, model.ErrRoomNotFound) {
			h.hubs.RemoveHub(code)
		}

	case EventSendMessage:
		hub := client.Hub()
		if hub == nil {
			client.sendEvent(ServerEvent{Type: EventError, Error: &ErrorPayload{
				Code:    "not_in_room",
				Message: "join a room before sending messages",
			}})
			return
		}
		// An omitted room_code targets the bound room; a mismatching one is
		// a client bug, not a reroute
		if event.RoomCode != "" && event.RoomCode != hub.code {
			client.sendEvent(ServerEvent{Type: EventError, RoomCode: event.RoomCode, Error: &ErrorPayload{
				Code:    "not_in_room",
				Message: "send-message addressed a room this connection is not bound to",
			}})
			return
		}
		hub.Post(client, event.Body)

	default:
		client.sendEvent(ServerEvent{Type: EventError, Error: &ErrorPayload{
			Code:    "bad_event",
			Message: "unknown event type",
		}})
	}
}
