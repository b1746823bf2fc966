package ws

import (
	"errors"

	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/message"
)

// Client-to-server event types
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
)

// Server-to-client event types
const (
	EventConnected = "connected"
	EventMessage   = "message"
	EventError     = "error"
)

// ClientEvent is the envelope for all events a client sends over the socket.
// RoomCode is required for join-room. send-message may omit it to target the
// bound room and is rejected when it names any other room. leave-room may
// omit it to leave the bound room, or name any room the user is a member of.
type ClientEvent struct {
	Type     string         `json:"type"`
	RoomCode model.RoomCode `json:"room_code,omitempty"`
	Body     string         `json:"message,omitempty"`
}

// ServerEvent is the envelope for all events the server pushes to clients
type ServerEvent struct {
	Type     string                   `json:"type"`
	RoomCode model.RoomCode           `json:"room_code,omitempty"`
	Message  *message.EnrichedMessage `json:"message,omitempty"`
	Error    *ErrorPayload            `json:"error,omitempty"`
}

// ErrorPayload describes a failed client event
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorPayload maps a service error to a wire error payload
func errorPayload(err error) *ErrorPayload {
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &ErrorPayload{Code: "room_not_found", Message: "room does not exist"}
	case errors.Is(err, model.ErrWrongPassword):
		return &ErrorPayload{Code: "wrong_password", Message: "incorrect room password"}
	case errors.Is(err, model.ErrEmptyMessage):
		return &ErrorPayload{Code: "empty_message", Message: "message body is empty"}
	case errors.Is(err, model.ErrInvalidRoomCode):
		return &ErrorPayload{Code: "invalid_room_code", Message: "room code is invalid"}
	default:
		return &ErrorPayload{Code: "internal_error", Message: "internal error"}
	}
}
