package model

import "time"

// MessageID uniquely identifies a message
type MessageID string

// Message is a single chat message. Messages are immutable once created;
// the only destructive operation is the bulk purge when the owning room
// is deleted.
type Message struct {
	ID        MessageID
	RoomCode  RoomCode
	SenderID  UserID
	Body      string
	Timestamp time.Time
}
