package storage

import (
	"context"

	"github.com/dkaymak/roomchat/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Room operations
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)

	// Message operations. The per-room log is append-ordered; GetMessageRange
	// returns the inclusive [start, stop] slice of that log in append order
	// (Redis LRANGE semantics).
	AppendMessage(ctx context.Context, msg *model.Message) error
	CountMessages(ctx context.Context, code model.RoomCode) (int64, error)
	GetMessageRange(ctx context.Context, code model.RoomCode, start, stop int64) ([]*model.Message, error)
	PurgeMessages(ctx context.Context, code model.RoomCode) error
}
