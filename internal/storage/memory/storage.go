package memory

import (
	"context"
	"sync"

	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	usernameIndex map[string]model.UserID
	rooms         map[model.RoomCode]*model.Room
	messages      map[model.RoomCode][]*model.Message
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		usernameIndex: make(map[string]model.UserID),
		rooms:         make(map[model.RoomCode]*model.Room),
		messages:      make(map[model.RoomCode][]*model.Message),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Saves and gets deep-copy users and rooms in both directions, matching the
// Redis backend where JSON round-trips always yield fresh values. Handing
// out the live record would let a caller's read-modify-write race against
// other readers outside the store's own lock. Messages are immutable once
// appended, so those are shared as-is.

func copyUser(u *model.User) *model.User {
	c := *u
	c.Rooms = append([]model.RoomCode(nil), u.Rooms...)
	if u.BirthDate != nil {
		bd := *u.BirthDate
		c.BirthDate = &bd
	}
	if u.CurrentRoom != nil {
		cr := *u.CurrentRoom
		c.CurrentRoom = &cr
	}
	return &c
}

func copyRoom(r *model.Room) *model.Room {
	c := *r
	c.Members = append([]model.Membership(nil), r.Members...)
	return &c
}

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = copyUser(user)
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return copyUser(user), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[room.Code] = copyRoom(room)
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, code model.RoomCode) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok, nil
}

// Message operations

func (s *Storage) AppendMessage(ctx context.Context, msg *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.RoomCode] = append(s.messages[msg.RoomCode], msg)
	return nil
}

func (s *Storage) CountMessages(ctx context.Context, code model.RoomCode) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.messages[code])), nil
}

func (s *Storage) GetMessageRange(ctx context.Context, code model.RoomCode, start, stop int64) ([]*model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.messages[code]
	n := int64(len(log))
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if n == 0 || start > stop {
		return []*model.Message{}, nil
	}

	result := make([]*model.Message, stop-start+1)
	copy(result, log[start:stop+1])
	return result, nil
}

func (s *Storage) PurgeMessages(ctx context.Context, code model.RoomCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, code)
	return nil
}
