package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dkaymak/roomchat/internal/dependencies/clock"
	"github.com/dkaymak/roomchat/internal/dependencies/random"
	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/color"
	"github.com/dkaymak/roomchat/internal/storage"
)

const (
	// CodeAlphabet is the characters used in generated room codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxCodeAttempts bounds code generation so exhaustion of the code
	// space fails instead of spinning forever
	maxCodeAttempts = 1000
)

// MessagePurger deletes a room's message log when the room is destroyed.
// Implemented by the message service.
type MessagePurger interface {
	Purge(ctx context.Context, code model.RoomCode) error
}

// Controller manages the room directory: creation, join/leave semantics,
// color assignment and the delete-on-empty lifecycle rule.
type Controller struct {
	storage  storage.Storage
	colors   *color.Service
	messages MessagePurger
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger

	// Per-room mutual exclusion: join/leave read-modify-write of the member
	// list and the delete-on-empty decision must be atomic per room code.
	locksMu sync.Mutex
	locks   map[model.RoomCode]*sync.Mutex
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	colors *color.Service,
	messages MessagePurger,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:  storage,
		colors:   colors,
		messages: messages,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "rooms")),
		locks:    make(map[model.RoomCode]*sync.Mutex),
	}
}

// lockRoom returns the mutex guarding the given room code, creating it on
// first use
func (c *Controller) lockRoom(code model.RoomCode) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	mu, ok := c.locks[code]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[code] = mu
	}
	return mu
}

// releaseRoomLock drops the lock entry for a deleted room
func (c *Controller) releaseRoomLock(code model.RoomCode) {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()
	delete(c.locks, code)
}

// validCode reports whether a code is exactly RoomCodeLength alphanumeric
// characters
func validCode(code model.RoomCode) bool {
	if len(code) != model.RoomCodeLength {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// CreateRoom claims a room code for the given user. The creator becomes the
// sole member, is assigned the first palette color and has the room recorded
// as their current room.
func (c *Controller) CreateRoom(ctx context.Context, code model.RoomCode, password string, userID model.UserID) (*model.Room, error) {
	if !validCode(code) {
		return nil, model.ErrInvalidRoomCode
	}

	mu := c.lockRoom(code)
	mu.Lock()
	defer mu.Unlock()

	exists, err := c.storage.RoomExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrRoomExists
	}

	user, err := c.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	room := &model.Room{
		Code:     code,
		Password: password,
		Members: []model.Membership{
			{
				UserID:   userID,
				Color:    c.colors.Assign(nil),
				JoinedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	user.AddRoom(code)
	user.CurrentRoom = &room.Code
	if err := c.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	c.logger.Info("room created", slog.String("code", string(code)), slog.String("user_id", string(userID)))
	return room, nil
}

// JoinRoom adds the user to a room. For users who already hold a membership
// the call is idempotent except that it still updates the current room, so
// a rejoin after reconnect works without reassigning a color.
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, password string, userID model.UserID) (*model.Room, error) {
	mu := c.lockRoom(code)
	mu.Lock()
	defer mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	if room.HasPassword() && room.Password != password {
		return nil, model.ErrWrongPassword
	}

	user, err := c.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if room.GetMember(userID) == nil {
		room.Members = append(room.Members, model.Membership{
			UserID:   userID,
			Color:    c.colors.Assign(room.MemberColors()),
			JoinedAt: c.clock.Now(),
		})
		room.UpdatedAt = c.clock.Now()

		if err := c.storage.SaveRoom(ctx, room); err != nil {
			return nil, err
		}
	}

	user.AddRoom(code)
	user.CurrentRoom = &room.Code
	if err := c.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return room, nil
}

// LeaveRoom removes the user's membership if present. When the last member
// leaves, the room is deleted and its message log purged as part of the same
// operation: no room with zero members may persist.
func (c *Controller) LeaveRoom(ctx context.Context, code model.RoomCode, userID model.UserID) error {
	mu := c.lockRoom(code)
	mu.Lock()
	defer mu.Unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}

	removed := room.RemoveMember(userID)

	// A missing user record just means there is no membership list to trim;
	// any other storage failure must surface before the room-side removal
	user, err := c.storage.GetUser(ctx, userID)
	if err == nil {
		user.RemoveRoom(code)
		if err := c.storage.SaveUser(ctx, user); err != nil {
			return err
		}
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	if len(room.Members) == 0 {
		if err := c.messages.Purge(ctx, code); err != nil {
			return err
		}
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return err
		}
		c.releaseRoomLock(code)
		c.logger.Info("empty room deleted", slog.String("code", string(code)))
		return nil
	}

	if removed {
		room.UpdatedAt = c.clock.Now()
		return c.storage.SaveRoom(ctx, room)
	}
	return nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, code)
}

// GenerateUniqueCode produces a room code not present in the directory,
// retrying up to maxCodeAttempts before failing with ErrCodeSpaceExhausted
func (c *Controller) GenerateUniqueCode(ctx context.Context) (model.RoomCode, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := model.RoomCode(c.random.String(model.RoomCodeLength, CodeAlphabet))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", model.ErrCodeSpaceExhausted
}
