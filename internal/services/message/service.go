package message

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dkaymak/roomchat/internal/dependencies/clock"
	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/storage"
)

// DefaultPageLimit is the page size used when the caller does not specify one
const DefaultPageLimit = 30

// EnrichedMessage is a message joined with its sender's profile and the
// color the sender holds in the room. Color comes from current membership,
// so a sender who has left the room renders with the default color.
type EnrichedMessage struct {
	ID        model.MessageID `json:"id"`
	Body      string          `json:"message"`
	SenderID  model.UserID    `json:"sender_id"`
	Username  string          `json:"username"`
	BirthDate *string         `json:"birth_date,omitempty"`
	Age       *int            `json:"age,omitempty"`
	Color     model.Color     `json:"color"`
	Timestamp string          `json:"timestamp"`
}

// PageResult is one page of a room's history, oldest first within the page
type PageResult struct {
	Messages    []EnrichedMessage `json:"messages"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
	HasMore     bool              `json:"has_more"`
}

// Service persists and pages room message history
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewService creates a new message Service
func NewService(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "messages")),
	}
}

// Append records a message in a room's log. The body is trimmed and must be
// non-empty; the room must exist.
func (s *Service) Append(ctx context.Context, code model.RoomCode, senderID model.UserID, body string) (*model.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, model.ErrEmptyMessage
	}

	exists, err := s.storage.RoomExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrRoomNotFound
	}

	msg := &model.Message{
		ID:        model.MessageID(uuid.NewString()),
		RoomCode:  code,
		SenderID:  senderID,
		Body:      body,
		Timestamp: s.clock.Now(),
	}
	if err := s.storage.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Page returns one page of a room's history. Page 1 is the newest messages;
// higher pages walk back in time. Messages within a page are ordered oldest
// first so the client can prepend pages directly.
func (s *Service) Page(ctx context.Context, code model.RoomCode, page, limit int) (*PageResult, error) {
	if page < 1 || limit < 0 {
		return nil, model.ErrInvalidPage
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}

	room, err := s.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, err
	}

	count, err := s.storage.CountMessages(ctx, code)
	if err != nil {
		return nil, err
	}
	total := int(count)

	totalPages := (total + limit - 1) / limit
	result := &PageResult{
		Messages:    []EnrichedMessage{},
		CurrentPage: page,
		TotalPages:  totalPages,
		HasMore:     page < totalPages,
	}

	// Page n covers the slice ending limit*(n-1) from the tail of the log
	start := total - page*limit
	stop := total - (page-1)*limit - 1
	if stop < 0 {
		return result, nil
	}
	if start < 0 {
		start = 0
	}

	msgs, err := s.storage.GetMessageRange(ctx, code, int64(start), int64(stop))
	if err != nil {
		return nil, err
	}

	for _, msg := range msgs {
		enriched, err := s.Enrich(ctx, msg, room)
		if err != nil {
			return nil, err
		}
		result.Messages = append(result.Messages, *enriched)
	}
	return result, nil
}

// Enrich joins a stored message with sender profile data and the sender's
// current color in the room
func (s *Service) Enrich(ctx context.Context, msg *model.Message, room *model.Room) (*EnrichedMessage, error) {
	enriched := &EnrichedMessage{
		ID:        msg.ID,
		Body:      msg.Body,
		SenderID:  msg.SenderID,
		Color:     room.ColorFor(msg.SenderID),
		Timestamp: msg.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}

	user, err := s.storage.GetUser(ctx, msg.SenderID)
	if err != nil {
		// A deleted sender still has their messages shown, just unattributed
		if errors.Is(err, model.ErrUserNotFound) {
			enriched.Username = "unknown"
			return enriched, nil
		}
		return nil, err
	}

	enriched.Username = user.Username
	if user.BirthDate != nil {
		bd := user.BirthDate.UTC().Format("2006-01-02")
		enriched.BirthDate = &bd
		if age, ok := user.Age(s.clock.Now()); ok {
			enriched.Age = &age
		}
	}
	return enriched, nil
}

// Purge deletes a room's entire message log
func (s *Service) Purge(ctx context.Context, code model.RoomCode) error {
	s.logger.Info("purging message log", slog.String("code", string(code)))
	return s.storage.PurgeMessages(ctx, code)
}
