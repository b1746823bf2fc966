package response

import (
	"time"

	"github.com/dkaymak/roomchat/internal/model"
)

// User represents a user in API responses
type User struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	BirthDate   *string  `json:"birth_date,omitempty"`
	Rooms       []string `json:"rooms"`
	CurrentRoom *string  `json:"current_room"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	rooms := make([]string, len(u.Rooms))
	for i, code := range u.Rooms {
		rooms[i] = string(code)
	}

	var birthDate *string
	if u.BirthDate != nil {
		bd := u.BirthDate.UTC().Format("2006-01-02")
		birthDate = &bd
	}

	var currentRoom *string
	if u.CurrentRoom != nil {
		cr := string(*u.CurrentRoom)
		currentRoom = &cr
	}

	return User{
		ID:          string(u.ID),
		Username:    u.Username,
		BirthDate:   birthDate,
		Rooms:       rooms,
		CurrentRoom: currentRoom,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// RoomMember represents a room member
type RoomMember struct {
	UserID   string    `json:"user_id"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// Room represents a room in API responses
type Room struct {
	Code        string       `json:"room_code"`
	HasPassword bool         `json:"has_password"`
	Members     []RoomMember `json:"members"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RoomFromModel converts model.Room. The password itself is never exposed.
func RoomFromModel(r *model.Room) Room {
	members := make([]RoomMember, len(r.Members))
	for i, m := range r.Members {
		members[i] = RoomMember{
			UserID:   string(m.UserID),
			Color:    string(m.Color),
			JoinedAt: m.JoinedAt,
		}
	}
	return Room{
		Code:        string(r.Code),
		HasPassword: r.HasPassword(),
		Members:     members,
		CreatedAt:   r.CreatedAt,
	}
}

// GeneratedCode is the response for room code generation
type GeneratedCode struct {
	RoomCode string `json:"room_code"`
}
