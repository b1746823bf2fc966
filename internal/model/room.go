package model

import "time"

// RoomCode is the 12-character identifier used to join rooms
type RoomCode string

// RoomCodeLength is the required length of a room code
const RoomCodeLength = 12

// Color is a hex display color assigned to a room member
type Color string

// DefaultColor is used when a message sender is no longer in the
// room's membership at enrichment time
const DefaultColor Color = "#000000"

// Membership associates a user with a room and an assigned display color
type Membership struct {
	UserID   UserID
	Color    Color
	JoinedAt time.Time
}

// Room represents a chat room and its member set
type Room struct {
	Code      RoomCode
	Password  string // plaintext-comparable; empty means no password required
	Members   []Membership
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether the room requires a password to join
func (r *Room) HasPassword() bool {
	return r.Password != ""
}

// GetMember returns the membership for the given user, or nil if not a member
func (r *Room) GetMember(userID UserID) *Membership {
	for i := range r.Members {
		if r.Members[i].UserID == userID {
			return &r.Members[i]
		}
	}
	return nil
}

// RemoveMember removes the given user's membership if present,
// reporting whether a membership was removed
func (r *Room) RemoveMember(userID UserID) bool {
	for i, m := range r.Members {
		if m.UserID == userID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberColors returns the colors currently in use in the room
func (r *Room) MemberColors() []Color {
	colors := make([]Color, len(r.Members))
	for i, m := range r.Members {
		colors[i] = m.Color
	}
	return colors
}

// ColorFor returns the display color assigned to the given user,
// falling back to DefaultColor when the user is not a member
func (r *Room) ColorFor(userID UserID) Color {
	if m := r.GetMember(userID); m != nil {
		return m.Color
	}
	return DefaultColor
}
