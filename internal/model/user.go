package model

import "time"

// UserID uniquely identifies a user across the system
type UserID string

// User represents a registered account
type User struct {
	ID           UserID
	Username     string // login username (immutable, unique)
	PasswordHash string // bcrypt hash, never exposed through the API
	BirthDate    *time.Time
	Rooms        []RoomCode // rooms the user holds a membership in
	CurrentRoom  *RoomCode  // most recent active room, used for reconnect auto-binding
	CreatedAt    time.Time
}

// InRoom reports whether the user holds a membership in the given room
func (u *User) InRoom(code RoomCode) bool {
	for _, c := range u.Rooms {
		if c == code {
			return true
		}
	}
	return false
}

// AddRoom adds a room to the user's membership set (no-op if already present)
func (u *User) AddRoom(code RoomCode) {
	if !u.InRoom(code) {
		u.Rooms = append(u.Rooms, code)
	}
}

// RemoveRoom removes a room from the user's membership set and clears
// the current room if it pointed at that room
func (u *User) RemoveRoom(code RoomCode) {
	for i, c := range u.Rooms {
		if c == code {
			u.Rooms = append(u.Rooms[:i], u.Rooms[i+1:]...)
			break
		}
	}
	if u.CurrentRoom != nil && *u.CurrentRoom == code {
		u.CurrentRoom = nil
	}
}

// Age returns the user's age in whole years at the given time,
// or false when no birth date is set
func (u *User) Age(now time.Time) (int, bool) {
	if u.BirthDate == nil {
		return 0, false
	}
	b := *u.BirthDate
	years := now.Year() - b.Year()
	// Birthday not reached yet this year
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, true
}
