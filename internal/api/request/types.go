package request

// RegisterRequest is the request body for registering a user
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	BirthDate string `json:"birth_date,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	RoomCode string `json:"room_code"`
	Password string `json:"password,omitempty"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	RoomCode string `json:"room_code"`
	Password string `json:"password,omitempty"`
}
