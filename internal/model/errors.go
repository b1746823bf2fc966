package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already exists")

	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomExists         = errors.New("room code already exists")
	ErrWrongPassword      = errors.New("wrong room password")
	ErrInvalidRoomCode    = errors.New("room code must be 12 alphanumeric characters")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")

	// Message errors
	ErrEmptyMessage = errors.New("message body is empty")
	ErrInvalidPage  = errors.New("page and limit must be positive")
)
