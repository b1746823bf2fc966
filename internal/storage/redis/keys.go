package redis

import (
	"fmt"

	"github.com/dkaymak/roomchat/internal/model"
)

// Key prefix for all chat-related data
const keyPrefix = "roomchat"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// roomKey returns the Redis key for a Room
func roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", keyPrefix, code)
}

// messagesKey returns the Redis key for a room's append-ordered message list
func messagesKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:messages:%s", keyPrefix, code)
}
