package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidRoomCode    = "INVALID_ROOM_CODE"
	CodeInvalidPage        = "INVALID_PAGE"
	CodeEmptyMessage       = "EMPTY_MESSAGE"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomExists         = "ROOM_EXISTS"
	CodeWrongPassword      = "WRONG_PASSWORD"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeCodeSpaceExhausted = "CODE_SPACE_EXHAUSTED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomExists):
		return &httpError{http.StatusConflict, APIError{CodeRoomExists, "Room code is already taken"}}
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}
	case errors.Is(err, model.ErrWrongPassword):
		return &httpError{http.StatusUnauthorized, APIError{CodeWrongPassword, "Incorrect room password"}}
	case errors.Is(err, model.ErrInvalidRoomCode):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoomCode, "Room code must be 12 alphanumeric characters"}}
	case errors.Is(err, model.ErrEmptyMessage):
		return &httpError{http.StatusBadRequest, APIError{CodeEmptyMessage, "Message body must not be empty"}}
	case errors.Is(err, model.ErrInvalidPage):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPage, "Page and limit must be positive"}}
	case errors.Is(err, model.ErrCodeSpaceExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCodeSpaceExhausted, "Could not generate an unused room code"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
