package handler

import (
	"net/http"

	"github.com/dkaymak/roomchat/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidRoomCode    = apierr.CodeInvalidRoomCode
	CodeInvalidPage        = apierr.CodeInvalidPage
	CodeEmptyMessage       = apierr.CodeEmptyMessage
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeUserNotFound       = apierr.CodeUserNotFound
	CodeRoomNotFound       = apierr.CodeRoomNotFound
	CodeRoomExists         = apierr.CodeRoomExists
	CodeWrongPassword      = apierr.CodeWrongPassword
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeCodeSpaceExhausted = apierr.CodeCodeSpaceExhausted
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
