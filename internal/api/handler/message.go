package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dkaymak/roomchat/internal/api/response"
	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/message"
)

// MessageHandler handles message history endpoints
type MessageHandler struct {
	messages *message.Service
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *message.Service) *MessageHandler {
	return &MessageHandler{
		messages: messages,
	}
}

// GetPage handles GET /api/messages/{roomCode}
func (h *MessageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["roomCode"])

	page, err := queryInt(r, "page", 1)
	if err != nil {
		WriteError(w, NewInvalidRequestError("page must be an integer"))
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		WriteError(w, NewInvalidRequestError("limit must be an integer"))
		return
	}

	result, err := h.messages.Page(r.Context(), code, page, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// queryInt parses an integer query parameter, returning def when absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
