package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dkaymak/roomchat/internal/api/middleware"
	"github.com/dkaymak/roomchat/internal/api/request"
	"github.com/dkaymak/roomchat/internal/api/response"
	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/room"
)

// RoomHandler handles room directory endpoints
type RoomHandler struct {
	rooms *room.Controller
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms *room.Controller) *RoomHandler {
	return &RoomHandler{
		rooms: rooms,
	}
}

// Create handles POST /api/rooms/create
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.RoomCode == "" {
		WriteError(w, NewInvalidRequestError("room_code is required"))
		return
	}

	user := middleware.MustGetUser(r.Context())
	created, err := h.rooms.CreateRoom(r.Context(), model.RoomCode(req.RoomCode), req.Password, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromModel(created))
}

// Join handles POST /api/rooms/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.RoomCode == "" {
		WriteError(w, NewInvalidRequestError("room_code is required"))
		return
	}

	user := middleware.MustGetUser(r.Context())
	joined, err := h.rooms.JoinRoom(r.Context(), model.RoomCode(req.RoomCode), req.Password, user.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(joined))
}

// GenerateCode handles GET /api/rooms/generate-code
func (h *RoomHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.rooms.GenerateUniqueCode(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GeneratedCode{RoomCode: string(code)})
}

// Get handles GET /api/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.RoomCode(mux.Vars(r)["code"])

	found, err := h.rooms.GetRoom(r.Context(), code)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(found))
}
