package handlers

import (
	"net/http"
	"strconv"

	"career-arcade-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(roomService *services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

// CreateRoom godoc
// @Summary      Deploy a perpetual room
// @Description  Creates an always-on room that rotates sessions until paused
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body services.CreateRoomParams true "Room configuration"
// @Success      201 {object} engine.RoomSnapshot
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var params services.CreateRoomParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	snap, err := h.roomService.CreateRoom(params)
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// ListRooms godoc
// @Summary      List rooms
// @Tags         rooms
// @Produce      json
// @Success      200 {array} engine.RoomSnapshot
// @Router       /rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.roomService.ListRooms())
}

// GetRoom godoc
// @Summary      Room state
// @Description  Room snapshot plus the masked view of its live session
// @Tags         rooms
// @Produce      json
// @Param        id path int true "Room ID"
// @Success      200 {object} services.RoomState
// @Failure      404 {object} ErrorResponse
// @Router       /rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}
	state, err := h.roomService.GetRoomState(uint(roomID))
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, state)
}

type PauseRoomRequest struct {
	Paused bool `json:"paused"`
}

func (h *RoomHandler) PauseRoom(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}
	var req PauseRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.roomService.SetPaused(uint(roomID), req.Paused); err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "room updated"})
}
