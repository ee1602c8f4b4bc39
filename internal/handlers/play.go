package handlers

import (
	"net/http"

	"career-arcade-backend/internal/middleware"
	"career-arcade-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type PlayHandler struct {
	playService *services.PlayService
}

func NewPlayHandler(playService *services.PlayService) *PlayHandler {
	return &PlayHandler{playService: playService}
}

// Join godoc
// @Summary      Join a room
// @Description  Seats the caller in the room's live session, or queues them until the next one spawns. Send a previously issued token to reclaim a seat.
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        request body services.JoinParams true "Join request"
// @Success      200 {object} engine.JoinView
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /play/join [post]
func (h *PlayHandler) Join(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
		return
	}
	var params services.JoinParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	view, err := h.playService.Join(principal.UserID, params)
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Flip godoc
// @Summary      Flip a board slot
// @Description  First flip reveals; second flip resolves a match or starts the reveal hold
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        request body services.FlipParams true "Flip action"
// @Success      200 {object} engine.FlipResult
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /play/flip [post]
func (h *PlayHandler) Flip(c *gin.Context) {
	var params services.FlipParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := h.playService.Flip(params)
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Answer godoc
// @Summary      Answer the current clue
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        request body services.AnswerParams true "Answer action"
// @Success      200 {object} engine.AnswerResult
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /play/answer [post]
func (h *PlayHandler) Answer(c *gin.Context) {
	var params services.AnswerParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	res, err := h.playService.Answer(params)
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Leave godoc
// @Summary      Leave a room
// @Description  Deactivates the seat; mid-session the seat is backfilled with an AI agent
// @Tags         play
// @Accept       json
// @Produce      json
// @Param        request body services.LeaveParams true "Leave request"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /play/leave [post]
func (h *PlayHandler) Leave(c *gin.Context) {
	var params services.LeaveParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.playService.Leave(params); err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "left room"})
}
