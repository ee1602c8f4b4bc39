package handlers

import (
	"net/http"
	"strconv"

	"career-arcade-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	playService *services.PlayService
}

func NewSessionHandler(playService *services.PlayService) *SessionHandler {
	return &SessionHandler{playService: playService}
}

// GetSession godoc
// @Summary      Session state
// @Description  Masked view of the live session; face-down slots carry no content
// @Tags         sessions
// @Produce      json
// @Param        id path int true "Session ID"
// @Success      200 {object} engine.SessionSnapshot
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return
	}
	view, err := h.playService.SessionState(uint(sessionID))
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetLeaderboard godoc
// @Summary      Session leaderboard
// @Tags         sessions
// @Produce      json
// @Param        id path int true "Session ID"
// @Success      200 {array} engine.ParticipantView
// @Failure      404 {object} ErrorResponse
// @Router       /sessions/{id}/leaderboard [get]
func (h *SessionHandler) GetLeaderboard(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session id"})
		return
	}
	board, err := h.playService.Leaderboard(uint(sessionID))
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, board)
}
