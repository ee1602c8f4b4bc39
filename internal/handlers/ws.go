package handlers

import (
	"log"
	"net/http"
	"strconv"

	"career-arcade-backend/internal/services"
	"career-arcade-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub         *ws.Hub
	roomService *services.RoomService
}

func NewWSHandler(hub *ws.Hub, roomService *services.RoomService) *WSHandler {
	return &WSHandler{hub: hub, roomService: roomService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket godoc
// @Summary      WebSocket stream for room updates
// @Description  Sends a full state snapshot on connect, then ordered deltas as play proceeds
// @Tags         websocket
// @Param        id path int true "Room ID"
// @Router       /ws/room/{id} [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	roomID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid room id"})
		return
	}
	rid := uint(roomID)

	room, err := h.roomService.Watch(rid)
	if err != nil {
		status, body := rejectStatus(err)
		c.JSON(status, body)
		return
	}
	defer h.roomService.Unwatch(room)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	// The snapshot goes out before the connection joins the hub, so the
	// delta stream can never get ahead of it. Deltas at or below the
	// snapshot's seq are the viewer's to discard.
	state, err := h.roomService.GetRoomState(rid)
	if err == nil {
		if werr := conn.WriteJSON(ws.WSMessage{Type: "snapshot", Data: state}); werr != nil {
			conn.Close()
			return
		}
	}

	h.hub.AddConnection(rid, conn)
	defer h.hub.RemoveConnection(rid, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
