package handlers

import (
	"errors"
	"net/http"

	"career-arcade-backend/internal/engine"
)

type ErrorResponse struct {
	Error  string `json:"error" example:"something went wrong"`
	Reason string `json:"reason,omitempty" example:"room_full"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// rejectStatus maps engine errors to HTTP status codes. Rejections carry a
// machine-readable reason; persistence rollbacks come back as 503 so the
// client knows an identical retry is safe.
func rejectStatus(err error) (int, ErrorResponse) {
	if rej, ok := engine.AsRejection(err); ok {
		status := http.StatusConflict
		switch rej.Reason {
		case engine.ReasonRoomNotFound, engine.ReasonSessionNotFound:
			status = http.StatusNotFound
		case engine.ReasonNotAMember:
			status = http.StatusForbidden
		}
		return status, ErrorResponse{Error: rej.Message, Reason: string(rej.Reason)}
	}
	var retryable *engine.RetryableError
	if errors.As(err, &retryable) {
		return http.StatusServiceUnavailable, ErrorResponse{Error: retryable.Error()}
	}
	return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
}
