package services

import (
	"career-arcade-backend/internal/engine"
)

// PlayService routes gameplay actions to the owning room. Every method
// resolves the room first so the engine stays the single writer of
// session state.
type PlayService struct {
	registry *engine.Registry
}

func NewPlayService(registry *engine.Registry) *PlayService {
	return &PlayService{registry: registry}
}

type JoinParams struct {
	RoomID   uint   `json:"room_id" binding:"required"`
	Nickname string `json:"nickname" binding:"required,min=1,max=50"`
	Token    string `json:"token"`
}

type FlipParams struct {
	SessionID     uint  `json:"session_id" binding:"required"`
	ParticipantID uint  `json:"participant_id" binding:"required"`
	Position      *int  `json:"position" binding:"required"`
	LatencyMillis int64 `json:"latency_ms"`
}

type AnswerParams struct {
	SessionID     uint  `json:"session_id" binding:"required"`
	ParticipantID uint  `json:"participant_id" binding:"required"`
	OptionIndex   *int  `json:"option_index" binding:"required"`
	LatencyMillis int64 `json:"latency_ms"`
}

type LeaveParams struct {
	RoomID uint   `json:"room_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

func (s *PlayService) Join(userID uint, params JoinParams) (*engine.JoinView, error) {
	room, ok := s.registry.Room(params.RoomID)
	if !ok {
		return nil, engine.NotFound("room %d not found", params.RoomID)
	}
	return room.Join(userID, params.Nickname, params.Token)
}

func (s *PlayService) Flip(params FlipParams) (*engine.FlipResult, error) {
	room, ok := s.registry.RoomBySession(params.SessionID)
	if !ok {
		return nil, engine.NotFound("session %d has no live room", params.SessionID)
	}
	return room.Flip(params.SessionID, params.ParticipantID, *params.Position, params.LatencyMillis)
}

func (s *PlayService) Answer(params AnswerParams) (*engine.AnswerResult, error) {
	room, ok := s.registry.RoomBySession(params.SessionID)
	if !ok {
		return nil, engine.NotFound("session %d has no live room", params.SessionID)
	}
	return room.Answer(params.SessionID, params.ParticipantID, *params.OptionIndex, params.LatencyMillis)
}

func (s *PlayService) Leave(params LeaveParams) error {
	room, ok := s.registry.Room(params.RoomID)
	if !ok {
		return engine.NotFound("room %d not found", params.RoomID)
	}
	return room.Leave(params.Token)
}

func (s *PlayService) SessionState(sessionID uint) (*engine.SessionSnapshot, error) {
	room, ok := s.registry.RoomBySession(sessionID)
	if !ok {
		return nil, engine.NotFound("session %d has no live room", sessionID)
	}
	return room.SessionView(sessionID)
}

func (s *PlayService) Leaderboard(sessionID uint) ([]engine.ParticipantView, error) {
	room, ok := s.registry.RoomBySession(sessionID)
	if !ok {
		return nil, engine.NotFound("session %d has no live room", sessionID)
	}
	return room.Leaderboard(sessionID)
}
