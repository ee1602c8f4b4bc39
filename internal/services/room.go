package services

import (
	"career-arcade-backend/internal/engine"
)

// RoomService exposes room deployment and observation on top of the
// registry. All gameplay mutation goes through PlayService; this service
// never touches session internals.
type RoomService struct {
	registry *engine.Registry
}

func NewRoomService(registry *engine.Registry) *RoomService {
	return &RoomService{registry: registry}
}

type CreateRoomParams struct {
	Name               string `json:"name" binding:"required,min=1,max=100"`
	Capacity           int    `json:"capacity"`
	Variant            string `json:"variant"`
	GridPairs          int    `json:"grid_pairs"`
	GridCols           int    `json:"grid_cols"`
	QuestionCount      int    `json:"question_count"`
	Difficulty         string `json:"difficulty"`
	GradeBand          string `json:"grade_band"`
	SkillTag           string `json:"skill_tag"`
	DistractorStrategy string `json:"distractor_strategy"`
}

func (s *RoomService) CreateRoom(params CreateRoomParams) (engine.RoomSnapshot, error) {
	room, err := s.registry.CreateRoom(engine.RoomConfig{
		Name:               params.Name,
		Capacity:           params.Capacity,
		Variant:            engine.Variant(params.Variant),
		GridPairs:          params.GridPairs,
		GridCols:           params.GridCols,
		QuestionCount:      params.QuestionCount,
		Difficulty:         params.Difficulty,
		GradeBand:          params.GradeBand,
		SkillTag:           params.SkillTag,
		DistractorStrategy: engine.DistractorStrategy(params.DistractorStrategy),
	})
	if err != nil {
		return engine.RoomSnapshot{}, err
	}
	return room.Snapshot(), nil
}

func (s *RoomService) ListRooms() []engine.RoomSnapshot {
	return s.registry.Snapshots()
}

// RoomState is a room snapshot plus the masked view of its live session.
type RoomState struct {
	Room    engine.RoomSnapshot     `json:"room"`
	Session *engine.SessionSnapshot `json:"current_session,omitempty"`
}

func (s *RoomService) GetRoomState(roomID uint) (*RoomState, error) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		return nil, engine.NotFound("room %d not found", roomID)
	}
	state := &RoomState{Room: room.Snapshot()}
	if sid := room.CurrentSessionID(); sid != 0 {
		if view, err := room.SessionView(sid); err == nil {
			state.Session = view
		}
	}
	return state, nil
}

func (s *RoomService) SetPaused(roomID uint, paused bool) error {
	room, ok := s.registry.Room(roomID)
	if !ok {
		return engine.NotFound("room %d not found", roomID)
	}
	room.SetPaused(paused)
	return nil
}

// Watch registers a spectator for occupancy accounting.
func (s *RoomService) Watch(roomID uint) (*engine.Room, error) {
	room, ok := s.registry.Room(roomID)
	if !ok {
		return nil, engine.NotFound("room %d not found", roomID)
	}
	room.AddSpectator()
	return room, nil
}

func (s *RoomService) Unwatch(room *engine.Room) {
	room.RemoveSpectator()
}
