package engine

import "time"

type EventKind string

const (
	EventSessionSpawned   EventKind = "session_spawned"
	EventSessionStarted   EventKind = "session_started"
	EventSessionCompleted EventKind = "session_completed"
	EventSessionAbandoned EventKind = "session_abandoned"
	EventParticipantJoin  EventKind = "participant_joined"
	EventParticipantLeave EventKind = "participant_left"
	EventAIFilled         EventKind = "ai_filled"
	EventFlip             EventKind = "flip"
	EventMatch            EventKind = "match"
	EventMismatch         EventKind = "mismatch"
	EventHoldExpired      EventKind = "hold_expired"
	EventAnswer           EventKind = "answer"
	EventRoundResolved    EventKind = "round_resolved"
	EventLineCompleted    EventKind = "line_completed"
)

// Event is one immutable action record. Seq is assigned by the session's
// single writer and totally orders the session's events; client timestamps
// never participate in ordering and survive only as a latency metric.
type Event struct {
	Key           string    `json:"key"`
	RoomID        uint      `json:"room_id"`
	SessionID     uint      `json:"session_id"`
	Seq           uint64    `json:"seq"`
	Kind          EventKind `json:"kind"`
	ParticipantID uint      `json:"participant_id,omitempty"`
	Position      int       `json:"position,omitempty"`
	Round         int       `json:"round,omitempty"`
	Outcome       string    `json:"outcome,omitempty"`
	Points        int       `json:"points,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	LatencyMillis int64     `json:"latency_millis,omitempty"`
	At            time.Time `json:"at"`
}
