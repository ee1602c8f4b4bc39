package models

import "time"

// Event rows are write-once, append-only, and retained past session
// completion for analytics. Seq totally orders a session's events.
type Event struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Key           string    `gorm:"size:36;uniqueIndex" json:"key"`
	RoomID        uint      `gorm:"not null;index" json:"room_id"`
	SessionID     uint      `gorm:"not null;uniqueIndex:idx_event_session_seq" json:"session_id"`
	Seq           uint64    `gorm:"not null;uniqueIndex:idx_event_session_seq" json:"seq"`
	Kind          string    `gorm:"size:30;not null" json:"kind"`
	ParticipantID uint      `gorm:"default:0" json:"participant_id,omitempty"`
	Position      int       `gorm:"default:0" json:"position,omitempty"`
	Round         int       `gorm:"default:0" json:"round,omitempty"`
	Outcome       string    `gorm:"size:30" json:"outcome,omitempty"`
	Points        int       `gorm:"default:0" json:"points,omitempty"`
	Detail        string    `gorm:"type:text" json:"detail,omitempty"`
	LatencyMillis int64     `gorm:"default:0" json:"latency_millis,omitempty"`
	At            time.Time `gorm:"index" json:"at"`
}
