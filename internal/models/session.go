package models

import "time"

// Session rows become immutable once Status reaches a terminal value; only
// the engine's single writer ever updates them before that.
type Session struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	RoomID         uint       `gorm:"not null;index" json:"room_id"`
	Variant        string     `gorm:"size:20;not null" json:"variant"`
	Status         string     `gorm:"size:20;not null;default:'spawning'" json:"status"`
	Phase          string     `gorm:"size:20;not null;default:'idle'" json:"phase"`
	GridCols       int        `gorm:"not null;default:4" json:"grid_cols"`
	MatchedPairs   int        `gorm:"not null;default:0" json:"matched_pairs"`
	TotalPairs     int        `gorm:"not null;default:0" json:"total_pairs"`
	Round          int        `gorm:"not null;default:0" json:"round"`
	QuestionBudget int        `gorm:"not null;default:0" json:"question_budget"`
	Seq            uint64     `gorm:"not null;default:0" json:"seq"`
	RevealDeadline *time.Time `json:"reveal_deadline,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Slot persists one board cell; exactly two rows share a pair id per session
// in the matching variant.
type Slot struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID uint   `gorm:"not null;uniqueIndex:idx_slot_session_pos" json:"session_id"`
	Position  int    `gorm:"not null;uniqueIndex:idx_slot_session_pos" json:"position"`
	PairID    uint   `gorm:"not null" json:"pair_id"`
	ContentID uint   `gorm:"not null" json:"content_id"`
	Text      string `gorm:"size:200" json:"text"`
	State     string `gorm:"size:20;not null;default:'face_down'" json:"state"`
	FlippedBy uint   `gorm:"default:0" json:"flipped_by"`
	MatchedBy uint   `gorm:"default:0" json:"matched_by"`
}
