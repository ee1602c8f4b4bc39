package models

import "time"

// Room is the persisted mirror of a registry room. Rooms are created once at
// deployment and continuously updated by the lifecycle controller; they are
// never deleted while the platform runs.
type Room struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"size:100;not null" json:"name"`
	Capacity           int        `gorm:"not null;default:6" json:"capacity"`
	Variant            string     `gorm:"size:20;not null;default:'matching'" json:"variant"`
	GridPairs          int        `gorm:"not null;default:8" json:"grid_pairs"`
	GridCols           int        `gorm:"not null;default:4" json:"grid_cols"`
	QuestionCount      int        `gorm:"not null;default:10" json:"question_count"`
	Difficulty         string     `gorm:"size:20;not null;default:'medium'" json:"difficulty"`
	GradeBand          string     `gorm:"size:20" json:"grade_band"`
	SkillTag           string     `gorm:"size:50" json:"skill_tag"`
	DistractorStrategy string     `gorm:"size:20;not null;default:'random'" json:"distractor_strategy"`
	Status             string     `gorm:"size:20;not null;default:'active'" json:"status"`
	ActivePlayers      int        `gorm:"not null;default:0" json:"active_players"`
	Spectators         int        `gorm:"not null;default:0" json:"spectators"`
	CurrentSessionID   uint       `gorm:"default:0" json:"current_session_id"`
	NextStartAt        *time.Time `json:"next_start_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
