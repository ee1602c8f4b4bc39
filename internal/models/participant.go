package models

import "time"

type Participant struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uint      `gorm:"not null;index" json:"session_id"`
	Kind          string    `gorm:"size:20;not null;default:'human'" json:"kind"`
	UserID        uint      `gorm:"default:0;index" json:"user_id,omitempty"`
	Nickname      string    `gorm:"size:100;not null" json:"nickname"`
	Token         string    `gorm:"size:64;index" json:"-"`
	BasePoints    int       `gorm:"not null;default:0" json:"base_points"`
	StreakPoints  int       `gorm:"not null;default:0" json:"streak_points"`
	PatternPoints int       `gorm:"not null;default:0" json:"pattern_points"`
	Streak        int       `gorm:"not null;default:0" json:"streak"`
	Active        bool      `gorm:"not null;default:true" json:"active"`
	JoinedAt      time.Time `json:"joined_at"`
}

// TotalScore is derived, never stored: the sum of the three components.
func (p *Participant) TotalScore() int {
	return p.BasePoints + p.StreakPoints + p.PatternPoints
}
