package models

// ContentItem is one catalog entry: a career, a role, or a clue with its
// answer. The catalog is authored elsewhere; this engine only reads it and
// maintains the play-stat counters.
type ContentItem struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Kind         string `gorm:"size:20;not null;index" json:"kind"` // career, role, clue
	Text         string `gorm:"size:500;not null" json:"text"`
	Answer       string `gorm:"size:200" json:"answer,omitempty"`
	Category     string `gorm:"size:100;index" json:"category"`
	SkillTag     string `gorm:"size:50;index" json:"skill_tag"`
	Difficulty   string `gorm:"size:20;not null;index" json:"difficulty"`
	GradeBand    string `gorm:"size:20;index" json:"grade_band"`
	MinPlayCount int    `gorm:"not null;default:0" json:"min_play_count"`

	TimesShown        int64   `gorm:"not null;default:0" json:"times_shown"`
	TimesCorrect      int64   `gorm:"not null;default:0" json:"times_correct"`
	AvgResponseMillis float64 `gorm:"not null;default:0" json:"avg_response_millis"`
}

// ContentPair links two items that match each other on the board.
type ContentPair struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	LeftID     uint   `gorm:"not null" json:"left_id"`
	RightID    uint   `gorm:"not null" json:"right_id"`
	Difficulty string `gorm:"size:20;not null;index" json:"difficulty"`
	GradeBand  string `gorm:"size:20;index" json:"grade_band"`
}

// ParticipantPlay tracks how often a user has played a content item; it
// feeds the min-play-count eligibility gate.
type ParticipantPlay struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_play_user_content" json:"user_id"`
	ContentID uint `gorm:"not null;uniqueIndex:idx_play_user_content" json:"content_id"`
	PlayCount int  `gorm:"not null;default:0" json:"play_count"`
}
