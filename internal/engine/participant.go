package engine

import "time"

type ParticipantKind string

const (
	KindHuman   ParticipantKind = "human"
	KindAIAgent ParticipantKind = "ai_agent"
)

// Participant is one seat in a session. Participants are soft-deactivated on
// leave, never removed mid-session: removing a row would desynchronize every
// viewer holding a snapshot.
type Participant struct {
	ID        uint            `json:"id"`
	SessionID uint            `json:"session_id"`
	Kind      ParticipantKind `json:"kind"`
	// UserID references the backing platform user; zero for AI agents.
	UserID   uint   `json:"user_id,omitempty"`
	Nickname string `json:"nickname"`
	Token    string `json:"-"`

	BasePoints    int  `json:"base_points"`
	StreakPoints  int  `json:"streak_points"`
	PatternPoints int  `json:"pattern_points"`
	Streak        int  `json:"streak"`
	Active        bool `json:"active"`

	JoinedAt     time.Time `json:"joined_at"`
	LastActionAt time.Time `json:"-"`

	unlocked      map[int]bool
	creditedLines map[int]bool

	policy Policy
}

// TotalScore is always the sum of the three score components; it is never
// stored independently, so it cannot drift from them.
func (p *Participant) TotalScore() int {
	return p.BasePoints + p.StreakPoints + p.PatternPoints
}

func (p *Participant) clone() *Participant {
	cp := *p
	cp.unlocked = make(map[int]bool, len(p.unlocked))
	for k, v := range p.unlocked {
		cp.unlocked[k] = v
	}
	cp.creditedLines = make(map[int]bool, len(p.creditedLines))
	for k, v := range p.creditedLines {
		cp.creditedLines[k] = v
	}
	return &cp
}

// ParticipantRecord is the persisted shape of a seat; the reconnect token
// never goes over the wire.
type ParticipantRecord struct {
	ID            uint            `json:"id"`
	Kind          ParticipantKind `json:"kind"`
	UserID        uint            `json:"user_id,omitempty"`
	Nickname      string          `json:"nickname"`
	Token         string          `json:"-"`
	BasePoints    int             `json:"base_points"`
	StreakPoints  int             `json:"streak_points"`
	PatternPoints int             `json:"pattern_points"`
	TotalScore    int             `json:"total_score"`
	Streak        int             `json:"streak"`
	Active        bool            `json:"active"`
	JoinedAt      time.Time       `json:"joined_at"`
}

func (p *Participant) record() ParticipantRecord {
	return ParticipantRecord{
		ID:            p.ID,
		Kind:          p.Kind,
		UserID:        p.UserID,
		Nickname:      p.Nickname,
		Token:         p.Token,
		BasePoints:    p.BasePoints,
		StreakPoints:  p.StreakPoints,
		PatternPoints: p.PatternPoints,
		TotalScore:    p.TotalScore(),
		Streak:        p.Streak,
		Active:        p.Active,
		JoinedAt:      p.JoinedAt,
	}
}

// ParticipantView is the wire shape of a participant in snapshots and deltas.
type ParticipantView struct {
	ID         uint            `json:"id"`
	Kind       ParticipantKind `json:"kind"`
	Nickname   string          `json:"nickname"`
	TotalScore int             `json:"total_score"`
	Streak     int             `json:"streak"`
	Active     bool            `json:"active"`
}

func (p *Participant) view() ParticipantView {
	return ParticipantView{
		ID:         p.ID,
		Kind:       p.Kind,
		Nickname:   p.Nickname,
		TotalScore: p.TotalScore(),
		Streak:     p.Streak,
		Active:     p.Active,
	}
}
