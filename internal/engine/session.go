package engine

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Variant string

const (
	VariantMatching Variant = "matching"
	VariantQuiz     Variant = "quiz"
)

type SessionStatus string

const (
	SessionSpawning   SessionStatus = "spawning"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseOneRevealed Phase = "one_revealed"
	PhaseRevealHold  Phase = "reveal_hold"
)

type answerRecord struct {
	OptionIndex   int
	At            time.Time
	LatencyMillis int64
}

// Session is the authoritative in-memory aggregate for one round. All
// mutation goes through its room's single writer; nothing outside that
// writer ever touches it.
type Session struct {
	ID      uint          `json:"id"`
	RoomID  uint          `json:"room_id"`
	Variant Variant       `json:"variant"`
	Status  SessionStatus `json:"status"`
	Phase   Phase         `json:"phase"`

	Slots        []Slot         `json:"slots"`
	Participants []*Participant `json:"participants"`
	GridCols     int            `json:"grid_cols"`
	Difficulty   string         `json:"difficulty"`

	MatchedPairs int `json:"matched_pairs"`
	TotalPairs   int `json:"total_pairs"`

	Round          int   `json:"round"`
	QuestionBudget int   `json:"question_budget"`
	CurrentClue    *Clue `json:"current_clue,omitempty"`

	HoldDuration   time.Duration `json:"-"`
	RevealDeadline time.Time     `json:"reveal_deadline,omitzero"`
	GraceDeadline  time.Time     `json:"-"`

	StartedAt      time.Time `json:"started_at,omitzero"`
	EndedAt        time.Time `json:"ended_at,omitzero"`
	LastActivityAt time.Time `json:"-"`

	firstFlip     int
	roundDeadline time.Time
	answers       map[uint]answerRecord
	shownClues    []uint

	scorer *Scorer
	lines  [][]int

	seq     uint64
	pending []Event
}

func newSession(id uint, roomID uint, variant Variant, gridCols int, hold time.Duration, now time.Time) *Session {
	s := &Session{
		ID:             id,
		RoomID:         roomID,
		Variant:        variant,
		Status:         SessionSpawning,
		Phase:          PhaseIdle,
		GridCols:       gridCols,
		HoldDuration:   hold,
		LastActivityAt: now,
		firstFlip:      -1,
		answers:        make(map[uint]answerRecord),
		scorer:         NewScorer(),
	}
	return s
}

func (s *Session) setBoard(slots []Slot) {
	s.Slots = slots
	s.TotalPairs = len(slots) / 2
	rows := len(slots) / s.GridCols
	if rows*s.GridCols < len(slots) {
		rows++
	}
	s.lines = linesForGrid(s.GridCols, rows)
}

// setQuiz sizes the pattern grid for a quiz session: one cell per round,
// laid out row-major over GridCols columns.
func (s *Session) setQuiz(budget int) {
	s.QuestionBudget = budget
	rows := (budget + s.GridCols - 1) / s.GridCols
	if rows < 1 {
		rows = 1
	}
	s.lines = linesForGrid(s.GridCols, rows)
}

func (s *Session) terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionAbandoned
}

func (s *Session) participant(id uint) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Session) participantByToken(token string) *Participant {
	for _, p := range s.Participants {
		if p.Token != "" && p.Token == token {
			return p
		}
	}
	return nil
}

func (s *Session) activeCount(kind ParticipantKind) int {
	n := 0
	for _, p := range s.Participants {
		if p.Active && p.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Session) activeTotal() int {
	n := 0
	for _, p := range s.Participants {
		if p.Active {
			n++
		}
	}
	return n
}

func (s *Session) emit(ev Event) {
	s.seq++
	ev.Key = uuid.NewString()
	ev.RoomID = s.RoomID
	ev.SessionID = s.ID
	ev.Seq = s.seq
	s.pending = append(s.pending, ev)
}

// drainPending hands the uncommitted events to the caller and clears them.
func (s *Session) drainPending() []Event {
	evs := s.pending
	s.pending = nil
	return evs
}

func (s *Session) start(now time.Time) {
	s.Status = SessionInProgress
	s.StartedAt = now
	s.LastActivityAt = now
	s.emit(Event{Kind: EventSessionStarted, At: now})
}

func (s *Session) complete(now time.Time) {
	s.Status = SessionCompleted
	s.EndedAt = now
	s.emit(Event{Kind: EventSessionCompleted, At: now, Detail: s.scoreDetail()})
}

func (s *Session) abandon(now time.Time, reason string) {
	s.Status = SessionAbandoned
	s.EndedAt = now
	s.emit(Event{Kind: EventSessionAbandoned, At: now, Outcome: reason, Detail: s.scoreDetail()})
}

func (s *Session) scoreDetail() string {
	scores := make(map[string]int, len(s.Participants))
	for _, p := range s.Participants {
		scores[p.Nickname] = p.TotalScore()
	}
	b, _ := json.Marshal(scores)
	return string(b)
}

// allMatched reports the matching variant's completion condition.
func (s *Session) allMatched() bool {
	return s.Variant == VariantMatching && s.TotalPairs > 0 && s.MatchedPairs == s.TotalPairs
}

// budgetExhausted reports the quiz variant's completion condition.
func (s *Session) budgetExhausted() bool {
	return s.Variant == VariantQuiz && s.Round >= s.QuestionBudget
}

// clone deep-copies everything a transition can mutate, for rollback when a
// commit fails.
func (s *Session) clone() *Session {
	cp := *s
	cp.Slots = make([]Slot, len(s.Slots))
	copy(cp.Slots, s.Slots)
	cp.Participants = make([]*Participant, len(s.Participants))
	for i, p := range s.Participants {
		cp.Participants[i] = p.clone()
	}
	cp.answers = make(map[uint]answerRecord, len(s.answers))
	for k, v := range s.answers {
		cp.answers[k] = v
	}
	cp.shownClues = append([]uint(nil), s.shownClues...)
	cp.pending = append([]Event(nil), s.pending...)
	if s.CurrentClue != nil {
		clue := *s.CurrentClue
		clue.Options = append([]string(nil), s.CurrentClue.Options...)
		cp.CurrentClue = &clue
	}
	return &cp
}

// restore copies a clone's state back after a failed commit.
func (s *Session) restore(backup *Session) {
	*s = *backup
}

// SessionSnapshot is the full persisted shape, including face-down content.
type SessionSnapshot struct {
	ID             uint                `json:"id"`
	RoomID         uint                `json:"room_id"`
	Variant        Variant             `json:"variant"`
	Status         SessionStatus       `json:"status"`
	Phase          Phase               `json:"phase"`
	Slots          []Slot              `json:"slots"`
	Participants   []ParticipantRecord `json:"participants"`
	GridCols       int                 `json:"grid_cols"`
	MatchedPairs   int                 `json:"matched_pairs"`
	TotalPairs     int                 `json:"total_pairs"`
	Round          int                 `json:"round"`
	QuestionBudget int                 `json:"question_budget"`
	Clue           *Clue               `json:"clue,omitempty"`
	RevealDeadline *time.Time          `json:"reveal_deadline,omitempty"`
	StartedAt      time.Time           `json:"started_at"`
	EndedAt        *time.Time          `json:"ended_at,omitempty"`
	Seq            uint64              `json:"seq"`
}

func (s *Session) snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:             s.ID,
		RoomID:         s.RoomID,
		Variant:        s.Variant,
		Status:         s.Status,
		Phase:          s.Phase,
		GridCols:       s.GridCols,
		MatchedPairs:   s.MatchedPairs,
		TotalPairs:     s.TotalPairs,
		Round:          s.Round,
		QuestionBudget: s.QuestionBudget,
		Clue:           s.CurrentClue,
		StartedAt:      s.StartedAt,
		Seq:            s.seq,
	}
	snap.Slots = make([]Slot, len(s.Slots))
	copy(snap.Slots, s.Slots)
	for _, p := range s.Participants {
		snap.Participants = append(snap.Participants, p.record())
	}
	if !s.RevealDeadline.IsZero() {
		d := s.RevealDeadline
		snap.RevealDeadline = &d
	}
	if !s.EndedAt.IsZero() {
		e := s.EndedAt
		snap.EndedAt = &e
	}
	return snap
}

// View is the viewer-facing snapshot: face-down slots carry no content or
// pair identity, and the current clue never exposes its correct index.
func (s *Session) View() SessionSnapshot {
	snap := s.snapshot()
	for i := range snap.Slots {
		if snap.Slots[i].State == SlotFaceDown {
			snap.Slots[i].PairID = 0
			snap.Slots[i].ContentID = 0
			snap.Slots[i].Text = ""
		}
	}
	return snap
}

// SessionSummary is the append-only room-history entry for one finished
// session.
type SessionSummary struct {
	SessionID uint              `json:"session_id"`
	Status    SessionStatus     `json:"status"`
	Variant   Variant           `json:"variant"`
	StartedAt time.Time         `json:"started_at"`
	EndedAt   time.Time         `json:"ended_at"`
	Scores    []ParticipantView `json:"scores"`
}

func (s *Session) summary() SessionSummary {
	sum := SessionSummary{
		SessionID: s.ID,
		Status:    s.Status,
		Variant:   s.Variant,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
	}
	for _, p := range s.Participants {
		sum.Scores = append(sum.Scores, p.view())
	}
	return sum
}
