package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"
)

// fakeContent serves a deterministic catalog so tests control exactly what
// lands on the board.
type fakeContent struct {
	pairErr  error
	clueErr  error
	clueSeq  int
	outcomes []bool
	plays    int
}

func (f *fakeContent) SelectPairs(n int, difficulty, gradeBand string) ([]Pair, error) {
	if f.pairErr != nil {
		return nil, f.pairErr
	}
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{
			ID:         uint(i + 1),
			LeftID:     uint(i*2 + 1),
			LeftText:   fmt.Sprintf("career-%d", i+1),
			RightID:    uint(i*2 + 2),
			RightText:  fmt.Sprintf("role-%d", i+1),
			Difficulty: difficulty,
		}
	}
	return pairs, nil
}

func (f *fakeContent) SelectClue(req ClueRequest) (*Clue, error) {
	if f.clueErr != nil {
		return nil, f.clueErr
	}
	f.clueSeq++
	return &Clue{
		ItemID:       uint(f.clueSeq),
		Text:         fmt.Sprintf("clue-%d", f.clueSeq),
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 1,
		Difficulty:   req.Difficulty,
	}, nil
}

func (f *fakeContent) RecordOutcome(itemID uint, correct bool, responseMillis int64) {
	f.outcomes = append(f.outcomes, correct)
}

func (f *fakeContent) RecordPlay(userID, itemID uint) { f.plays++ }

// fakeStore records commits in memory; failNext makes the next SaveSession
// fail once, for rollback tests.
type fakeStore struct {
	mu       sync.Mutex
	failNext bool
	sessions []SessionSnapshot
	events   []Event
	rooms    []RoomSnapshot
}

func (f *fakeStore) SaveRoom(snap RoomSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms = append(f.rooms, snap)
	return nil
}

func (f *fakeStore) SaveRoomConfig(cfg RoomConfig, snap RoomSnapshot) error { return nil }

func (f *fakeStore) SaveSession(snap SessionSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("store down")
	}
	f.sessions = append(f.sessions, snap)
	return nil
}

func (f *fakeStore) AppendEvents(events []Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeStore) LoadRooms() ([]RoomConfig, error) { return nil, nil }

func (f *fakeStore) eventKinds() []EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]EventKind, len(f.events))
	for i, ev := range f.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

func testTuning() Tuning {
	return Tuning{
		RevealHold:        2 * time.Second,
		Intermission:      15 * time.Second,
		JoinGrace:         10 * time.Second,
		RoundTime:         20 * time.Second,
		InactivityTimeout: 2 * time.Minute,
		SessionTimeLimit:  10 * time.Minute,
		BotThinkDelay:     time.Second,
		BotPolicy:         PolicyRandom,
	}
}

// testClock replaces a room's wall clock with a settable one.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRoom(t *testing.T, cfg RoomConfig, content ContentSource, store Store) (*Room, *testClock) {
	t.Helper()
	if cfg.ID == 0 {
		cfg.ID = 1
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = 4
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantMatching
	}
	if cfg.Variant == VariantMatching && cfg.GridPairs == 0 {
		cfg.GridPairs = 8
	}
	if cfg.Variant == VariantQuiz && cfg.QuestionCount == 0 {
		cfg.QuestionCount = 4
	}
	if content == nil {
		content = &fakeContent{}
	}
	if store == nil {
		store = &fakeStore{}
	}
	ids := &idAllocator{}
	room := NewRoom(cfg, testTuning(), Deps{Content: content, Store: store}, ids, rand.New(rand.NewSource(42)))
	clock := newTestClock()
	room.clock = clock.Now
	return room, clock
}

// startedMatchingRoom joins the given humans and runs the grace window down
// so the session is in progress.
func startedMatchingRoom(t *testing.T, humans int, content ContentSource, store Store) (*Room, *testClock, []*JoinView) {
	t.Helper()
	room, clock := newTestRoom(t, RoomConfig{}, content, store)
	views := make([]*JoinView, 0, humans)
	for i := 0; i < humans; i++ {
		view, err := room.Join(uint(100+i), fmt.Sprintf("player-%d", i+1), "")
		if err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
		views = append(views, view)
	}
	clock.Advance(testTuning().JoinGrace + time.Second)
	room.Tick()
	sid := room.CurrentSessionID()
	if sid == 0 {
		t.Fatal("no live session after grace window")
	}
	snap, err := room.SessionView(sid)
	if err != nil {
		t.Fatalf("session view: %v", err)
	}
	if snap.Status != SessionInProgress {
		t.Fatalf("session status = %s, want in_progress", snap.Status)
	}
	return room, clock, views
}

// matchingSession builds a bare in-progress session with a known board:
// pair i occupies positions 2i and 2i+1. Participants are seated directly.
func matchingSession(pairs, participants int) *Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession(1, 1, VariantMatching, 4, 2*time.Second, now)
	slots := make([]Slot, 0, pairs*2)
	for i := 0; i < pairs; i++ {
		slots = append(slots,
			Slot{Position: i * 2, PairID: uint(i + 1), ContentID: uint(i*2 + 1), Text: "left", State: SlotFaceDown},
			Slot{Position: i*2 + 1, PairID: uint(i + 1), ContentID: uint(i*2 + 2), Text: "right", State: SlotFaceDown},
		)
	}
	s.setBoard(slots)
	for i := 0; i < participants; i++ {
		s.Participants = append(s.Participants, &Participant{
			ID:            uint(i + 1),
			SessionID:     s.ID,
			Kind:          KindHuman,
			UserID:        uint(100 + i),
			Nickname:      fmt.Sprintf("p%d", i+1),
			Active:        true,
			unlocked:      make(map[int]bool),
			creditedLines: make(map[int]bool),
		})
	}
	s.start(now)
	s.drainPending()
	return s
}

func quizSession(budget, participants int) *Session {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := newSession(1, 1, VariantQuiz, 2, 2*time.Second, now)
	s.setQuiz(budget)
	for i := 0; i < participants; i++ {
		s.Participants = append(s.Participants, &Participant{
			ID:            uint(i + 1),
			SessionID:     s.ID,
			Kind:          KindHuman,
			UserID:        uint(100 + i),
			Nickname:      fmt.Sprintf("p%d", i+1),
			Active:        true,
			unlocked:      make(map[int]bool),
			creditedLines: make(map[int]bool),
		})
	}
	s.start(now)
	s.CurrentClue = &Clue{ItemID: 1, Text: "q1", Options: []string{"a", "b", "c", "d"}, CorrectIndex: 2, Difficulty: "medium"}
	s.drainPending()
	return s
}

func countNonFaceDown(s *Session) int {
	n := 0
	for _, slot := range s.Slots {
		if slot.State == SlotFlipped || slot.State == SlotRevealHold {
			n++
		}
	}
	return n
}

func rejectionReason(t *testing.T, err error) RejectReason {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rejection, got nil")
	}
	rej, ok := AsRejection(err)
	if !ok {
		t.Fatalf("expected a rejection, got %v", err)
	}
	return rej.Reason
}
