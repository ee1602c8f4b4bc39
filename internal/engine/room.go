package engine

import (
	"log"
	"math/rand"
	"sync"
	"time"
)

type RoomStatus string

const (
	RoomActive       RoomStatus = "active"
	RoomIntermission RoomStatus = "intermission"
	RoomPaused       RoomStatus = "paused"
)

// RoomConfig is the fixed profile a room is deployed with.
type RoomConfig struct {
	ID                 uint               `json:"id"`
	Name               string             `json:"name"`
	Capacity           int                `json:"capacity"`
	Variant            Variant            `json:"variant"`
	GridPairs          int                `json:"grid_pairs"`
	GridCols           int                `json:"grid_cols"`
	QuestionCount      int                `json:"question_count"`
	Difficulty         string             `json:"difficulty"`
	GradeBand          string             `json:"grade_band"`
	SkillTag           string             `json:"skill_tag"`
	DistractorStrategy DistractorStrategy `json:"distractor_strategy"`
}

// Tuning carries the engine-wide timing knobs.
type Tuning struct {
	RevealHold        time.Duration
	Intermission      time.Duration
	JoinGrace         time.Duration
	RoundTime         time.Duration
	InactivityTimeout time.Duration
	SessionTimeLimit  time.Duration
	BotThinkDelay     time.Duration
	BotPolicy         PolicyLevel
}

// Deps are the collaborators a room talks to. Content is shared read-only
// across rooms; everything else is called only from inside the room's writer.
type Deps struct {
	Content   ContentSource
	Store     Store
	Sink      Sink
	Broadcast Broadcaster
}

// Room is the perpetual single-writer actor. Every session-mutating
// operation takes the one mutex, so concurrent flips from different
// participants apply one at a time in arrival order. Rooms never terminate;
// an idle room with no session is a valid steady state.
type Room struct {
	mu     sync.Mutex
	cfg    RoomConfig
	tuning Tuning
	deps   Deps
	ids    *idAllocator
	rng    *rand.Rand
	clock  func() time.Time

	status      RoomStatus
	session     *Session
	nextStartAt time.Time
	spectators  int
	pending     []pendingJoin
	history     []SessionSummary
	statQueue   []statRecord
}

// statRecord is a catalog counter update staged by round resolution. It is
// applied only once the resolving commit succeeds, so a rolled-back round
// never double-counts its outcomes on retry.
type statRecord struct {
	itemID  uint
	userID  uint
	correct bool
	latency int64
}

func NewRoom(cfg RoomConfig, tuning Tuning, deps Deps, ids *idAllocator, rng *rand.Rand) *Room {
	if cfg.GridCols <= 0 {
		cfg.GridCols = 4
	}
	if deps.Sink == nil {
		deps.Sink = NopSink()
	}
	if deps.Broadcast == nil {
		deps.Broadcast = NopBroadcaster()
	}
	return &Room{
		cfg:    cfg,
		tuning: tuning,
		deps:   deps,
		ids:    ids,
		rng:    rng,
		clock:  time.Now,
		status: RoomActive,
	}
}

func (r *Room) ID() uint { return r.cfg.ID }

// RoomSnapshot is the viewer-facing room state.
type RoomSnapshot struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	Capacity         int              `json:"capacity"`
	Variant          Variant          `json:"variant"`
	Difficulty       string           `json:"difficulty"`
	GradeBand        string           `json:"grade_band"`
	Status           RoomStatus       `json:"status"`
	ActivePlayers    int              `json:"active_players"`
	Spectators       int              `json:"spectators"`
	CurrentSessionID uint             `json:"current_session_id,omitempty"`
	NextStartAt      *time.Time       `json:"next_start_at,omitempty"`
	History          []SessionSummary `json:"history,omitempty"`
}

func (r *Room) Snapshot() RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() RoomSnapshot {
	snap := RoomSnapshot{
		ID:         r.cfg.ID,
		Name:       r.cfg.Name,
		Capacity:   r.cfg.Capacity,
		Variant:    r.cfg.Variant,
		Difficulty: r.cfg.Difficulty,
		GradeBand:  r.cfg.GradeBand,
		Status:     r.status,
		Spectators: r.spectators,
		History:    r.history,
	}
	if s := r.session; s != nil && !s.terminal() {
		snap.CurrentSessionID = s.ID
		snap.ActivePlayers = s.activeTotal()
	}
	if !r.nextStartAt.IsZero() {
		t := r.nextStartAt
		snap.NextStartAt = &t
	}
	return snap
}

// SessionView returns the masked view of the current or most recent session.
func (r *Room) SessionView(sessionID uint) (*SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil || r.session.ID != sessionID {
		return nil, reject(ReasonSessionNotFound, "session %d not found in room %d", sessionID, r.cfg.ID)
	}
	view := r.session.View()
	return &view, nil
}

// CurrentSessionID reports the live session, zero when idle.
func (r *Room) CurrentSessionID() uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil && !r.session.terminal() {
		return r.session.ID
	}
	return 0
}

func (r *Room) AddSpectator() {
	r.mu.Lock()
	r.spectators++
	r.mu.Unlock()
}

func (r *Room) RemoveSpectator() {
	r.mu.Lock()
	if r.spectators > 0 {
		r.spectators--
	}
	r.mu.Unlock()
}

// SetPaused flips operator pause. A paused room rejects joins and stops
// spawning; an in-flight session plays out.
func (r *Room) SetPaused(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if paused {
		r.status = RoomPaused
	} else if r.session != nil && !r.session.terminal() {
		r.status = RoomActive
	} else if !r.nextStartAt.IsZero() {
		r.status = RoomIntermission
	} else {
		r.status = RoomActive
	}
	if err := r.deps.Store.SaveRoom(r.snapshotLocked()); err != nil {
		log.Printf("room %d: save on pause: %v", r.cfg.ID, err)
	}
}

// Flip applies one flip action through the state machine and commits it.
func (r *Room) Flip(sessionID, participantID uint, pos int, latencyMillis int64) (*FlipResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()

	s, err := r.liveSession(sessionID)
	if err != nil {
		return nil, err
	}

	backup := s.clone()
	res, err := s.FlipSlot(participantID, pos, now, latencyMillis)
	if err != nil {
		// Rejections leave state untouched apart from a possibly expired
		// hold, which still has to be committed.
		if len(s.pending) > 0 {
			if cerr := r.commitSession(backup); cerr != nil {
				return nil, cerr
			}
			r.broadcastSession("hold_expired")
		}
		return nil, err
	}
	if err := r.commitSession(backup); err != nil {
		return nil, err
	}

	r.broadcastSession(res.Outcome)
	if res.SessionDone {
		r.finishSession(now, true, "")
	}
	return res, nil
}

// Answer applies one quiz answer and resolves the round when everyone has
// answered.
func (r *Room) Answer(sessionID, participantID uint, optionIndex int, latencyMillis int64) (*AnswerResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()

	s, err := r.liveSession(sessionID)
	if err != nil {
		return nil, err
	}

	backup := s.clone()
	res, err := s.SubmitAnswer(participantID, optionIndex, now, latencyMillis)
	if err != nil {
		return nil, err
	}
	if res.RoundComplete {
		r.resolveQuizRound(s, now)
	}
	if err := r.commitSession(backup); err != nil {
		return nil, err
	}

	r.broadcastSession("answer")
	if s.terminal() {
		r.afterTerminal(now)
	}
	return res, nil
}

// Leaderboard returns participants ordered by total score.
func (r *Room) Leaderboard(sessionID uint) ([]ParticipantView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil || r.session.ID != sessionID {
		return nil, reject(ReasonSessionNotFound, "session %d not found in room %d", sessionID, r.cfg.ID)
	}
	views := make([]ParticipantView, 0, len(r.session.Participants))
	for _, p := range r.session.Participants {
		views = append(views, p.view())
	}
	for i := 1; i < len(views); i++ {
		for j := i; j > 0 && views[j].TotalScore > views[j-1].TotalScore; j-- {
			views[j], views[j-1] = views[j-1], views[j]
		}
	}
	return views, nil
}

func (r *Room) liveSession(sessionID uint) (*Session, error) {
	s := r.session
	if s == nil || s.ID != sessionID {
		return nil, reject(ReasonSessionNotFound, "session %d not found in room %d", sessionID, r.cfg.ID)
	}
	if s.terminal() {
		return nil, reject(ReasonStaleAction, "session %d is %s", s.ID, s.Status)
	}
	return s, nil
}

// Tick drives everything time-based: reveal-hold expiry, the join grace
// window, AI turns, round timers, abandonment and intermission rotation.
// Deadlines here are soft; an in-flight action always completes first
// because it holds the same mutex.
func (r *Room) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()

	s := r.session
	if s != nil && !s.terminal() {
		switch s.Status {
		case SessionSpawning:
			if now.After(s.GraceDeadline) || s.activeTotal() >= r.cfg.Capacity {
				r.startSession(now)
			}
		case SessionInProgress:
			r.tickInProgress(s, now)
		}
		return
	}

	if r.status == RoomIntermission && !r.nextStartAt.IsZero() && now.After(r.nextStartAt) {
		if len(r.pending) > 0 {
			if err := r.spawnSession(now); err != nil {
				log.Printf("room %d: spawn: %v", r.cfg.ID, err)
				r.nextStartAt = now.Add(r.tuning.Intermission)
			}
		} else {
			// Nobody waiting: go idle until the next join.
			r.status = RoomActive
			r.nextStartAt = time.Time{}
			r.session = nil
			if err := r.deps.Store.SaveRoom(r.snapshotLocked()); err != nil {
				log.Printf("room %d: save: %v", r.cfg.ID, err)
			}
			r.deps.Broadcast.BroadcastRoom(r.cfg.ID, "room_idle", r.snapshotLocked())
		}
	}
}

func (r *Room) tickInProgress(s *Session, now time.Time) {
	backup := s.clone()
	changed := s.expireHold(now)

	if s.Variant == VariantQuiz && s.CurrentClue != nil && !s.roundDeadline.IsZero() && now.After(s.roundDeadline) {
		r.resolveQuizRound(s, now)
		changed = true
	}

	if r.botTurn(s, now) {
		changed = true
	}

	if changed {
		if err := r.commitSession(backup); err != nil {
			log.Printf("room %d: tick commit: %v", r.cfg.ID, err)
			return
		}
		r.broadcastSession("tick")
	}

	if s.terminal() || s.allMatched() {
		if !s.terminal() {
			r.finishSession(now, true, "")
		} else {
			r.afterTerminal(now)
		}
		return
	}

	// Abandonment: soft deadlines, only when no humans are left acting.
	if s.activeCount(KindHuman) == 0 && now.Sub(s.LastActivityAt) > r.tuning.InactivityTimeout {
		r.finishSession(now, false, "inactivity")
		return
	}
	if now.Sub(s.StartedAt) > r.tuning.SessionTimeLimit {
		r.finishSession(now, false, "time_limit")
	}
}

// botTurn lets at most one due AI agent act per tick, keeping agent actions
// interleaved with human ones under the same writer.
func (r *Room) botTurn(s *Session, now time.Time) bool {
	for _, p := range s.Participants {
		if !p.Active || p.Kind != KindAIAgent || p.policy == nil {
			continue
		}
		if now.Sub(p.LastActionAt) < r.tuning.BotThinkDelay {
			continue
		}
		action := p.policy.Act(s, p, r.rng)
		switch action.Kind {
		case ActionFlip:
			if _, err := s.FlipSlot(p.ID, action.Position, now, 0); err != nil {
				p.LastActionAt = now
				continue
			}
			return true
		case ActionAnswer:
			res, err := s.SubmitAnswer(p.ID, action.OptionIndex, now, 0)
			if err != nil {
				p.LastActionAt = now
				continue
			}
			if res.RoundComplete {
				r.resolveQuizRound(s, now)
			}
			return true
		default:
			p.LastActionAt = now
		}
	}
	return false
}

// spawnSession builds the next session from the pending joins. Only one
// non-terminal session can exist: the previous one must have reached a
// terminal state before this runs.
func (r *Room) spawnSession(now time.Time) error {
	if r.session != nil && !r.session.terminal() {
		return reject(ReasonInvalidTransition, "room %d already has a live session", r.cfg.ID)
	}

	s := newSession(r.ids.nextSession(), r.cfg.ID, r.cfg.Variant, r.cfg.GridCols, r.tuning.RevealHold, now)
	s.Difficulty = r.cfg.Difficulty
	s.GraceDeadline = now.Add(r.tuning.JoinGrace)

	if r.cfg.Variant == VariantMatching {
		pairs, err := r.deps.Content.SelectPairs(r.cfg.GridPairs, r.cfg.Difficulty, r.cfg.GradeBand)
		if err != nil {
			// Keep the queued joins and retry after an intermission.
			r.status = RoomIntermission
			r.nextStartAt = now.Add(r.tuning.Intermission)
			return err
		}
		slots, err := Deal(pairs, r.rng)
		if err != nil {
			r.status = RoomIntermission
			r.nextStartAt = now.Add(r.tuning.Intermission)
			return err
		}
		s.setBoard(slots)
	} else {
		s.setQuiz(r.cfg.QuestionCount)
	}

	for _, pj := range r.pending {
		r.seatParticipant(s, KindHuman, pj.UserID, pj.Nickname, pj.Token, now)
	}
	r.pending = nil

	s.emit(Event{Kind: EventSessionSpawned, At: now})
	r.session = s
	r.status = RoomActive
	r.nextStartAt = time.Time{}

	if err := r.commitSession(nil); err != nil {
		r.session = nil
		return err
	}
	if err := r.deps.Store.SaveRoom(r.snapshotLocked()); err != nil {
		log.Printf("room %d: save: %v", r.cfg.ID, err)
	}
	log.Printf("room %d: session %d spawned (%s)", r.cfg.ID, s.ID, s.Variant)
	r.broadcastSession("session_spawned")

	if s.activeTotal() >= r.cfg.Capacity {
		r.startSession(now)
	}
	return nil
}

// startSession ends the grace window: empty seats are filled with AI agents
// before the session leaves Spawning.
func (r *Room) startSession(now time.Time) {
	s := r.session
	backup := s.clone()

	if needed := r.cfg.Capacity - s.activeTotal(); needed > 0 {
		r.fillWithAI(s, needed, now)
	}
	s.start(now)

	if s.Variant == VariantQuiz {
		if err := r.nextClue(s, now); err != nil {
			log.Printf("room %d: first clue: %v", r.cfg.ID, err)
			s.abandon(now, "content_exhausted")
		}
	}

	if err := r.commitSession(backup); err != nil {
		log.Printf("room %d: start commit: %v", r.cfg.ID, err)
		return
	}
	log.Printf("room %d: session %d started with %d participants", r.cfg.ID, s.ID, s.activeTotal())
	r.broadcastSession("session_started")
	if s.terminal() {
		r.afterTerminal(now)
	}
}

func (r *Room) nextClue(s *Session, now time.Time) error {
	var userIDs []uint
	for _, p := range s.Participants {
		if p.Kind == KindHuman && p.UserID != 0 {
			userIDs = append(userIDs, p.UserID)
		}
	}
	clue, err := r.deps.Content.SelectClue(ClueRequest{
		Difficulty:     r.cfg.Difficulty,
		GradeBand:      r.cfg.GradeBand,
		SkillTag:       r.cfg.SkillTag,
		Strategy:       r.cfg.DistractorStrategy,
		UserIDs:        userIDs,
		ExcludeItemIDs: s.shownClues,
	})
	if err != nil {
		return err
	}
	s.CurrentClue = clue
	s.roundDeadline = now.Add(r.tuning.RoundTime)
	return nil
}

// resolveQuizRound scores the round, stages catalog stats for the next
// commit, and either deals the next clue or completes the session.
func (r *Room) resolveQuizRound(s *Session, now time.Time) {
	clue := s.CurrentClue
	outcomes := s.resolveRound(now)
	for _, out := range outcomes {
		r.statQueue = append(r.statQueue, statRecord{
			itemID:  clue.ItemID,
			userID:  out.UserID,
			correct: out.Correct,
			latency: out.LatencyMillis,
		})
	}

	if s.budgetExhausted() {
		s.complete(now)
		return
	}
	if err := r.nextClue(s, now); err != nil {
		if rej, ok := AsRejection(err); ok && rej.Reason == ReasonContentExhausted {
			log.Printf("room %d: content exhausted, completing session %d early", r.cfg.ID, s.ID)
			s.complete(now)
			return
		}
		log.Printf("room %d: next clue: %v", r.cfg.ID, err)
		s.abandon(now, "content_error")
	}
}

// finishSession drives the terminal transition and intermission scheduling.
func (r *Room) finishSession(now time.Time, completed bool, reason string) {
	s := r.session
	backup := s.clone()
	if completed {
		s.complete(now)
	} else {
		s.abandon(now, reason)
	}
	if err := r.commitSession(backup); err != nil {
		log.Printf("room %d: finish commit: %v", r.cfg.ID, err)
		return
	}
	r.afterTerminal(now)
}

// afterTerminal appends the room-history entry and schedules intermission.
// History is an append-only log; the newest entry points backward to the
// session chain.
func (r *Room) afterTerminal(now time.Time) {
	s := r.session
	r.history = append(r.history, s.summary())
	if len(r.history) > 20 {
		r.history = r.history[len(r.history)-20:]
	}
	r.status = RoomIntermission
	r.nextStartAt = now.Add(r.tuning.Intermission)
	if err := r.deps.Store.SaveRoom(r.snapshotLocked()); err != nil {
		log.Printf("room %d: save: %v", r.cfg.ID, err)
	}
	log.Printf("room %d: session %d %s, next start %s", r.cfg.ID, s.ID, s.Status, r.nextStartAt.Format(time.RFC3339))
	r.deps.Broadcast.BroadcastRoom(r.cfg.ID, "session_finished", r.snapshotLocked())
}

// commitSession persists the session and its uncommitted events. On failure
// the in-memory aggregate is restored from backup so no partial transition
// survives; the caller gets a retryable error.
func (r *Room) commitSession(backup *Session) error {
	s := r.session
	if err := r.deps.Store.SaveSession(s.snapshot()); err != nil {
		if backup != nil {
			s.restore(backup)
		}
		r.statQueue = nil
		return &RetryableError{Op: "save session", Err: err}
	}
	events := s.pending
	if len(events) > 0 {
		if err := r.deps.Store.AppendEvents(events); err != nil {
			if backup != nil {
				s.restore(backup)
			}
			r.statQueue = nil
			return &RetryableError{Op: "append events", Err: err}
		}
	}
	for _, ev := range s.drainPending() {
		r.deps.Sink.Publish(ev)
	}
	for _, st := range r.statQueue {
		r.deps.Content.RecordOutcome(st.itemID, st.correct, st.latency)
		if st.userID != 0 {
			r.deps.Content.RecordPlay(st.userID, st.itemID)
		}
	}
	r.statQueue = nil
	return nil
}

func (r *Room) broadcastSession(msgType string) {
	if r.session == nil {
		return
	}
	r.deps.Broadcast.BroadcastRoom(r.cfg.ID, msgType, r.session.View())
}
