package engine

import (
	"log"
	"time"

	"github.com/google/uuid"
)

type pendingJoin struct {
	UserID   uint
	Nickname string
	Token    string
	At       time.Time
}

// JoinView is what a joining participant gets back: the room, the current
// session view if one exists, their seat and their reconnect token.
type JoinView struct {
	Room        RoomSnapshot     `json:"room"`
	Session     *SessionSnapshot `json:"session,omitempty"`
	Participant *ParticipantView `json:"participant,omitempty"`
	Token       string           `json:"token,omitempty"`
	Rejoin      bool             `json:"rejoin"`
}

// Join seats a human in the room. Reconnects resolve by token; a fresh join
// may displace an AI agent when the seats are full, since agents exist only
// to keep the seat count stable.
func (r *Room) Join(userID uint, nickname, token string) (*JoinView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()

	if r.status == RoomPaused {
		return nil, reject(ReasonRoomNotJoinable, "room %d is paused", r.cfg.ID)
	}
	if token == "" {
		token = uuid.NewString()
	}

	if s := r.session; s != nil && !s.terminal() {
		if p := s.participantByToken(token); p != nil {
			if !p.Active {
				backup := s.clone()
				p.Active = true
				s.emit(Event{Kind: EventParticipantJoin, ParticipantID: p.ID, Outcome: "rejoin", At: now})
				if err := r.commitSession(backup); err != nil {
					return nil, err
				}
				r.broadcastSession("participant_joined")
			}
			return r.joinView(p, token, true), nil
		}

		// Clone before any displacement so a failed commit rolls back the
		// retired agent together with the new seat.
		backup := s.clone()
		if s.activeTotal() >= r.cfg.Capacity && !r.retireAgent(s, now) {
			return nil, reject(ReasonRoomFull, "room %d is at capacity %d", r.cfg.ID, r.cfg.Capacity)
		}

		p := r.seatParticipant(s, KindHuman, userID, nickname, token, now)
		if err := r.commitSession(backup); err != nil {
			return nil, err
		}
		r.broadcastSession("participant_joined")
		// A full house ends the grace window early.
		if s.Status == SessionSpawning && s.activeTotal() >= r.cfg.Capacity {
			r.startSession(now)
		}
		return r.joinView(p, token, false), nil
	}

	// No live session: queue the join and spawn when the room is idle.
	for _, pj := range r.pending {
		if pj.Token == token {
			return &JoinView{Room: r.snapshotLocked(), Token: token, Rejoin: true}, nil
		}
	}
	if len(r.pending) >= r.cfg.Capacity {
		return nil, reject(ReasonRoomFull, "room %d is at capacity %d", r.cfg.ID, r.cfg.Capacity)
	}
	r.pending = append(r.pending, pendingJoin{UserID: userID, Nickname: nickname, Token: token, At: now})

	if r.status == RoomActive && r.session == nil {
		if err := r.spawnSession(now); err != nil {
			log.Printf("room %d: spawn on join failed: %v", r.cfg.ID, err)
		}
	}

	view := &JoinView{Room: r.snapshotLocked(), Token: token}
	if r.session != nil {
		if p := r.session.participantByToken(token); p != nil {
			v := p.view()
			view.Participant = &v
		}
		sv := r.session.View()
		view.Session = &sv
	}
	return view, nil
}

// Leave soft-deactivates the participant. Mid-session the seat is backfilled
// with an AI agent so scoring and pattern symmetry keep a stable seat count.
func (r *Room) Leave(token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock()

	for i, pj := range r.pending {
		if pj.Token == token {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return nil
		}
	}

	s := r.session
	if s == nil || s.terminal() {
		return reject(ReasonNotAMember, "no live session in room %d", r.cfg.ID)
	}
	p := s.participantByToken(token)
	if p == nil || !p.Active {
		return reject(ReasonNotAMember, "participant not active in session %d", s.ID)
	}

	backup := s.clone()
	p.Active = false
	s.emit(Event{Kind: EventParticipantLeave, ParticipantID: p.ID, At: now})
	if s.Status == SessionInProgress && p.Kind == KindHuman {
		r.fillWithAI(s, 1, now)
	}
	if err := r.commitSession(backup); err != nil {
		return err
	}
	r.broadcastSession("participant_left")
	return nil
}

// retireAgent deactivates one active AI agent to free a seat. Reports false
// when every seat is human.
func (r *Room) retireAgent(s *Session, now time.Time) bool {
	for _, p := range s.Participants {
		if p.Active && p.Kind == KindAIAgent {
			p.Active = false
			s.emit(Event{Kind: EventParticipantLeave, ParticipantID: p.ID, Outcome: "displaced", At: now})
			return true
		}
	}
	return false
}

func (r *Room) seatParticipant(s *Session, kind ParticipantKind, userID uint, nickname, token string, now time.Time) *Participant {
	p := &Participant{
		ID:            r.ids.nextParticipant(),
		SessionID:     s.ID,
		Kind:          kind,
		UserID:        userID,
		Nickname:      nickname,
		Token:         token,
		Active:        true,
		JoinedAt:      now,
		LastActionAt:  now,
		unlocked:      make(map[int]bool),
		creditedLines: make(map[int]bool),
	}
	s.Participants = append(s.Participants, p)
	s.emit(Event{Kind: EventParticipantJoin, ParticipantID: p.ID, At: now})
	return p
}

// fillWithAI seats up to needed AI agents. Failure to build a policy degrades
// to a smaller effective capacity instead of blocking rotation.
func (r *Room) fillWithAI(s *Session, needed int, now time.Time) {
	taken := make(map[string]bool)
	for _, p := range s.Participants {
		taken[p.Nickname] = true
	}
	for i := 0; i < needed; i++ {
		policy, err := NewPolicy(r.tuning.BotPolicy, r.cfg.Difficulty)
		if err != nil {
			log.Printf("room %d: ai fill: %v", r.cfg.ID, err)
			return
		}
		name := agentNickname(r.rng, taken)
		taken[name] = true
		p := r.seatParticipant(s, KindAIAgent, 0, name, "", now)
		p.policy = policy
		s.emit(Event{Kind: EventAIFilled, ParticipantID: p.ID, At: now})
	}
}

func (r *Room) joinView(p *Participant, token string, rejoin bool) *JoinView {
	v := p.view()
	sv := r.session.View()
	return &JoinView{
		Room:        r.snapshotLocked(),
		Session:     &sv,
		Participant: &v,
		Token:       token,
		Rejoin:      rejoin,
	}
}
