package engine

import "time"

// FlipResult reports what one accepted flip did.
type FlipResult struct {
	Outcome     string  `json:"outcome"` // "flipped", "matched", "mismatch"
	Positions   []int   `json:"positions"`
	PairID      uint    `json:"pair_id,omitempty"`
	Credit      *Credit `json:"credit,omitempty"`
	SessionDone bool    `json:"session_done,omitempty"`
}

// expireHold lazily ends an elapsed reveal hold: the two mismatched slots
// flip back face down and the machine returns to idle. Called at the top of
// every mutating entry point and from the room tick, so a hold never outlives
// its deadline by more than one tick even with idle clients.
func (s *Session) expireHold(now time.Time) bool {
	if s.Phase != PhaseRevealHold || now.Before(s.RevealDeadline) {
		return false
	}
	for i := range s.Slots {
		if s.Slots[i].State == SlotRevealHold {
			s.Slots[i].State = SlotFaceDown
			s.Slots[i].FlippedBy = 0
		}
	}
	s.Phase = PhaseIdle
	s.firstFlip = -1
	s.RevealDeadline = time.Time{}
	s.emit(Event{Kind: EventHoldExpired, At: now})
	return true
}

// FlipSlot applies "flip slot at pos by participant pid". Rejections leave
// the session untouched; the caller only commits on success.
func (s *Session) FlipSlot(pid uint, pos int, now time.Time, latencyMillis int64) (*FlipResult, error) {
	if s.terminal() {
		return nil, reject(ReasonStaleAction, "session %d is %s", s.ID, s.Status)
	}
	if s.Status != SessionInProgress || s.Variant != VariantMatching {
		return nil, reject(ReasonInvalidTransition, "session %d does not accept flips", s.ID)
	}

	s.expireHold(now)

	p := s.participant(pid)
	if p == nil || !p.Active {
		return nil, reject(ReasonNotAMember, "participant %d is not active in session %d", pid, s.ID)
	}
	if s.Phase == PhaseRevealHold {
		return nil, reject(ReasonInvalidTransition, "reveal hold in progress until %s", s.RevealDeadline.Format(time.RFC3339))
	}
	if pos < 0 || pos >= len(s.Slots) {
		return nil, reject(ReasonInvalidTransition, "slot position %d out of range", pos)
	}
	slot := &s.Slots[pos]
	switch slot.State {
	case SlotMatched:
		return nil, reject(ReasonInvalidTransition, "slot %d already matched", pos)
	case SlotFlipped, SlotRevealHold:
		return nil, reject(ReasonInvalidTransition, "slot %d already revealed", pos)
	}

	// Only human actions count as session activity; agents accompanying an
	// empty room must not hold off the inactivity deadline.
	if p.Kind == KindHuman {
		s.LastActivityAt = now
	}
	p.LastActionAt = now

	slot.State = SlotFlipped
	slot.FlippedBy = pid
	s.emit(Event{Kind: EventFlip, ParticipantID: pid, Position: pos, At: now, LatencyMillis: latencyMillis})

	if s.Phase == PhaseIdle {
		s.Phase = PhaseOneRevealed
		s.firstFlip = pos
		return &FlipResult{Outcome: "flipped", Positions: []int{pos}}, nil
	}

	// Second flip: compare synchronously. The intermediate evaluating state
	// is never observable between calls.
	first := &s.Slots[s.firstFlip]
	positions := []int{first.Position, pos}

	if first.PairID == slot.PairID {
		// A positive match is self-evidently terminal for the pair; no hold.
		first.State = SlotMatched
		slot.State = SlotMatched
		first.MatchedBy = pid
		slot.MatchedBy = pid
		s.MatchedPairs++
		s.Phase = PhaseIdle
		s.firstFlip = -1

		credit := s.scorer.Success(p, s.Difficulty, positions, s.lines)
		s.emit(Event{Kind: EventMatch, ParticipantID: pid, Position: pos, Outcome: "matched", Points: credit.Total(), At: now})
		for _, line := range credit.CompletedLines {
			s.emit(Event{Kind: EventLineCompleted, ParticipantID: pid, Position: line, Points: s.scorer.LineBonus, At: now})
		}

		return &FlipResult{
			Outcome:     "matched",
			Positions:   positions,
			PairID:      slot.PairID,
			Credit:      &credit,
			SessionDone: s.allMatched(),
		}, nil
	}

	// Mismatch: hold both slots visible so every viewer observes the outcome
	// before the board mutates again.
	first.State = SlotRevealHold
	slot.State = SlotRevealHold
	s.Phase = PhaseRevealHold
	s.RevealDeadline = now.Add(s.HoldDuration)
	s.firstFlip = -1
	s.scorer.Miss(p)
	s.emit(Event{Kind: EventMismatch, ParticipantID: pid, Position: pos, Outcome: "mismatch", At: now})

	return &FlipResult{Outcome: "mismatch", Positions: positions}, nil
}

// AnswerResult reports an accepted quiz answer.
type AnswerResult struct {
	Accepted      bool `json:"accepted"`
	RoundComplete bool `json:"round_complete"`
}

// SubmitAnswer records one participant's answer for the current clue round.
// Correctness is not revealed until the round resolves.
func (s *Session) SubmitAnswer(pid uint, optionIndex int, now time.Time, latencyMillis int64) (*AnswerResult, error) {
	if s.terminal() {
		return nil, reject(ReasonStaleAction, "session %d is %s", s.ID, s.Status)
	}
	if s.Status != SessionInProgress || s.Variant != VariantQuiz {
		return nil, reject(ReasonInvalidTransition, "session %d does not accept answers", s.ID)
	}

	p := s.participant(pid)
	if p == nil || !p.Active {
		return nil, reject(ReasonNotAMember, "participant %d is not active in session %d", pid, s.ID)
	}
	if s.CurrentClue == nil {
		return nil, reject(ReasonInvalidTransition, "no clue in play")
	}
	if _, done := s.answers[pid]; done {
		return nil, reject(ReasonInvalidTransition, "participant %d already answered round %d", pid, s.Round)
	}
	if optionIndex < 0 || optionIndex >= len(s.CurrentClue.Options) {
		return nil, reject(ReasonInvalidTransition, "option index %d out of range", optionIndex)
	}

	if p.Kind == KindHuman {
		s.LastActivityAt = now
	}
	p.LastActionAt = now
	s.answers[pid] = answerRecord{OptionIndex: optionIndex, At: now, LatencyMillis: latencyMillis}
	s.emit(Event{Kind: EventAnswer, ParticipantID: pid, Round: s.Round, At: now, LatencyMillis: latencyMillis})

	return &AnswerResult{Accepted: true, RoundComplete: s.roundComplete()}, nil
}

func (s *Session) roundComplete() bool {
	if s.CurrentClue == nil {
		return false
	}
	for _, p := range s.Participants {
		if !p.Active {
			continue
		}
		if _, ok := s.answers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// AnswerOutcome is one participant's resolved answer, handed back to the
// room so catalog stats can be recorded outside the machine.
type AnswerOutcome struct {
	ParticipantID uint
	UserID        uint
	Correct       bool
	LatencyMillis int64
	Credit        Credit
}

// resolveRound scores every recorded answer against the clue, advances the
// round counter and clears the clue. The room selects the next clue or
// completes the session.
func (s *Session) resolveRound(now time.Time) []AnswerOutcome {
	clue := s.CurrentClue
	if clue == nil {
		return nil
	}

	cell := 0
	if n := gridCells(s.GridCols, s.QuestionBudget); n > 0 {
		cell = s.Round % n
	}

	outcomes := make([]AnswerOutcome, 0, len(s.answers))
	for _, p := range s.Participants {
		rec, ok := s.answers[p.ID]
		if !ok {
			continue
		}
		out := AnswerOutcome{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Correct:       rec.OptionIndex == clue.CorrectIndex,
			LatencyMillis: rec.LatencyMillis,
		}
		if out.Correct {
			out.Credit = s.scorer.Success(p, clue.Difficulty, []int{cell}, s.lines)
			for _, line := range out.Credit.CompletedLines {
				s.emit(Event{Kind: EventLineCompleted, ParticipantID: p.ID, Position: line, Points: s.scorer.LineBonus, At: now})
			}
		} else {
			s.scorer.Miss(p)
		}
		outcomes = append(outcomes, out)
	}

	s.shownClues = append(s.shownClues, clue.ItemID)
	s.Round++
	s.CurrentClue = nil
	s.answers = make(map[uint]answerRecord)
	s.LastActivityAt = now
	s.emit(Event{Kind: EventRoundResolved, Round: s.Round - 1, At: now})

	return outcomes
}

func gridCells(cols, budget int) int {
	if cols <= 0 {
		return 0
	}
	rows := (budget + cols - 1) / cols
	if rows < 1 {
		rows = 1
	}
	return cols * rows
}
