package engine

import (
	"fmt"
	"math/rand"
)

type ActionKind string

const (
	ActionFlip   ActionKind = "flip"
	ActionAnswer ActionKind = "answer"
	ActionNone   ActionKind = "none"
)

// BotAction is what a policy wants to do. It goes through the same state
// machine entry points as a human action; policies get no privileged path.
type BotAction struct {
	Kind        ActionKind
	Position    int
	OptionIndex int
}

// Policy picks a legal move for an AI participant. Implementations must only
// read session state; all mutation happens through FlipSlot/SubmitAnswer.
type Policy interface {
	Act(s *Session, p *Participant, rng *rand.Rand) BotAction
}

type PolicyLevel string

const (
	PolicyRandom   PolicyLevel = "random"
	PolicyWeighted PolicyLevel = "weighted"
)

// NewPolicy builds an AI policy for the given level.
func NewPolicy(level PolicyLevel, difficulty string) (Policy, error) {
	switch level {
	case PolicyRandom:
		return &RandomPolicy{}, nil
	case PolicyWeighted:
		return &WeightedPolicy{Accuracy: accuracyFor(difficulty)}, nil
	default:
		return nil, fmt.Errorf("unknown policy level: %s", level)
	}
}

// accuracyFor maps the room's content difficulty to how often a weighted
// agent plays the best available move. Harder rooms get weaker agents so
// humans stay competitive.
func accuracyFor(difficulty string) float64 {
	switch difficulty {
	case "easy":
		return 0.7
	case "hard":
		return 0.3
	default:
		return 0.5
	}
}

// RandomPolicy plays a uniformly random legal move.
type RandomPolicy struct{}

func (b *RandomPolicy) Act(s *Session, p *Participant, rng *rand.Rand) BotAction {
	switch s.Variant {
	case VariantMatching:
		return randomFlip(s, rng)
	case VariantQuiz:
		return randomAnswer(s, p, rng)
	}
	return BotAction{Kind: ActionNone}
}

// WeightedPolicy plays the best available move with probability Accuracy and
// a random legal move otherwise. For the matching variant the best move when
// one slot is revealed is its partner; for the quiz variant it is the correct
// option.
type WeightedPolicy struct {
	Accuracy float64
}

func (b *WeightedPolicy) Act(s *Session, p *Participant, rng *rand.Rand) BotAction {
	switch s.Variant {
	case VariantMatching:
		if s.Phase == PhaseOneRevealed && rng.Float64() < b.Accuracy {
			if pos, ok := partnerOfRevealed(s); ok {
				return BotAction{Kind: ActionFlip, Position: pos}
			}
		}
		return randomFlip(s, rng)
	case VariantQuiz:
		if s.CurrentClue != nil && rng.Float64() < b.Accuracy {
			return BotAction{Kind: ActionAnswer, OptionIndex: s.CurrentClue.CorrectIndex}
		}
		return randomAnswer(s, p, rng)
	}
	return BotAction{Kind: ActionNone}
}

func randomFlip(s *Session, rng *rand.Rand) BotAction {
	if s.Phase == PhaseRevealHold {
		return BotAction{Kind: ActionNone}
	}
	var candidates []int
	for _, slot := range s.Slots {
		if slot.State == SlotFaceDown {
			candidates = append(candidates, slot.Position)
		}
	}
	if len(candidates) == 0 {
		return BotAction{Kind: ActionNone}
	}
	return BotAction{Kind: ActionFlip, Position: candidates[rng.Intn(len(candidates))]}
}

func randomAnswer(s *Session, p *Participant, rng *rand.Rand) BotAction {
	if s.CurrentClue == nil {
		return BotAction{Kind: ActionNone}
	}
	if _, answered := s.answers[p.ID]; answered {
		return BotAction{Kind: ActionNone}
	}
	return BotAction{Kind: ActionAnswer, OptionIndex: rng.Intn(len(s.CurrentClue.Options))}
}

// partnerOfRevealed finds the face-down twin of the currently revealed slot.
func partnerOfRevealed(s *Session) (int, bool) {
	if s.firstFlip < 0 || s.firstFlip >= len(s.Slots) {
		return 0, false
	}
	pairID := s.Slots[s.firstFlip].PairID
	for _, slot := range s.Slots {
		if slot.Position != s.firstFlip && slot.PairID == pairID && slot.State == SlotFaceDown {
			return slot.Position, true
		}
	}
	return 0, false
}

var agentNames = []string{
	"Scout", "Compass", "Beacon", "Atlas", "Quill", "Pixel", "Nova", "Ember",
}

func agentNickname(rng *rand.Rand, taken map[string]bool) string {
	for i := 0; i < len(agentNames)*3; i++ {
		name := agentNames[rng.Intn(len(agentNames))]
		if !taken[name] {
			return name
		}
	}
	return fmt.Sprintf("Agent-%d", rng.Intn(1000))
}
