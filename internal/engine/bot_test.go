package engine

import (
	"math/rand"
	"testing"
)

func TestNewPolicy(t *testing.T) {
	tests := []struct {
		level   PolicyLevel
		wantErr bool
	}{
		{level: PolicyRandom},
		{level: PolicyWeighted},
		{level: "clairvoyant", wantErr: true},
		{level: "", wantErr: true},
	}
	for _, tt := range tests {
		_, err := NewPolicy(tt.level, "medium")
		if (err != nil) != tt.wantErr {
			t.Errorf("NewPolicy(%q) err = %v, wantErr %v", tt.level, err, tt.wantErr)
		}
	}
}

func TestRandomPolicyPlaysLegalMoves(t *testing.T) {
	s := matchingSession(4, 1)
	p := s.participant(1)
	rng := rand.New(rand.NewSource(3))
	policy := &RandomPolicy{}

	for i := 0; i < 2000; i++ {
		action := policy.Act(s, p, rng)
		if action.Kind == ActionNone {
			if s.Phase != PhaseRevealHold {
				t.Fatalf("no move offered outside a hold, phase=%s", s.Phase)
			}
			s.expireHold(s.RevealDeadline)
			continue
		}
		if action.Kind != ActionFlip {
			t.Fatalf("action kind = %s, want flip", action.Kind)
		}
		if s.Slots[action.Position].State != SlotFaceDown {
			t.Fatalf("policy picked a %s slot", s.Slots[action.Position].State)
		}
		if _, err := s.FlipSlot(p.ID, action.Position, s.StartedAt, 0); err != nil {
			t.Fatalf("legal move rejected: %v", err)
		}
		if s.allMatched() {
			return
		}
	}
	t.Fatal("random policy never finished a 4-pair board in 2000 moves")
}

func TestWeightedPolicyPeeksPartner(t *testing.T) {
	s := matchingSession(4, 1)
	p := s.participant(1)
	rng := rand.New(rand.NewSource(5))
	policy := &WeightedPolicy{Accuracy: 1.0}

	if _, err := s.FlipSlot(p.ID, 0, s.StartedAt, 0); err != nil {
		t.Fatalf("setup flip: %v", err)
	}

	action := policy.Act(s, p, rng)
	if action.Kind != ActionFlip {
		t.Fatalf("action kind = %s, want flip", action.Kind)
	}
	// Pair 1 occupies positions 0 and 1; a fully accurate agent always takes
	// the partner.
	if action.Position != 1 {
		t.Fatalf("accuracy-1 agent flipped %d, want partner 1", action.Position)
	}
}

func TestWeightedPolicyAnswersCorrectly(t *testing.T) {
	s := quizSession(4, 1)
	p := s.participant(1)
	rng := rand.New(rand.NewSource(5))
	policy := &WeightedPolicy{Accuracy: 1.0}

	action := policy.Act(s, p, rng)
	if action.Kind != ActionAnswer {
		t.Fatalf("action kind = %s, want answer", action.Kind)
	}
	if action.OptionIndex != s.CurrentClue.CorrectIndex {
		t.Fatalf("accuracy-1 agent answered %d, want %d", action.OptionIndex, s.CurrentClue.CorrectIndex)
	}
}

func TestPolicyDeclinesWhenAlreadyAnswered(t *testing.T) {
	s := quizSession(4, 1)
	p := s.participant(1)
	rng := rand.New(rand.NewSource(5))

	if _, err := s.SubmitAnswer(p.ID, 0, s.StartedAt, 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	action := (&RandomPolicy{}).Act(s, p, rng)
	if action.Kind != ActionNone {
		t.Fatalf("policy re-answered: %+v", action)
	}
}

func TestAccuracyByDifficulty(t *testing.T) {
	tests := []struct {
		difficulty string
		want       float64
	}{
		{difficulty: "easy", want: 0.7},
		{difficulty: "medium", want: 0.5},
		{difficulty: "hard", want: 0.3},
		{difficulty: "", want: 0.5},
	}
	for _, tt := range tests {
		if got := accuracyFor(tt.difficulty); got != tt.want {
			t.Errorf("accuracyFor(%q) = %v, want %v", tt.difficulty, got, tt.want)
		}
	}
}

func TestAgentNicknamesUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	taken := make(map[string]bool)
	for i := 0; i < len(agentNames)+5; i++ {
		name := agentNickname(rng, taken)
		if name == "" {
			t.Fatal("empty agent nickname")
		}
		if taken[name] {
			t.Fatalf("nickname %q reused", name)
		}
		taken[name] = true
	}
}
