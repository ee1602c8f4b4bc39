package engine

import "testing"

func newTestParticipant() *Participant {
	return &Participant{
		ID:            1,
		Nickname:      "p1",
		Active:        true,
		unlocked:      make(map[int]bool),
		creditedLines: make(map[int]bool),
	}
}

func TestScorerBasePoints(t *testing.T) {
	sc := NewScorer()
	tests := []struct {
		difficulty string
		want       int
	}{
		{difficulty: "easy", want: 50},
		{difficulty: "medium", want: 100},
		{difficulty: "hard", want: 150},
		{difficulty: "", want: 100},
		{difficulty: "unknown", want: 100},
	}
	for _, tt := range tests {
		p := newTestParticipant()
		credit := sc.Success(p, tt.difficulty, nil, nil)
		if credit.BasePoints != tt.want {
			t.Errorf("Success(%q).BasePoints = %d, want %d", tt.difficulty, credit.BasePoints, tt.want)
		}
	}
}

func TestScorerStreakGrowsAndResets(t *testing.T) {
	sc := NewScorer()
	p := newTestParticipant()

	wantBonus := []int{0, 25, 50, 75}
	for i, want := range wantBonus {
		credit := sc.Success(p, "medium", nil, nil)
		if credit.StreakBonus != want {
			t.Fatalf("success %d: streak bonus = %d, want %d", i+1, credit.StreakBonus, want)
		}
	}
	if p.Streak != 4 {
		t.Fatalf("streak = %d, want 4", p.Streak)
	}

	sc.Miss(p)
	if p.Streak != 0 {
		t.Fatalf("streak after miss = %d, want 0", p.Streak)
	}
	// The earned components survive a miss; only the streak counter resets.
	if p.StreakPoints != 25+50+75 {
		t.Fatalf("streak points after miss = %d, want %d", p.StreakPoints, 150)
	}

	credit := sc.Success(p, "medium", nil, nil)
	if credit.StreakBonus != 0 {
		t.Fatalf("first success after miss carries bonus %d, want 0", credit.StreakBonus)
	}
}

func TestScorerLineBonusOnce(t *testing.T) {
	sc := NewScorer()
	p := newTestParticipant()
	lines := linesForGrid(2, 2) // rows {0,1} {2,3}, cols {0,2} {1,3}, diagonals

	credit := sc.Success(p, "medium", []int{0}, lines)
	if credit.PatternBonus != 0 {
		t.Fatalf("one cell completed a line: %+v", credit)
	}

	credit = sc.Success(p, "medium", []int{1}, lines)
	if credit.PatternBonus != sc.LineBonus {
		t.Fatalf("pattern bonus = %d, want %d", credit.PatternBonus, sc.LineBonus)
	}
	if len(credit.CompletedLines) != 1 || credit.CompletedLines[0] != 0 {
		t.Fatalf("completed lines = %v, want [0]", credit.CompletedLines)
	}

	// Unlocking the same cells again must not re-credit line 0. Cells 2 and 3
	// complete the second row plus both columns and both diagonals.
	credit = sc.Success(p, "medium", []int{2, 3}, lines)
	for _, line := range credit.CompletedLines {
		if line == 0 {
			t.Fatalf("line 0 credited twice: %v", credit.CompletedLines)
		}
	}
	if len(credit.CompletedLines) != 5 {
		t.Fatalf("completed lines = %v, want the remaining 5", credit.CompletedLines)
	}
	if credit.PatternBonus != 5*sc.LineBonus {
		t.Fatalf("pattern bonus = %d, want %d", credit.PatternBonus, 5*sc.LineBonus)
	}
}

func TestTotalScoreIsComponentSum(t *testing.T) {
	sc := NewScorer()
	p := newTestParticipant()
	lines := linesForGrid(2, 2)

	sc.Success(p, "hard", []int{0}, lines)
	sc.Success(p, "easy", []int{1}, lines)
	sc.Miss(p)
	sc.Success(p, "medium", []int{2}, lines)

	want := p.BasePoints + p.StreakPoints + p.PatternPoints
	if got := p.TotalScore(); got != want {
		t.Fatalf("TotalScore() = %d, want component sum %d", got, want)
	}
	rec := p.record()
	if rec.TotalScore != want {
		t.Fatalf("record total = %d, want %d", rec.TotalScore, want)
	}
}
