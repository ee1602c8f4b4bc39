package engine

// Scorer computes the three score components: base points per content
// difficulty, a streak bonus growing with consecutive successes, and a
// pattern bonus for completed board lines.
type Scorer struct {
	Base        map[string]int
	DefaultBase int
	StreakStep  int
	LineBonus   int
}

func NewScorer() *Scorer {
	return &Scorer{
		Base: map[string]int{
			"easy":   50,
			"medium": 100,
			"hard":   150,
		},
		DefaultBase: 100,
		StreakStep:  25,
		LineBonus:   200,
	}
}

func (sc *Scorer) basePoints(difficulty string) int {
	if pts, ok := sc.Base[difficulty]; ok {
		return pts
	}
	return sc.DefaultBase
}

// Credit is the result of one successful match or correct answer.
type Credit struct {
	BasePoints     int   `json:"base_points"`
	StreakBonus    int   `json:"streak_bonus"`
	PatternBonus   int   `json:"pattern_bonus"`
	CompletedLines []int `json:"completed_lines,omitempty"`
}

func (c Credit) Total() int { return c.BasePoints + c.StreakBonus + c.PatternBonus }

// Success credits a participant for one match or correct answer. cells are
// the board positions unlocked by the success; lines are the fixed index
// sets for the session's grid. A line already credited to this participant
// is never credited again.
func (sc *Scorer) Success(p *Participant, difficulty string, cells []int, lines [][]int) Credit {
	p.Streak++

	credit := Credit{
		BasePoints:  sc.basePoints(difficulty),
		StreakBonus: (p.Streak - 1) * sc.StreakStep,
	}

	for _, cell := range cells {
		p.unlocked[cell] = true
	}
	for i, line := range lines {
		if p.creditedLines[i] {
			continue
		}
		if lineComplete(line, p.unlocked) {
			p.creditedLines[i] = true
			credit.PatternBonus += sc.LineBonus
			credit.CompletedLines = append(credit.CompletedLines, i)
		}
	}

	p.BasePoints += credit.BasePoints
	p.StreakPoints += credit.StreakBonus
	p.PatternPoints += credit.PatternBonus
	return credit
}

// Miss resets the streak; no other component changes.
func (sc *Scorer) Miss(p *Participant) {
	p.Streak = 0
}

func lineComplete(line []int, unlocked map[int]bool) bool {
	for _, cell := range line {
		if !unlocked[cell] {
			return false
		}
	}
	return true
}

// linesForGrid builds the row, column and (for square grids) diagonal index
// sets for a cols x rows board laid out in row-major order.
func linesForGrid(cols, rows int) [][]int {
	var lines [][]int
	for r := 0; r < rows; r++ {
		line := make([]int, cols)
		for c := 0; c < cols; c++ {
			line[c] = r*cols + c
		}
		lines = append(lines, line)
	}
	for c := 0; c < cols; c++ {
		line := make([]int, rows)
		for r := 0; r < rows; r++ {
			line[r] = r*cols + c
		}
		lines = append(lines, line)
	}
	if cols == rows {
		main := make([]int, cols)
		anti := make([]int, cols)
		for i := 0; i < cols; i++ {
			main[i] = i*cols + i
			anti[i] = i*cols + (cols - 1 - i)
		}
		lines = append(lines, main, anti)
	}
	return lines
}
