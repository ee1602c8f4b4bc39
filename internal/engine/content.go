package engine

// DistractorStrategy controls how wrong answers are picked for a clue round.
type DistractorStrategy string

const (
	DistractorRandom    DistractorStrategy = "random"
	DistractorRelated   DistractorStrategy = "related"
	DistractorSameSkill DistractorStrategy = "same_skill"
)

// Pair is one matching unit: two pieces of content that belong together
// (e.g. a career and one of its roles).
type Pair struct {
	ID         uint   `json:"id"`
	LeftID     uint   `json:"left_id"`
	LeftText   string `json:"left_text"`
	RightID    uint   `json:"right_id"`
	RightText  string `json:"right_text"`
	Difficulty string `json:"difficulty"`
}

// Clue is one quiz round: a prompt plus shuffled options, exactly one correct.
type Clue struct {
	ItemID       uint     `json:"item_id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"-"`
	Difficulty   string   `json:"difficulty"`
}

// ClueRequest carries the selection filters for one quiz round.
type ClueRequest struct {
	Difficulty string
	GradeBand  string
	SkillTag   string
	Strategy   DistractorStrategy
	// UserIDs of the human participants; used for the play-count
	// eligibility gate.
	UserIDs []uint
	// ExcludeItemIDs keeps clues already shown this session out.
	ExcludeItemIDs []uint
}

// ContentSource is the read side of the content catalog. Implementations are
// safe for concurrent use across rooms; the catalog is read-only from the
// engine's perspective apart from play-stat counters.
type ContentSource interface {
	SelectPairs(n int, difficulty, gradeBand string) ([]Pair, error)
	SelectClue(req ClueRequest) (*Clue, error)
	RecordOutcome(itemID uint, correct bool, responseMillis int64)
	RecordPlay(userID, itemID uint)
}
