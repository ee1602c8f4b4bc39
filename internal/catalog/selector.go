package catalog

import (
	"math/rand"
	"sync"
	"time"

	"career-arcade-backend/internal/engine"
	"career-arcade-backend/internal/models"

	"gorm.io/gorm"
)

const distractorCount = 3

// Selector reads game content out of the catalog tables. It is shared
// read-only across every room; the only writes it performs are the
// encapsulated play-stat counters in stats.go.
type Selector struct {
	db *gorm.DB

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(db *gorm.DB) *Selector {
	return &Selector{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectPairs picks n content pairs for a matching board under the room's
// difficulty and grade constraints.
func (s *Selector) SelectPairs(n int, difficulty, gradeBand string) ([]engine.Pair, error) {
	q := s.db.Model(&models.ContentPair{}).Where("difficulty = ?", difficulty)
	if gradeBand != "" {
		q = q.Where("grade_band = ?", gradeBand)
	}

	var rows []models.ContentPair
	if err := q.Order("random()").Limit(n).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) < n {
		return nil, contentExhausted("need %d pairs for difficulty %q grade %q, found %d", n, difficulty, gradeBand, len(rows))
	}

	ids := make([]uint, 0, len(rows)*2)
	for _, row := range rows {
		ids = append(ids, row.LeftID, row.RightID)
	}
	var items []models.ContentItem
	if err := s.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	texts := make(map[uint]string, len(items))
	for _, item := range items {
		texts[item.ID] = item.Text
	}

	pairs := make([]engine.Pair, len(rows))
	for i, row := range rows {
		pairs[i] = engine.Pair{
			ID:         row.ID,
			LeftID:     row.LeftID,
			LeftText:   texts[row.LeftID],
			RightID:    row.RightID,
			RightText:  texts[row.RightID],
			Difficulty: row.Difficulty,
		}
	}
	return pairs, nil
}

// SelectClue picks one clue plus distractor options. MinPlayCount is a gate,
// not a filter: an item only becomes eligible once every human participant's
// historical play count reaches the item's threshold, which is what lets
// difficulty progress across repeated sessions.
func (s *Selector) SelectClue(req engine.ClueRequest) (*engine.Clue, error) {
	gate := s.playCountFloor(req.UserIDs)

	q := s.db.Model(&models.ContentItem{}).
		Where("kind = ?", "clue").
		Where("difficulty = ?", req.Difficulty).
		Where("min_play_count <= ?", gate)
	if req.GradeBand != "" {
		q = q.Where("grade_band = ?", req.GradeBand)
	}
	if req.SkillTag != "" {
		q = q.Where("skill_tag = ?", req.SkillTag)
	}
	if len(req.ExcludeItemIDs) > 0 {
		q = q.Where("id NOT IN ?", req.ExcludeItemIDs)
	}

	var clue models.ContentItem
	if err := q.Order("random()").First(&clue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, contentExhausted("no clue satisfies difficulty %q grade %q skill %q", req.Difficulty, req.GradeBand, req.SkillTag)
		}
		return nil, err
	}

	distractors, err := s.selectDistractors(clue, req.Strategy)
	if err != nil {
		return nil, err
	}

	options := append([]string{clue.Answer}, distractors...)
	correct := s.shuffleOptions(options)

	return &engine.Clue{
		ItemID:       clue.ID,
		Text:         clue.Text,
		Options:      options,
		CorrectIndex: correct,
		Difficulty:   clue.Difficulty,
	}, nil
}

// selectDistractors draws wrong answers by strategy, padding from the full
// catalog when a biased pool runs short.
func (s *Selector) selectDistractors(clue models.ContentItem, strategy engine.DistractorStrategy) ([]string, error) {
	base := s.db.Model(&models.ContentItem{}).
		Where("kind = ?", "clue").
		Where("id <> ?", clue.ID).
		Where("answer <> ''").
		Where("answer <> ?", clue.Answer)

	var pool []string
	biased := base.Session(&gorm.Session{})
	switch strategy {
	case engine.DistractorRelated:
		biased = biased.Where("category = ?", clue.Category)
	case engine.DistractorSameSkill:
		biased = biased.Where("skill_tag = ?", clue.SkillTag)
	}
	if err := biased.Order("random()").Limit(distractorCount).Pluck("answer", &pool).Error; err != nil {
		return nil, err
	}

	if len(pool) < distractorCount && strategy != engine.DistractorRandom {
		padQ := base.Session(&gorm.Session{})
		if len(pool) > 0 {
			padQ = padQ.Where("answer NOT IN ?", pool)
		}
		var pad []string
		if err := padQ.Order("random()").Limit(distractorCount-len(pool)).Pluck("answer", &pad).Error; err != nil {
			return nil, err
		}
		pool = append(pool, pad...)
	}
	if len(pool) < distractorCount {
		return nil, contentExhausted("only %d distractors available for clue %d", len(pool), clue.ID)
	}
	return pool[:distractorCount], nil
}

// playCountFloor is the weakest participant's total play count; all-AI
// sessions pass every gate.
func (s *Selector) playCountFloor(userIDs []uint) int {
	if len(userIDs) == 0 {
		return int(^uint(0) >> 1)
	}
	floor := -1
	for _, userID := range userIDs {
		var total int64
		s.db.Model(&models.ParticipantPlay{}).
			Where("user_id = ?", userID).
			Select("COALESCE(SUM(play_count), 0)").
			Scan(&total)
		if floor < 0 || int(total) < floor {
			floor = int(total)
		}
	}
	if floor < 0 {
		floor = 0
	}
	return floor
}

func (s *Selector) shuffleOptions(options []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	correct := 0
	for i := len(options) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
		switch correct {
		case i:
			correct = j
		case j:
			correct = i
		}
	}
	return correct
}

func contentExhausted(format string, args ...any) error {
	return engine.ContentExhausted(format, args...)
}
