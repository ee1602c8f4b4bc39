package catalog

import (
	"testing"

	"career-arcade-backend/internal/engine"
	"career-arcade-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ContentItem{}, &models.ContentPair{}, &models.ParticipantPlay{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPairs(t *testing.T, db *gorm.DB, n int, difficulty string) {
	t.Helper()
	for i := 0; i < n; i++ {
		left := models.ContentItem{Kind: "career", Text: "career", Difficulty: difficulty}
		right := models.ContentItem{Kind: "role", Text: "role", Difficulty: difficulty}
		if err := db.Create(&left).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
		if err := db.Create(&right).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
		pair := models.ContentPair{LeftID: left.ID, RightID: right.ID, Difficulty: difficulty}
		if err := db.Create(&pair).Error; err != nil {
			t.Fatalf("seed pair: %v", err)
		}
	}
}

func seedClue(t *testing.T, db *gorm.DB, text, answer, category, skill, difficulty string, minPlays int) uint {
	t.Helper()
	item := models.ContentItem{
		Kind:         "clue",
		Text:         text,
		Answer:       answer,
		Category:     category,
		SkillTag:     skill,
		Difficulty:   difficulty,
		MinPlayCount: minPlays,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed clue: %v", err)
	}
	return item.ID
}

func TestSelectPairs(t *testing.T) {
	db := testDB(t)
	seedPairs(t, db, 6, "medium")
	seedPairs(t, db, 2, "hard")
	sel := NewSelector(db)

	pairs, err := sel.SelectPairs(4, "medium", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(pairs) != 4 {
		t.Fatalf("%d pairs, want 4", len(pairs))
	}
	for _, p := range pairs {
		if p.Difficulty != "medium" {
			t.Fatalf("pair %d has difficulty %q", p.ID, p.Difficulty)
		}
		if p.LeftText == "" || p.RightText == "" {
			t.Fatalf("pair %d missing item text: %+v", p.ID, p)
		}
	}
}

func TestSelectPairsExhausted(t *testing.T) {
	db := testDB(t)
	seedPairs(t, db, 2, "medium")
	sel := NewSelector(db)

	_, err := sel.SelectPairs(4, "medium", "")
	rej, ok := engine.AsRejection(err)
	if !ok || rej.Reason != engine.ReasonContentExhausted {
		t.Fatalf("err = %v, want content_exhausted", err)
	}
}

func TestSelectClue(t *testing.T) {
	db := testDB(t)
	clueID := seedClue(t, db, "Who designs bridges?", "Civil engineer", "engineering", "stem", "medium", 0)
	seedClue(t, db, "d1", "Architect", "engineering", "stem", "medium", 0)
	seedClue(t, db, "d2", "Chef", "culinary", "arts", "medium", 0)
	seedClue(t, db, "d3", "Pilot", "aviation", "stem", "medium", 0)
	seedClue(t, db, "wrong level", "Surgeon", "medicine", "stem", "hard", 0)
	sel := NewSelector(db)

	clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if clue.Difficulty != "medium" {
		t.Fatalf("difficulty = %q, want medium", clue.Difficulty)
	}
	if len(clue.Options) != 4 {
		t.Fatalf("%d options, want 4", len(clue.Options))
	}
	if clue.CorrectIndex < 0 || clue.CorrectIndex >= len(clue.Options) {
		t.Fatalf("correct index %d out of range", clue.CorrectIndex)
	}

	// The correct option must sit exactly where CorrectIndex says, and only
	// once.
	var item models.ContentItem
	if err := db.First(&item, clue.ItemID).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	seen := 0
	for i, opt := range clue.Options {
		if opt == item.Answer {
			seen++
			if i != clue.CorrectIndex {
				t.Fatalf("answer %q at index %d, CorrectIndex says %d", opt, i, clue.CorrectIndex)
			}
		}
	}
	if seen != 1 {
		t.Fatalf("answer appears %d times in options", seen)
	}
	_ = clueID
}

func TestSelectClueExcludesShown(t *testing.T) {
	db := testDB(t)
	first := seedClue(t, db, "c1", "a1", "cat", "", "medium", 0)
	second := seedClue(t, db, "c2", "a2", "cat", "", "medium", 0)
	for i := 0; i < 3; i++ {
		seedClue(t, db, "pad", "pad-answer", "cat", "", "easy", 0)
	}
	// Distractors can come from any difficulty, so pad the pool.
	seedClue(t, db, "p1", "x1", "cat", "", "medium", 0)
	seedClue(t, db, "p2", "x2", "cat", "", "medium", 0)
	seedClue(t, db, "p3", "x3", "cat", "", "medium", 0)
	sel := NewSelector(db)

	shown := []uint{first}
	for i := 0; i < 10; i++ {
		clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", ExcludeItemIDs: shown})
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		if clue.ItemID == first {
			t.Fatalf("excluded clue %d came back", first)
		}
	}
	_ = second
}

func TestSelectClueRelatedDistractors(t *testing.T) {
	db := testDB(t)
	seedClue(t, db, "target", "Civil engineer", "engineering", "", "medium", 0)
	related := map[string]bool{"Mechanical engineer": true, "Electrical engineer": true, "Structural engineer": true}
	for answer := range related {
		seedClue(t, db, "rel", answer, "engineering", "", "easy", 0)
	}
	seedClue(t, db, "far", "Chef", "culinary", "", "easy", 0)
	seedClue(t, db, "far", "Pilot", "aviation", "", "easy", 0)
	sel := NewSelector(db)

	clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", Strategy: engine.DistractorRelated})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i, opt := range clue.Options {
		if i == clue.CorrectIndex {
			continue
		}
		if !related[opt] {
			t.Fatalf("distractor %q is not from the clue's category", opt)
		}
	}
}

func TestSelectClueDistractorPadding(t *testing.T) {
	db := testDB(t)
	seedClue(t, db, "target", "Civil engineer", "engineering", "", "medium", 0)
	// Only one same-category candidate; the rest must be padded from the
	// wider catalog instead of failing.
	seedClue(t, db, "rel", "Mechanical engineer", "engineering", "", "easy", 0)
	seedClue(t, db, "far", "Chef", "culinary", "", "easy", 0)
	seedClue(t, db, "far", "Pilot", "aviation", "", "easy", 0)
	sel := NewSelector(db)

	clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", Strategy: engine.DistractorRelated})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(clue.Options) != 4 {
		t.Fatalf("%d options, want 4", len(clue.Options))
	}
}

func TestMinPlayCountGate(t *testing.T) {
	db := testDB(t)
	gated := seedClue(t, db, "advanced", "Quantum engineer", "stem", "", "medium", 3)
	open := seedClue(t, db, "basic", "Teacher", "edu", "", "medium", 0)
	for _, answer := range []string{"d1", "d2", "d3"} {
		seedClue(t, db, "pad", answer, "misc", "", "easy", 0)
	}
	sel := NewSelector(db)

	// A fresh user has zero plays; only the ungated clue is eligible.
	for i := 0; i < 10; i++ {
		clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", UserIDs: []uint{7}})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if clue.ItemID == gated {
			t.Fatal("gated clue served to a zero-play user")
		}
	}

	// Three plays open the gate.
	for i := 0; i < 3; i++ {
		sel.RecordPlay(7, open)
	}
	servedGated := false
	for i := 0; i < 50; i++ {
		clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", UserIDs: []uint{7}})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if clue.ItemID == gated {
			servedGated = true
			break
		}
	}
	if !servedGated {
		t.Fatal("gate never opened after enough plays")
	}

	// The gate follows the weakest participant: adding a fresh user closes
	// it again.
	for i := 0; i < 10; i++ {
		clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium", UserIDs: []uint{7, 8}})
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if clue.ItemID == gated {
			t.Fatal("gated clue served despite a zero-play participant")
		}
	}
}

func TestMinPlayCountGateAllAgents(t *testing.T) {
	db := testDB(t)
	gated := seedClue(t, db, "advanced", "Quantum engineer", "stem", "", "medium", 100)
	for _, answer := range []string{"d1", "d2", "d3"} {
		seedClue(t, db, "pad", answer, "misc", "", "easy", 0)
	}
	sel := NewSelector(db)

	// No human user ids: every gate passes.
	clue, err := sel.SelectClue(engine.ClueRequest{Difficulty: "medium"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if clue.ItemID != gated {
		t.Fatalf("clue %d served, want %d", clue.ItemID, gated)
	}
}

func TestRecordOutcomeIncrementalMean(t *testing.T) {
	db := testDB(t)
	id := seedClue(t, db, "c", "a", "cat", "", "medium", 0)
	sel := NewSelector(db)

	sel.RecordOutcome(id, true, 100)
	sel.RecordOutcome(id, false, 200)
	sel.RecordOutcome(id, true, 300)

	var item models.ContentItem
	if err := db.First(&item, id).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if item.TimesShown != 3 {
		t.Fatalf("times shown = %d, want 3", item.TimesShown)
	}
	if item.TimesCorrect != 2 {
		t.Fatalf("times correct = %d, want 2", item.TimesCorrect)
	}
	if item.AvgResponseMillis != 200 {
		t.Fatalf("avg response = %v, want 200", item.AvgResponseMillis)
	}
}

func TestRecordPlayUpserts(t *testing.T) {
	db := testDB(t)
	id := seedClue(t, db, "c", "a", "cat", "", "medium", 0)
	sel := NewSelector(db)

	sel.RecordPlay(7, id)
	sel.RecordPlay(7, id)
	sel.RecordPlay(7, id)

	var play models.ParticipantPlay
	if err := db.Where("user_id = ? AND content_id = ?", 7, id).First(&play).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if play.PlayCount != 3 {
		t.Fatalf("play count = %d, want 3", play.PlayCount)
	}

	var rows int64
	db.Model(&models.ParticipantPlay{}).Count(&rows)
	if rows != 1 {
		t.Fatalf("%d play rows, want 1 upserted row", rows)
	}
}
