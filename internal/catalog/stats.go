package catalog

import (
	"log"

	"career-arcade-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordOutcome updates the item's analytics counters for one resolved
// action. The rolling average uses the incremental-mean form so no response
// history needs to be kept:
//
//	new_avg = (old_avg*old_count + value) / (old_count + 1)
func (s *Selector) RecordOutcome(itemID uint, correct bool, responseMillis int64) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.ContentItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return err
		}
		item.AvgResponseMillis = (item.AvgResponseMillis*float64(item.TimesShown) + float64(responseMillis)) / float64(item.TimesShown+1)
		item.TimesShown++
		if correct {
			item.TimesCorrect++
		}
		return tx.Model(&models.ContentItem{}).Where("id = ?", itemID).
			Updates(map[string]any{
				"times_shown":         item.TimesShown,
				"times_correct":       item.TimesCorrect,
				"avg_response_millis": item.AvgResponseMillis,
			}).Error
	})
	if err != nil {
		log.Printf("catalog: record outcome for item %d: %v", itemID, err)
	}
}

// RecordPlay bumps the per-user play counter that feeds the min-play-count
// eligibility gate.
func (s *Selector) RecordPlay(userID, itemID uint) {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}},
		DoUpdates: clause.Assignments(map[string]any{"play_count": gorm.Expr("participant_plays.play_count + 1")}),
	}).Create(&models.ParticipantPlay{UserID: userID, ContentID: itemID, PlayCount: 1}).Error
	if err != nil {
		log.Printf("catalog: record play user %d item %d: %v", userID, itemID, err)
	}
}
