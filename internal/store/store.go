package store

import (
	"career-arcade-backend/internal/engine"
	"career-arcade-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed persistence boundary. The engine computes
// transitions in memory and calls down here as a side effect; a failed save
// is reported up so the engine can roll back, and a transaction guarantees a
// transition is never half-applied (for example one of two flipped slots).
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveRoom(snap engine.RoomSnapshot) error {
	row := models.Room{
		ID:               snap.ID,
		Name:             snap.Name,
		Capacity:         snap.Capacity,
		Variant:          string(snap.Variant),
		Difficulty:       snap.Difficulty,
		GradeBand:        snap.GradeBand,
		Status:           string(snap.Status),
		ActivePlayers:    snap.ActivePlayers,
		Spectators:       snap.Spectators,
		CurrentSessionID: snap.CurrentSessionID,
		NextStartAt:      snap.NextStartAt,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "active_players", "spectators", "current_session_id", "next_start_at", "updated_at",
		}),
	}).Create(&row).Error
}

// SaveRoomConfig persists the full fixed profile; used at room creation.
func (s *Store) SaveRoomConfig(cfg engine.RoomConfig, snap engine.RoomSnapshot) error {
	row := models.Room{
		ID:                 cfg.ID,
		Name:               cfg.Name,
		Capacity:           cfg.Capacity,
		Variant:            string(cfg.Variant),
		GridPairs:          cfg.GridPairs,
		GridCols:           cfg.GridCols,
		QuestionCount:      cfg.QuestionCount,
		Difficulty:         cfg.Difficulty,
		GradeBand:          cfg.GradeBand,
		SkillTag:           cfg.SkillTag,
		DistractorStrategy: string(cfg.DistractorStrategy),
		Status:             string(snap.Status),
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}

func (s *Store) SaveSession(snap engine.SessionSnapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		row := models.Session{
			ID:             snap.ID,
			RoomID:         snap.RoomID,
			Variant:        string(snap.Variant),
			Status:         string(snap.Status),
			Phase:          string(snap.Phase),
			GridCols:       snap.GridCols,
			MatchedPairs:   snap.MatchedPairs,
			TotalPairs:     snap.TotalPairs,
			Round:          snap.Round,
			QuestionBudget: snap.QuestionBudget,
			Seq:            snap.Seq,
			RevealDeadline: snap.RevealDeadline,
			EndedAt:        snap.EndedAt,
		}
		if !snap.StartedAt.IsZero() {
			t := snap.StartedAt
			row.StartedAt = &t
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "phase", "matched_pairs", "round", "seq",
				"reveal_deadline", "started_at", "ended_at", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		for _, slot := range snap.Slots {
			srow := models.Slot{
				SessionID: snap.ID,
				Position:  slot.Position,
				PairID:    slot.PairID,
				ContentID: slot.ContentID,
				Text:      slot.Text,
				State:     string(slot.State),
				FlippedBy: slot.FlippedBy,
				MatchedBy: slot.MatchedBy,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "session_id"}, {Name: "position"}},
				DoUpdates: clause.AssignmentColumns([]string{"state", "flipped_by", "matched_by"}),
			}).Create(&srow).Error; err != nil {
				return err
			}
		}

		for _, p := range snap.Participants {
			prow := models.Participant{
				ID:            p.ID,
				SessionID:     snap.ID,
				Kind:          string(p.Kind),
				UserID:        p.UserID,
				Nickname:      p.Nickname,
				Token:         p.Token,
				BasePoints:    p.BasePoints,
				StreakPoints:  p.StreakPoints,
				PatternPoints: p.PatternPoints,
				Streak:        p.Streak,
				Active:        p.Active,
				JoinedAt:      p.JoinedAt,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"base_points", "streak_points", "pattern_points",
					"streak", "active", "nickname",
				}),
			}).Create(&prow).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) AppendEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]models.Event, len(events))
	for i, ev := range events {
		rows[i] = models.Event{
			Key:           ev.Key,
			RoomID:        ev.RoomID,
			SessionID:     ev.SessionID,
			Seq:           ev.Seq,
			Kind:          string(ev.Kind),
			ParticipantID: ev.ParticipantID,
			Position:      ev.Position,
			Round:         ev.Round,
			Outcome:       ev.Outcome,
			Points:        ev.Points,
			Detail:        ev.Detail,
			LatencyMillis: ev.LatencyMillis,
			At:            ev.At,
		}
	}
	// Events are append-only; a replayed key is dropped, never rewritten.
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func (s *Store) LoadRooms() ([]engine.RoomConfig, error) {
	var rows []models.Room
	if err := s.db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	configs := make([]engine.RoomConfig, len(rows))
	for i, row := range rows {
		configs[i] = engine.RoomConfig{
			ID:                 row.ID,
			Name:               row.Name,
			Capacity:           row.Capacity,
			Variant:            engine.Variant(row.Variant),
			GridPairs:          row.GridPairs,
			GridCols:           row.GridCols,
			QuestionCount:      row.QuestionCount,
			Difficulty:         row.Difficulty,
			GradeBand:          row.GradeBand,
			SkillTag:           row.SkillTag,
			DistractorStrategy: engine.DistractorStrategy(row.DistractorStrategy),
		}
	}
	return configs, nil
}
