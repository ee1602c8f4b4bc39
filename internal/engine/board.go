package engine

import (
	"fmt"
	"math/rand"
)

type SlotState string

const (
	SlotFaceDown   SlotState = "face_down"
	SlotFlipped    SlotState = "flipped"
	SlotRevealHold SlotState = "reveal_hold"
	SlotMatched    SlotState = "matched"
)

// Slot is one playable board cell. In the matching variant each PairID
// appears in exactly two slots.
type Slot struct {
	Position  int       `json:"position"`
	PairID    uint      `json:"pair_id"`
	ContentID uint      `json:"content_id"`
	Text      string    `json:"text"`
	State     SlotState `json:"state"`
	FlippedBy uint      `json:"flipped_by,omitempty"`
	MatchedBy uint      `json:"matched_by,omitempty"`
}

// Deal expands n pairs into 2n slot instances and shuffles them into board
// positions. The shuffle runs over the individual instances, never over the
// pair list: shuffling pairs and then laying both copies down together leaves
// the two copies of a pair statistically adjacent, which is exactly the bias
// this board must not have.
func Deal(pairs []Pair, rng *rand.Rand) ([]Slot, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("deal: no pairs")
	}

	slots := make([]Slot, 0, len(pairs)*2)
	for _, p := range pairs {
		slots = append(slots,
			Slot{PairID: p.ID, ContentID: p.LeftID, Text: p.LeftText, State: SlotFaceDown},
			Slot{PairID: p.ID, ContentID: p.RightID, Text: p.RightText, State: SlotFaceDown},
		)
	}

	// Fisher-Yates over slot instances.
	for i := len(slots) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}
	for i := range slots {
		slots[i].Position = i
	}

	if err := checkPairCounts(slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// checkPairCounts verifies every pair id occupies exactly two slots.
func checkPairCounts(slots []Slot) error {
	counts := make(map[uint]int, len(slots)/2)
	for _, s := range slots {
		counts[s.PairID]++
	}
	for id, n := range counts {
		if n != 2 {
			return fmt.Errorf("deal: pair %d occupies %d slots, want 2", id, n)
		}
	}
	return nil
}
