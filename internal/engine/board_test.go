package engine

import (
	"math"
	"math/rand"
	"testing"
)

func testPairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{ID: uint(i + 1), LeftID: uint(i*2 + 1), RightID: uint(i*2 + 2)}
	}
	return pairs
}

func TestDealPairCounts(t *testing.T) {
	for _, n := range []int{1, 4, 8, 12} {
		rng := rand.New(rand.NewSource(int64(n)))
		slots, err := Deal(testPairs(n), rng)
		if err != nil {
			t.Fatalf("Deal(%d pairs): %v", n, err)
		}
		if len(slots) != n*2 {
			t.Fatalf("Deal(%d pairs) = %d slots, want %d", n, len(slots), n*2)
		}
		counts := make(map[uint]int)
		for i, slot := range slots {
			if slot.Position != i {
				t.Fatalf("slot at index %d has position %d", i, slot.Position)
			}
			if slot.State != SlotFaceDown {
				t.Fatalf("slot %d dealt in state %s", i, slot.State)
			}
			counts[slot.PairID]++
		}
		for id, c := range counts {
			if c != 2 {
				t.Fatalf("pair %d occupies %d slots, want 2", id, c)
			}
		}
	}
}

func TestDealEmpty(t *testing.T) {
	if _, err := Deal(nil, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("Deal with no pairs should fail")
	}
}

// The shuffle runs over slot instances, so the two copies of a pair must not
// be statistically adjacent. Under a uniform permutation of 2n slots a given
// pair's copies land adjacent with probability (2n-1)/C(2n,2) = 1/n, so the
// expected adjacent-pair count per deal is exactly 1 regardless of n.
func TestDealAdjacencyUnbiased(t *testing.T) {
	const (
		pairs  = 8
		trials = 20000
	)
	rng := rand.New(rand.NewSource(7))

	adjacent := 0
	for trial := 0; trial < trials; trial++ {
		slots, err := Deal(testPairs(pairs), rng)
		if err != nil {
			t.Fatalf("Deal: %v", err)
		}
		for i := 0; i+1 < len(slots); i++ {
			if slots[i].PairID == slots[i+1].PairID {
				adjacent++
			}
		}
	}

	expected := float64(trials)
	got := float64(adjacent)
	if math.Abs(got-expected)/expected > 0.05 {
		t.Fatalf("adjacency count %0.f deviates from uniform expectation %0.f by more than 5%%", got, expected)
	}
}

// Every board position should host every pair roughly equally often.
func TestDealPositionUniformity(t *testing.T) {
	const (
		pairs  = 4
		trials = 16000
	)
	rng := rand.New(rand.NewSource(11))

	counts := make([][]int, pairs*2)
	for i := range counts {
		counts[i] = make([]int, pairs+1)
	}
	for trial := 0; trial < trials; trial++ {
		slots, err := Deal(testPairs(pairs), rng)
		if err != nil {
			t.Fatalf("Deal: %v", err)
		}
		for pos, slot := range slots {
			counts[pos][slot.PairID]++
		}
	}

	expected := float64(trials) / float64(pairs)
	for pos := range counts {
		for pair := 1; pair <= pairs; pair++ {
			got := float64(counts[pos][pair])
			if math.Abs(got-expected)/expected > 0.10 {
				t.Fatalf("pair %d at position %d seen %0.f times, want ~%0.f", pair, pos, got, expected)
			}
		}
	}
}

func TestLinesForGrid(t *testing.T) {
	tests := []struct {
		name string
		cols int
		rows int
		want int
	}{
		{name: "4x4 square adds diagonals", cols: 4, rows: 4, want: 10},
		{name: "4x2 rectangle has no diagonals", cols: 4, rows: 2, want: 6},
		{name: "2x2 square", cols: 2, rows: 2, want: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := linesForGrid(tt.cols, tt.rows)
			if len(lines) != tt.want {
				t.Fatalf("linesForGrid(%d, %d) = %d lines, want %d", tt.cols, tt.rows, len(lines), tt.want)
			}
			for _, line := range lines {
				for _, cell := range line {
					if cell < 0 || cell >= tt.cols*tt.rows {
						t.Fatalf("line cell %d out of grid range", cell)
					}
				}
			}
		})
	}
}
