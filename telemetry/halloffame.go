package telemetry

import (
	"encoding/json"
	"sort"
)

// HallEntry records a generation's best bird.
type HallEntry struct {
	Generation  int     `json:"generation"`
	CandidateID int     `json:"candidate_id"`
	Species     int     `json:"species"`
	Fitness     float64 `json:"fitness"`
	Score       int     `json:"score"`
	Nodes       int     `json:"nodes"`
	Links       int     `json:"links"`
}

// HallOfFame keeps the fittest generation bests of a run, sorted by fitness.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a new hall of fame with the given capacity.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider adds entry if it ranks within capacity.
// Returns true if the entry was added to the hall.
func (hof *HallOfFame) Consider(entry HallEntry) bool {
	// Find insertion point (sorted descending by fitness, earlier generations first on ties)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < entry.Fitness
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hof.entries) >= hof.maxSize && idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = entry

	// Trim if over capacity
	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// Top returns the fittest entry, or false if the hall is empty.
func (hof *HallOfFame) Top() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	return hof.entries[0], true
}

// MarshalJSON serializes the hall of fame to JSON, fittest first.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}
