package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pthm-cable/ragdoll/neural"
)

// HallEntry is a ragdoll's fitness and, when known, its controller weights.
type HallEntry struct {
	Ragdoll int             `json:"ragdoll"`
	Fitness float64         `json:"fitness"`
	Weights *neural.Weights `json:"weights,omitempty"`
}

// HallOfFame keeps the best-scoring ragdolls of a run, sorted by fitness.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize entries.
func NewHallOfFame(maxSize int) *HallOfFame {
	if maxSize < 1 {
		maxSize = 1
	}
	return &HallOfFame{
		entries: make([]HallEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Consider offers a ragdoll for the hall. Returns true if it was added.
func (hof *HallOfFame) Consider(ragdoll int, fitness float64, weights *neural.Weights) bool {
	// Find insertion point (sorted descending by fitness)
	idx := sort.Search(len(hof.entries), func(i int) bool {
		return hof.entries[i].Fitness < fitness
	})
	if idx >= hof.maxSize {
		return false
	}

	hof.entries = append(hof.entries, HallEntry{})
	copy(hof.entries[idx+1:], hof.entries[idx:])
	hof.entries[idx] = HallEntry{Ragdoll: ragdoll, Fitness: fitness, Weights: weights}

	if len(hof.entries) > hof.maxSize {
		hof.entries = hof.entries[:hof.maxSize]
	}
	return true
}

// Best returns the top entry, or false if the hall is empty.
func (hof *HallOfFame) Best() (HallEntry, bool) {
	if len(hof.entries) == 0 {
		return HallEntry{}, false
	}
	return hof.entries[0], true
}

// Entries returns the hall in descending fitness order.
func (hof *HallOfFame) Entries() []HallEntry {
	out := make([]HallEntry, len(hof.entries))
	copy(out, hof.entries)
	return out
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(hof.entries, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file.
func LoadHallOfFameFromFile(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var entries []HallEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	hof := NewHallOfFame(len(entries))
	for _, e := range entries {
		hof.Consider(e.Ragdoll, e.Fitness, e.Weights)
	}
	return hof, nil
}

// Networks rebuilds the controller of every entry that carries weights, in
// fitness order. Entries without weights are skipped.
func (hof *HallOfFame) Networks() ([]*neural.FFNN, error) {
	var nets []*neural.FFNN
	for _, e := range hof.entries {
		if e.Weights == nil {
			continue
		}
		nn, err := neural.UnmarshalWeights(*e.Weights)
		if err != nil {
			return nil, fmt.Errorf("hall entry for ragdoll %d: %w", e.Ragdoll, err)
		}
		nets = append(nets, nn)
	}
	return nets, nil
}
