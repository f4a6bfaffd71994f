package engine

import "github.com/moterink/delocto/internal/board"

// PawnEntry caches the pawn-structure-only portion of the evaluator: the
// (mg, eg) term and each side's passed-pawn bitboard, so a worker that
// revisits a pawn skeleton it has already scored skips the doubled/
// isolated/backward/connected/passed scan entirely.
type PawnEntry struct {
	Key     uint64
	MgScore int16
	EgScore int16
	Passed  [2]board.Bitboard
}

// PawnTable is a single-entry-per-slot cache, one per search worker
// (SPEC_FULL.md C4/C8) -- it is never shared across goroutines, so no
// locking or atomics are needed here unlike the transposition table.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	const entrySize = 28 // 8 + 2 + 2 + 2*8
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}
	if size == 0 {
		size = 1
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a pawn structure evaluation in the hash table.
func (pt *PawnTable) Probe(key uint64) (*PawnEntry, bool) {
	entry := &pt.entries[key&pt.mask]
	if entry.Key == key {
		return entry, true
	}
	return nil, false
}

// Store saves a pawn structure evaluation in the hash table.
func (pt *PawnTable) Store(key uint64, mg, eg int, passed [2]board.Bitboard) *PawnEntry {
	entry := &pt.entries[key&pt.mask]
	entry.Key = key
	entry.MgScore = int16(mg)
	entry.EgScore = int16(eg)
	entry.Passed = passed
	return entry
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
}
