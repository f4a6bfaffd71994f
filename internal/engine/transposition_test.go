package engine

import (
	"testing"

	"github.com/moterink/delocto/internal/board"
)

func TestTranspositionStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)

	key := uint64(0x0123456789abcdef)
	move := board.NewMove(board.E2, board.E4)
	tt.Store(key, 6, 125, 110, move, BoundExact)

	entry := tt.Probe(key)
	if !entry.Found {
		t.Fatal("expected a hit after Store")
	}
	if entry.Move != move {
		t.Errorf("Move = %s, want %s", entry.Move, move)
	}
	if entry.Value != 125 {
		t.Errorf("Value = %d, want 125", entry.Value)
	}
	if entry.Eval != 110 {
		t.Errorf("Eval = %d, want 110", entry.Eval)
	}
	if entry.Depth != 6 {
		t.Errorf("Depth = %d, want 6", entry.Depth)
	}
	if entry.Bound != BoundExact {
		t.Errorf("Bound = %v, want BoundExact", entry.Bound)
	}
}

func TestTranspositionMissOnDifferentTag(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(1, 4, 0, 0, board.NoMove, BoundExact)

	// A key landing in the same bucket (same low bits) but a different tag
	// in the top 16 bits must miss, not silently alias.
	other := uint64(1) | (uint64(0xbeef) << 48)
	entry := tt.Probe(other)
	if entry.Found {
		t.Error("expected a miss for a different 16-bit tag")
	}
}

func TestTranspositionDepthPreferredReplacement(t *testing.T) {
	tt := NewTranspositionTable(1)
	key := uint64(42)

	// A deep exact entry followed by a shallow, non-exact (fail-low/high)
	// store for the same key must not overwrite the deeper result --
	// exact (PV) stores are the only ones allowed to ignore depth.
	tt.Store(key, 10, 1, 1, board.NoMove, BoundExact)
	tt.Store(key, 2, 2, 2, board.NoMove, BoundUpper)

	entry := tt.Probe(key)
	if !entry.Found || entry.Depth != 10 {
		t.Errorf("shallower non-exact store should not have evicted the deeper entry, got depth %d", entry.Depth)
	}
}

func TestTranspositionNewSearchAgesGeneration(t *testing.T) {
	tt := NewTranspositionTable(1)
	g0 := tt.gen.Load()
	tt.NewSearch()
	if tt.gen.Load() != g0+4 {
		t.Errorf("NewSearch should advance generation by 4, got %d -> %d", g0, tt.gen.Load())
	}
}

func TestScoreToFromTTMateDistance(t *testing.T) {
	ply := 3
	mateScore := MateScore - 5

	stored := ScoreToTT(mateScore, ply)
	restored := ScoreFromTT(stored, ply)
	if restored != mateScore {
		t.Errorf("mate score round-trip: got %d, want %d", restored, mateScore)
	}

	// A non-mate score must pass through unchanged.
	plain := 37
	if got := ScoreFromTT(ScoreToTT(plain, ply), ply); got != plain {
		t.Errorf("plain score round-trip: got %d, want %d", got, plain)
	}
}

func TestTranspositionHashFullEmpty(t *testing.T) {
	tt := NewTranspositionTable(1)
	if hf := tt.HashFull(); hf != 0 {
		t.Errorf("HashFull on an empty table = %d, want 0", hf)
	}
}
