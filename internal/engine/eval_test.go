package engine

import (
	"testing"

	"github.com/moterink/delocto/internal/board"
)

func TestEvaluateStartingPositionIsRoughlyZero(t *testing.T) {
	eval := NewEval(1, 1)
	pos := board.NewPosition()

	score := eval.Evaluate(pos)
	// A symmetric starting position should score near zero; the only
	// asymmetry is the fixed tempo bonus for the side to move.
	if score < -5 || score > tempoBonus+5 {
		t.Errorf("Evaluate(startpos) = %d, want roughly 0..%d", score, tempoBonus)
	}
}

func TestEvaluateSideToMoveSignFlip(t *testing.T) {
	eval := NewEval(1, 1)

	white, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	black, err := board.ParseFEN("4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	ws := eval.Evaluate(white)
	bs := eval.Evaluate(black)

	// Same material/structure, opposite side to move: scores should be
	// (roughly) negatives of each other modulo the tempo bonus.
	if (ws > 0) == (bs > 0) {
		t.Errorf("expected opposite-signed scores for the same position from each side, got %d and %d", ws, bs)
	}
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	eval := NewEval(1, 1)

	// White is up a whole queen.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if score := eval.Evaluate(pos); score < 500 {
		t.Errorf("Evaluate with an extra queen = %d, want a large positive score", score)
	}
}

func TestEvaluateBishopPair(t *testing.T) {
	eval := NewEval(1, 1)

	twoBishops, err := board.ParseFEN("4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	oneBishop, err := board.ParseFEN("4k3/8/8/8/8/8/8/3NKB2 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	withPair := eval.Evaluate(twoBishops)
	withoutPair := eval.Evaluate(oneBishop)
	if withPair <= withoutPair {
		t.Errorf("bishop pair (%d) should score higher than bishop+knight (%d) with equal material", withPair, withoutPair)
	}
}

func TestEvaluateKnightOutpost(t *testing.T) {
	eval := NewEval(1, 1)

	// White knight parked on e5, unreachable by any black pawn (the d
	// and f files are empty of black pawns) and defended by the pawn on d4.
	outpost, err := board.ParseFEN("4k3/8/8/4N3/3P4/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	// Same knight pulled back to e3, below the ranks an outpost can sit on.
	noOutpost, err := board.ParseFEN("4k3/8/8/8/3P4/4N3/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if eval.Evaluate(outpost) <= eval.Evaluate(noOutpost) {
		t.Error("a defended knight on an unchallengeable outpost square should score higher")
	}
}

func TestEvaluateTrappedBishopPenalized(t *testing.T) {
	eval := NewEval(1, 1)

	trapped, err := board.ParseFEN("4k3/B7/1p6/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	free, err := board.ParseFEN("4k3/8/8/8/8/8/8/3BK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if eval.Evaluate(trapped) >= eval.Evaluate(free) {
		t.Error("a bishop boxed in on a7 by a black pawn on b6 should score worse than a free bishop")
	}
}

func TestEvaluateTrappedRookPenalized(t *testing.T) {
	eval := NewEval(1, 1)

	trapped, err := board.ParseFEN("4k3/8/8/8/8/8/8/RK5R w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	free, err := board.ParseFEN("4k3/8/8/8/8/8/8/R2K3R w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if eval.Evaluate(trapped) >= eval.Evaluate(free) {
		t.Error("a rook boxed into the corner by its own uncastled king should score worse")
	}
}

func TestEvaluatePinnedQueenPenalized(t *testing.T) {
	eval := NewEval(1, 1)

	// White queen on e2 pinned to the king on e1 by the black rook on e8,
	// which the black king on f8 defends.
	pinned, err := board.ParseFEN("4rk2/8/8/8/8/8/4Q3/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	unpinned, err := board.ParseFEN("4rk2/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if eval.Evaluate(pinned) >= eval.Evaluate(unpinned) {
		t.Error("a queen pinned to its own king should score worse than one off the pin line")
	}
}

func TestEvaluatePassedPawnClearPathBonus(t *testing.T) {
	eval := NewEval(1, 1)

	clear, err := board.ParseFEN("k7/8/8/8/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	blocked, err := board.ParseFEN("k7/8/8/4n3/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	if eval.Evaluate(clear) <= eval.Evaluate(blocked) {
		t.Error("a passed pawn with a clear path to promotion should score higher than one blocked by a blockader")
	}
}

func TestEvalClearResetsCaches(t *testing.T) {
	eval := NewEval(1, 1)
	pos := board.NewPosition()
	eval.Evaluate(pos) // populate pawn/material caches

	eval.Clear()

	if _, ok := eval.pawns.Probe(pos.State.PawnKey); ok {
		t.Error("Clear should evict the pawn hash table")
	}
}
