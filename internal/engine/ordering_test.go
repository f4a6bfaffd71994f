package engine

import (
	"testing"

	"github.com/moterink/delocto/internal/board"
)

func TestMoveOrdererHistoryGravityBounded(t *testing.T) {
	mo := NewMoveOrderer()

	for i := 0; i < 200; i++ {
		mo.UpdateHistory(board.White, board.Knight, board.F3, historyMax)
	}

	h := mo.getHistory(board.White, board.Knight, board.F3)
	if h > historyMax || h < -historyMax {
		t.Errorf("history score %d escaped the +/-%d gravity bound", h, historyMax)
	}
}

func TestMoveOrdererKillersDistinctPerPly(t *testing.T) {
	mo := NewMoveOrderer()
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	mo.UpdateKillers(m1, 3)
	mo.UpdateKillers(m2, 3)

	if mo.killers[3][0] != m2 || mo.killers[3][1] != m1 {
		t.Errorf("expected most recent killer first, got %v", mo.killers[3])
	}
	if mo.killers[3][0] == mo.killers[3][1] {
		t.Error("killer slots should never hold the same move twice")
	}
}

func TestMoveOrdererCounterMove(t *testing.T) {
	mo := NewMoveOrderer()
	prev := board.NewMove(board.E2, board.E4)
	reply := board.NewMove(board.E7, board.E5)

	mo.UpdateCounter(prev, board.WhitePawn, reply)

	if got := mo.getCounter(prev, board.WhitePawn); got != reply {
		t.Errorf("getCounter = %s, want %s", got, reply)
	}
}

func TestMoveOrdererClearHalvesHistory(t *testing.T) {
	mo := NewMoveOrderer()
	mo.UpdateHistory(board.Black, board.Queen, board.D8, 8000)
	before := mo.getHistory(board.Black, board.Queen, board.D8)

	mo.Clear()

	after := mo.getHistory(board.Black, board.Queen, board.D8)
	if after != before/2 {
		t.Errorf("Clear should halve history, got %d -> %d", before, after)
	}
	if mo.killers[0][0] != board.NoMove {
		t.Error("Clear should reset killers")
	}
}

func TestPickBestSelectsMaximum(t *testing.T) {
	scored := []scoredMove{
		{move: board.NewMove(board.A2, board.A3), score: 10},
		{move: board.NewMove(board.B2, board.B3), score: 90},
		{move: board.NewMove(board.C2, board.C3), score: 40},
	}

	best := pickBest(scored, 0)
	if best.score != 90 {
		t.Errorf("pickBest returned score %d, want 90", best.score)
	}
	// pickBest must swap the winner to the front so repeated calls from
	// an advancing index drain the slice in descending score order.
	if scored[0].score != 90 {
		t.Error("pickBest should swap the selected entry to index `from`")
	}
}

func TestMovePickerStartsWithTTMove(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	ttMove := board.NewMove(board.E2, board.E4)

	mp := NewMovePicker(pos, mo, 0, ttMove, board.NoMove, board.NoPiece)
	first := mp.Next()
	if first != ttMove {
		t.Errorf("first move out of the picker = %s, want TT move %s", first, ttMove)
	}
}

// TestMovePickerSkipsStaleKillerWithoutPanicking reproduces the cross-branch
// reuse hazard the staged picker must guard against: a killer recorded for
// "Ng1f3" in one branch is replayed at the same ply in a sibling position
// where g1 is empty. Without the IsPseudoLegal gate, IsLegal alone accepts
// the stale move and DoMove would corrupt the board on a NoPiece move.
func TestMovePickerSkipsStaleKillerWithoutPanicking(t *testing.T) {
	pos := board.NewPosition()
	pos.DoMove(board.NewMove(board.G1, board.F3)) // vacate g1

	mo := NewMoveOrderer()
	staleKiller := board.NewMove(board.G1, board.F3)
	mo.UpdateKillers(staleKiller, 0)

	mp := NewMovePicker(pos, mo, 0, board.NoMove, board.NoMove, board.NoPiece)
	seen := map[board.Move]bool{}
	for {
		m := mp.Next()
		if m == board.NoMove {
			break
		}
		if m == staleKiller {
			t.Fatalf("picker yielded the stale killer %s whose origin is now empty", staleKiller)
		}
		seen[m] = true
	}

	legal := pos.GenerateLegalMoves()
	if len(seen) != legal.Len() {
		t.Errorf("picker yielded %d moves, position has %d legal moves", len(seen), legal.Len())
	}
}

func TestMovePickerNeverRepeatsTTMove(t *testing.T) {
	pos := board.NewPosition()
	mo := NewMoveOrderer()
	ttMove := board.NewMove(board.E2, board.E4)

	mp := NewMovePicker(pos, mo, 0, ttMove, board.NoMove, board.NoPiece)
	seen := map[board.Move]bool{}
	for {
		m := mp.Next()
		if m == board.NoMove {
			break
		}
		if seen[m] {
			t.Fatalf("move %s yielded twice by MovePicker", m)
		}
		seen[m] = true
	}

	legal := pos.GenerateLegalMoves()
	if len(seen) != legal.Len() {
		t.Errorf("picker yielded %d moves, position has %d legal moves", len(seen), legal.Len())
	}
}
