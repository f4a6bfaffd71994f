package board

import "testing"

func TestPerftPosition4(t *testing.T) {
	pos, err := ParseFEN("r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 264},
		{3, 9467},
		// {4, 422333}, // Enable for thorough testing
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

func TestInsufficientMaterialIsADraw(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K1N1 w - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("King and knight vs lone king:")
	t.Log(pos)

	if !pos.IsInsufficientMaterial() {
		t.Error("K+N vs K should be insufficient material")
	}
	if !pos.IsDraw() {
		t.Error("IsDraw should report true for insufficient material")
	}
}

func TestFiftyMoveRuleIsADraw(t *testing.T) {
	pos, err := ParseFEN("k7/8/K7/8/8/8/8/2R5 b - - 100 100")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Halfmove clock at 100:")
	t.Log(pos)

	if !pos.IsFiftyMoveDraw() {
		t.Error("a halfmove clock of 100 should trigger the fifty-move rule")
	}
	if !pos.IsDraw() {
		t.Error("IsDraw should report true once the fifty-move counter is reached")
	}
}

func TestStalemateIsNotCheck(t *testing.T) {
	pos, err := ParseFEN("k7/8/K7/8/8/8/1R6/8 b - - 0 1")
	if err != nil {
		t.Fatal("Error parsing FEN:", err)
	}

	t.Log("Stalemate position:")
	t.Log(pos)

	pos.UpdateCheckers()
	if pos.InCheck() {
		t.Error("the stalemated side must not be in check")
	}

	moves := pos.GenerateLegalMoves()
	if moves.Len() != 0 {
		t.Errorf("expected 0 legal moves, got %d", moves.Len())
	}
	if !pos.IsStalemate() {
		t.Error("expected IsStalemate to report true")
	}
	if pos.IsCheckmate() {
		t.Error("a stalemate position must not also report as checkmate")
	}
}
