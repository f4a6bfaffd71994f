package board

import "testing"

// TestIsPseudoLegalRejectsEmptyOrigin covers the exact scenario a stale
// killer/countermove/TT move hits: the from-square held a piece in the
// position that recorded the move, but is empty in the position replaying
// it (e.g. a knight that has since moved away from g1).
func TestIsPseudoLegalRejectsEmptyOrigin(t *testing.T) {
	pos := NewPosition()
	// Vacate g1 without touching anything else relevant.
	pos.removePiece(G1)

	m := NewMove(G1, F3)
	if pos.IsPseudoLegal(m) {
		t.Error("a move whose origin square is empty must not be pseudo-legal")
	}
}

func TestIsPseudoLegalRejectsWrongSideToMove(t *testing.T) {
	pos := NewPosition()
	// Black to move, but this move's origin holds a white piece.
	pos.SideToMove = Black

	m := NewMove(E2, E4)
	if pos.IsPseudoLegal(m) {
		t.Error("a move whose piece does not belong to the side to move must not be pseudo-legal")
	}
}

func TestIsPseudoLegalRejectsOwnOccupiedDestination(t *testing.T) {
	pos := NewPosition()

	m := NewMove(A1, A2) // a2 is occupied by White's own pawn
	if pos.IsPseudoLegal(m) {
		t.Error("a move onto a square occupied by the mover's own piece must not be pseudo-legal")
	}
}

func TestIsPseudoLegalAcceptsOrdinaryMove(t *testing.T) {
	pos := NewPosition()

	m := NewMove(E2, E4)
	if !pos.IsPseudoLegal(m) {
		t.Error("the ordinary opening move e2e4 should be pseudo-legal")
	}
}

func TestIsPseudoLegalRejectsGeometryMismatch(t *testing.T) {
	pos := NewPosition()

	// A rook-shaped move encoded as if g1's knight made it.
	m := NewMove(G1, G4)
	if pos.IsPseudoLegal(m) {
		t.Error("a move whose geometry does not match the piece type must not be pseudo-legal")
	}
}

func TestIsPseudoLegalPawnRejectsBlockedDoublePush(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/4n3/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	// e2e4 is blocked by the knight sitting on e4.
	m := NewMove(E2, E4)
	if pos.IsPseudoLegal(m) {
		t.Error("a double push through/onto an occupied square must not be pseudo-legal")
	}
}

func TestIsPseudoLegalRejectsMovesThatDontResolveCheck(t *testing.T) {
	// White king on e1 in check from a rook on e8; a move that neither
	// blocks, captures the checker, nor moves the king must be rejected.
	pos, err := ParseFEN("k3r3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	pos.UpdateCheckers()

	m := NewMove(D1, D2) // queen move that ignores the check entirely
	if pos.IsPseudoLegal(m) {
		t.Error("a move that ignores the check must not be pseudo-legal")
	}
}

func TestIsPseudoLegalRejectsStaleCastling(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	// Clear every castling right while leaving king and rooks in place --
	// simulate a stale castling move recorded while the right was held.
	pos.State.CastlingRights = NoCastling

	m := NewCastling(E1, G1)
	if pos.IsPseudoLegal(m) {
		t.Error("castling without the right held must not be pseudo-legal")
	}
}
