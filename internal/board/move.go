package board

import "fmt"

// Move packs a chess move into 16 bits: bits 0-5 are the origin square,
// bits 6-11 the destination square, and the top 4 bits one of the closed
// set of MoveType values (spec.md 3).
type Move uint16

// MoveType is the closed set of move kinds a Move can encode.
type MoveType uint8

const (
	Normal MoveType = iota
	EnPassant
	Castling
	PromoKnight
	PromoBishop
	PromoRook
	PromoQueen
)

// NoMove is the all-zero encoding: from=H1, to=H1, type=Normal. It never
// occurs as a legal move since a move can't start and end on one square.
const NoMove Move = 0

// NewMove builds a normal (non-promotion, non-special) move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(Normal)<<12
}

// NewTypedMove builds a move with an explicit MoveType.
func NewTypedMove(from, to Square, mt MoveType) Move {
	return Move(from) | Move(to)<<6 | Move(mt)<<12
}

// NewPromotion builds a promotion move for the given target piece type.
func NewPromotion(from, to Square, promo PieceType) Move {
	var mt MoveType
	switch promo {
	case Knight:
		mt = PromoKnight
	case Bishop:
		mt = PromoBishop
	case Rook:
		mt = PromoRook
	default:
		mt = PromoQueen
	}
	return NewTypedMove(from, to, mt)
}

// NewEnPassant builds an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return NewTypedMove(from, to, EnPassant)
}

// NewCastling builds a castling move, encoded as the king's from/to.
func NewCastling(from, to Square) Move {
	return NewTypedMove(from, to, Castling)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & 0x3F) }

// To returns the destination square.
func (m Move) To() Square { return Square((m >> 6) & 0x3F) }

// Type returns the move's MoveType.
func (m Move) Type() MoveType { return MoveType(m >> 12) }

// IsPromotion reports whether m promotes a pawn.
func (m Move) IsPromotion() bool { return m.Type() >= PromoKnight }

// IsCastling reports whether m is a castling move.
func (m Move) IsCastling() bool { return m.Type() == Castling }

// IsEnPassant reports whether m is an en passant capture.
func (m Move) IsEnPassant() bool { return m.Type() == EnPassant }

// Promotion returns the promotion target piece type; only valid when
// IsPromotion() is true.
func (m Move) Promotion() PieceType {
	switch m.Type() {
	case PromoKnight:
		return Knight
	case PromoBishop:
		return Bishop
	case PromoRook:
		return Rook
	default:
		return Queen
	}
}

// IsCapture reports whether m captures a piece on pos, including en
// passant.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !pos.IsEmpty(m.To())
}

// IsQuiet reports whether m is neither a capture nor a promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String renders the UCI long-algebraic form, e.g. "e2e4" or "e7e8q"
// (spec.md 6). Castling renders as the king's from/to, e.g. "e1g1".
func (m Move) String() string {
	if m == NoMove {
		return "none"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(promoChars[m.Promotion()])
	}
	return s
}

// ParseMove parses a UCI long-algebraic move string against pos to
// recover its MoveType (promotion, en passant, castling all need the
// position to disambiguate from plain from/to squares).
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("board: invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("board: invalid promotion piece %q", s[4:])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("board: no piece on %s", from)
	}
	if piece.Type() == King && abs(int(from)-int(to)) == 2 {
		return NewCastling(from, to), nil
	}
	if piece.Type() == Pawn && to == pos.State.EpSquare && to != NoSquare {
		return NewEnPassant(from, to), nil
	}
	return NewMove(from, to), nil
}

// MoveList is a fixed-capacity move buffer sized for the worst-case legal
// move count, avoiding per-node allocation during search.
type MoveList struct {
	moves [256]Move
	count int
}

func (ml *MoveList) Add(m Move)          { ml.moves[ml.count] = m; ml.count++ }
func (ml *MoveList) Len() int            { return ml.count }
func (ml *MoveList) Get(i int) Move      { return ml.moves[i] }
func (ml *MoveList) Set(i int, m Move)   { ml.moves[i] = m }
func (ml *MoveList) Swap(i, j int)       { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }
func (ml *MoveList) Clear()              { ml.count = 0 }
func (ml *MoveList) Slice() []Move       { return ml.moves[:ml.count] }

// Contains reports whether m appears in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

