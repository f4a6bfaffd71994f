// Package board implements bitboard-based chess position representation,
// legal move generation, and static exchange evaluation.
package board

import "fmt"

// Square represents one of the 64 board squares, plus the sentinel NoSquare.
//
// Numbering follows the original Delocto engine: H1=0, G1=1, ..., A1=7,
// H2=8, ..., A8=63. File index 0 is the h-file and file index 7 is the
// a-file -- the reverse of the usual A1=0 little-endian-rank-file layout.
// Rank = sq >> 3; file = sq & 7.
type Square uint8

const (
	H1 Square = iota
	G1
	F1
	E1
	D1
	C1
	B1
	A1
	H2
	G2
	F2
	E2
	D2
	C2
	B2
	A2
	H3
	G3
	F3
	E3
	D3
	C3
	B3
	A3
	H4
	G4
	F4
	E4
	D4
	C4
	B4
	A4
	H5
	G5
	F5
	E5
	D5
	C5
	B5
	A5
	H6
	G6
	F6
	E6
	D6
	C6
	B6
	A6
	H7
	G7
	F7
	E7
	D7
	C7
	B7
	A7
	H8
	G8
	F8
	E8
	D8
	C8
	B8
	A8

	NoSquare Square = 64
)

// Rank returns the rank (0=rank 1 .. 7=rank 8).
func (sq Square) Rank() int { return int(sq) >> 3 }

// File returns the file index with 0=h-file .. 7=a-file.
func (sq Square) File() int { return int(sq) & 7 }

// IsValid reports whether sq is one of the 64 board squares.
func (sq Square) IsValid() bool { return sq < NoSquare }

// NewSquare builds a square from a rank (0..7) and a file index where
// 0 is the h-file and 7 is the a-file.
func NewSquare(rank, file int) Square {
	return Square(rank*8 + file)
}

// fileLetter converts the internal file index (0=h..7=a) to the
// conventional file letter ('a'..'h').
func fileLetter(file int) byte {
	return byte('a' + (7 - file))
}

// fileIndexFromLetter converts a conventional file letter ('a'..'h') to
// the internal file index (0=h..7=a).
func fileIndexFromLetter(c byte) int {
	return 7 - int(c-'a')
}

// String renders the square in algebraic notation, e.g. "e4". NoSquare and
// any out-of-range value render as "-".
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%d", fileLetter(sq.File()), sq.Rank()+1)
}

// ParseSquare parses algebraic notation ("e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("board: invalid square %q", s)
	}
	file := fileIndexFromLetter(s[0])
	rank := int(s[1] - '1')
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("board: invalid square %q", s)
	}
	return NewSquare(rank, file), nil
}

// Mirror flips a square vertically (rank r <-> rank 7-r), used to test
// evaluation side-symmetry (spec.md 8.6).
func (sq Square) Mirror() Square {
	return Square(int(sq) ^ 56)
}

// RelativeRank returns the rank as seen from color c's side (0 = own back
// rank, 7 = promotion rank).
func (sq Square) RelativeRank(c Color) int {
	if c == White {
		return sq.Rank()
	}
	return 7 - sq.Rank()
}

// ChebyshevDistance returns max(|file delta|, |rank delta|) between two
// squares -- used for king-distance scaling in evaluation and the
// KING_DISTANCE table of spec.md 4.1.
func ChebyshevDistance(a, b Square) int {
	df := a.File() - b.File()
	if df < 0 {
		df = -df
	}
	dr := a.Rank() - b.Rank()
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}
