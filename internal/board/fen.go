package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a fresh Position with no undo history.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("board: invalid FEN, need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{FullMoveNumber: 1}
	pos.State.EpSquare = NoSquare
	for i := range pos.typeAt {
		pos.typeAt[i] = NoPieceType
		pos.pieceAt[i] = NoPiece
	}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("board: invalid side to move %q", parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("board: invalid en passant square %q", parts[3])
		}
		pos.State.EpSquare = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("board: invalid halfmove clock %q", parts[4])
		}
		pos.State.HalfmoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("board: invalid fullmove number %q", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	if pos.SideToMove == Black {
		pos.State.HashKey ^= ZobristSide(Black)
	}
	pos.State.HashKey ^= ZobristCastling(pos.State.CastlingRights)
	if pos.State.EpSquare != NoSquare {
		pos.State.HashKey ^= ZobristEP(pos.State.EpSquare.File())
	}

	if err := pos.Validate(); err != nil {
		return nil, err
	}

	pos.refreshDerivedState()
	return pos, nil
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("board: invalid piece placement, need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("board: too many squares on rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return fmt.Errorf("board: invalid piece character %q", c)
			}
			sq := NewSquare(rank, 7-file)
			pos.addPiece(piece, sq)
			file++
		}
		if file != 8 {
			return fmt.Errorf("board: wrong number of squares on rank %d: got %d", rank+1, file)
		}
	}
	return nil
}

func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		pos.State.CastlingRights = NoCastling
		return nil
	}
	for _, c := range castling {
		switch c {
		case 'K':
			pos.State.CastlingRights |= WhiteKingSideCastle
		case 'Q':
			pos.State.CastlingRights |= WhiteQueenSideCastle
		case 'k':
			pos.State.CastlingRights |= BlackKingSideCastle
		case 'q':
			pos.State.CastlingRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("board: invalid castling character %q", c)
		}
	}
	return nil
}

// ToFEN renders the position's current state as a FEN string.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 7; file >= 0; file-- {
			sq := NewSquare(rank, file)
			piece := p.pieceAt[sq]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.State.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.State.EpSquare.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.State.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// ComputeHashKey recomputes the Zobrist hash key from scratch, used to
// cross-check the incrementally maintained State.HashKey in tests.
func (p *Position) ComputeHashKey() uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= ZobristPiece(c, pt, sq)
			}
		}
	}
	if p.SideToMove == Black {
		hash ^= ZobristSide(Black)
	}
	hash ^= ZobristCastling(p.State.CastlingRights)
	if p.State.EpSquare != NoSquare {
		hash ^= ZobristEP(p.State.EpSquare.File())
	}
	return hash
}

// ComputePawnKey recomputes the pawn-only Zobrist key from scratch.
func (p *Position) ComputePawnKey() uint64 {
	var key uint64
	for c := White; c <= Black; c++ {
		bb := p.Pieces[c][Pawn]
		for bb != 0 {
			sq := bb.PopLSB()
			key ^= ZobristPawn(c, sq)
		}
	}
	return key
}
