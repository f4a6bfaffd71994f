package board

// seeValue is the centipawn value Static Exchange Evaluation swaps with,
// kept separate from PieceValue/PST so tuning the evaluator never shifts
// SEE-based move ordering or pruning decisions (spec.md 4.1).
var seeValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// SEE runs the standard swap-algorithm static exchange evaluation of a
// capture (or non-capture, where it degenerates to the pure gain of the
// move) on square m.To(), returning the net material result in centipawns
// from the mover's point of view assuming both sides always recapture
// with their cheapest attacker.
func (p *Position) SEE(m Move) int {
	from, to := m.From(), m.To()
	us := p.SideToMove
	them := us.Other()

	var captured PieceType
	if m.IsEnPassant() {
		captured = Pawn
	} else {
		captured = p.pieceAt[to].Type()
	}

	movedType := p.pieceAt[from].Type()
	if m.IsPromotion() {
		movedType = m.Promotion()
	}

	occupied := p.AllOccupied()
	var epCapturedSq Square
	if m.IsEnPassant() {
		epCapturedSq = NewSquare(from.Rank(), to.File())
		occupied &^= SquareBB(epCapturedSq)
	}
	occupied = (occupied &^ SquareBB(from)) | SquareBB(to)

	attackers := p.attackersToOccupancy(to, occupied)

	gain := make([]int, 0, 32)
	gain = append(gain, seeValue[captured])
	if m.IsPromotion() {
		gain[0] += seeValue[m.Promotion()] - seeValue[Pawn]
	}

	side := them
	attacker := movedType

	for {
		sideAttackers := attackers & p.colorMaskFor(side, occupied)
		sq, pt := p.leastValuableAttackerOcc(sideAttackers, side, occupied)
		if sq == NoSquare {
			break
		}
		gain = append(gain, seeValue[attacker]-gain[len(gain)-1])

		occupied &^= SquareBB(sq)
		attackers &^= SquareBB(sq)
		attackers |= p.discoveredAttackersAfter(sq, to, occupied)

		attacker = pt
		side = side.Other()
	}

	for i := len(gain) - 2; i >= 0; i-- {
		if -gain[i+1] < gain[i] {
			gain[i] = -gain[i+1]
		}
	}
	return gain[0]
}

// colorMaskFor returns the occupancy-consistent bitboard of side's own
// pieces; SEE mutates occupancy as the swap unwinds, so this can't just
// read Position.Colors directly once the first capture is simulated.
func (p *Position) colorMaskFor(c Color, occupied Bitboard) Bitboard {
	return p.Colors[c] & occupied
}

// attackersToOccupancy is AttackersTo but against a caller-supplied
// occupancy instead of the live board, needed since SEE removes pieces
// from the board one at a time without ever calling DoMove.
func (p *Position) attackersToOccupancy(sq Square, occupied Bitboard) Bitboard {
	return (pawnAttacksBB(Black, sq) & p.Pieces[White][Pawn] & occupied) |
		(pawnAttacksBB(White, sq) & p.Pieces[Black][Pawn] & occupied) |
		(KnightAttacks(sq) & (p.Pieces[White][Knight] | p.Pieces[Black][Knight]) & occupied) |
		(KingAttacks(sq) & (p.Pieces[White][King] | p.Pieces[Black][King]) & occupied) |
		(BishopAttacks(sq, occupied) & (p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]) & occupied) |
		(RookAttacks(sq, occupied) & (p.Pieces[White][Rook] | p.Pieces[Black][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]) & occupied)
}

func pawnAttacksBB(c Color, sq Square) Bitboard { return PawnAttacks(sq, c) }

func (p *Position) leastValuableAttackerOcc(attackers Bitboard, c Color, occupied Bitboard) (Square, PieceType) {
	for pt := Pawn; pt <= King; pt++ {
		bb := attackers & p.Pieces[c][pt] & occupied
		if bb != 0 {
			return bb.LSB(), pt
		}
	}
	return NoSquare, NoPieceType
}

// discoveredAttackersAfter returns any slider attacker on sq that is newly
// revealed once the piece on vacated is removed from occupied -- the
// X-ray re-detection step the swap algorithm needs whenever a capturer
// stood on the same ray as a friendly or enemy slider behind it.
func (p *Position) discoveredAttackersAfter(vacated, sq Square, occupied Bitboard) Bitboard {
	line := Line(vacated, sq)
	if line == 0 {
		return 0
	}
	return (BishopAttacks(sq, occupied) & (p.Pieces[White][Bishop] | p.Pieces[Black][Bishop] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]) & line) |
		(RookAttacks(sq, occupied) & (p.Pieces[White][Rook] | p.Pieces[Black][Rook] | p.Pieces[White][Queen] | p.Pieces[Black][Queen]) & line)
}

// SEECapture is a cheap boolean gate used by quiescence and move ordering:
// true if the capture m does not lose material under SEE.
func (p *Position) SEECapture(m Move) bool {
	return p.SEE(m) >= 0
}
