package board

// GenCategory selects which subset of pseudo-legal moves a generator
// produces (spec.md 4.1: QUIETS, CAPTURES, EVASIONS, ALL).
type GenCategory int

const (
	GenAll GenCategory = iota
	GenCaptures
	GenQuiets
	GenEvasions
)

// addPromotions appends all four promotion moves for a from/to pair.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// GeneratePseudoLegal fills ml with every pseudo-legal move of category
// cat for the side to move. Pseudo-legal here means "geometrically legal
// and respects piece occupancy", not "doesn't leave the king in check" --
// callers filter with IsLegal or use GenerateLegalMoves.
func (p *Position) GeneratePseudoLegal(ml *MoveList, cat GenCategory) {
	if cat == GenEvasions {
		p.generateEvasions(ml)
		return
	}

	us := p.SideToMove
	them := us.Other()
	occupied := p.AllOccupied()
	enemies := p.Colors[them]

	var targetMask Bitboard
	switch cat {
	case GenCaptures:
		targetMask = enemies
	case GenQuiets:
		targetMask = ^occupied
	default:
		targetMask = ^p.Colors[us]
	}

	p.generatePawnMoves(ml, us, occupied, enemies, cat)

	knights := p.Pieces[us][Knight]
	for knights != 0 {
		from := knights.PopLSB()
		attacks := KnightAttacks(from) & targetMask
		attacks.ForEach(func(to Square) { ml.Add(NewMove(from, to)) })
	}
	bishops := p.Pieces[us][Bishop]
	for bishops != 0 {
		from := bishops.PopLSB()
		attacks := BishopAttacks(from, occupied) & targetMask
		attacks.ForEach(func(to Square) { ml.Add(NewMove(from, to)) })
	}
	rooks := p.Pieces[us][Rook]
	for rooks != 0 {
		from := rooks.PopLSB()
		attacks := RookAttacks(from, occupied) & targetMask
		attacks.ForEach(func(to Square) { ml.Add(NewMove(from, to)) })
	}
	queens := p.Pieces[us][Queen]
	for queens != 0 {
		from := queens.PopLSB()
		attacks := QueenAttacks(from, occupied) & targetMask
		attacks.ForEach(func(to Square) { ml.Add(NewMove(from, to)) })
	}

	from := p.KingSquare(us)
	kAttacks := KingAttacks(from) & targetMask
	kAttacks.ForEach(func(to Square) { ml.Add(NewMove(from, to)) })

	if cat == GenAll || cat == GenQuiets {
		p.generateCastlingMoves(ml, us)
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, occupied, enemies Bitboard, cat GenCategory) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDelta int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDelta = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDelta = -8
	}

	if cat == GenAll || cat == GenQuiets {
		nonPromo := push1 &^ promotionRank
		nonPromo.ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta), to)) })
		push2.ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-2*pushDelta), to)) })
	}

	if cat == GenAll || cat == GenCaptures {
		nonPromoL := attackL &^ promotionRank
		nonPromoL.ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta-1), to)) })
		nonPromoR := attackR &^ promotionRank
		nonPromoR.ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta+1), to)) })

		if p.State.EpSquare != NoSquare {
			epBB := SquareBB(p.State.EpSquare)
			var epAttackers Bitboard
			if us == White {
				epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
			} else {
				epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
			}
			epAttackers.ForEach(func(from Square) { ml.Add(NewEnPassant(from, p.State.EpSquare)) })
		}
	}

	// Promotions count as captures in spec.md's staged ordering regardless
	// of whether the destination is occupied, since they're never quiet.
	if cat == GenAll || cat == GenCaptures {
		promoPush := push1 & promotionRank
		promoPush.ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta), to) })
		promoL := attackL & promotionRank
		promoL.ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta-1), to) })
		promoR := attackR & promotionRank
		promoR.ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta+1), to) })
	}
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	occ := p.AllOccupied()

	if us == White {
		if p.State.CastlingRights.CanCastle(White, true) &&
			occ&(SquareBB(F1)|SquareBB(G1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
			ml.Add(NewCastling(E1, G1))
		}
		if p.State.CastlingRights.CanCastle(White, false) &&
			occ&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 &&
			!p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
			ml.Add(NewCastling(E1, C1))
		}
	} else {
		if p.State.CastlingRights.CanCastle(Black, true) &&
			occ&(SquareBB(F8)|SquareBB(G8)) == 0 &&
			!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
			ml.Add(NewCastling(E8, G8))
		}
		if p.State.CastlingRights.CanCastle(Black, false) &&
			occ&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 &&
			!p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
			ml.Add(NewCastling(E8, C8))
		}
	}
}

// generateEvasions generates pseudo-legal check evasions: king moves off
// the attacked ring, captures of the lone checker, or interpositions on a
// single slider checker's ray (spec.md 4.1).
func (p *Position) generateEvasions(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare(us)
	checkers := p.State.Checkers
	occupied := p.AllOccupied()

	kingMoves := KingAttacks(ksq) &^ p.Colors[us]
	occWithoutKing := occupied &^ SquareBB(ksq)
	kingMoves.ForEach(func(to Square) {
		if p.AttackersByColor(to, them, occWithoutKing) == 0 {
			ml.Add(NewMove(ksq, to))
		}
	})

	if checkers.Several() {
		return // double check: only king moves are legal
	}

	checkerSq := checkers.LSB()
	target := checkers | Between(checkerSq, ksq)

	pawns := p.Pieces[us][Pawn]
	empty := ^occupied
	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	var pushDelta int
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & p.Colors[them]
		attackR = pawns.NorthEast() & p.Colors[them]
		promotionRank = Rank8
		pushDelta = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & p.Colors[them]
		attackR = pawns.SouthEast() & p.Colors[them]
		promotionRank = Rank1
		pushDelta = -8
	}
	(push1 & target &^ promotionRank).ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta), to)) })
	(push2 & target).ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-2*pushDelta), to)) })
	(attackL & target &^ promotionRank).ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta-1), to)) })
	(attackR & target &^ promotionRank).ForEach(func(to Square) { ml.Add(NewMove(Square(int(to)-pushDelta+1), to)) })
	(push1 & target & promotionRank).ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta), to) })
	(attackL & target & promotionRank).ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta-1), to) })
	(attackR & target & promotionRank).ForEach(func(to Square) { addPromotions(ml, Square(int(to)-pushDelta+1), to) })

	if p.State.EpSquare != NoSquare && (target.IsSet(p.State.EpSquare) || checkerSq == captureSquareBehind(p.State.EpSquare, us)) {
		epBB := SquareBB(p.State.EpSquare)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		epAttackers.ForEach(func(from Square) { ml.Add(NewEnPassant(from, p.State.EpSquare)) })
	}

	addEvasionsFor := func(bb Bitboard, attacksFn func(Square) Bitboard) {
		bb.ForEach(func(from Square) {
			(attacksFn(from) & target).ForEach(func(to Square) { ml.Add(NewMove(from, to)) })
		})
	}
	addEvasionsFor(p.Pieces[us][Knight], func(sq Square) Bitboard { return KnightAttacks(sq) })
	addEvasionsFor(p.Pieces[us][Bishop], func(sq Square) Bitboard { return BishopAttacks(sq, occupied) })
	addEvasionsFor(p.Pieces[us][Rook], func(sq Square) Bitboard { return RookAttacks(sq, occupied) })
	addEvasionsFor(p.Pieces[us][Queen], func(sq Square) Bitboard { return QueenAttacks(sq, occupied) })
}

// captureSquareBehind returns the square of the pawn that just made the
// double push landing on the ep square (i.e. the pawn captured by an en
// passant capture to epSq), from the perspective of the side to move us.
func captureSquareBehind(epSq Square, us Color) Square {
	if us == White {
		return Square(int(epSq) - 8)
	}
	return Square(int(epSq) + 8)
}

// IsLegal reports whether a pseudo-legal move m leaves the mover's own
// king safe, using the cheap king-blockers test where possible and
// falling back to make/unmake for en passant's rare discovered-check case.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	ksq := p.KingSquare(us)

	if from == ksq {
		if m.IsCastling() {
			// The king's start, crossing and destination squares must all
			// be safe; (from+to)/2 is the square it crosses.
			for _, sq := range [3]Square{from, (from + to) / 2, to} {
				if p.IsSquareAttacked(sq, them) {
					return false
				}
			}
			return true
		}
		occ := p.AllOccupied() &^ SquareBB(from)
		return p.AttackersByColor(to, them, occ) == 0
	}

	if m.IsEnPassant() {
		if p.DoMove(m) {
			p.UndoMove(m)
			return true
		}
		return false
	}

	if p.State.KingBlockers[us]&SquareBB(from) == 0 {
		return true
	}
	return Aligned(from, to, ksq)
}

// IsPseudoLegal is the cheap sanity gate spec.md 4.3 calls `is_valid`: it
// accepts any 16-bit Move value (a TT move, killer, or countermove reused
// from a materially different sibling position) and reports whether it
// even describes a geometrically sound move of a side-to-move piece in
// this exact position, without yet checking king safety. Callers must
// still run IsLegal afterward; IsLegal alone assumes its argument was
// generated against the current position and will happily accept
// nonsense (e.g. a move whose origin square is empty) that corrupts board
// state once DoMove acts on it.
func (p *Position) IsPseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	from, to := m.From(), m.To()
	if from == to {
		return false
	}

	us := p.SideToMove
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != us {
		return false
	}
	if !p.IsEmpty(to) && p.PieceAt(to).Color() == us {
		return false
	}

	if m.IsCastling() {
		return p.isCastlingValid(m)
	}

	occupied := p.AllOccupied()
	switch piece.Type() {
	case Pawn:
		if !p.isPawnPseudoLegal(m, us) {
			return false
		}
	case Knight:
		if m.IsPromotion() || m.IsEnPassant() || KnightAttacks(from)&SquareBB(to) == 0 {
			return false
		}
	case Bishop:
		if m.IsPromotion() || m.IsEnPassant() || BishopAttacks(from, occupied)&SquareBB(to) == 0 {
			return false
		}
	case Rook:
		if m.IsPromotion() || m.IsEnPassant() || RookAttacks(from, occupied)&SquareBB(to) == 0 {
			return false
		}
	case Queen:
		if m.IsPromotion() || m.IsEnPassant() || QueenAttacks(from, occupied)&SquareBB(to) == 0 {
			return false
		}
	case King:
		if m.IsPromotion() || m.IsEnPassant() || KingAttacks(from)&SquareBB(to) == 0 {
			return false
		}
	}

	if p.InCheck() && !p.isCheckResolving(m) {
		return false
	}
	return true
}

// isPawnPseudoLegal mirrors generatePawnMoves' own push/push2/attack
// geometry for a single from-square, so a pawn move only ever validates
// here if the real generator could have produced it.
func (p *Position) isPawnPseudoLegal(m Move, us Color) bool {
	from, to := m.From(), m.To()
	fromBB := SquareBB(from)
	occupied := p.AllOccupied()

	var push1, push2, attackL, attackR Bitboard
	var promotionRank Bitboard
	if us == White {
		push1 = fromBB.North() &^ occupied
		push2 = (push1 & Rank3).North() &^ occupied
		attackL = fromBB.NorthWest()
		attackR = fromBB.NorthEast()
		promotionRank = Rank8
	} else {
		push1 = fromBB.South() &^ occupied
		push2 = (push1 & Rank6).South() &^ occupied
		attackL = fromBB.SouthWest()
		attackR = fromBB.SouthEast()
		promotionRank = Rank1
	}

	toBB := SquareBB(to)
	if m.IsPromotion() != (toBB&promotionRank != 0) {
		return false
	}

	if m.IsEnPassant() {
		return to == p.State.EpSquare && (attackL|attackR)&toBB != 0
	}
	if push1&toBB != 0 || push2&toBB != 0 {
		return true
	}
	if (attackL|attackR)&toBB != 0 {
		return !p.IsEmpty(to) && p.PieceAt(to).Color() == us.Other()
	}
	return false
}

// isCastlingValid is spec.md 4.3's `is_castling_valid`: rights held, path
// empty, and not currently in check. The through-square-attacked test is
// legality's job, not validity's (spec.md 4.1).
func (p *Position) isCastlingValid(m Move) bool {
	if p.InCheck() {
		return false
	}
	us := p.SideToMove
	from, to := m.From(), m.To()
	occ := p.AllOccupied()

	if us == White {
		if from != E1 {
			return false
		}
		switch to {
		case G1:
			return p.State.CastlingRights.CanCastle(White, true) && occ&(SquareBB(F1)|SquareBB(G1)) == 0
		case C1:
			return p.State.CastlingRights.CanCastle(White, false) && occ&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0
		default:
			return false
		}
	}
	if from != E8 {
		return false
	}
	switch to {
	case G8:
		return p.State.CastlingRights.CanCastle(Black, true) && occ&(SquareBB(F8)|SquareBB(G8)) == 0
	case C8:
		return p.State.CastlingRights.CanCastle(Black, false) && occ&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0
	default:
		return false
	}
}

// isCheckResolving is spec.md 4.3's in-check validity clause: the target
// must be a king move, or a capture/block of the unique checker. Double
// check (checkers.Several()) only a king move can resolve.
func (p *Position) isCheckResolving(m Move) bool {
	us := p.SideToMove
	ksq := p.KingSquare(us)
	if m.From() == ksq {
		return true
	}

	checkers := p.State.Checkers
	if checkers.Several() {
		return false
	}

	checkerSq := checkers.LSB()
	target := checkers | Between(checkerSq, ksq)

	if m.IsEnPassant() {
		captured := captureSquareBehind(m.To(), us)
		return target.IsSet(captured) || target.IsSet(m.To())
	}
	return target.IsSet(m.To())
}

// GenerateLegalMoves returns every legal move in the current position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := &MoveList{}
	if p.InCheck() {
		p.GeneratePseudoLegal(ml, GenEvasions)
	} else {
		p.GeneratePseudoLegal(ml, GenAll)
	}
	out := &MoveList{}
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			out.Add(ml.Get(i))
		}
	}
	return out
}

// HasLegalMoves reports whether the side to move has at least one legal
// move, short-circuiting as soon as one is found.
func (p *Position) HasLegalMoves() bool {
	ml := &MoveList{}
	if p.InCheck() {
		p.GeneratePseudoLegal(ml, GenEvasions)
	} else {
		p.GeneratePseudoLegal(ml, GenAll)
	}
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// GivesCheck reports whether playing m against the current position would
// check the opponent, without actually making the move. It covers direct
// checks (the moved piece attacks the enemy king from its destination)
// and discovered checks (the moved piece was a blocker on a line to the
// enemy king); castling and en passant fall back to make/unmake since
// their discovered-check geometry (rook's new square, captured pawn)
// isn't covered by the direct/discovered cases.
func (p *Position) GivesCheck(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	theirKing := p.KingSquare(them)

	if m.IsCastling() || m.IsEnPassant() {
		if !p.DoMove(m) {
			return false
		}
		check := p.State.Checkers != 0
		p.UndoMove(m)
		return check
	}

	pt := p.pieceAt[from].Type()
	if m.IsPromotion() {
		pt = m.Promotion()
	}
	occAfter := (p.AllOccupied() &^ SquareBB(from)) | SquareBB(to)

	var direct Bitboard
	switch pt {
	case Pawn:
		direct = PawnAttacks(to, us)
	case Knight:
		direct = KnightAttacks(to)
	case Bishop:
		direct = BishopAttacks(to, occAfter)
	case Rook:
		direct = RookAttacks(to, occAfter)
	case Queen:
		direct = QueenAttacks(to, occAfter)
	case King:
		direct = 0
	}
	if direct&SquareBB(theirKing) != 0 {
		return true
	}

	if p.State.KingBlockers[them]&SquareBB(from) != 0 && !Aligned(from, to, theirKing) {
		return true
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool { return p.InCheck() && !p.HasLegalMoves() }

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool { return !p.InCheck() && !p.HasLegalMoves() }
