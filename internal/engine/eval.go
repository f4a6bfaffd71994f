// Package engine implements the search and evaluation core of the
// Delocto chess engine.
package engine

import "github.com/moterink/delocto/internal/board"

// Mobility weights per piece type, (mg, eg) pairs indexed by PieceType.
// Pawns and kings don't get a mobility term.
var mobilityWeight = [6]board.Score{
	{},
	board.S(4, 3),
	board.S(5, 4),
	board.S(2, 4),
	board.S(1, 2),
	{},
}

const (
	bishopPairBonusMG = 25
	bishopPairBonusEG = 50
)

var rookOpenFile = board.S(20, 25)
var rookSemiOpenFile = board.S(10, 15)
var rookOnSeventh = board.S(15, 25)

var doubledPawnPenalty = board.S(-15, -20)
var isolatedPawnPenalty = board.S(-20, -25)
var backwardPawnPenalty = board.S(-15, -10)
var connectedPawnBonus = board.S(8, 5)
var phalanxPawnBonus = board.S(6, 4)

// passedPawnBonus is indexed by the pawn's relative rank (0 = own back
// rank, 7 = promotion rank); rank 0 never holds a pawn and a passer still
// on rank 1 earns no rank bonus.
var passedPawnBonus = [8]board.Score{
	board.S(0, 0), board.S(0, 0), board.S(10, 20), board.S(20, 35),
	board.S(40, 60), board.S(70, 100), board.S(120, 160), board.S(0, 0),
}

var passedPawnProtected = board.S(0, 15)
var passedPawnConnected = board.S(5, 10)
var passedPawnPathClear = board.S(0, 12)
var unstoppablePassedPawnBonus = board.S(0, 400)

const tempoBonus = 10

const (
	hangingPiecePenaltyMG = -40
	hangingPiecePenaltyEG = -30
	threatByPawnMG        = 25
	threatByPawnEG        = 15
	threatByMinorMG       = 15
	threatByMinorEG       = 10
	loosePawnPenaltyMG    = -6
	loosePawnPenaltyEG    = -10
	pawnPushThreatMG      = 12
	pawnPushThreatEG      = 18
	kingAttackWeakMG      = 10
	kingAttackWeakEG      = 6
	safeQueenAttackMG     = 18
	safeQueenAttackEG     = 22
)

const (
	knightOutpostMG          = 20
	knightOutpostEG          = 10
	knightOutpostProtectedMG = 32
	knightOutpostProtectedEG = 16
	bishopOutpostMG          = 15
	bishopOutpostEG          = 8
)

const (
	trappedBishopPenaltyMG = -80
	trappedBishopPenaltyEG = -50
	trappedRookPenaltyMG   = -50
	trappedRookPenaltyEG   = -25
	pinnedQueenPenaltyMG   = -25
	pinnedQueenPenaltyEG   = -35
)

const (
	shelterPawnBonus      = 12
	shelterMissingPenalty = -10
	stormPawnPenalty      = -14
)

// attackWeight scales the king-danger accumulator per attacking piece
// type; index NoPieceType is never read.
var attackWeight = [6]int{0, 20, 20, 40, 80, 0}

// kingDangerMG/EG convert the accumulated attack-unit count into the
// centipawn penalty, matching the two-curve shelter/storm shape spec.md
// 4.4 specifies directly: mg grows quadratically, eg only linearly,
// since a mating attack and a king stuck in the open are different
// threats at different phases.
func kingDangerMG(units int) int {
	if units <= 0 {
		return 0
	}
	return (units * units) / 2048
}

func kingDangerEG(units int) int {
	if units <= 0 {
		return 0
	}
	return units / 16
}

// Eval holds the per-worker caches used while scoring a position; one
// instance lives on each search worker (SPEC_FULL.md C4/C8), never shared.
type Eval struct {
	pawns    *PawnTable
	material *MaterialTable
}

// NewEval builds the per-worker evaluation caches.
func NewEval(pawnHashMB, materialHashMB int) *Eval {
	return &Eval{
		pawns:    NewPawnTable(pawnHashMB),
		material: NewMaterialTable(materialHashMB),
	}
}

func (e *Eval) Clear() {
	e.pawns.Clear()
	e.material.Clear()
}

// Evaluate scores pos from the side-to-move's point of view, in
// centipawns (spec.md 4.4). Positive favors the side to move.
func (e *Eval) Evaluate(pos *board.Position) int {
	score := pos.State.Material[board.White].Sub(pos.State.Material[board.Black])
	score = score.Add(pos.State.PST[board.White]).Add(pos.State.PST[board.Black])

	score = score.Add(e.imbalance(pos))
	score = score.Add(e.mobilityAndKingSafety(pos))
	score = score.Add(e.outposts(pos))
	score = score.Add(e.trappedPieces(pos))

	pawnMG, pawnEG, passed := e.pawnStructure(pos)
	score = score.Add(board.S(int32(pawnMG), int32(pawnEG)))
	score = score.Add(e.passedPawns(pos, passed))

	score = score.Add(e.threats(pos))

	phase := pos.Phase()
	total := (score.MG*int32(256-phase) + score.EG*int32(phase)) / 256

	result := int(total)
	if pos.SideToMove == board.Black {
		result = -result
	}
	result += tempoBonus
	return result
}

// imbalance folds the bishop pair and a quadratic per-piece-pair
// interaction matrix into one (mg, eg) term, cached per material key.
// Each off-diagonal entry in pieceInteraction[ownPt][otherPt] scales how
// many of our own pt combine with how many of the opponent's otherPt --
// e.g. a knight is worth more when the opponent still has many pawns to
// block with (a closed position favors the knight). The bishop pair is a
// flat bonus outside this table.
var pieceInteraction = [6][6]int32{
	// indexed by (our piece, their piece): Pawn, Knight, Bishop, Rook, Queen unused on diagonal
	board.Pawn:   {0, 0, 0, 0, 0, 0},
	board.Knight: {2, 0, 0, 0, 0, 0},
	board.Bishop: {0, 0, 0, 0, 0, 0},
	board.Rook:   {-2, 0, 0, 0, 0, 0},
	board.Queen:  {0, 0, 0, 0, 0, 0},
}

func (e *Eval) imbalance(pos *board.Position) board.Score {
	if entry, ok := e.material.Probe(pos.State.MaterialKey); ok {
		return board.S(int32(entry.MgScore), int32(entry.EgScore))
	}

	var mg, eg int32
	for _, c := range [2]board.Color{board.White, board.Black} {
		them := c.Other()
		sign := int32(1)
		if c == board.Black {
			sign = -1
		}
		if pos.PieceCount[c][board.Bishop] >= 2 {
			mg += sign * bishopPairBonusMG
			eg += sign * bishopPairBonusEG
		}

		// Quadratic interaction: for every (our piece type, their pawn
		// count) pair with a nonzero coefficient, scale by how many of
		// our pieces of that type are on the board -- a knight gains
		// and a rook loses value the more pawns the opponent keeps.
		theirPawns := int32(pos.PieceCount[them][board.Pawn])
		for pt := board.Knight; pt <= board.Queen; pt++ {
			coeff := pieceInteraction[pt][board.Pawn]
			if coeff == 0 {
				continue
			}
			count := int32(pos.PieceCount[c][pt])
			term := sign * coeff * count * (theirPawns - 5)
			mg += term
			eg += term
		}
	}

	e.material.Store(pos.State.MaterialKey, pos.Phase(), int(mg), int(eg))
	return board.S(mg, eg)
}

// mobilityAndKingSafety walks every piece once, tallying mobility and the
// king-danger accumulator together since both need the same attack sets,
// then folds in the shelter/storm pawn-shield term per side.
func (e *Eval) mobilityAndKingSafety(pos *board.Position) board.Score {
	occ := pos.AllOccupied()
	var score board.Score
	var danger [2]int

	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		theirKingSq := pos.KingSquare(them)
		theirKingRing := board.KingRingMask(them, theirKingSq)
		ourPieces := pos.Colors[us]
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}

		for pt := board.Knight; pt <= board.Queen; pt++ {
			bb := pos.Pieces[us][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				var attacks board.Bitboard
				switch pt {
				case board.Knight:
					attacks = board.KnightAttacks(sq)
				case board.Bishop:
					attacks = board.BishopAttacks(sq, occ)
				case board.Rook:
					attacks = board.RookAttacks(sq, occ)
				case board.Queen:
					attacks = board.QueenAttacks(sq, occ)
				}

				mobile := attacks &^ ourPieces
				w := mobilityWeight[pt]
				score.MG += sign * w.MG * int32(mobile.PopCount())
				score.EG += sign * w.EG * int32(mobile.PopCount())

				if ring := attacks & theirKingRing; ring != 0 {
					danger[us] += attackWeight[pt] * ring.PopCount()
				}

				if pt == board.Rook {
					file := board.FileMask[sq.File()]
					if file&(pos.Pieces[us][board.Pawn]|pos.Pieces[them][board.Pawn]) == 0 {
						score.MG += sign * rookOpenFile.MG
						score.EG += sign * rookOpenFile.EG
					} else if file&pos.Pieces[us][board.Pawn] == 0 {
						score.MG += sign * rookSemiOpenFile.MG
						score.EG += sign * rookSemiOpenFile.EG
					}
					if sq.RelativeRank(us) == 6 {
						score.MG += sign * rookOnSeventh.MG
						score.EG += sign * rookOnSeventh.EG
					}
				}
			}
		}

		shelterMG := e.shelterStorm(pos, us)
		score.MG += sign * int32(shelterMG)
	}

	score.MG += int32(kingDangerMG(danger[board.Black])) - int32(kingDangerMG(danger[board.White]))
	score.EG += int32(kingDangerEG(danger[board.Black])) - int32(kingDangerEG(danger[board.White]))
	return score
}

// shelterStorm scores the pawn shield directly in front of us's king: for
// each of the king's own and adjacent files, a bonus if an own pawn stands
// on that file within the shelter span or a penalty if none does, plus a
// penalty if an enemy pawn has already advanced into that same span.
func (e *Eval) shelterStorm(pos *board.Position, us board.Color) int {
	them := us.Other()
	kingSq := pos.KingSquare(us)
	span := board.KingShelterSpan(us, kingSq)
	ourPawns := pos.Pieces[us][board.Pawn]
	theirPawns := pos.Pieces[them][board.Pawn]

	total := 0
	kf := kingSq.File()
	for f := kf - 1; f <= kf+1; f++ {
		if f < 0 || f > 7 {
			continue
		}
		fileMask := board.FileMask[f]
		if fileMask&span&ourPawns != 0 {
			total += shelterPawnBonus
		} else {
			total += shelterMissingPenalty
		}
		if fileMask&span&theirPawns != 0 {
			total += stormPawnPenalty
		}
	}
	return total
}

// outposts rewards a knight or bishop sitting on a square no enemy pawn
// can ever challenge, scaled up when a friendly pawn also defends it.
func (e *Eval) outposts(pos *board.Position) board.Score {
	var score board.Score
	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}
		ourPawns := pos.Pieces[us][board.Pawn]
		theirPawns := pos.Pieces[them][board.Pawn]

		for pt := board.Knight; pt <= board.Bishop; pt++ {
			bb := pos.Pieces[us][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				rel := sq.RelativeRank(us)
				if rel < 3 || rel > 5 {
					continue
				}
				if board.PassedPawnMask(us, sq)&theirPawns != 0 {
					continue // an enemy pawn can still challenge this square
				}
				protected := board.PawnAttacks(sq, them)&ourPawns != 0
				switch {
				case pt == board.Knight && protected:
					score.MG += sign * knightOutpostProtectedMG
					score.EG += sign * knightOutpostProtectedEG
				case pt == board.Knight:
					score.MG += sign * knightOutpostMG
					score.EG += sign * knightOutpostEG
				case protected:
					score.MG += sign * bishopOutpostMG
					score.EG += sign * bishopOutpostEG
				}
			}
		}
	}
	return score
}

// trappedBishopPatterns lists White's classic corner-bishop traps as
// (bishop square, blocking enemy pawn square) pairs; Black's mirror
// vertically since file never changes between the two colors' back ranks.
var trappedBishopPatterns = [4][2]board.Square{
	{board.A7, board.B6},
	{board.H7, board.G6},
	{board.B8, board.C7},
	{board.G8, board.F7},
}

// trappedRookPatterns lists White's rook-trapped-by-its-own-king corners
// as (rook square, king square) pairs; only checked once the side has
// lost all castling rights, since a rook behind its own uncastled king
// can otherwise still castle free.
var trappedRookPatterns = [4][2]board.Square{
	{board.A1, board.B1},
	{board.A1, board.C1},
	{board.H1, board.G1},
	{board.H1, board.F1},
}

func (e *Eval) trappedPieces(pos *board.Position) board.Score {
	var score board.Score
	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}

		for _, pat := range trappedBishopPatterns {
			bSq, pSq := pat[0], pat[1]
			if us == board.Black {
				bSq, pSq = bSq.Mirror(), pSq.Mirror()
			}
			if pos.PieceAt(bSq) == board.NewPiece(board.Bishop, us) &&
				pos.PieceAt(pSq) == board.NewPiece(board.Pawn, them) {
				score.MG += sign * trappedBishopPenaltyMG
				score.EG += sign * trappedBishopPenaltyEG
			}
		}

		if pos.State.CastlingRights.CanCastle(us, true) || pos.State.CastlingRights.CanCastle(us, false) {
			continue
		}
		for _, pat := range trappedRookPatterns {
			rSq, kSq := pat[0], pat[1]
			if us == board.Black {
				rSq, kSq = rSq.Mirror(), kSq.Mirror()
			}
			if pos.PieceAt(rSq) == board.NewPiece(board.Rook, us) && pos.KingSquare(us) == kSq {
				score.MG += sign * trappedRookPenaltyMG
				score.EG += sign * trappedRookPenaltyEG
			}
		}
	}
	return score
}

// pawnStructure scores doubled/isolated/backward/connected/phalanx pawns,
// cached per pawn key; it also returns each side's passed-pawn bitboard
// so passedPawns doesn't need to recompute the per-pawn scan.
func (e *Eval) pawnStructure(pos *board.Position) (mg, eg int, passed [2]board.Bitboard) {
	if entry, ok := e.pawns.Probe(pos.State.PawnKey); ok {
		return int(entry.MgScore), int(entry.EgScore), entry.Passed
	}

	var score board.Score
	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}
		ourPawns := pos.Pieces[us][board.Pawn]
		theirPawns := pos.Pieces[them][board.Pawn]

		bb := ourPawns
		for bb != 0 {
			sq := bb.PopLSB()
			file := board.FileMask[sq.File()]

			if (file &^ board.SquareBB(sq) & ourPawns) != 0 {
				score.MG += sign * doubledPawnPenalty.MG
				score.EG += sign * doubledPawnPenalty.EG
			}

			adjFiles := board.Bitboard(0)
			if f := sq.File(); f > 0 {
				adjFiles |= board.FileMask[f-1]
			}
			if f := sq.File(); f < 7 {
				adjFiles |= board.FileMask[f+1]
			}
			isolated := adjFiles&ourPawns == 0

			if isolated {
				score.MG += sign * isolatedPawnPenalty.MG
				score.EG += sign * isolatedPawnPenalty.EG
			} else if board.BackwardPawnMask(us, sq)&ourPawns == 0 {
				score.MG += sign * backwardPawnPenalty.MG
				score.EG += sign * backwardPawnPenalty.EG
			}

			if board.PawnAttacks(sq, them.Other())&ourPawns != 0 {
				score.MG += sign * connectedPawnBonus.MG
				score.EG += sign * connectedPawnBonus.EG
			}
			if adjFiles&board.RankMask[sq.Rank()]&ourPawns != 0 {
				score.MG += sign * phalanxPawnBonus.MG
				score.EG += sign * phalanxPawnBonus.EG
			}

			if board.PassedPawnMask(us, sq)&theirPawns == 0 {
				passed[us] |= board.SquareBB(sq)
			}
		}
	}

	e.pawns.Store(pos.State.PawnKey, int(score.MG), int(score.EG), passed)
	return int(score.MG), int(score.EG), passed
}

// passedPawns applies the rank-scaled bonus plus king-distance, shield-
// support, connected-passer, and free-path terms, all of which are
// phase-sensitive enough (they matter far more in endgames) that they
// are never safe to fold into the cached pawnStructure term.
func (e *Eval) passedPawns(pos *board.Position, passed [2]board.Bitboard) board.Score {
	var score board.Score
	occ := pos.AllOccupied()
	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}
		theirKing := pos.KingSquare(them)
		ourKing := pos.KingSquare(us)
		ourPawns := pos.Pieces[us][board.Pawn]

		bb := passed[us]
		for bb != 0 {
			sq := bb.PopLSB()
			rank := sq.RelativeRank(us)
			bonus := passedPawnBonus[rank]
			score.MG += sign * bonus.MG
			score.EG += sign * bonus.EG

			// Endgame king-distance races: reward our king for being
			// close to the pawn's path, their king for being far.
			dUs := board.KingDistance(sq, ourKing)
			dThem := board.KingDistance(sq, theirKing)
			score.EG += sign * int32(dThem-dUs) * 5

			if board.PawnAttacks(sq, them)&ourPawns != 0 {
				score.MG += sign * passedPawnProtected.MG
				score.EG += sign * passedPawnProtected.EG
			}

			adjFiles := board.Bitboard(0)
			if f := sq.File(); f > 0 {
				adjFiles |= board.FileMask[f-1]
			}
			if f := sq.File(); f < 7 {
				adjFiles |= board.FileMask[f+1]
			}
			nearbyRanks := board.RankMask[sq.Rank()]
			if r := sq.Rank(); r > 0 {
				nearbyRanks |= board.RankMask[r-1]
			}
			if r := sq.Rank(); r < 7 {
				nearbyRanks |= board.RankMask[r+1]
			}
			if (passed[us]&^board.SquareBB(sq))&adjFiles&nearbyRanks != 0 {
				score.MG += sign * passedPawnConnected.MG
				score.EG += sign * passedPawnConnected.EG
			}

			pathClear := board.FrontFileMask(us, sq)&occ == 0
			if pathClear {
				score.MG += sign * passedPawnPathClear.MG
				score.EG += sign * passedPawnPathClear.EG

				promoRank := 7
				if us == board.Black {
					promoRank = 0
				}
				promoSq := board.NewSquare(promoRank, sq.File())
				squaresToPromo := 7 - rank
				if board.KingDistance(theirKing, promoSq) > squaresToPromo+1 {
					score.EG += sign * unstoppablePassedPawnBonus.EG
				}
			}
		}
	}
	return score
}

// threats penalizes hanging and loose pieces and rewards pawn/minor/king/
// queen pressure on higher-value or undefended enemy targets, plus the
// tactical cost of one side's queen sitting on a pin line to its own king.
func (e *Eval) threats(pos *board.Position) board.Score {
	occ := pos.AllOccupied()
	var score board.Score

	for _, us := range [2]board.Color{board.White, board.Black} {
		them := us.Other()
		sign := int32(1)
		if us == board.Black {
			sign = -1
		}

		ourPawns := pos.Pieces[us][board.Pawn]
		pawnAttacks := board.Bitboard(0)
		bb := ourPawns
		for bb != 0 {
			sq := bb.PopLSB()
			pawnAttacks |= board.PawnAttacks(sq, us)
		}
		targets := pawnAttacks & pos.Colors[them] &^ pos.Pieces[them][board.Pawn]
		score.MG += sign * int32(targets.PopCount()) * threatByPawnMG
		score.EG += sign * int32(targets.PopCount()) * threatByPawnEG

		// Pawn-push threats: a pawn one push away from attacking an
		// enemy rook or queen, landing square currently empty.
		pb := ourPawns
		for pb != 0 {
			sq := pb.PopLSB()
			push := board.PawnPushes(sq, us) &^ occ
			if push == 0 {
				continue
			}
			pushSq := push.LSB()
			if board.PawnAttacks(pushSq, us)&(pos.Pieces[them][board.Rook]|pos.Pieces[them][board.Queen]) != 0 {
				score.MG += sign * pawnPushThreatMG
				score.EG += sign * pawnPushThreatEG
			}
		}

		// Loose pawns: undefended by any own pawn, regardless of
		// whether they're currently attacked.
		lb := ourPawns
		for lb != 0 {
			sq := lb.PopLSB()
			if board.PawnAttacks(sq, them)&ourPawns == 0 {
				score.MG += sign * loosePawnPenaltyMG
				score.EG += sign * loosePawnPenaltyEG
			}
		}

		for _, pt := range [2]board.PieceType{board.Knight, board.Bishop} {
			mb := pos.Pieces[us][pt]
			for mb != 0 {
				sq := mb.PopLSB()
				var attacks board.Bitboard
				if pt == board.Knight {
					attacks = board.KnightAttacks(sq)
				} else {
					attacks = board.BishopAttacks(sq, occ)
				}
				majors := attacks & (pos.Pieces[them][board.Rook] | pos.Pieces[them][board.Queen])
				score.MG += sign * int32(majors.PopCount()) * threatByMinorMG
				score.EG += sign * int32(majors.PopCount()) * threatByMinorEG
			}
		}

		ourPieces := pos.Colors[us] &^ pos.Pieces[us][board.King]
		hang := board.Bitboard(0)
		hb := ourPieces
		for hb != 0 {
			sq := hb.PopLSB()
			if pos.AttackersByColor(sq, them, occ) != 0 && pos.AttackersByColor(sq, us, occ) == 0 {
				hang |= board.SquareBB(sq)
			}
		}
		score.MG += sign * int32(hang.PopCount()) * hangingPiecePenaltyMG
		score.EG += sign * int32(hang.PopCount()) * hangingPiecePenaltyEG

		// King attacks on weak (undefended, non-pawn) enemy pieces.
		kingAtk := board.KingAttacks(pos.KingSquare(us))
		weak := kingAtk & pos.Colors[them] &^ pos.Pieces[them][board.Pawn]
		for weak != 0 {
			sq := weak.PopLSB()
			if pos.AttackersByColor(sq, them, occ) == 0 {
				score.MG += sign * kingAttackWeakMG
				score.EG += sign * kingAttackWeakEG
			}
		}

		// Safe queen attacks: a queen attacking an undefended enemy
		// piece it could actually capture without reprisal.
		qb := pos.Pieces[us][board.Queen]
		for qb != 0 {
			sq := qb.PopLSB()
			attacks := board.QueenAttacks(sq, occ) & pos.Colors[them]
			for attacks != 0 {
				target := attacks.PopLSB()
				if pos.AttackersByColor(target, them, occ) == 0 {
					score.MG += sign * safeQueenAttackMG
					score.EG += sign * safeQueenAttackEG
				}
			}
		}

		if pos.Pieces[us][board.Queen]&pos.State.KingBlockers[us] != 0 {
			score.MG += sign * pinnedQueenPenaltyMG
			score.EG += sign * pinnedQueenPenaltyEG
		}
	}

	return score
}
