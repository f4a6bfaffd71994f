package engine

import "github.com/moterink/delocto/internal/board"

// mvvLva scores a capture by victim first and attacker second: the row
// for victim type v (pawn = 0) starts at 10*v+15 and drops one step per
// attacker class (pawn, knight/bishop, rook, queen, king), the classic
// Most-Valuable-Victim/Least-Valuable-Attacker ordering key.
var mvvLva = [6][6]int{
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

const historyMax = 16384

// MoveOrderer owns the ply-indexed killer slots, the [stm][pt][to]
// history table, and the [prevOwner][prevPt][prevTo] countermove table
// every search worker consults through a MovePicker.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [2][6][64]int
	counter [2][6][64]board.Move
}

func NewMoveOrderer() *MoveOrderer { return &MoveOrderer{} }

// Clear resets killers and countermoves and halves history for a new
// search, matching the aging every iterative-deepening pass wants.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for c := range mo.history {
		for pt := range mo.history[c] {
			for to := range mo.history[c][pt] {
				mo.history[c][pt][to] /= 2
			}
		}
	}
	for c := range mo.counter {
		for pt := range mo.counter[c] {
			for to := range mo.counter[c][pt] {
				mo.counter[c][pt][to] = board.NoMove
			}
		}
	}
}

// UpdateKillers records a new killer at ply, shifting the old first
// killer down to the second slot.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// UpdateCounter records m as the reply to prevMove.
func (mo *MoveOrderer) UpdateCounter(prevMove board.Move, prevPiece board.Piece, m board.Move) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece {
		return
	}
	mo.counter[prevPiece.Color()][prevPiece.Type()][prevMove.To()] = m
}

func (mo *MoveOrderer) getCounter(prevMove board.Move, prevPiece board.Piece) board.Move {
	if prevMove == board.NoMove || prevPiece == board.NoPiece {
		return board.NoMove
	}
	return mo.counter[prevPiece.Color()][prevPiece.Type()][prevMove.To()]
}

// UpdateHistory applies the required "gravity" update: h += 32*bonus -
// h*|bonus|/512, which keeps h bounded near +-16384 without ever needing
// a saturating clamp or periodic rescale pass (spec.md 9).
func (mo *MoveOrderer) UpdateHistory(stm board.Color, pt board.PieceType, to board.Square, bonus int) {
	h := &mo.history[stm][pt][to]
	// |bonus| is capped at 512: with |delta| <= 512 the update can never
	// carry h past 32*512 = historyMax in either direction.
	delta := bonus
	if delta > historyMax/32 {
		delta = historyMax / 32
	} else if delta < -historyMax/32 {
		delta = -historyMax / 32
	}
	absDelta := delta
	if absDelta < 0 {
		absDelta = -absDelta
	}
	*h += 32*delta - (*h)*absDelta/512
}

func (mo *MoveOrderer) getHistory(stm board.Color, pt board.PieceType, to board.Square) int {
	return mo.history[stm][pt][to]
}

type scoredMove struct {
	move  board.Move
	score int
}

// pickBest scans s[from:] for the highest-scored entry and swaps it to
// index from, the selection-sort primitive spec.md 4.6 asks every
// "score-sorted" phase to share.
func pickBest(s []scoredMove, from int) scoredMove {
	best := from
	for i := from + 1; i < len(s); i++ {
		if s[i].score > s[best].score {
			best = i
		}
	}
	s[from], s[best] = s[best], s[from]
	return s[from]
}

type pickerPhase int

const (
	phaseTT pickerPhase = iota
	phaseGoodCaptures
	phaseKiller1
	phaseKiller2
	phaseCounter
	phaseQuiets
	phaseLosingCaptures
	phaseEvasions
	phaseQSCaptures
	phaseDone
)

// MovePicker is the staged generator of spec.md 4.6: a plain
// discriminated union over phases, each pick() resuming at the stored
// index instead of any polymorphic iterator (spec.md 9).
type MovePicker struct {
	pos     *board.Position
	orderer *MoveOrderer
	ply     int
	ttMove  board.Move
	killer1 board.Move
	killer2 board.Move
	counter board.Move
	qsearch bool

	phase pickerPhase

	captures    []scoredMove
	capIdx      int
	goodCapEnd  int // captures[:goodCapEnd] are non-negative SEE
	quiets      []scoredMove
	quietIdx    int
}

// NewMovePicker prepares a picker for an in-tree node. prevMove/prevPiece
// feed the countermove lookup; pass board.NoMove/board.NoPiece at the root.
func NewMovePicker(pos *board.Position, orderer *MoveOrderer, ply int, ttMove, prevMove board.Move, prevPiece board.Piece) *MovePicker {
	mp := &MovePicker{
		pos:     pos,
		orderer: orderer,
		ply:     ply,
		ttMove:  ttMove,
		killer1: orderer.killers[ply][0],
		killer2: orderer.killers[ply][1],
		counter: orderer.getCounter(prevMove, prevPiece),
	}
	if pos.InCheck() {
		mp.phase = phaseEvasions
		mp.generateEvasions()
	} else {
		mp.phase = phaseTT
		mp.generateCaptures()
	}
	return mp
}

// NewQuiescencePicker prepares a picker for quiescence search: captures
// only (or evasions, if in check).
func NewQuiescencePicker(pos *board.Position, ttMove board.Move) *MovePicker {
	mp := &MovePicker{pos: pos, qsearch: true, ttMove: ttMove}
	if pos.InCheck() {
		mp.phase = phaseEvasions
		mp.generateEvasions()
	} else {
		mp.phase = phaseQSCaptures
		mp.generateCaptures()
	}
	return mp
}

func (mp *MovePicker) generateCaptures() {
	var ml board.MoveList
	mp.pos.GeneratePseudoLegal(&ml, board.GenCaptures)
	mp.captures = make([]scoredMove, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		mp.captures = append(mp.captures, scoredMove{m, mp.scoreCapture(m)})
	}

	good := 0
	for i := range mp.captures {
		if mp.pos.SEECapture(mp.captures[i].move) {
			mp.captures[good], mp.captures[i] = mp.captures[i], mp.captures[good]
			good++
		}
	}
	mp.goodCapEnd = good
}

func (mp *MovePicker) generateQuiets() {
	var ml board.MoveList
	mp.pos.GeneratePseudoLegal(&ml, board.GenQuiets)
	mp.quiets = make([]scoredMove, 0, ml.Len())
	stm := mp.pos.SideToMove
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		pt := mp.pos.PieceAt(m.From()).Type()
		mp.quiets = append(mp.quiets, scoredMove{m, mp.orderer.getHistory(stm, pt, m.To())})
	}
}

func (mp *MovePicker) generateEvasions() {
	var ml board.MoveList
	mp.pos.GeneratePseudoLegal(&ml, board.GenEvasions)
	mp.captures = make([]scoredMove, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		mp.captures = append(mp.captures, scoredMove{m, mp.scoreEvasion(m)})
	}
	mp.goodCapEnd = len(mp.captures)
}

func (mp *MovePicker) scoreCapture(m board.Move) int {
	attacker := mp.pos.PieceAt(m.From()).Type()
	var victim board.PieceType
	if m.IsEnPassant() {
		victim = board.Pawn
	} else {
		victim = mp.pos.PieceAt(m.To()).Type()
	}
	return mvvLva[victim][attacker]
}

func (mp *MovePicker) scoreEvasion(m board.Move) int {
	if m.IsCapture(mp.pos) {
		return 1000 + mp.scoreCapture(m)
	}
	// Quiescence pickers carry no orderer; their quiet evasions score 0.
	if mp.orderer == nil {
		return 0
	}
	stm := mp.pos.SideToMove
	pt := mp.pos.PieceAt(m.From()).Type()
	return mp.orderer.getHistory(stm, pt, m.To())
}

func isDup(m, other board.Move) bool { return m != board.NoMove && m == other }

// Next returns the next legal move from the picker, or board.NoMove when
// exhausted. Illegal pseudo-legal candidates are silently skipped and the
// phase advances past them without the caller ever seeing them.
func (mp *MovePicker) Next() board.Move {
	for {
		switch mp.phase {
		case phaseTT:
			mp.phase = phaseGoodCaptures
			if mp.ttMove != board.NoMove && mp.pos.IsPseudoLegal(mp.ttMove) && mp.pos.IsLegal(mp.ttMove) {
				return mp.ttMove
			}

		case phaseGoodCaptures:
			if mp.capIdx < mp.goodCapEnd {
				sm := pickBest(mp.captures[:mp.goodCapEnd], mp.capIdx)
				mp.capIdx++
				if sm.move == mp.ttMove {
					continue
				}
				if mp.pos.IsLegal(sm.move) {
					return sm.move
				}
				continue
			}
			mp.phase = phaseKiller1

		case phaseKiller1:
			mp.phase = phaseKiller2
			if !isDup(mp.killer1, mp.ttMove) && mp.killer1 != board.NoMove && mp.pos.IsPseudoLegal(mp.killer1) &&
				!mp.killer1.IsCapture(mp.pos) && mp.pos.IsLegal(mp.killer1) {
				return mp.killer1
			}

		case phaseKiller2:
			mp.phase = phaseCounter
			if !isDup(mp.killer2, mp.ttMove) && mp.killer2 != mp.killer1 && mp.killer2 != board.NoMove && mp.pos.IsPseudoLegal(mp.killer2) &&
				!mp.killer2.IsCapture(mp.pos) && mp.pos.IsLegal(mp.killer2) {
				return mp.killer2
			}

		case phaseCounter:
			mp.phase = phaseQuiets
			mp.generateQuiets()
			if mp.counter != board.NoMove && mp.counter != mp.ttMove && mp.counter != mp.killer1 && mp.counter != mp.killer2 &&
				mp.pos.IsPseudoLegal(mp.counter) && !mp.counter.IsCapture(mp.pos) && mp.pos.IsLegal(mp.counter) {
				return mp.counter
			}

		case phaseQuiets:
			if mp.quietIdx < len(mp.quiets) {
				sm := pickBest(mp.quiets, mp.quietIdx)
				mp.quietIdx++
				if sm.move == mp.ttMove || sm.move == mp.killer1 || sm.move == mp.killer2 || sm.move == mp.counter {
					continue
				}
				if mp.pos.IsLegal(sm.move) {
					return sm.move
				}
				continue
			}
			mp.phase = phaseLosingCaptures

		case phaseLosingCaptures:
			if mp.capIdx < len(mp.captures) {
				sm := pickBest(mp.captures, mp.capIdx)
				mp.capIdx++
				if sm.move == mp.ttMove {
					continue
				}
				if mp.pos.IsLegal(sm.move) {
					return sm.move
				}
				continue
			}
			mp.phase = phaseDone
			return board.NoMove

		case phaseEvasions:
			if mp.capIdx < len(mp.captures) {
				sm := pickBest(mp.captures, mp.capIdx)
				mp.capIdx++
				if mp.pos.IsLegal(sm.move) {
					return sm.move
				}
				continue
			}
			mp.phase = phaseDone
			return board.NoMove

		case phaseQSCaptures:
			if mp.capIdx < len(mp.captures) {
				sm := pickBest(mp.captures, mp.capIdx)
				mp.capIdx++
				if mp.pos.IsLegal(sm.move) {
					return sm.move
				}
				continue
			}
			mp.phase = phaseDone
			return board.NoMove

		default:
			return board.NoMove
		}
	}
}
