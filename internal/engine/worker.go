package engine

import (
	"math"
	"sync/atomic"

	"github.com/moterink/delocto/internal/board"
)

// Infinity bounds the root aspiration window before the first iteration
// narrows it.
const Infinity = 30000

// lmrReductions[depth][moveCount] is the Stockfish-style logarithmic
// reduction base, precomputed once at init time (spec.md 9: precomputed
// tables are read-only after init).
var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(21.46 * math.Log(float64(d)) * 21.46 * math.Log(float64(m)) / 1024.0)
		}
	}
}

// futilityMargin is indexed by depth, spec.md 4.7 step 9.
var futilityMargin = [6]int{0, 100, 200, 320, 450, 590}

// PVTable stores one worker's principal variation, rewritten bottom-up
// every time a child node improves alpha (spec.md 9: a plain array, no
// fancy triangular-table indirection needed beyond the length vector).
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Worker is one lazy-SMP search thread: its own Board, its own move
// orderer (killers/history/countermove), its own pawn and material hash
// caches. Only the transposition table and the stop flag are shared
// (spec.md 4.8).
type Worker struct {
	id int

	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	eval    *Eval

	nodes    atomic.Uint64
	stopFlag *atomic.Bool

	pv       PVTable
	excluded []board.Move // MultiPV: root moves already reported

	evalStack [MaxPly]int
	moveStack [MaxPly]board.Move
	pieceStack [MaxPly]board.Piece

	seldepth int
}

// NewWorker builds a worker sharing tt and stopFlag with the rest of the
// pool, owning everything else privately.
func NewWorker(id int, tt *TranspositionTable, stopFlag *atomic.Bool) *Worker {
	return &Worker{
		id:       id,
		tt:       tt,
		orderer:  NewMoveOrderer(),
		eval:     NewEval(2, 1),
		stopFlag: stopFlag,
	}
}

// ID returns the worker's thread index; 0 is the main thread.
func (w *Worker) ID() int { return w.id }

// Nodes returns this worker's node counter.
func (w *Worker) Nodes() uint64 { return w.nodes.Load() }

// SetPosition installs pos as the worker's private board, cloned so the
// caller's copy is never mutated by this worker's make/unmake.
func (w *Worker) SetPosition(pos *board.Position) {
	w.pos = pos.Clone()
}

// NewSearch resets per-search state (not history, which only ages).
func (w *Worker) NewSearch() {
	w.nodes.Store(0)
	w.seldepth = 0
	w.orderer.Clear()
}

// PV returns the best line found by the worker's last completed
// iteration.
func (w *Worker) PV() []board.Move {
	pv := make([]board.Move, w.pv.length[0])
	copy(pv, w.pv.moves[0][:w.pv.length[0]])
	return pv
}

func (w *Worker) stopped() bool {
	return w.nodes.Load()&1023 == 0 && w.stopFlag.Load()
}

func (w *Worker) isDraw(ply int) bool {
	if w.pos.IsFiftyMoveDraw() || w.pos.IsInsufficientMaterial() {
		return true
	}
	return w.pos.RepetitionCount() >= 2
}

// Search runs the full-width alpha-beta interior of spec.md 4.7 at the
// given depth, ply, and window, honoring an optional singular-extension
// excluded move. It returns the value from the side-to-move's perspective.
func (w *Worker) Search(depth, ply, alpha, beta int, excludedMove board.Move, pvNode, cutNode bool) int {
	if w.stopFlag.Load() {
		return 0
	}

	w.nodes.Add(1)
	if ply > w.seldepth {
		w.seldepth = ply
	}
	w.pv.length[ply] = ply

	if ply > 0 {
		alpha = max(alpha, -MateScore+ply)
		beta = min(beta, MateScore-ply-1)
		if alpha >= beta {
			return alpha
		}
		if w.isDraw(ply) {
			return 0
		}
	}

	if depth <= 0 {
		return w.quiescence(ply, alpha, beta, 0)
	}

	var ttMove board.Move
	var ttHit TTEntry
	if excludedMove == board.NoMove {
		ttHit = w.tt.Probe(w.pos.State.HashKey)
		if ttHit.Found {
			ttMove = ttHit.Move
			if !pvNode && ttHit.Depth >= depth {
				ttValue := ScoreFromTT(ttHit.Value, ply)
				switch ttHit.Bound {
				case BoundExact:
					return ttValue
				case BoundLower:
					if ttValue >= beta {
						return ttValue
					}
				case BoundUpper:
					if ttValue <= alpha {
						return ttValue
					}
				}
			}
		}
	}

	inCheck := w.pos.InCheck()

	var staticEval int
	if ttHit.Found {
		staticEval = ttHit.Eval
	} else {
		staticEval = w.eval.Evaluate(w.pos)
	}
	w.evalStack[ply] = staticEval

	canPrune := !pvNode && !inCheck && excludedMove == board.NoMove

	if canPrune {
		if depth == 1 && staticEval+300 <= alpha {
			return w.quiescence(ply, alpha, beta, 0)
		}

		if depth >= 2 && staticEval >= beta && w.pos.HasNonPawnMaterial() {
			r := 2 + (32*depth+min(staticEval-beta, 512))/128
			prev := w.pos.DoNull()
			value := -w.Search(depth-r, ply+1, -beta, -beta+1, board.NoMove, false, !cutNode)
			w.pos.UndoNull(prev)
			if value >= beta && value < MateScore-MaxPly {
				return beta
			}
		}
	}

	if pvNode && ttMove == board.NoMove && depth >= 6 {
		w.Search(depth-2, ply, alpha, beta, board.NoMove, pvNode, cutNode)
		if reProbe := w.tt.Probe(w.pos.State.HashKey); reProbe.Found {
			ttMove = reProbe.Move
		}
		w.pv.length[ply] = ply
	}

	var prevMove board.Move
	var prevPiece board.Piece
	if ply > 0 {
		prevMove = w.moveStack[ply-1]
		prevPiece = w.pieceStack[ply-1]
	}
	picker := NewMovePicker(w.pos, w.orderer, ply, ttMove, prevMove, prevPiece)

	bestScore := -Infinity
	bestMove := board.NoMove
	bound := BoundUpper
	moveCount := 0
	var quietsTried []board.Move

	for {
		move := picker.Next()
		if move == board.NoMove {
			break
		}
		if move == excludedMove {
			continue
		}
		if ply == 0 && w.isExcludedRoot(move) {
			continue
		}

		moveCount++
		isQuiet := !move.IsCapture(w.pos) && !move.IsPromotion()

		if canPrune && isQuiet && moveCount > 1 && depth <= 5 {
			if staticEval+futilityMargin[depth] <= alpha {
				continue
			}
		}

		extension := 0
		if move == ttMove && depth >= 8 && ttHit.Found && ttHit.Bound == BoundLower &&
			ttHit.Depth >= depth-3 && excludedMove == board.NoMove {
			singularBeta := ScoreFromTT(ttHit.Value, ply) - 2*depth
			value := w.Search((depth)/2, ply, singularBeta-1, singularBeta, move, false, cutNode)
			if value < singularBeta {
				extension = 1
			}
		} else if inCheck && w.pos.SEECapture(move) {
			extension = 1
		}

		w.moveStack[ply] = move
		w.pieceStack[ply] = w.pos.PieceAt(move.From())
		if !w.pos.DoMove(move) {
			moveCount--
			continue
		}

		newDepth := depth - 1 + extension

		reduction := 0
		if isQuiet && depth >= 3 && moveCount > 1 {
			r := lmrReductions[min(depth, 63)][min(moveCount, 63)]
			if pvNode {
				r--
			}
			if cutNode {
				r++
			}
			if move == w.orderer.killers[ply][0] || move == w.orderer.killers[ply][1] {
				r--
			}
			if inCheck {
				r--
			}
			h := w.orderer.getHistory(w.pos.SideToMove.Other(), w.pieceStack[ply].Type(), move.To())
			r -= clampInt(h/512, -1, 1)
			reduction = clampInt(r, 0, newDepth-2)
		}

		var value int
		if moveCount == 1 {
			value = -w.Search(newDepth, ply+1, -beta, -alpha, board.NoMove, pvNode, false)
		} else {
			value = -w.Search(newDepth-reduction, ply+1, -alpha-1, -alpha, board.NoMove, false, true)
			if value > alpha && reduction > 0 {
				value = -w.Search(newDepth, ply+1, -alpha-1, -alpha, board.NoMove, false, !cutNode)
			}
			if value > alpha && pvNode {
				value = -w.Search(newDepth, ply+1, -beta, -alpha, board.NoMove, true, false)
			}
		}

		w.pos.UndoMove(move)

		if w.stopFlag.Load() {
			return 0
		}

		if isQuiet {
			quietsTried = append(quietsTried, move)
		}

		if value > bestScore {
			bestScore = value
			bestMove = move

			if value > alpha {
				alpha = value
				bound = BoundExact

				w.pv.moves[ply][ply] = move
				for j := ply + 1; j < w.pv.length[ply+1]; j++ {
					w.pv.moves[ply][j] = w.pv.moves[ply+1][j]
				}
				w.pv.length[ply] = w.pv.length[ply+1]
			}
		}

		if value >= beta {
			bound = BoundLower
			if isQuiet {
				bonus := min(400, depth*depth)
				w.orderer.UpdateKillers(move, ply)
				w.orderer.UpdateCounter(prevMove, prevPiece, move)
				w.orderer.UpdateHistory(w.pos.SideToMove, w.pieceStack[ply].Type(), move.To(), bonus)
				for i := 0; i < len(quietsTried)-1; i++ {
					q := quietsTried[i]
					w.orderer.UpdateHistory(w.pos.SideToMove, w.pieceTypeBeforeMove(q), q.To(), -bonus)
				}
			}
			break
		}
	}

	if moveCount == 0 {
		if excludedMove != board.NoMove {
			return alpha
		}
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	if excludedMove == board.NoMove && (ply != 0 || len(w.excluded) == 0) {
		w.tt.Store(w.pos.State.HashKey, depth, ScoreToTT(bestScore, ply), staticEval, bestMove, bound)
	}

	return bestScore
}

// pieceTypeBeforeMove looks up the piece that stands on q.From() after
// the move has been undone -- used only for the negative history update
// of quiets tried before a cutoff, where the board has already reverted.
func (w *Worker) pieceTypeBeforeMove(q board.Move) board.PieceType {
	p := w.pos.PieceAt(q.From())
	if p == board.NoPiece {
		return board.Pawn
	}
	return p.Type()
}

const deltaMargin = 200

// quiescence implements spec.md 4.7's quiescence skeleton: captures (and
// evasions, if in check) only, stand-pat bound, delta pruning, SEE gate.
func (w *Worker) quiescence(ply, alpha, beta, qply int) int {
	if w.stopFlag.Load() {
		return 0
	}
	w.nodes.Add(1)
	if ply > w.seldepth {
		w.seldepth = ply
	}

	inCheck := w.pos.InCheck()
	var standPat int
	if !inCheck {
		standPat = w.eval.Evaluate(w.pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat+900+deltaMargin < alpha {
			return alpha
		}
	}

	if ply >= MaxPly-1 {
		return w.eval.Evaluate(w.pos)
	}

	picker := NewQuiescencePicker(w.pos, board.NoMove)
	legalMoves := 0

	for {
		move := picker.Next()
		if move == board.NoMove {
			break
		}
		legalMoves++

		if !inCheck {
			if !move.IsPromotion() && !w.pos.SEECapture(move) {
				continue
			}
			captured := w.capturedValue(move)
			if standPat+captured+deltaMargin < alpha {
				continue
			}
		}

		if !w.pos.DoMove(move) {
			legalMoves--
			continue
		}
		value := -w.quiescence(ply+1, -beta, -alpha, qply+1)
		w.pos.UndoMove(move)

		if value >= beta {
			return beta
		}
		if value > alpha {
			alpha = value
		}
	}

	if inCheck && legalMoves == 0 {
		return -MateScore + ply
	}

	return alpha
}

func (w *Worker) capturedValue(m board.Move) int {
	if m.IsEnPassant() {
		return board.PieceValue[board.Pawn]
	}
	piece := w.pos.PieceAt(m.To())
	if piece == board.NoPiece {
		return 0
	}
	return board.PieceValue[piece.Type()]
}

func (w *Worker) isExcludedRoot(m board.Move) bool {
	for _, e := range w.excluded {
		if e == m {
			return true
		}
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
