package engine

import (
	"time"

	"github.com/moterink/delocto/internal/board"
)

// Limits bounds one search: Depth caps the iteration count (0 means
// MaxPly-1), MultiPV sets how many root lines each iteration searches, and
// Infinite keeps the pool from starting its clock watcher. Node and time
// budgets are not fields here: the time manager (timeman.go) and the
// caller's Stop enforce them.
type Limits struct {
	Depth    int
	MultiPV  int
	Infinite bool
}

// IterationResult is reported to the driver after every completed
// iterative-deepening pass (spec.md 4.8's info(...) progress callback).
type IterationResult struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Elapsed  time.Duration
	PV       []board.Move
}

// Nps returns the nodes-per-second rate implied by Nodes/Elapsed, 0 if no
// time has elapsed yet (guards the divide-by-zero on the very first report).
func (r IterationResult) Nps() uint64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return uint64(float64(r.Nodes) / r.Elapsed.Seconds())
}

// RunIterativeDeepening drives one worker's root loop: depth 1..limits.Depth
// (or until stopped), aspiration windows narrowing around the previous
// iteration's score once depth > 5, MultiPV by excluding already-reported
// root moves (spec.md 4.7).
func (w *Worker) RunIterativeDeepening(pos *board.Position, limits Limits, startTime time.Time, report func(IterationResult)) {
	w.SetPosition(pos)
	w.NewSearch()

	multiPV := limits.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	lastScore := 0

	// bestLine is the first line of the last completed iteration; it is
	// put back into the PV table on return, so PV() reports it even after
	// a stop or a later MultiPV line overwrote the table.
	var bestLine []board.Move
	defer func() {
		if bestLine != nil {
			w.pv.length[0] = copy(w.pv.moves[0][:], bestLine)
		}
	}()

	for depth := 1; depth <= maxDepth; depth++ {
		if w.stopFlag.Load() {
			return
		}

		w.excluded = w.excluded[:0]
		var bestOfDepth board.Move
		var scoreOfDepth int

		for pvIndex := 0; pvIndex < multiPV; pvIndex++ {
			var low, high int
			delta := 25
			if depth <= 5 {
				low, high = -Infinity, Infinity
			} else {
				low = lastScore - delta
				high = lastScore + delta
			}

			var value int
			for {
				value = w.Search(depth, 0, low, high, board.NoMove, true, false)
				if w.stopFlag.Load() {
					break
				}
				if value <= low {
					high = (low + high) / 2
					low -= delta
					delta += delta / 4
				} else if value >= high {
					high += delta
					delta += delta / 4
				} else {
					break
				}
			}

			if w.stopFlag.Load() {
				return
			}

			pv := w.PV()
			if len(pv) > 0 {
				w.excluded = append(w.excluded, pv[0])
				if pvIndex == 0 {
					bestOfDepth = pv[0]
					scoreOfDepth = value
					bestLine = pv
				}
			}

			if report != nil {
				report(IterationResult{
					Depth:    depth,
					SelDepth: w.seldepth,
					Score:    value,
					Nodes:    w.Nodes(),
					Elapsed:  time.Since(startTime),
					PV:       pv,
				})
			}
		}

		if bestOfDepth != board.NoMove {
			lastScore = scoreOfDepth
		}
	}
}
