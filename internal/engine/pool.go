package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/moterink/delocto/internal/board"
)

// Pool owns the shared transposition table and one Worker per thread
// (spec.md 4.8): "each with its own Board, SearchInfo, pawn+material
// hash tables, killers, history, countermove. All workers share the TT
// and the precomputed tables."
type Pool struct {
	tt      *TranspositionTable
	workers []*Worker
	stop    atomic.Bool
	log     logr.Logger
	metrics *Metrics

	timeManager TimeManager
	bestMove    board.Move
	bestScore   int
	stability   int
}

// NewPool builds a pool of n workers sharing a hash table of ttSizeMB.
func NewPool(n, ttSizeMB int, log logr.Logger) *Pool {
	tt := NewTranspositionTable(ttSizeMB)
	p := &Pool{tt: tt, log: log, metrics: NewMetrics(nil)}
	p.Resize(n)
	return p
}

// Resize recreates the worker slice, discarding accumulated history --
// the UCI `setoption Threads` handler calls this between games.
func (p *Pool) Resize(n int) {
	if n < 1 {
		n = 1
	}
	p.workers = make([]*Worker, n)
	for i := range p.workers {
		p.workers[i] = NewWorker(i, p.tt, &p.stop)
	}
}

// ResizeHash replaces the shared transposition table.
func (p *Pool) ResizeHash(sizeMB int) {
	p.tt = NewTranspositionTable(sizeMB)
	for _, w := range p.workers {
		w.tt = p.tt
	}
	p.log.Info("resized transposition table", "sizeMB", sizeMB)
}

// Clear resets the TT and every worker's private tables for a new game
// (`ucinewgame`).
func (p *Pool) Clear() {
	p.tt.Clear()
	for _, w := range p.workers {
		w.orderer.Clear()
		w.eval.Clear()
	}
}

// Stop sets the shared atomic stop flag; every worker checks it on entry
// to each Search and quiescence frame and unwinds from there (spec.md 5).
func (p *Pool) Stop() {
	p.stop.Store(true)
}

// StartSearch begins lazy-SMP iterative deepening across every worker
// and blocks until every worker returns (spec.md 4.8's start/wait pair).
// report is invoked from the main worker (index 0) only, matching the
// single info-stream UCI expects.
func (p *Pool) StartSearch(ctx context.Context, pos *board.Position, limits Limits, tm TimeManager, report func(IterationResult)) (board.Move, int) {
	p.stop.Store(false)
	p.tt.NewSearch()
	p.timeManager = tm

	var group errgroup.Group
	lastBestMove := board.NoMove

	for _, w := range p.workers {
		w := w
		group.Go(func() error {
			var workerReport func(IterationResult)
			if w.id == 0 {
				workerReport = func(r IterationResult) {
					if len(r.PV) > 0 {
						if r.PV[0] != lastBestMove {
							p.stability = 0
							lastBestMove = r.PV[0]
						} else {
							p.stability++
						}
					}
					p.bestScore = r.Score
					if report != nil {
						report(r)
					}
				}
			}
			w.RunIterativeDeepening(pos, limits, tm.startTime, workerReport)
			return nil
		})
	}

	if !limits.Infinite {
		go p.watchClock()
	}

	_ = group.Wait()
	p.stop.Store(true)
	p.metrics.RecordNodes(ctx, int64(p.TotalNodes()))
	p.metrics.RecordSearchComplete(ctx)

	return p.bestResult()
}

// watchClock polls the clock every 5ms on its own goroutine (spec.md 4.8,
// 5): it checks elapsed time against the time manager's stability-scaled
// bound and sets the stop flag when exceeded.
func (p *Pool) watchClock() {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		if p.stop.Load() {
			return
		}
		if p.timeManager.ShouldStopForStability(p.stability) {
			p.stop.Store(true)
			return
		}
	}
}

// bestResult returns the first move of the main worker's (index 0) PV and
// the score it last reported; helper workers' lines are not consulted.
func (p *Pool) bestResult() (board.Move, int) {
	main := p.workers[0]
	pv := main.PV()
	if len(pv) == 0 {
		return board.NoMove, 0
	}
	return pv[0], p.bestScore
}

// TotalNodes sums every worker's node counter (relaxed atomics, spec.md 5).
func (p *Pool) TotalNodes() uint64 {
	var total uint64
	for _, w := range p.workers {
		total += w.Nodes()
	}
	return total
}

// HashFull reports the shared TT's occupancy in permille.
func (p *Pool) HashFull() int { return p.tt.HashFull() }

// Evaluate scores pos using the main worker's evaluator, used by the UCI
// `eval`/debug surface outside of a search.
func (p *Pool) Evaluate(pos *board.Position) int {
	return p.workers[0].eval.Evaluate(pos)
}
