package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/moterink/delocto/internal/board"
)

func newTestWorker() (*Worker, *atomic.Bool) {
	var stop atomic.Bool
	tt := NewTranspositionTable(1)
	return NewWorker(0, tt, &stop), &stop
}

func TestWorkerFindsMateInOne(t *testing.T) {
	w, _ := newTestWorker()

	// White to move, Ra1-a8 is back-rank mate.
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	var lastScore int
	var lastPV []board.Move
	w.RunIterativeDeepening(pos, Limits{Depth: 4}, time.Now(), func(r IterationResult) {
		lastScore = r.Score
		lastPV = r.PV
	})

	if lastScore < MateScore-MaxPly {
		t.Errorf("expected a mate score, got %d", lastScore)
	}
	if len(lastPV) == 0 {
		t.Fatal("expected a non-empty PV for a forced mate")
	}
}

func TestWorkerStopFlagAbortsImmediately(t *testing.T) {
	w, stop := newTestWorker()
	pos := board.NewPosition()
	w.SetPosition(pos)
	w.NewSearch()
	stop.Store(true)

	if v := w.Search(4, 0, -Infinity, Infinity, board.NoMove, true, false); v != 0 {
		t.Errorf("Search with the stop flag already set should return 0 immediately, got %d", v)
	}
}

func TestWorkerQuiescenceStandPat(t *testing.T) {
	w, _ := newTestWorker()
	// A quiet position with no captures available: quiescence should
	// return (at least) the static evaluation via stand-pat.
	pos := board.NewPosition()
	w.SetPosition(pos)
	w.NewSearch()

	v := w.quiescence(0, -Infinity, Infinity, 0)
	if v < -2000 || v > 2000 {
		t.Errorf("quiescence from the startpos returned an unreasonable score %d", v)
	}
}

func TestRunIterativeDeepeningRespectsDepthLimit(t *testing.T) {
	w, _ := newTestWorker()
	pos := board.NewPosition()

	var maxDepth int
	w.RunIterativeDeepening(pos, Limits{Depth: 3}, time.Now(), func(r IterationResult) {
		if r.Depth > maxDepth {
			maxDepth = r.Depth
		}
	})

	if maxDepth != 3 {
		t.Errorf("deepest reported iteration = %d, want 3", maxDepth)
	}
}
