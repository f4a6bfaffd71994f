package engine

import (
	"testing"
	"time"

	"github.com/moterink/delocto/internal/board"
)

func TestIterationResultNpsGuardsZeroElapsed(t *testing.T) {
	r := IterationResult{Nodes: 1000}
	if got := r.Nps(); got != 0 {
		t.Errorf("Nps with zero Elapsed = %d, want 0", got)
	}
}

func TestIterationResultNps(t *testing.T) {
	r := IterationResult{Nodes: 2000, Elapsed: 2 * time.Second}
	if got := r.Nps(); got != 1000 {
		t.Errorf("Nps = %d, want 1000", got)
	}
}

func TestRunIterativeDeepeningReportsElapsed(t *testing.T) {
	w, _ := newTestWorker()
	pos := board.NewPosition()

	var lastElapsed time.Duration
	w.RunIterativeDeepening(pos, Limits{Depth: 2}, time.Now(), func(r IterationResult) {
		lastElapsed = r.Elapsed
	})

	if lastElapsed <= 0 {
		t.Error("RunIterativeDeepening should report a positive elapsed duration once searching has begun")
	}
}
