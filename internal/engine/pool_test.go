package engine

import (
	"context"
	"testing"

	"github.com/go-logr/logr"

	"github.com/moterink/delocto/internal/board"
)

func TestPoolStartSearchReturnsLegalMove(t *testing.T) {
	pool := NewPool(2, 4, logr.Discard())
	pos := board.NewPosition()

	var tm TimeManager
	tm.Init(UCILimits{Infinite: true}, board.White, 0)

	best, _ := pool.StartSearch(context.Background(), pos, Limits{Depth: 3, Infinite: true}, tm, nil)

	legal := pos.GenerateLegalMoves()
	found := false
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == best {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Pool returned %s, which is not a legal move from the starting position", best)
	}
}

func TestPoolClearResetsHashFull(t *testing.T) {
	pool := NewPool(1, 1, logr.Discard())
	pos := board.NewPosition()

	var tm TimeManager
	tm.Init(UCILimits{Infinite: true}, board.White, 0)
	pool.StartSearch(context.Background(), pos, Limits{Depth: 4, Infinite: true}, tm, nil)

	pool.Clear()
	if hf := pool.HashFull(); hf != 0 {
		t.Errorf("HashFull after Clear = %d, want 0", hf)
	}
}

func TestPoolTotalNodesSumsWorkers(t *testing.T) {
	pool := NewPool(3, 4, logr.Discard())
	pos := board.NewPosition()

	var tm TimeManager
	tm.Init(UCILimits{Infinite: true}, board.White, 0)
	pool.StartSearch(context.Background(), pos, Limits{Depth: 3, Infinite: true}, tm, nil)

	if pool.TotalNodes() == 0 {
		t.Error("expected a nonzero total node count after a search")
	}
}
