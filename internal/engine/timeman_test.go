package engine

import (
	"testing"
	"time"

	"github.com/moterink/delocto/internal/board"
)

func TestTimeManagerFixedMoveTime(t *testing.T) {
	var tm TimeManager
	tm.Init(UCILimits{MoveTime: 500 * time.Millisecond}, board.White, 0)

	if tm.OptimumTime() != 500*time.Millisecond || tm.MaximumTime() != 500*time.Millisecond {
		t.Errorf("fixed movetime should set both optimum and maximum to the given duration, got %v/%v",
			tm.OptimumTime(), tm.MaximumTime())
	}
}

func TestTimeManagerInfiniteNeverStops(t *testing.T) {
	var tm TimeManager
	tm.Init(UCILimits{Infinite: true}, board.White, 0)

	if tm.ShouldStop() {
		t.Error("an infinite search should never report ShouldStop immediately after Init")
	}
}

func TestTimeManagerAllocatesFromRemainingTime(t *testing.T) {
	var tm TimeManager
	tm.Init(UCILimits{Time: [2]time.Duration{20 * time.Second, 20 * time.Second}}, board.White, 0)

	if tm.OptimumTime() <= 0 {
		t.Fatal("expected a positive optimum time from a sudden-death clock")
	}
	if tm.MaximumTime() < tm.OptimumTime() {
		t.Error("maximum time should never be less than optimum time")
	}
}

func TestShouldStopForStabilityNotImmediatelyAfterInit(t *testing.T) {
	var tm TimeManager
	tm.Init(UCILimits{MoveTime: 100 * time.Millisecond}, board.White, 0)

	// Immediately after Init, elapsed time is ~0, so neither a fresh nor a
	// maximally stable search should want to stop yet.
	if tm.ShouldStopForStability(0) {
		t.Error("ShouldStopForStability(0) fired immediately after Init")
	}
	if tm.ShouldStopForStability(8) {
		t.Error("ShouldStopForStability(8) fired immediately after Init")
	}
}

func TestShouldStopForStabilityClampsAboveEight(t *testing.T) {
	var tm TimeManager
	tm.Init(UCILimits{MoveTime: 100 * time.Millisecond}, board.White, 0)

	// stability > 8 must behave identically to stability == 8 (clamped).
	if tm.ShouldStopForStability(50) != tm.ShouldStopForStability(8) {
		t.Error("stability above 8 should clamp to the same bound as 8")
	}
}
