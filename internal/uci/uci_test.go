package uci

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"github.com/moterink/delocto/internal/board"
)

func newTestUCI() (*UCI, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(logr.Discard(), &buf), &buf
}

func TestHandleUCIEmitsUciok(t *testing.T) {
	u, buf := newTestUCI()
	u.handleUCI()

	if !strings.Contains(buf.String(), "uciok") {
		t.Errorf("handleUCI output missing uciok:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "option name Hash") {
		t.Errorf("handleUCI output missing the Hash option:\n%s", buf.String())
	}
}

func TestParseSetOption(t *testing.T) {
	name, value := parseSetOption([]string{"name", "Hash", "value", "128"})
	if name != "Hash" || value != "128" {
		t.Errorf("parseSetOption = (%q, %q), want (\"Hash\", \"128\")", name, value)
	}

	name, value = parseSetOption([]string{"name", "Clear", "Hash"})
	if name != "Clear Hash" || value != "" {
		t.Errorf("parseSetOption for a multi-word button = (%q, %q), want (\"Clear Hash\", \"\")", name, value)
	}
}

func TestParseGoOptionsDepthAndMoveTime(t *testing.T) {
	opts := parseGoOptions([]string{"depth", "10", "movetime", "500"})
	if opts.Depth != 10 {
		t.Errorf("Depth = %d, want 10", opts.Depth)
	}
	if opts.MoveTime != 500*time.Millisecond {
		t.Errorf("MoveTime = %v, want 500ms", opts.MoveTime)
	}
}

func TestParseGoOptionsInfinite(t *testing.T) {
	opts := parseGoOptions([]string{"infinite"})
	if !opts.Infinite {
		t.Error("expected Infinite to be true")
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	u, buf := newTestUCI()
	u.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5"})

	if buf.Len() != 0 {
		t.Errorf("unexpected diagnostic output for a legal move list: %s", buf.String())
	}
	if u.pos.SideToMove != board.White {
		t.Errorf("after 1. e4 e5 it should be White to move, got %s", u.pos.SideToMove)
	}
}

func TestHandlePositionRejectsIllegalMove(t *testing.T) {
	u, buf := newTestUCI()
	before := u.pos

	u.handlePosition([]string{"startpos", "moves", "e2e5"})

	if !strings.Contains(buf.String(), "illegal move") {
		t.Errorf("expected an illegal-move diagnostic, got: %s", buf.String())
	}
	if u.pos != before {
		t.Error("an illegal move in the move list must leave the previous position untouched")
	}
}

func TestHandleSetOptionHashRejectsOutOfRange(t *testing.T) {
	u, buf := newTestUCI()
	u.handleSetOption([]string{"name", "Hash", "value", "99999"})

	if !strings.Contains(buf.String(), "error") {
		t.Errorf("expected an error diagnostic for an out-of-range Hash value, got: %s", buf.String())
	}
	if u.hashMB != defaultHashMB {
		t.Errorf("hashMB changed despite rejected value: %d", u.hashMB)
	}
}

func TestHandleSetOptionThreadsAppliesResize(t *testing.T) {
	u, _ := newTestUCI()
	u.handleSetOption([]string{"name", "Threads", "value", "2"})

	if u.threads != 2 {
		t.Errorf("threads = %d, want 2", u.threads)
	}
}

func TestHandleGoDepthOneReportsBestmove(t *testing.T) {
	u, buf := newTestUCI()
	u.handleGo([]string{"depth", "1"})

	select {
	case <-u.searchDone:
	case <-time.After(10 * time.Second):
		t.Fatal("depth-1 search did not complete in time")
	}

	if !strings.Contains(buf.String(), "bestmove") {
		t.Errorf("expected a bestmove line, got: %s", buf.String())
	}
}

// TestHandleGoReportsTimeAndNps covers spec.md 6's info table: unlike
// multipv/lowerbound/upperbound, "time" and "nps" are mandatory on every
// iteration, not merely present on the final line.
func TestHandleGoReportsTimeAndNps(t *testing.T) {
	u, buf := newTestUCI()
	u.handleGo([]string{"depth", "2"})

	select {
	case <-u.searchDone:
	case <-time.After(10 * time.Second):
		t.Fatal("depth-2 search did not complete in time")
	}

	out := buf.String()
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "info depth") {
			continue
		}
		if !strings.Contains(line, " time ") || !strings.Contains(line, " nps ") {
			t.Errorf("info line missing mandatory time/nps fields: %q", line)
		}
	}
}
