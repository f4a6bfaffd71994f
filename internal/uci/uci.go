// Package uci implements the Universal Chess Interface text protocol
// driving internal/engine's search pool (spec.md 6).
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-logr/logr"

	"github.com/moterink/delocto/internal/board"
	"github.com/moterink/delocto/internal/engine"
)

const (
	defaultHashMB       = 64
	defaultThreads      = 1
	defaultMoveOverhead = 30 * time.Millisecond
	defaultMultiPV      = 1
)

// UCI owns the engine pool and the current game position, translating
// between UCI protocol lines and Pool/Worker calls (spec.md 4.8, 6).
type UCI struct {
	pool *engine.Pool
	pos  *board.Position
	log  logr.Logger
	out  io.Writer
	ctx  context.Context

	hashMB       int
	threads      int
	multiPV      int
	moveOverhead time.Duration
	debug        bool

	searching  atomic.Bool
	searchDone chan struct{}
}

// New creates a UCI handler writing engine output to out and logging
// diagnostics through log. log is expected to be wired to stderr by the
// caller (cmd/delocto) so stdout stays reserved for the protocol stream.
func New(log logr.Logger, out io.Writer) *UCI {
	return &UCI{
		pool:         engine.NewPool(defaultThreads, defaultHashMB, log),
		pos:          board.NewPosition(),
		log:          log,
		out:          out,
		ctx:          context.Background(),
		hashMB:       defaultHashMB,
		threads:      defaultThreads,
		multiPV:      defaultMultiPV,
		moveOverhead: defaultMoveOverhead,
	}
}

// Run reads UCI commands from in until EOF or "quit".
func (u *UCI) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Fprintln(u.out, "readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return
		case "setoption":
			u.handleSetOption(args)
		case "debug":
			u.handleDebug(args)
		case "bench":
			u.runBench()
		case "perft":
			u.handlePerft(args)
		case "d":
			fmt.Fprintln(u.out, u.pos.String())
		default:
			fmt.Fprintf(u.out, "info string unknown command %q\n", cmd)
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Fprintln(u.out, "id name Delocto")
	fmt.Fprintln(u.out, "id author Moritz Terink")
	fmt.Fprintf(u.out, "option name Hash type spin default %d min 1 max 4096\n", defaultHashMB)
	fmt.Fprintln(u.out, "option name Threads type spin default 1 min 1 max 4")
	fmt.Fprintln(u.out, "option name MoveOverhead type spin default 30 min 0 max 10000")
	fmt.Fprintln(u.out, "option name MultiPV type spin default 1 min 1 max 100")
	fmt.Fprintln(u.out, "option name Clear Hash type button")
	fmt.Fprintln(u.out, "uciok")
}

func (u *UCI) handleNewGame() {
	u.pool.Clear()
	u.pos = board.NewPosition()
}

// handlePosition handles "position [startpos | fen <FEN>] [moves <m>...]".
// An illegal move anywhere in the move list aborts the load and keeps the
// previous position, per spec.md 7.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var (
		pos       *board.Position
		moveStart int
		err       error
	)

	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
		moveStart = 1
	case "fen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		if end < 2 {
			fmt.Fprintln(u.out, "info string error missing FEN")
			return
		}
		pos, err = board.ParseFEN(strings.Join(args[1:end], " "))
		if err != nil {
			fmt.Fprintf(u.out, "info string error %v\n", err)
			return
		}
		moveStart = end
	default:
		fmt.Fprintf(u.out, "info string error unknown position subcommand %q\n", args[0])
		return
	}

	if moveStart < len(args) && args[moveStart] == "moves" {
		moveStart++
	}

	for _, moveStr := range args[moveStart:] {
		m, err := board.ParseMove(moveStr, pos)
		if err != nil || !pos.IsPseudoLegal(m) || !pos.IsLegal(m) {
			fmt.Fprintf(u.out, "info string error illegal move %q in position moves\n", moveStr)
			return
		}
		pos.DoMove(m)
	}

	u.pos = pos
}

// goOptions holds parsed "go" command arguments (spec.md 6).
type goOptions struct {
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Infinite  bool
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions
	next := func(i int) (string, bool) {
		if i+1 < len(args) {
			return args[i+1], true
		}
		return "", false
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if v, ok := next(i); ok {
				opts.Depth, _ = strconv.Atoi(v)
				i++
			}
		case "nodes":
			if v, ok := next(i); ok {
				opts.Nodes, _ = strconv.ParseUint(v, 10, 64)
				i++
			}
		case "movetime":
			if v, ok := next(i); ok {
				ms, _ := strconv.Atoi(v)
				opts.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "infinite":
			opts.Infinite = true
		case "wtime":
			if v, ok := next(i); ok {
				ms, _ := strconv.Atoi(v)
				opts.WTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "btime":
			if v, ok := next(i); ok {
				ms, _ := strconv.Atoi(v)
				opts.BTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "winc":
			if v, ok := next(i); ok {
				ms, _ := strconv.Atoi(v)
				opts.WInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "binc":
			if v, ok := next(i); ok {
				ms, _ := strconv.Atoi(v)
				opts.BInc = time.Duration(ms) * time.Millisecond
				i++
			}
		case "movestogo":
			if v, ok := next(i); ok {
				opts.MovesToGo, _ = strconv.Atoi(v)
				i++
			}
		}
	}
	return opts
}

// freshTimeManager returns a TimeManager with no wall-clock bound, used
// whenever "go" carries no time control (depth/nodes-only or "infinite")
// so Pool's stability-based clock never fires early.
func freshTimeManager() engine.TimeManager {
	var tm engine.TimeManager
	tm.Init(engine.UCILimits{Infinite: true}, board.White, 0)
	return tm
}

// handleGo starts a search in its own goroutine and prints "info"/"bestmove"
// lines as iterations complete, matching spec.md 4.8's progress callbacks.
func (u *UCI) handleGo(args []string) {
	if u.searching.Load() {
		fmt.Fprintln(u.out, "info string error search already running")
		return
	}

	opts := parseGoOptions(args)

	limits := engine.Limits{Depth: opts.Depth, MultiPV: u.multiPV}
	timed := opts.MoveTime > 0 || opts.WTime > 0 || opts.BTime > 0

	var tm engine.TimeManager
	if timed {
		ucilimits := engine.UCILimits{
			Time:      [2]time.Duration{opts.WTime, opts.BTime},
			Inc:       [2]time.Duration{opts.WInc, opts.BInc},
			MovesToGo: opts.MovesToGo,
			MoveTime:  opts.MoveTime,
		}
		us := u.pos.SideToMove
		if ucilimits.Time[us] > u.moveOverhead {
			ucilimits.Time[us] -= u.moveOverhead
		}
		tm.Init(ucilimits, us, u.pos.Ply)
	} else {
		limits.Infinite = true
		tm = freshTimeManager()
	}

	pos := u.pos.Clone()
	u.searching.Store(true)
	u.searchDone = make(chan struct{})

	go func() {
		defer close(u.searchDone)
		defer u.searching.Store(false)

		best, _ := u.pool.StartSearch(u.ctx, pos, limits, tm, func(r engine.IterationResult) {
			u.sendInfo(r)
			if opts.Nodes > 0 && r.Nodes >= opts.Nodes {
				u.pool.Stop()
			}
		})

		if best == board.NoMove {
			fmt.Fprintln(u.out, "bestmove none")
			return
		}
		fmt.Fprintf(u.out, "bestmove %s\n", best.String())
	}()
}

// sendInfo renders one iteration as a UCI "info" line (spec.md 6).
func (u *UCI) sendInfo(r engine.IterationResult) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d seldepth %d", r.Depth, r.SelDepth)

	switch {
	case r.Score >= engine.MateScore-engine.MaxPly:
		fmt.Fprintf(&b, " score mate %d", (engine.MateScore-r.Score+1)/2)
	case r.Score <= -engine.MateScore+engine.MaxPly:
		fmt.Fprintf(&b, " score mate %d", -(engine.MateScore+r.Score+1)/2)
	default:
		fmt.Fprintf(&b, " score cp %d", r.Score)
	}

	fmt.Fprintf(&b, " nodes %d time %d nps %d", r.Nodes, r.Elapsed.Milliseconds(), r.Nps())
	if hf := u.pool.HashFull(); hf > 0 {
		fmt.Fprintf(&b, " hashfull %d", hf)
	}
	if len(r.PV) > 0 {
		b.WriteString(" pv")
		for _, m := range r.PV {
			b.WriteByte(' ')
			b.WriteString(m.String())
		}
	}
	fmt.Fprintln(u.out, b.String())
}

func (u *UCI) handleStop() {
	if !u.searching.Load() {
		return
	}
	u.pool.Stop()
	<-u.searchDone
}

func (u *UCI) handleDebug(args []string) {
	if len(args) == 0 {
		return
	}
	u.debug = args[0] == "on"
	if u.debug {
		u.log = u.log.V(0)
	}
}

// handleSetOption applies "setoption name <N> value <V>" (spec.md 6, 7).
// Unknown names and out-of-range values are rejected with an "info
// string" diagnostic; engine state is left unchanged.
func (u *UCI) handleSetOption(args []string) {
	name, value := parseSetOption(args)

	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil || mb < 1 || mb > 4096 {
			fmt.Fprintf(u.out, "info string error Hash must be an integer in 1..4096, got %q\n", value)
			return
		}
		u.hashMB = mb
		u.pool.ResizeHash(mb)
		fmt.Fprintf(u.out, "info string Hash set to %s\n", humanize.Bytes(uint64(mb)*1024*1024))
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 4 {
			fmt.Fprintf(u.out, "info string error Threads must be an integer in 1..4, got %q\n", value)
			return
		}
		u.threads = n
		u.pool.Resize(n)
		fmt.Fprintf(u.out, "info string Threads set to %d\n", n)
	case "moveoverhead":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 || ms > 10000 {
			fmt.Fprintf(u.out, "info string error MoveOverhead must be an integer in 0..10000, got %q\n", value)
			return
		}
		u.moveOverhead = time.Duration(ms) * time.Millisecond
	case "multipv":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			fmt.Fprintf(u.out, "info string error MultiPV must be an integer in 1..100, got %q\n", value)
			return
		}
		u.multiPV = n
	case "clear hash":
		u.pool.Clear()
	default:
		fmt.Fprintf(u.out, "info string error unknown option %q\n", name)
	}
}

// parseSetOption extracts the name/value pair out of "name ... value ...",
// both of which may contain spaces ("Clear Hash" has no value).
func parseSetOption(args []string) (name, value string) {
	var nameParts, valueParts []string
	readingValue := false

	for _, a := range args {
		switch a {
		case "name":
			readingValue = false
		case "value":
			readingValue = true
		default:
			if readingValue {
				valueParts = append(valueParts, a)
			} else {
				nameParts = append(nameParts, a)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

// handlePerft runs "perft <depth>", reporting the leaf count per root move
// and the grand total (spec.md 6; divide output supplemented from
// original_source/src/perft.cpp).
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil && d > 0 {
			depth = d
		}
	}

	start := time.Now()
	moves, counts, total := board.PerftDivide(u.pos, depth)
	elapsed := time.Since(start)

	for i, m := range moves {
		fmt.Fprintf(u.out, "%s: %d\n", m.String(), counts[i])
	}
	fmt.Fprintln(u.out)
	fmt.Fprintf(u.out, "Nodes searched: %s\n", humanize.Comma(int64(total)))
	fmt.Fprintf(u.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(u.out, "NPS: %s\n", humanize.Comma(int64(float64(total)/elapsed.Seconds())))
	}
}

func humanizeUint(n uint64) string {
	return humanize.Comma(int64(n))
}
