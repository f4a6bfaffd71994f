package board

// Perft counts leaf nodes at depth, the standard move-generator correctness
// check: every pseudo-legal move that passes DoMove is counted equally,
// so an over- or under-generating move generator shows up as a wrong count.
func Perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !p.DoMove(m) {
			continue
		}
		nodes += Perft(p, depth-1)
		p.UndoMove(m)
	}
	return nodes
}

// PerftDivide runs Perft one ply at a time and returns the per-root-move
// breakdown, the divide output of the UCI front end's "perft <depth>"
// command.
func PerftDivide(p *Position, depth int) ([]Move, []uint64, uint64) {
	moves := p.GenerateLegalMoves()
	roots := make([]Move, 0, moves.Len())
	counts := make([]uint64, 0, moves.Len())
	var total uint64

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if !p.DoMove(m) {
			continue
		}
		var n uint64
		if depth <= 1 {
			n = 1
		} else {
			n = Perft(p, depth-1)
		}
		p.UndoMove(m)

		roots = append(roots, m)
		counts = append(counts, n)
		total += n
	}
	return roots, counts, total
}
