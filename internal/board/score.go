package board

// Score is a (midgame, endgame) evaluation term pair (spec.md 3). Addition,
// subtraction and scalar multiplication act component-wise; the fold to a
// single centipawn value happens only at the search boundary (see
// engine's Eval.Evaluate, which weights by Position.Phase), never inside
// board.
type Score struct {
	MG int32
	EG int32
}

func (s Score) Add(o Score) Score   { return Score{s.MG + o.MG, s.EG + o.EG} }
func (s Score) Sub(o Score) Score   { return Score{s.MG - o.MG, s.EG - o.EG} }
func (s Score) Neg() Score          { return Score{-s.MG, -s.EG} }
func (s Score) Mul(n int32) Score   { return Score{s.MG * n, s.EG * n} }

// S is shorthand for constructing a Score literal, matching the compact
// (mg, eg) tuples in pst.go.
func S(mg, eg int32) Score { return Score{mg, eg} }
