package board

import "math/bits"

// Magic bitboard slider attack tables (spec.md 4.1). A hand-copied magic
// number table tuned for somebody else's square numbering would silently
// break under this engine's H1=0, file-reversed layout, since magic
// multiplication is sensitive to exact bit position. Instead each magic is
// found at package init time by a deterministic seeded search: same seed,
// same candidate stream, same resulting numbers on every run and every
// machine, so TT and bench behavior stay fully reproducible even though
// the numbers are discovered rather than literal.
const magicSeed uint64 = 0xD1B54A32D192ED03

// Magic holds the magic bitboard data for a single square.
type Magic struct {
	Mask   Bitboard
	Number uint64
	Shift  uint
	Offset int
}

var (
	bishopMagics [64]Magic
	rookMagics   [64]Magic

	bishopTable []Bitboard
	rookTable   []Bitboard
)

var bishopDirs = []func(Bitboard) Bitboard{
	Bitboard.NorthEast, Bitboard.NorthWest, Bitboard.SouthEast, Bitboard.SouthWest,
}
var rookDirs = []func(Bitboard) Bitboard{
	Bitboard.North, Bitboard.South, Bitboard.East, Bitboard.West,
}

// slidingAttacksOnTheFly walks each ray one step at a time, stopping after
// the first blocker; used only to build the magic tables at init time.
func slidingAttacksOnTheFly(sq Square, occupied Bitboard, dirs []func(Bitboard) Bitboard) Bitboard {
	var attacks Bitboard
	for _, dir := range dirs {
		bb := SquareBB(sq)
		for {
			bb = dir(bb)
			if bb == 0 {
				break
			}
			attacks |= bb
			if bb&occupied != 0 {
				break
			}
		}
	}
	return attacks
}

// relevantOccupancyMask returns the squares a slider's attack set can
// depend on: every square a ray crosses, minus the far board edge in each
// direction (an occupant there never changes whether the ray was blocked
// earlier, so it needn't be part of the hash key).
func relevantOccupancyMask(sq Square, dirs []func(Bitboard) Bitboard) Bitboard {
	full := slidingAttacksOnTheFly(sq, 0, dirs)
	edges := ((Rank1 | Rank8) &^ RankMask[sq.Rank()]) | ((FileA | FileH) &^ FileMask[sq.File()])
	return full &^ edges
}

// magicRNG is a fixed-seed splitmix64 generator; sparse() produces the
// few-set-bit candidates a magic search converges on fastest.
type magicRNG struct{ state uint64 }

func (r *magicRNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (r *magicRNG) sparse() uint64 {
	return r.next() & r.next() & r.next()
}

// indexToOccupancy maps an integer in [0, 1<<popcount(mask)) to the
// occupancy subset it denotes via the standard Carry-Rippler enumeration
// order: one index bit per set bit of mask, low to high.
func indexToOccupancy(index int, mask Bitboard) Bitboard {
	var occ Bitboard
	bitsLeft := mask
	for i := 0; bitsLeft != 0; i++ {
		sq := bitsLeft.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

// findMagic searches for a magic multiplier that perfectly hashes every
// occupancy subset of mask into a collision-free table, returning that
// table alongside the winning magic and shift.
func findMagic(sq Square, mask Bitboard, dirs []func(Bitboard) Bitboard, rng *magicRNG) (uint64, uint, []Bitboard) {
	bitCount := mask.PopCount()
	size := 1 << bitCount
	shift := uint(64 - bitCount)

	occupancies := make([]Bitboard, size)
	references := make([]Bitboard, size)
	for i := 0; i < size; i++ {
		occ := indexToOccupancy(i, mask)
		occupancies[i] = occ
		references[i] = slidingAttacksOnTheFly(sq, occ, dirs)
	}

	table := make([]Bitboard, size)
	used := make([]bool, size)

	for attempt := 0; attempt < 100_000_000; attempt++ {
		magic := rng.sparse()
		if bits.OnesCount64((uint64(mask)*magic)>>56) < 6 {
			continue
		}
		for i := range used {
			used[i] = false
		}
		ok := true
		for i := 0; i < size; i++ {
			idx := (uint64(occupancies[i]) * magic) >> shift
			if used[idx] && table[idx] != references[i] {
				ok = false
				break
			}
			used[idx] = true
			table[idx] = references[i]
		}
		if ok {
			return magic, shift, table
		}
	}
	panic("board: magic search failed to converge for square " + sq.String())
}

func initMagics() {
	rng := &magicRNG{state: magicSeed}

	var bishopTables, rookTables [64][]Bitboard
	bishopOffset, rookOffset := 0, 0

	for sq := Square(0); sq < 64; sq++ {
		bMask := relevantOccupancyMask(sq, bishopDirs)
		bMagic, bShift, bTable := findMagic(sq, bMask, bishopDirs, rng)
		bishopMagics[sq] = Magic{Mask: bMask, Number: bMagic, Shift: bShift, Offset: bishopOffset}
		bishopTables[sq] = bTable
		bishopOffset += len(bTable)

		rMask := relevantOccupancyMask(sq, rookDirs)
		rMagic, rShift, rTable := findMagic(sq, rMask, rookDirs, rng)
		rookMagics[sq] = Magic{Mask: rMask, Number: rMagic, Shift: rShift, Offset: rookOffset}
		rookTables[sq] = rTable
		rookOffset += len(rTable)
	}

	bishopTable = make([]Bitboard, bishopOffset)
	rookTable = make([]Bitboard, rookOffset)
	for sq := Square(0); sq < 64; sq++ {
		copy(bishopTable[bishopMagics[sq].Offset:], bishopTables[sq])
		copy(rookTable[rookMagics[sq].Offset:], rookTables[sq])
	}
}

// getBishopAttacks returns bishop attacks using magic bitboards.
func getBishopAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := (uint64(occupied&m.Mask) * m.Number) >> m.Shift
	return bishopTable[m.Offset+int(idx)]
}

// getRookAttacks returns rook attacks using magic bitboards.
func getRookAttacks(sq Square, occupied Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := (uint64(occupied&m.Mask) * m.Number) >> m.Shift
	return rookTable[m.Offset+int(idx)]
}
