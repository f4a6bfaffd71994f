package engine

// MaterialEntry caches the imbalance-table lookup for one material
// configuration (spec.md 4.4's quadratic interaction matrix), keyed on the
// position's MaterialKey so the O(n^2) imbalance scan only runs once per
// distinct piece count combination a worker encounters.
type MaterialEntry struct {
	Key     uint64
	Phase   int
	MgScore int16
	EgScore int16
}

// MaterialTable is a single-entry-per-slot cache, one per search worker,
// mirroring PawnTable's ownership and locking story.
type MaterialTable struct {
	entries []MaterialEntry
	mask    uint64
}

// NewMaterialTable creates a new material hash table with the given size
// in MB.
func NewMaterialTable(sizeMB int) *MaterialTable {
	const entrySize = 16
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}
	if size == 0 {
		size = 1
	}

	return &MaterialTable{
		entries: make([]MaterialEntry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up a material imbalance evaluation in the hash table.
func (mt *MaterialTable) Probe(key uint64) (*MaterialEntry, bool) {
	entry := &mt.entries[key&mt.mask]
	if entry.Key == key {
		return entry, true
	}
	return nil, false
}

// Store saves a material imbalance evaluation in the hash table.
func (mt *MaterialTable) Store(key uint64, phase, mg, eg int) *MaterialEntry {
	entry := &mt.entries[key&mt.mask]
	entry.Key = key
	entry.Phase = phase
	entry.MgScore = int16(mg)
	entry.EgScore = int16(eg)
	return entry
}

// Clear clears the material hash table.
func (mt *MaterialTable) Clear() {
	for i := range mt.entries {
		mt.entries[i] = MaterialEntry{}
	}
}
