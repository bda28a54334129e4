package engine

import (
	"sort"

	"github.com/tmoravec/pastiche/internal/catalog"
	"github.com/tmoravec/pastiche/internal/hist"
)

// normalizeInstances repairs the instance-contiguity invariant inside
// a staging set.
//
// Arbitrary user selection can leave gaps: copying the 1st and 3rd of
// three blur instances stages instances {0, 2}. For each operation
// (skipping single-instance operations, whose instance is always 0 and
// never renumbered) the staged instance values are renumbered 0..k-1
// in ascending (operation, instance) order, and the mapping is applied
// to every staged entry sharing the old pair.
//
// Returns true if anything changed. An already-normalized staging set
// is left untouched, so running this twice is a no-op.
func normalizeInstances(staging []hist.StagingEntry, cat catalog.Catalog) bool {
	type pair struct {
		op       string
		instance int
	}

	seen := map[pair]bool{}
	var pairs []pair
	for _, e := range staging {
		if cat.SingleInstance(e.Operation) {
			continue
		}
		p := pair{e.Operation, e.Instance}
		if !seen[p] {
			seen[p] = true
			pairs = append(pairs, p)
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].op != pairs[j].op {
			return pairs[i].op < pairs[j].op
		}
		return pairs[i].instance < pairs[j].instance
	})

	// Renumber per operation; record only the pairs that move.
	remap := map[pair]int{}
	next := 0
	prevOp := ""
	for _, p := range pairs {
		if p.op != prevOp {
			prevOp = p.op
			next = 0
		}
		if p.instance != next {
			remap[p] = next
		}
		next++
	}
	if len(remap) == 0 {
		return false
	}

	for i, e := range staging {
		if to, ok := remap[pair{e.Operation, e.Instance}]; ok {
			staging[i].Instance = to
		}
	}
	return true
}
