package hist

import "sort"

// instanceKey identifies one instance family within a stack.
type instanceKey struct {
	op       string
	instance int
}

// Live returns the live entry of every (operation, instance) pair in
// the stack: the entry at the maximum seq for its pair. Results are
// ordered by that seq, ascending.
//
// An empty or nil input yields an empty slice, never nil.
func Live(entries []Entry) []Entry {
	latest := make(map[instanceKey]Entry, len(entries))
	for _, e := range entries {
		k := instanceKey{e.Operation, e.Instance}
		if cur, ok := latest[k]; !ok || e.Seq > cur.Seq {
			latest[k] = e
		}
	}

	live := make([]Entry, 0, len(latest))
	for _, e := range latest {
		live = append(live, e)
	}
	sort.Slice(live, func(i, j int) bool { return live[i].Seq < live[j].Seq })
	return live
}

// MaxSeq returns the highest seq in the stack, or -1 for an empty
// stack.
func MaxSeq(entries []Entry) int {
	max := -1
	for _, e := range entries {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max
}

// Contiguous reports whether the stack's seq values are exactly
// {0, ..., n-1}. This is the seq invariant every write path must
// restore.
func Contiguous(entries []Entry) bool {
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.Seq < 0 || e.Seq >= len(entries) || seen[e.Seq] {
			return false
		}
		seen[e.Seq] = true
	}
	return true
}
