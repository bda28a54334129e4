package engine

import (
	"github.com/tmoravec/pastiche/internal/hist"
)

// buildStaging selects the source entries to copy and stages them with
// 1-based provisional rows.
//
// When collapsing (merge mode with no explicit selection) only the
// live entry of each (operation, instance) pair is staged, ordered by
// that entry's seq: history edits collapse into their final state
// before copying. Otherwise entries at exactly the selected seqs (or
// all entries if no selection was given) are staged in seq order,
// keeping their identities as originally recorded.
//
// The result never references the source item; payload fields are
// copied by value.
func buildStaging(source []hist.Entry, selection []int, collapse bool) []hist.StagingEntry {
	var picked []hist.Entry
	switch {
	case collapse:
		picked = hist.Live(source)
	case len(selection) > 0:
		want := make(map[int]bool, len(selection))
		for _, seq := range selection {
			want[seq] = true
		}
		for _, e := range source {
			if want[e.Seq] {
				picked = append(picked, e)
			}
		}
	default:
		picked = source
	}

	staged := make([]hist.StagingEntry, 0, len(picked))
	for i, e := range picked {
		staged = append(staged, hist.Stage(i+1, e))
	}
	return staged
}
