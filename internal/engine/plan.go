package engine

import (
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/tmoravec/pastiche/internal/catalog"
	"github.com/tmoravec/pastiche/internal/hist"
)

// planMerge reconciles a normalized staging set against the
// destination's current history, treating the staged entries as about
// to be appended at the end of the stack. It returns the destination
// instance renumbering the store must apply before the append.
//
// Phase A: for every staged operation (skipping single-instance
// operations) every existing destination entry of that operation is
// shifted up by max(staged instance)+1, guaranteeing no collision
// between destination and incoming instances before reconciliation.
//
// Phase B: destination instance families are visited grouped by
// operation in ascending name order, within an operation by ascending
// (shifted) instance, each represented by its most recent entry. A
// family whose label matches an unconsumed staged entry is renumbered
// to that entry's instance, so the incoming entry aligns with the slot
// it supersedes; the staged entry is consumed and cannot match again.
// An unmatched family survives and is renumbered to the next free
// instance after all incoming ones, pushing it behind the copied
// instances in final ordering.
//
// Rewrites are emitted in visit order; sequential application never
// collides because Phase A moved every family at or above the values
// Phase B hands out, and families are visited ascending.
//
// Labels match by NFC-normalized string equality. The "0" sentinel
// (unnamed) is a literal value like any other, so unnamed matches only
// unnamed; ambiguity between several unnamed candidates resolves to
// the first staged row not yet consumed.
func planMerge(dest []hist.Entry, staging []hist.StagingEntry, cat catalog.Catalog) ([]hist.InstanceShift, []hist.InstanceRewrite) {
	// Max staged instance per multi-instance operation.
	maxStaged := map[string]int{}
	for _, e := range staging {
		if cat.SingleInstance(e.Operation) {
			continue
		}
		if cur, ok := maxStaged[e.Operation]; !ok || e.Instance > cur {
			maxStaged[e.Operation] = e.Instance
		}
	}

	ops := make([]string, 0, len(maxStaged))
	for op := range maxStaged {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	// Phase A: provisional append shift, applied to a working copy so
	// Phase B sees shifted values.
	var shifts []hist.InstanceShift
	working := make([]hist.Entry, len(dest))
	copy(working, dest)
	for _, op := range ops {
		by := maxStaged[op] + 1
		shifts = append(shifts, hist.InstanceShift{Operation: op, By: by})
		for i := range working {
			if working[i].Operation == op {
				working[i].Instance += by
			}
		}
	}

	// Destination families: live entry per (operation, instance),
	// restricted to staged multi-instance operations, ascending.
	var families []hist.Entry
	for _, e := range hist.Live(working) {
		if _, staged := maxStaged[e.Operation]; staged {
			families = append(families, e)
		}
	}
	sort.Slice(families, func(i, j int) bool {
		if families[i].Operation != families[j].Operation {
			return families[i].Operation < families[j].Operation
		}
		return families[i].Instance < families[j].Instance
	})

	// Phase B: identity reconciliation.
	var rewrites []hist.InstanceRewrite
	consumed := make([]bool, len(staging))
	nextFree := -1
	prevOp := ""
	for _, fam := range families {
		if fam.Operation != prevOp {
			prevOp = fam.Operation
			nextFree = maxStaged[fam.Operation]
		}

		target := -1
		for i, se := range staging {
			if consumed[i] || se.Operation != fam.Operation {
				continue
			}
			if labelEqual(se.InstanceLabel, fam.InstanceLabel) {
				target = se.Instance
				consumed[i] = true
				break
			}
		}
		if target < 0 {
			// Survives unmatched: push it after the incoming instances.
			nextFree++
			target = nextFree
		}

		if target != fam.Instance {
			rewrites = append(rewrites, hist.InstanceRewrite{
				Operation: fam.Operation,
				From:      fam.Instance,
				To:        target,
			})
		}
	}

	return shifts, rewrites
}

// labelEqual compares user-typed instance labels under NFC
// normalization, so composed and decomposed spellings of the same
// label match.
func labelEqual(a, b string) bool {
	return norm.NFC.String(a) == norm.NFC.String(b)
}
