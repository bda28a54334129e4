// Package testutil provides shared helpers for engine and CLI tests:
// a deterministic operation catalog and history seeding shortcuts.
package testutil

import (
	"context"
	"testing"

	"github.com/tmoravec/pastiche/internal/catalog"
	"github.com/tmoravec/pastiche/internal/hist"
	"github.com/tmoravec/pastiche/internal/store"
)

// Catalog returns the fixed catalog used across tests: exposure and
// crop are single-instance, blur and sharpen are multi-instance.
func Catalog() catalog.Static {
	return catalog.NewStatic(
		catalog.Operation{Name: "exposure", DisplayName: "Exposure", SingleInstance: true},
		catalog.Operation{Name: "crop", DisplayName: "Crop & Rotate", SingleInstance: true},
		catalog.Operation{Name: "blur", DisplayName: "Blur"},
		catalog.Operation{Name: "sharpen", DisplayName: "Sharpen"},
	)
}

// Entry builds a history entry with the unnamed label sentinel.
func Entry(seq int, op string, instance int, enabled bool) hist.Entry {
	return LabeledEntry(seq, op, instance, hist.UnnamedLabel, enabled)
}

// LabeledEntry builds a history entry with an explicit instance label.
func LabeledEntry(seq int, op string, instance int, label string, enabled bool) hist.Entry {
	return hist.Entry{
		Seq:           seq,
		Operation:     op,
		Instance:      instance,
		InstanceLabel: label,
		Enabled:       enabled,
		Params:        []byte(op),
		BlendVersion:  1,
	}
}

// SeedItem registers an item and inserts the given entries as its
// history.
func SeedItem(t *testing.T, s *store.Store, itemID int64, entries ...hist.Entry) {
	t.Helper()
	ctx := context.Background()
	if err := s.AddItem(ctx, itemID); err != nil {
		t.Fatalf("AddItem(%d) failed: %v", itemID, err)
	}
	for _, e := range entries {
		if err := s.InsertEntry(ctx, itemID, e); err != nil {
			t.Fatalf("InsertEntry(%d, seq %d) failed: %v", itemID, e.Seq, err)
		}
	}
}
