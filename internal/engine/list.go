package engine

import (
	"context"
	"iter"
	"strings"

	"github.com/tmoravec/pastiche/internal/hist"
)

// Item is one human-readable history summary line: the live state of
// one (operation, instance) pair.
type Item struct {
	Seq     int
	Name    string
	Enabled bool
}

// ListHistory returns the live entries of an item's stack as
// summaries, newest first. With activeOnly true, disabled entries are
// skipped.
//
// The returned sequence is finite and restartable; it iterates a
// snapshot taken at call time.
func (e *Engine) ListHistory(ctx context.Context, itemID int64, activeOnly bool) (iter.Seq[Item], error) {
	entries, err := e.store.LiveEntries(ctx, itemID)
	if err != nil {
		return nil, storeError(-1, itemID, err)
	}

	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if activeOnly && !entry.Enabled {
			continue
		}
		items = append(items, Item{
			Seq:     entry.Seq,
			Name:    e.displayName(entry),
			Enabled: entry.Enabled,
		})
	}

	return func(yield func(Item) bool) {
		for _, it := range items {
			if !yield(it) {
				return
			}
		}
	}, nil
}

// HistorySummary renders an item's full history (not deduplicated to
// live pairs), newest first, one line per entry annotated on/off,
// joined by newlines.
func (e *Engine) HistorySummary(ctx context.Context, itemID int64) (string, error) {
	entries, err := e.store.History(ctx, itemID)
	if err != nil {
		return "", storeError(-1, itemID, err)
	}

	var b strings.Builder
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.displayName(entry))
		if entry.Enabled {
			b.WriteString(" (on)")
		} else {
			b.WriteString(" (off)")
		}
	}
	return b.String(), nil
}

// displayName renders "DisplayName" or "DisplayName label" when the
// instance carries a real user-assigned label.
func (e *Engine) displayName(entry hist.Entry) string {
	name := e.catalog.DisplayName(entry.Operation)
	if entry.Named() {
		return name + " " + entry.InstanceLabel
	}
	return name
}
