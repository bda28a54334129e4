package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tmoravec/pastiche/internal/hist"
)

// AddItem registers an item. Adding an existing item is a no-op.
func (s *Store) AddItem(ctx context.Context, itemID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO items (id) VALUES (?)`, itemID)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	return nil
}

// SetAutoPresetsApplied sets an item's auto-presets flag.
func (s *Store) SetAutoPresetsApplied(ctx context.Context, itemID int64, applied bool) error {
	v := 0
	if applied {
		v = 1
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE items SET auto_presets_applied = ? WHERE id = ?`, v, itemID)
	if err != nil {
		return fmt.Errorf("set auto-presets flag: %w", err)
	}
	return nil
}

// SetSelection replaces the current selection with the given item IDs.
func (s *Store) SetSelection(ctx context.Context, itemIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set selection: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM selected_items`); err != nil {
		return fmt.Errorf("set selection: clear: %w", err)
	}
	for _, id := range itemIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO selected_items (item_id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("set selection: insert %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set selection: commit: %w", err)
	}
	return nil
}

// InsertEntry appends one history entry for an item at the given seq.
// Intended for seeding stacks; paste paths go through Paste.
func (s *Store) InsertEntry(ctx context.Context, itemID int64, e hist.Entry) error {
	if err := insertEntry(ctx, s.db.ExecContext, itemID, e.Seq, stagePayload(e)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET active_length = (SELECT IFNULL(MAX(seq), -1) + 1 FROM history WHERE item_id = ?1)
		WHERE id = ?1
	`, itemID)
	if err != nil {
		return fmt.Errorf("insert entry: update active length: %w", err)
	}
	return nil
}

// DeleteHistory removes all history and mask rows for an item, resets
// its active-length marker and clears the auto-presets flag, all in
// one transaction. Idempotent on an item with no history.
func (s *Store) DeleteHistory(ctx context.Context, itemID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete history: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("delete history: entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM masks WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("delete history: masks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET active_length = 0, auto_presets_applied = 0 WHERE id = ?`, itemID); err != nil {
		return fmt.Errorf("delete history: reset item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete history: commit: %w", err)
	}
	return nil
}

// PastePlan is the outcome of merge planning: the staged entries to
// append plus the destination instance renumbering that must precede
// the append. Shifts are applied before rewrites; rewrites are applied
// in order.
type PastePlan struct {
	Entries  []hist.StagingEntry
	Shifts   []hist.InstanceShift
	Rewrites []hist.InstanceRewrite
}

// PlanFunc computes a paste plan from the source history and the
// destination's current (post-trim) history. It must be pure: it runs
// inside the paste transaction and is not allowed to touch the store.
type PlanFunc func(source, dest []hist.Entry) (*PastePlan, error)

// Paste runs one complete paste against a destination item as a single
// transaction:
//
//	merge:   trim undo tail -> plan -> shift/rewrite dest instances ->
//	         append staged entries -> union source masks
//	replace: plan -> delete dest history+masks -> insert staged entries
//	         at seq 0 -> copy source masks
//
// In both modes the destination's active length becomes max(seq)+1 and
// an audit row keyed by token is written. Any failure rolls the whole
// transaction back; an error returned by plan is passed through
// unwrapped.
func (s *Store) Paste(ctx context.Context, sourceID, destID int64, merge bool, token string, plan PlanFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("paste: begin tx: %w", err)
	}
	defer tx.Rollback()

	if merge {
		// Trim whatever sits above the active marker: the undo-redo
		// tail must not survive a merge underneath it.
		_, err := tx.ExecContext(ctx, `
			DELETE FROM history
			WHERE item_id = ?1
			  AND seq >= (SELECT active_length FROM items WHERE id = ?1)
		`, destID)
		if err != nil {
			return fmt.Errorf("paste: trim undo tail: %w", err)
		}
	}

	source, err := historyTx(ctx, tx, sourceID)
	if err != nil {
		return fmt.Errorf("paste: read source: %w", err)
	}
	dest, err := historyTx(ctx, tx, destID)
	if err != nil {
		return fmt.Errorf("paste: read dest: %w", err)
	}

	p, err := plan(source, dest)
	if err != nil {
		return err
	}

	offset := 0
	if merge {
		offset = hist.MaxSeq(dest) + 1
	} else {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM history WHERE item_id = ?`, destID); err != nil {
			return fmt.Errorf("paste: clear dest history: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM masks WHERE item_id = ?`, destID); err != nil {
			return fmt.Errorf("paste: clear dest masks: %w", err)
		}
	}

	for _, shift := range p.Shifts {
		_, err := tx.ExecContext(ctx, `
			UPDATE history SET instance = instance + ?1
			WHERE item_id = ?2 AND operation = ?3
		`, shift.By, destID, shift.Operation)
		if err != nil {
			return fmt.Errorf("paste: shift %s by %d: %w", shift.Operation, shift.By, err)
		}
	}

	for _, rw := range p.Rewrites {
		_, err := tx.ExecContext(ctx, `
			UPDATE history SET instance = ?1
			WHERE item_id = ?2 AND operation = ?3 AND instance = ?4
		`, rw.To, destID, rw.Operation, rw.From)
		if err != nil {
			return fmt.Errorf("paste: rewrite %s %d->%d: %w", rw.Operation, rw.From, rw.To, err)
		}
	}

	// Staged rows are 1-based; seq starts at the offset.
	for i, e := range p.Entries {
		if err := insertEntry(ctx, tx.ExecContext, destID, offset+i, e); err != nil {
			return fmt.Errorf("paste: %w", err)
		}
	}

	// Masks travel with the history. In merge mode existing destination
	// masks are kept; colliding form IDs are not reconciled.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO masks (item_id, form_id, form, name, version, points, points_count, source)
		SELECT ?1, form_id, form, name, version, points, points_count, source
		FROM masks WHERE item_id = ?2
	`, destID, sourceID)
	if err != nil {
		return fmt.Errorf("paste: copy masks: %w", err)
	}

	// The whole stack, old and new, becomes active.
	_, err = tx.ExecContext(ctx, `
		UPDATE items
		SET active_length = (SELECT IFNULL(MAX(seq), -1) + 1 FROM history WHERE item_id = ?1)
		WHERE id = ?1
	`, destID)
	if err != nil {
		return fmt.Errorf("paste: update active length: %w", err)
	}

	mode := "replace"
	if merge {
		mode = "merge"
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO paste_log (token, source_id, dest_id, mode, entries)
		VALUES (?, ?, ?, ?, ?)
	`, token, sourceID, destID, mode, len(p.Entries))
	if err != nil {
		return fmt.Errorf("paste: write audit row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("paste: commit: %w", err)
	}
	return nil
}

// SidecarApply describes a full-stack import from a sidecar document.
type SidecarApply struct {
	ItemID             int64
	Entries            []hist.Entry
	Masks              []hist.Mask
	ActiveLength       int
	AutoPresetsApplied bool
	HistoryOnly        bool // skip non-history fields (the flag)
}

// ApplySidecar replaces an item's history and masks with the imported
// document in one transaction. Entries are renumbered 0..n-1 in the
// order given; an out-of-range active length falls back to the full
// stack.
func (s *Store) ApplySidecar(ctx context.Context, a SidecarApply) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply sidecar: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history WHERE item_id = ?`, a.ItemID); err != nil {
		return fmt.Errorf("apply sidecar: clear history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM masks WHERE item_id = ?`, a.ItemID); err != nil {
		return fmt.Errorf("apply sidecar: clear masks: %w", err)
	}

	for i, e := range a.Entries {
		if err := insertEntry(ctx, tx.ExecContext, a.ItemID, i, stagePayload(e)); err != nil {
			return fmt.Errorf("apply sidecar: %w", err)
		}
	}
	for _, m := range a.Masks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO masks (item_id, form_id, form, name, version, points, points_count, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ItemID, m.FormID, m.Form, m.Name, m.Version, m.Points, m.PointsCount, m.Source)
		if err != nil {
			return fmt.Errorf("apply sidecar: insert mask: %w", err)
		}
	}

	length := a.ActiveLength
	if length < 0 || length > len(a.Entries) {
		length = len(a.Entries)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET active_length = ? WHERE id = ?`, length, a.ItemID); err != nil {
		return fmt.Errorf("apply sidecar: set active length: %w", err)
	}

	if !a.HistoryOnly {
		v := 0
		if a.AutoPresetsApplied {
			v = 1
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET auto_presets_applied = ? WHERE id = ?`, v, a.ItemID); err != nil {
			return fmt.Errorf("apply sidecar: set flag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply sidecar: commit: %w", err)
	}
	return nil
}

// AddMask inserts one mask row. Intended for seeding; paste paths copy
// masks wholesale.
func (s *Store) AddMask(ctx context.Context, itemID int64, m hist.Mask) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO masks (item_id, form_id, form, name, version, points, points_count, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, itemID, m.FormID, m.Form, m.Name, m.Version, m.Points, m.PointsCount, m.Source)
	if err != nil {
		return fmt.Errorf("add mask: %w", err)
	}
	return nil
}

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func insertEntry(ctx context.Context, exec execFunc, itemID int64, seq int, e hist.StagingEntry) error {
	enabled := 0
	if e.Enabled {
		enabled = 1
	}
	_, err := exec(ctx, `
		INSERT INTO history
		(item_id, seq, operation, instance, instance_label, enabled, params, blend_params, blend_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, itemID, seq, e.Operation, e.Instance, e.InstanceLabel, enabled, e.Params, e.BlendParams, e.BlendVersion)
	if err != nil {
		return fmt.Errorf("insert history entry seq %d: %w", seq, err)
	}
	return nil
}

// stagePayload converts an entry into the staging shape used by the
// shared insert path.
func stagePayload(e hist.Entry) hist.StagingEntry {
	return hist.Stage(0, e)
}
