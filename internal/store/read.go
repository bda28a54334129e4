package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tmoravec/pastiche/internal/hist"
)

// History returns an item's full history ordered by seq ascending.
// Returns an empty slice (not nil) for an item with no history.
func (s *Store) History(ctx context.Context, itemID int64) ([]hist.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, operation, instance, instance_label, enabled, params, blend_params, blend_version
		FROM history
		WHERE item_id = ?
		ORDER BY seq ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// historyTx is the in-transaction variant of History.
func historyTx(ctx context.Context, tx *sql.Tx, itemID int64) ([]hist.Entry, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT seq, operation, instance, instance_label, enabled, params, blend_params, blend_version
		FROM history
		WHERE item_id = ?
		ORDER BY seq ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]hist.Entry, error) {
	entries := []hist.Entry{}
	for rows.Next() {
		var e hist.Entry
		var enabled int
		if err := rows.Scan(
			&e.Seq, &e.Operation, &e.Instance, &e.InstanceLabel,
			&enabled, &e.Params, &e.BlendParams, &e.BlendVersion,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Enabled = enabled != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// LiveEntries returns the live entry of every (operation, instance)
// pair in an item's history: the entry at the maximum seq for its
// pair. Results are ordered by seq descending (newest first), matching
// the listing order shown to the user.
func (s *Store) LiveEntries(ctx context.Context, itemID int64) ([]hist.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, operation, instance, instance_label, enabled, params, blend_params, blend_version
		FROM history
		WHERE item_id = ?1 AND seq IN (
			SELECT MAX(seq) FROM history h2
			WHERE h2.item_id = ?1 AND h2.operation = history.operation
			GROUP BY h2.instance
		)
		ORDER BY seq DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query live entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Masks returns an item's mask rows in insertion order.
func (s *Store) Masks(ctx context.Context, itemID int64) ([]hist.Mask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT form_id, form, name, version, points, points_count, source
		FROM masks
		WHERE item_id = ?
		ORDER BY rowid ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query masks: %w", err)
	}
	defer rows.Close()

	masks := []hist.Mask{}
	for rows.Next() {
		var m hist.Mask
		if err := rows.Scan(&m.FormID, &m.Form, &m.Name, &m.Version, &m.Points, &m.PointsCount, &m.Source); err != nil {
			return nil, fmt.Errorf("scan mask: %w", err)
		}
		masks = append(masks, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate masks: %w", err)
	}
	return masks, nil
}

// ActiveLength returns an item's active-length marker, or 0 for an
// unknown item.
func (s *Store) ActiveLength(ctx context.Context, itemID int64) (int, error) {
	var length int
	err := s.db.QueryRowContext(ctx,
		`SELECT active_length FROM items WHERE id = ?`, itemID,
	).Scan(&length)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query active length: %w", err)
	}
	return length, nil
}

// ItemExists reports whether an item row exists.
func (s *Store) ItemExists(ctx context.Context, itemID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE id = ?`, itemID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query item: %w", err)
	}
	return count > 0, nil
}

// AutoPresetsApplied reports an item's auto-presets flag.
func (s *Store) AutoPresetsApplied(ctx context.Context, itemID int64) (bool, error) {
	var applied int
	err := s.db.QueryRowContext(ctx,
		`SELECT auto_presets_applied FROM items WHERE id = ?`, itemID,
	).Scan(&applied)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query auto-presets flag: %w", err)
	}
	return applied != 0, nil
}

// Selection returns the selected item IDs in ascending order.
func (s *Store) Selection(ctx context.Context) ([]int64, error) {
	return s.selection(ctx, `SELECT item_id FROM selected_items ORDER BY item_id ASC`)
}

// SelectionExcluding returns the selected item IDs except the given
// one, in ascending order. Used by paste-on-selection, which never
// pastes an item onto itself.
func (s *Store) SelectionExcluding(ctx context.Context, itemID int64) ([]int64, error) {
	return s.selection(ctx,
		`SELECT item_id FROM selected_items WHERE item_id != ? ORDER BY item_id ASC`, itemID)
}

func (s *Store) selection(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query selection: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan selection: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate selection: %w", err)
	}
	return ids, nil
}

// PasteRecord is one committed paste, from the audit log.
type PasteRecord struct {
	Token    string
	SourceID int64
	DestID   int64
	Mode     string
	Entries  int
}

// PasteLog returns the audit records where the item was the paste
// destination, oldest first.
func (s *Store) PasteLog(ctx context.Context, itemID int64) ([]PasteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, source_id, dest_id, mode, entries
		FROM paste_log
		WHERE dest_id = ?
		ORDER BY rowid ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query paste log: %w", err)
	}
	defer rows.Close()

	records := []PasteRecord{}
	for rows.Next() {
		var r PasteRecord
		if err := rows.Scan(&r.Token, &r.SourceID, &r.DestID, &r.Mode, &r.Entries); err != nil {
			return nil, fmt.Errorf("scan paste record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paste log: %w", err)
	}
	return records, nil
}
