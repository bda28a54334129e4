package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tmoravec/pastiche/internal/hist"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustSeed(t *testing.T, s *Store, itemID int64, entries ...hist.Entry) {
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

func testEntry(seq int, op string, instance int) hist.Entry {
	return hist.Entry{
		Seq:           seq,
		Operation:     op,
		Instance:      instance,
		InstanceLabel: hist.UnnamedLabel,
		Enabled:       true,
		Params:        []byte(op),
		BlendVersion:  1,
	}
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()
}

func TestOpenAppliesPragmas(t *testing.T) {
	s := newTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

func TestSchemaVersionSet(t *testing.T) {
	s := newTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := hist.Entry{
		Seq:           0,
		Operation:     "blur",
		Instance:      2,
		InstanceLabel: "soft",
		Enabled:       true,
		Params:        []byte{0x01, 0x02},
		BlendParams:   []byte{0x03},
		BlendVersion:  4,
	}
	mustSeed(t, s, 1, e)

	entries, err := s.History(ctx, 1)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("History() returned %d entries, want 1", len(entries))
	}
	got := entries[0]
	if got.Operation != "blur" || got.Instance != 2 || got.InstanceLabel != "soft" {
		t.Errorf("entry identity = %s#%d %q", got.Operation, got.Instance, got.InstanceLabel)
	}
	if !got.Enabled || got.BlendVersion != 4 {
		t.Errorf("entry payload = enabled %v, blend version %d", got.Enabled, got.BlendVersion)
	}
	if string(got.Params) != "\x01\x02" || string(got.BlendParams) != "\x03" {
		t.Errorf("entry bytes = %x / %x", got.Params, got.BlendParams)
	}
}

func TestHistoryEmptyItem(t *testing.T) {
	s := newTestStore(t)

	entries, err := s.History(context.Background(), 42)
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("History() = %v, want empty non-nil slice", entries)
	}
}

func TestInsertEntryUpdatesActiveLength(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0), testEntry(1, "sharpen", 0))

	length, err := s.ActiveLength(ctx, 1)
	if err != nil {
		t.Fatalf("ActiveLength() failed: %v", err)
	}
	if length != 2 {
		t.Errorf("ActiveLength() = %d, want 2", length)
	}
}

func TestInsertEntryUnknownItemRejected(t *testing.T) {
	s := newTestStore(t)

	err := s.InsertEntry(context.Background(), 99, testEntry(0, "blur", 0))
	if err == nil {
		t.Fatal("expected foreign key error for unregistered item")
	}
}

func TestLiveEntriesNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1,
		testEntry(0, "exposure", 0),
		testEntry(1, "blur", 0),
		testEntry(2, "blur", 0), // supersedes seq 1
		testEntry(3, "blur", 1),
	)

	live, err := s.LiveEntries(ctx, 1)
	if err != nil {
		t.Fatalf("LiveEntries() failed: %v", err)
	}
	if len(live) != 3 {
		t.Fatalf("LiveEntries() returned %d entries, want 3", len(live))
	}
	wantSeqs := []int{3, 2, 0}
	for i, want := range wantSeqs {
		if live[i].Seq != want {
			t.Errorf("live[%d].Seq = %d, want %d", i, live[i].Seq, want)
		}
	}
}

func TestDeleteHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0))
	if err := s.AddMask(ctx, 1, hist.Mask{FormID: 7}); err != nil {
		t.Fatalf("AddMask() failed: %v", err)
	}
	if err := s.SetAutoPresetsApplied(ctx, 1, true); err != nil {
		t.Fatalf("SetAutoPresetsApplied() failed: %v", err)
	}

	if err := s.DeleteHistory(ctx, 1); err != nil {
		t.Fatalf("DeleteHistory() failed: %v", err)
	}

	entries, _ := s.History(ctx, 1)
	if len(entries) != 0 {
		t.Errorf("history not cleared: %d entries remain", len(entries))
	}
	masks, _ := s.Masks(ctx, 1)
	if len(masks) != 0 {
		t.Errorf("masks not cleared: %d remain", len(masks))
	}
	length, _ := s.ActiveLength(ctx, 1)
	if length != 0 {
		t.Errorf("active length = %d, want 0", length)
	}
	applied, _ := s.AutoPresetsApplied(ctx, 1)
	if applied {
		t.Error("auto-presets flag not cleared")
	}

	// Idempotent.
	if err := s.DeleteHistory(ctx, 1); err != nil {
		t.Errorf("second DeleteHistory() failed: %v", err)
	}
}

func TestSelection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetSelection(ctx, []int64{3, 1, 2}); err != nil {
		t.Fatalf("SetSelection() failed: %v", err)
	}

	ids, err := s.Selection(ctx)
	if err != nil {
		t.Fatalf("Selection() failed: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Errorf("Selection() = %v, want [1 2 3]", ids)
	}

	excl, err := s.SelectionExcluding(ctx, 2)
	if err != nil {
		t.Fatalf("SelectionExcluding() failed: %v", err)
	}
	if len(excl) != 2 || excl[0] != 1 || excl[1] != 3 {
		t.Errorf("SelectionExcluding(2) = %v, want [1 3]", excl)
	}

	// Replacing the selection clears the old one.
	if err := s.SetSelection(ctx, []int64{5}); err != nil {
		t.Fatalf("SetSelection() failed: %v", err)
	}
	ids, _ = s.Selection(ctx)
	if len(ids) != 1 || ids[0] != 5 {
		t.Errorf("Selection() after replace = %v, want [5]", ids)
	}
}

func passthroughPlan(entries func(source []hist.Entry) []hist.StagingEntry) PlanFunc {
	return func(source, dest []hist.Entry) (*PastePlan, error) {
		return &PastePlan{Entries: entries(source)}, nil
	}
}

func stageAll(source []hist.Entry) []hist.StagingEntry {
	staged := make([]hist.StagingEntry, 0, len(source))
	for i, e := range source {
		staged = append(staged, hist.Stage(i+1, e))
	}
	return staged
}

func TestPasteReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0), testEntry(1, "sharpen", 0))
	mustSeed(t, s, 2, testEntry(0, "exposure", 0))

	err := s.Paste(ctx, 1, 2, false, "tok-replace", passthroughPlan(stageAll))
	if err != nil {
		t.Fatalf("Paste() failed: %v", err)
	}

	entries, _ := s.History(ctx, 2)
	if len(entries) != 2 {
		t.Fatalf("dest has %d entries, want 2", len(entries))
	}
	if entries[0].Seq != 0 || entries[0].Operation != "blur" {
		t.Errorf("entries[0] = seq %d %s", entries[0].Seq, entries[0].Operation)
	}
	length, _ := s.ActiveLength(ctx, 2)
	if length != 2 {
		t.Errorf("active length = %d, want 2", length)
	}
}

func TestPasteMergeAppendsAfterExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "sharpen", 0))
	mustSeed(t, s, 2, testEntry(0, "exposure", 0), testEntry(1, "blur", 0))

	err := s.Paste(ctx, 1, 2, true, "tok-merge", passthroughPlan(stageAll))
	if err != nil {
		t.Fatalf("Paste() failed: %v", err)
	}

	entries, _ := s.History(ctx, 2)
	if len(entries) != 3 {
		t.Fatalf("dest has %d entries, want 3", len(entries))
	}
	if entries[2].Seq != 2 || entries[2].Operation != "sharpen" {
		t.Errorf("appended entry = seq %d %s, want seq 2 sharpen", entries[2].Seq, entries[2].Operation)
	}
}

func TestPasteAppliesShiftsAndRewrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0))
	mustSeed(t, s, 2, testEntry(0, "blur", 0))

	plan := func(source, dest []hist.Entry) (*PastePlan, error) {
		return &PastePlan{
			Entries:  stageAll(source),
			Shifts:   []hist.InstanceShift{{Operation: "blur", By: 1}},
			Rewrites: []hist.InstanceRewrite{{Operation: "blur", From: 1, To: 5}},
		}, nil
	}
	if err := s.Paste(ctx, 1, 2, true, "tok-shift", plan); err != nil {
		t.Fatalf("Paste() failed: %v", err)
	}

	entries, _ := s.History(ctx, 2)
	if len(entries) != 2 {
		t.Fatalf("dest has %d entries, want 2", len(entries))
	}
	if entries[0].Instance != 5 {
		t.Errorf("old dest entry instance = %d, want 5 (shifted then rewritten)", entries[0].Instance)
	}
	if entries[1].Instance != 0 {
		t.Errorf("appended entry instance = %d, want 0", entries[1].Instance)
	}
}

func TestPastePlanErrorRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0))
	mustSeed(t, s, 2,
		testEntry(0, "exposure", 0),
		testEntry(1, "blur", 0),
	)
	// Force an undo tail so the trim would bite if committed.
	if _, err := s.db.ExecContext(ctx, `UPDATE items SET active_length = 1 WHERE id = 2`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	planErr := errors.New("planning refused")
	err := s.Paste(ctx, 1, 2, true, "tok-fail", func(source, dest []hist.Entry) (*PastePlan, error) {
		return nil, planErr
	})
	if !errors.Is(err, planErr) {
		t.Fatalf("Paste() error = %v, want the plan error unwrapped", err)
	}

	entries, _ := s.History(ctx, 2)
	if len(entries) != 2 {
		t.Errorf("dest has %d entries, want 2: trim must roll back with the rest", len(entries))
	}
}

func TestPasteWritesAuditRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0))
	mustSeed(t, s, 2)

	if err := s.Paste(ctx, 1, 2, false, "tok-audit", passthroughPlan(stageAll)); err != nil {
		t.Fatalf("Paste() failed: %v", err)
	}

	records, err := s.PasteLog(ctx, 2)
	if err != nil {
		t.Fatalf("PasteLog() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("PasteLog() returned %d records, want 1", len(records))
	}
	r := records[0]
	if r.Token != "tok-audit" || r.SourceID != 1 || r.Mode != "replace" || r.Entries != 1 {
		t.Errorf("record = %+v", r)
	}
}

func TestPasteCopiesMasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1, testEntry(0, "blur", 0))
	if err := s.AddMask(ctx, 1, hist.Mask{FormID: 11, Form: 2, Name: "brush", Points: []byte{9}, PointsCount: 1}); err != nil {
		t.Fatalf("AddMask() failed: %v", err)
	}
	mustSeed(t, s, 2)

	if err := s.Paste(ctx, 1, 2, false, "tok-masks", passthroughPlan(stageAll)); err != nil {
		t.Fatalf("Paste() failed: %v", err)
	}

	masks, err := s.Masks(ctx, 2)
	if err != nil {
		t.Fatalf("Masks() failed: %v", err)
	}
	if len(masks) != 1 {
		t.Fatalf("dest has %d masks, want 1", len(masks))
	}
	if masks[0].FormID != 11 || masks[0].Name != "brush" || masks[0].PointsCount != 1 {
		t.Errorf("mask = %+v", masks[0])
	}
}

func TestApplySidecarClampsActiveLength(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1)

	apply := SidecarApply{
		ItemID: 1,
		Entries: []hist.Entry{
			testEntry(5, "blur", 0), // seq from the file, renumbered on apply
		},
		ActiveLength: 99,
	}
	if err := s.ApplySidecar(ctx, apply); err != nil {
		t.Fatalf("ApplySidecar() failed: %v", err)
	}

	entries, _ := s.History(ctx, 1)
	if len(entries) != 1 || entries[0].Seq != 0 {
		t.Fatalf("entries = %+v, want one entry at seq 0", entries)
	}
	length, _ := s.ActiveLength(ctx, 1)
	if length != 1 {
		t.Errorf("active length = %d, want clamped to 1", length)
	}
}

func TestItemExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustSeed(t, s, 1)

	ok, err := s.ItemExists(ctx, 1)
	if err != nil || !ok {
		t.Errorf("ItemExists(1) = %v, %v", ok, err)
	}
	ok, err = s.ItemExists(ctx, 2)
	if err != nil || ok {
		t.Errorf("ItemExists(2) = %v, %v", ok, err)
	}
}
