package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tmoravec/pastiche/internal/catalog"
	"github.com/tmoravec/pastiche/internal/hist"
	"github.com/tmoravec/pastiche/internal/sidecar"
	"github.com/tmoravec/pastiche/internal/store"
)

// SidecarImporter parses an external sidecar file. Injected so tests
// can substitute failures without touching the filesystem.
type SidecarImporter interface {
	Load(path string) (*sidecar.Document, error)
}

// SidecarImporterFunc adapts a function to the SidecarImporter interface.
type SidecarImporterFunc func(path string) (*sidecar.Document, error)

// Load implements SidecarImporter.
func (f SidecarImporterFunc) Load(path string) (*sidecar.Document, error) {
	return f(path)
}

// Config carries the engine's optional collaborators. Zero values get
// sensible defaults.
type Config struct {
	Hooks    Hooks           // default: NopHooks
	Tokens   TokenGenerator  // default: UUIDv7Generator
	Importer SidecarImporter // default: sidecar.Load
	Logger   *slog.Logger    // default: slog.Default()
}

// Engine coordinates history-stack operations against one store.
//
// The engine holds no mutable state between calls; every paste builds
// its staging set fresh and discards it afterwards. Callers are
// responsible for the single-writer-per-destination discipline.
type Engine struct {
	store    *store.Store
	catalog  catalog.Catalog
	hooks    Hooks
	tokens   TokenGenerator
	importer SidecarImporter
	log      *slog.Logger
}

// New creates an engine over the given store and operation catalog.
func New(st *store.Store, cat catalog.Catalog, cfg Config) *Engine {
	e := &Engine{
		store:    st,
		catalog:  cat,
		hooks:    cfg.Hooks,
		tokens:   cfg.Tokens,
		importer: cfg.Importer,
		log:      cfg.Logger,
	}
	if e.hooks == nil {
		e.hooks = NopHooks{}
	}
	if e.tokens == nil {
		e.tokens = UUIDv7Generator{}
	}
	if e.importer == nil {
		e.importer = SidecarImporterFunc(sidecar.Load)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// CopyAndPaste copies history from sourceID onto destID.
//
// selection optionally restricts the copy to the given source seq
// values. With merge false the destination stack and masks are
// replaced outright; with merge true the staged entries are reconciled
// into the existing stack (see package documentation). An empty
// selection in merge mode collapses the source history to the live
// state of each instance first.
//
// The whole pipeline runs as one store transaction; on error the
// destination is untouched. Post-commit hooks fire only on success.
func (e *Engine) CopyAndPaste(ctx context.Context, sourceID, destID int64, merge bool, selection []int) error {
	if sourceID == destID {
		return invalidOperation("cannot paste an item's history onto itself", sourceID, destID)
	}
	if sourceID < 0 {
		return invalidOperation("copy a history from an item before pasting it onto another", sourceID, destID)
	}

	token := e.tokens.Generate()
	collapse := merge && len(selection) == 0

	plan := func(source, dest []hist.Entry) (*store.PastePlan, error) {
		if len(source) == 0 {
			return nil, noSourceHistory(sourceID)
		}
		staging := buildStaging(source, selection, collapse)
		if len(staging) == 0 {
			return nil, noSourceHistory(sourceID)
		}

		p := &store.PastePlan{Entries: staging}
		if merge {
			normalizeInstances(staging, e.catalog)
			p.Shifts, p.Rewrites = planMerge(dest, staging, e.catalog)
		}
		return p, nil
	}

	if err := e.store.Paste(ctx, sourceID, destID, merge, token, plan); err != nil {
		var oe *OpError
		if !errors.As(err, &oe) {
			err = storeError(sourceID, destID, err)
		}
		e.log.Error("paste failed",
			"source", sourceID, "dest", destID, "merge", merge, "token", token, "error", err)
		return err
	}

	e.log.Debug("paste committed",
		"source", sourceID, "dest", destID, "merge", merge, "token", token)
	e.afterWrite(ctx, destID)
	e.hooks.AspectRatioChanged(destID)
	return nil
}

// CopyAndPasteOnSelection pastes sourceID's history onto every other
// selected item, one complete transaction per destination. A failure
// on one destination neither rolls back earlier destinations nor stops
// later ones; per-item errors are aggregated with errors.Join.
//
// Fails with INVALID_OPERATION if no other item is selected.
func (e *Engine) CopyAndPasteOnSelection(ctx context.Context, sourceID int64, merge bool, selection []int) error {
	if sourceID < 0 {
		return invalidOperation("copy a history from an item before pasting it onto another", sourceID, -1)
	}

	dests, err := e.store.SelectionExcluding(ctx, sourceID)
	if err != nil {
		return storeError(sourceID, -1, err)
	}
	if len(dests) == 0 {
		return invalidOperation("no other items selected", sourceID, -1)
	}

	var errs []error
	for _, destID := range dests {
		if err := e.CopyAndPaste(ctx, sourceID, destID, merge, selection); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteHistory removes all history and masks for an item and clears
// its active-length marker and auto-presets flag. Idempotent on an
// item with no history.
func (e *Engine) DeleteHistory(ctx context.Context, itemID int64) error {
	if err := e.store.DeleteHistory(ctx, itemID); err != nil {
		return storeError(-1, itemID, err)
	}
	e.log.Debug("history deleted", "item", itemID)
	e.hooks.HistoryChanged(itemID)
	e.hooks.ThumbnailInvalidated(itemID)
	return nil
}

// DeleteHistoryOnSelection deletes history for every selected item,
// continuing past per-item failures. Each item also gets its derived
// aspect ratio recomputed.
func (e *Engine) DeleteHistoryOnSelection(ctx context.Context) error {
	items, err := e.store.Selection(ctx)
	if err != nil {
		return storeError(-1, -1, err)
	}

	var errs []error
	for _, itemID := range items {
		if err := e.DeleteHistory(ctx, itemID); err != nil {
			errs = append(errs, err)
			continue
		}
		e.hooks.AspectRatioChanged(itemID)
	}
	return errors.Join(errs...)
}

// LoadAndApplySidecar replaces an item's history with the contents of
// an external sidecar file. With historyOnly true, non-history fields
// in the document are ignored. Fails with SIDECAR_PARSE if the file
// cannot be read or does not validate.
func (e *Engine) LoadAndApplySidecar(ctx context.Context, itemID int64, path string, historyOnly bool) error {
	doc, err := e.importer.Load(path)
	if err != nil {
		return sidecarParse(itemID, path, err)
	}

	apply := store.SidecarApply{
		ItemID:             itemID,
		Entries:            doc.HistoryEntries(),
		Masks:              doc.MaskEntries(),
		ActiveLength:       doc.ActiveLength,
		AutoPresetsApplied: doc.AutoPresetsApplied,
		HistoryOnly:        historyOnly,
	}
	if err := e.store.ApplySidecar(ctx, apply); err != nil {
		return storeError(-1, itemID, err)
	}

	e.log.Debug("sidecar applied", "item", itemID, "path", path, "history_only", historyOnly)
	e.hooks.HistoryChanged(itemID)
	e.hooks.ThumbnailInvalidated(itemID)
	return nil
}

// WriteSidecar exports an item's full history state to a sidecar file.
func (e *Engine) WriteSidecar(ctx context.Context, itemID int64, path string) error {
	entries, err := e.store.History(ctx, itemID)
	if err != nil {
		return storeError(-1, itemID, err)
	}
	masks, err := e.store.Masks(ctx, itemID)
	if err != nil {
		return storeError(-1, itemID, err)
	}
	length, err := e.store.ActiveLength(ctx, itemID)
	if err != nil {
		return storeError(-1, itemID, err)
	}
	presets, err := e.store.AutoPresetsApplied(ctx, itemID)
	if err != nil {
		return storeError(-1, itemID, err)
	}

	doc := sidecar.FromStack(entries, masks, length, presets)
	if err := sidecar.Write(path, doc); err != nil {
		return storeError(-1, itemID, err)
	}
	e.log.Debug("sidecar written", "item", itemID, "path", path)
	return nil
}

// afterWrite fires the hooks common to every committed stack rewrite.
func (e *Engine) afterWrite(ctx context.Context, itemID int64) {
	e.hooks.HistoryChanged(itemID)
	e.hooks.ThumbnailInvalidated(itemID)
	if err := e.hooks.SyncSidecar(ctx, itemID); err != nil {
		e.log.Warn("sidecar sync failed", "item", itemID, "error", err)
	}
}
