package engine

import "context"

// Hooks receives side-effect notifications after a history write
// commits. Implementations invalidate caches, resynchronize sidecars
// and refresh view state; none of it is part of the merge logic, and a
// failing hook never unwinds a committed write.
type Hooks interface {
	// HistoryChanged fires after an item's stack was rewritten. The
	// editing view should reload if the item is currently open.
	HistoryChanged(itemID int64)

	// ThumbnailInvalidated fires when any cached preview of the item
	// is stale.
	ThumbnailInvalidated(itemID int64)

	// SyncSidecar asks for the item's external sidecar representation
	// to be rewritten. Errors are logged by the engine, not returned
	// to the operation's caller.
	SyncSidecar(ctx context.Context, itemID int64) error

	// AspectRatioChanged fires when a sort order derived from aspect
	// ratio may need recomputing for the item.
	AspectRatioChanged(itemID int64)
}

// NopHooks ignores all notifications.
type NopHooks struct{}

func (NopHooks) HistoryChanged(int64)                     {}
func (NopHooks) ThumbnailInvalidated(int64)               {}
func (NopHooks) SyncSidecar(context.Context, int64) error { return nil }
func (NopHooks) AspectRatioChanged(int64)                 {}
