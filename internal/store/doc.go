// Package store provides SQLite-backed durable storage for per-item
// edit-history stacks.
//
// Tables:
//   - items: one row per item, carrying the active-length marker
//     (entries with seq < active_length are applied) and the
//     auto-presets flag
//   - history: the stack itself, keyed by (item_id, seq)
//   - masks: opaque shape rows copied alongside history
//   - selected_items: the current selection driving batch operations
//   - paste_log: one audit row per committed paste, keyed by token
//
// # Transaction discipline
//
// Every paste runs as ONE transaction: trim, instance shifts, instance
// rewrites, inserts, mask copy, active-length recompute and the audit
// row commit together or not at all. A failure partway never leaves a
// destination stack half-shifted. The merge plan itself is computed by
// a caller-supplied pure callback invoked inside the transaction, so
// no reader can observe the destination between planning and commit.
//
// The store assumes a single logical writer per destination at a time,
// enforced by the caller; the connection pool is capped at one
// connection to match SQLite's single-writer model.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
