// Package engine implements the history-stack merge engine.
//
// The engine copies ordered edit-history stacks between items, either
// replacing the destination stack outright or merging into it. The
// hard part is the merge: incoming operation instances must be
// reconciled with instances already live on the destination without
// ever producing duplicate or out-of-order (operation, instance)
// identities.
//
// A paste runs as a fixed pipeline:
//
//  1. Staging: select the source entries to copy, either the live
//     state of every instance (copy-all) or an explicit seq subset.
//  2. Normalize: repair instance numbering inside the staging set so
//     each operation's instances are 0..k-1 with no gaps.
//  3. Plan (merge only): Phase A shifts every destination instance of
//     a staged operation out of the way; Phase B walks destination
//     instance families and either aligns each with a label-matching
//     staged instance or renumbers it to the next free slot after the
//     incoming ones.
//  4. Commit: the store applies trim, shifts, rewrites, inserts and
//     the mask copy as one transaction.
//
// Staging, normalization and planning are pure functions over value
// types; the store invokes them through a callback inside the paste
// transaction, so a failure partway never leaves a half-shifted
// destination stack.
//
// The engine assumes a single logical writer per destination item at a
// time, enforced by the caller. All operations are synchronous; batch
// variants run one complete transaction per destination and continue
// past per-item failures.
package engine
