// Package hist defines the value types for per-item edit-history stacks.
//
// A history stack is an ordered list of operation instances. Each entry
// records one configuration of one operation at one stack position:
//
//   - Seq: stack position, unique and contiguous from 0 per item
//   - Operation: operation-type name
//   - Instance: ordinal disambiguating simultaneous instances of the
//     same operation ("multi-priority"); always 0 for single-instance
//     operations
//   - InstanceLabel: free-text name the user gave the instance; the
//     literal "0" means unnamed
//
// The same (operation, instance) pair may appear at several stack
// positions; the entry at the highest seq is the live state of that
// instance. Live() selects exactly those entries.
//
// Invariants maintained by the engine:
//
//   - seq values per item are {0, ..., n-1}
//   - live instance values per operation are {0, ..., k-1}
//   - single-instance operations never have more than one live instance
//
// Parameter payloads (Params, BlendParams) are opaque byte blobs copied
// verbatim; this package never inspects them.
package hist
