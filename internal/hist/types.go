package hist

// UnnamedLabel is the sentinel instance label meaning "the user never
// named this instance". Stored literally in the database.
const UnnamedLabel = "0"

// Entry is one recorded operation configuration at one stack position
// of an item's history.
type Entry struct {
	Seq           int    `json:"seq"`
	Operation     string `json:"operation"`
	Instance      int    `json:"instance"`
	InstanceLabel string `json:"instance_label"`
	Enabled       bool   `json:"enabled"`
	Params        []byte `json:"params,omitempty"`
	BlendParams   []byte `json:"blend_params,omitempty"`
	BlendVersion  int    `json:"blend_version"`
}

// Named reports whether the entry carries a real user-assigned label.
func (e Entry) Named() bool {
	return e.InstanceLabel != "" && e.InstanceLabel != " " && e.InstanceLabel != UnnamedLabel
}

// StagingEntry is a transient copy of a history entry selected for
// pasting. It is keyed by a provisional 1-based row order rather than a
// destination seq; the writer assigns final seq values on commit.
type StagingEntry struct {
	Row           int
	Operation     string
	Instance      int
	InstanceLabel string
	Enabled       bool
	Params        []byte
	BlendParams   []byte
	BlendVersion  int
}

// Stage copies an entry's payload into a staging entry at the given row.
// The source seq is deliberately dropped; staging entries never
// reference a stack position.
func Stage(row int, e Entry) StagingEntry {
	return StagingEntry{
		Row:           row,
		Operation:     e.Operation,
		Instance:      e.Instance,
		InstanceLabel: e.InstanceLabel,
		Enabled:       e.Enabled,
		Params:        e.Params,
		BlendParams:   e.BlendParams,
		BlendVersion:  e.BlendVersion,
	}
}

// Mask is one stored mask/shape row. Shape payloads are opaque; the
// engine copies them verbatim and never reconciles form IDs between
// items.
type Mask struct {
	FormID      int64  `json:"form_id"`
	Form        int    `json:"form"`
	Name        string `json:"name"`
	Version     int    `json:"version"`
	Points      []byte `json:"points,omitempty"`
	PointsCount int    `json:"points_count"`
	Source      []byte `json:"source,omitempty"`
}

// InstanceShift moves every destination entry of one operation up by a
// fixed amount. Produced by merge planning Phase A.
type InstanceShift struct {
	Operation string
	By        int
}

// InstanceRewrite renumbers one destination instance family: every
// entry with (Operation, From) becomes (Operation, To). Produced by
// merge planning Phase B. Rewrites must be applied in order; the
// planner guarantees sequential application never collides.
type InstanceRewrite struct {
	Operation string
	From      int
	To        int
}
