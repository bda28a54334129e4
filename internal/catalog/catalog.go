// Package catalog describes the set of known processing operations.
//
// The merge engine needs exactly two facts about an operation: a
// human-readable display name and whether the operation is
// single-instance (at most one live instance per item, instance always
// 0). Catalogs are read-only; the engine takes one by injection so
// tests can substitute a fake.
//
// Operation definitions are written in CUE and loaded with LoadDir,
// e.g.:
//
//	operation: blur: {
//		display_name:    "Blur"
//		single_instance: false
//	}
package catalog

// Operation is one catalog definition.
type Operation struct {
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	SingleInstance bool   `json:"single_instance"`
}

// Catalog answers capability queries about operation types.
//
// Unknown operations are legal everywhere: SingleInstance reports
// false (the permissive default; a stack may carry operations from a
// newer catalog) and DisplayName falls back to the raw name.
type Catalog interface {
	// SingleInstance reports whether op may have at most one live
	// instance per item.
	SingleInstance(op string) bool

	// DisplayName returns the human-readable name for op, or op
	// itself if unknown.
	DisplayName(op string) string
}

// Static is an in-memory catalog keyed by operation name.
type Static map[string]Operation

// NewStatic builds a Static catalog from operation definitions.
func NewStatic(ops ...Operation) Static {
	c := make(Static, len(ops))
	for _, op := range ops {
		c[op.Name] = op
	}
	return c
}

// SingleInstance implements Catalog.
func (c Static) SingleInstance(op string) bool {
	return c[op].SingleInstance
}

// DisplayName implements Catalog.
func (c Static) DisplayName(op string) string {
	if def, ok := c[op]; ok && def.DisplayName != "" {
		return def.DisplayName
	}
	return op
}

// Default returns the built-in catalog used when no definition
// directory is supplied.
func Default() Static {
	return NewStatic(
		Operation{Name: "exposure", DisplayName: "Exposure", SingleInstance: true},
		Operation{Name: "whitebalance", DisplayName: "White Balance", SingleInstance: true},
		Operation{Name: "crop", DisplayName: "Crop & Rotate", SingleInstance: true},
		Operation{Name: "tonecurve", DisplayName: "Tone Curve", SingleInstance: false},
		Operation{Name: "blur", DisplayName: "Blur", SingleInstance: false},
		Operation{Name: "sharpen", DisplayName: "Sharpen", SingleInstance: false},
		Operation{Name: "colorzones", DisplayName: "Color Zones", SingleInstance: false},
		Operation{Name: "vignette", DisplayName: "Vignette", SingleInstance: false},
	)
}
