package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadError reports a problem loading or compiling catalog definitions.
type LoadError struct {
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadDir loads every CUE file in dir and compiles the definitions
// under the top-level "operation" struct into a Static catalog.
//
// Definitions are validated eagerly: display_name must be a non-empty
// string and single_instance, when present, a bool. single_instance
// defaults to false.
func LoadDir(dir string) (Static, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Message: fmt.Sprintf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, fmt.Errorf("access catalog directory: %w", err)
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog directory: %w", err)
	}
	if len(files) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	opsVal := value.LookupPath(cue.ParsePath("operation"))
	if !opsVal.Exists() {
		return nil, &LoadError{Message: "no operations found (expected top-level \"operation\" struct)", Pos: value.Pos()}
	}

	iter, err := opsVal.Fields()
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("iterating operations: %v", err)}
	}

	cat := Static{}
	for iter.Next() {
		op, err := compileOperation(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat[op.Name] = op
	}
	if len(cat) == 0 {
		return nil, &LoadError{Message: "operation struct is empty", Pos: opsVal.Pos()}
	}
	return cat, nil
}

// compileOperation parses one operation definition. The struct label
// is the operation name.
func compileOperation(name string, v cue.Value) (Operation, error) {
	if err := v.Err(); err != nil {
		return Operation{}, &LoadError{Message: fmt.Sprintf("operation %q: %v", name, err), Pos: v.Pos()}
	}

	op := Operation{Name: name}

	nameVal := v.LookupPath(cue.ParsePath("display_name"))
	if !nameVal.Exists() {
		return Operation{}, &LoadError{
			Message: fmt.Sprintf("operation %q: display_name is required", name),
			Pos:     v.Pos(),
		}
	}
	displayName, err := nameVal.String()
	if err != nil {
		return Operation{}, &LoadError{
			Message: fmt.Sprintf("operation %q: display_name must be a string", name),
			Pos:     nameVal.Pos(),
		}
	}
	if displayName == "" {
		return Operation{}, &LoadError{
			Message: fmt.Sprintf("operation %q: display_name must not be empty", name),
			Pos:     nameVal.Pos(),
		}
	}
	op.DisplayName = displayName

	singleVal := v.LookupPath(cue.ParsePath("single_instance"))
	if singleVal.Exists() {
		single, err := singleVal.Bool()
		if err != nil {
			return Operation{}, &LoadError{
				Message: fmt.Sprintf("operation %q: single_instance must be a bool", name),
				Pos:     singleVal.Pos(),
			}
		}
		op.SingleInstance = single
	}

	return op, nil
}

// findCUEFiles walks dir and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
