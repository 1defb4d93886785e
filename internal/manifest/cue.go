package manifest

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaCUE string

// LoadCUE reads a CUE manifest file. The document is unified with the
// embedded #Manifest schema before decoding, so structural errors surface
// with CUE's own diagnostics instead of partial decodes.
func LoadCUE(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}

	doc := ctx.CompileBytes(data)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("compile manifest %s: %w", path, err)
	}

	unified := doc.Unify(schema.LookupPath(cue.ParsePath("#Manifest")))
	if err := unified.Validate(); err != nil {
		return nil, fmt.Errorf("validate manifest %s: %w", path, err)
	}

	var m Manifest
	if err := unified.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}
