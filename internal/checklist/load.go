// SPDX-License-Identifier: Apache-2.0

package checklist

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/goccy/go-yaml"
)

//go:embed schema.cue
var schemaSource string

// LoadFile reads a checklist configuration file. Relative input files are
// resolved against the directory holding the configuration.
func LoadFile(path string) ([]*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading checklist %q: %w", path, err)
	}
	items, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Parse decodes a configuration document holding either a single item or
// an "items" list, validates it against the embedded schema and normalizes
// every item. When baseDir is non-empty, relative input files are joined
// to it.
func Parse(data []byte, baseDir string) ([]*Item, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal YAML: %v", ErrInvalidConfig, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: empty configuration", ErrInvalidConfig)
	}
	if err := ValidateSchema(doc); err != nil {
		return nil, err
	}

	var batch struct {
		Items []RawItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	raws := batch.Items
	if len(raws) == 0 {
		var single RawItem
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		raws = []RawItem{single}
	}

	seen := make(map[string]bool, len(raws))
	items := make([]*Item, 0, len(raws))
	for _, raw := range raws {
		item, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidConfig, item.ID)
		}
		seen[item.ID] = true
		if baseDir != "" {
			for i, f := range item.InputFiles {
				if !filepath.IsAbs(f) {
					item.InputFiles[i] = filepath.Join(baseDir, f)
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// ValidateSchema checks a decoded configuration document against the
// embedded CUE schema.
func ValidateSchema(doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling checklist schema: %w", err)
	}
	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	unified := schema.LookupPath(cue.ParsePath("#File")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, cueerrors.Details(err, nil))
	}
	return nil
}
