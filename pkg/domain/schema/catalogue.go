// Package schema reconciles the source dataset's fields against the
// field-configuration catalogue and prepares the per-layer field lists.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/carg563/Awhina-2-Testing-Portal/pkg/domain"
)

// Catalogue maps source field names to their configuration: alias,
// which layer types carry the field and which show it.
type Catalogue map[string]domain.FieldDescriptor

// Load reads a catalogue file (JSON, field name to descriptor).
//
// A malformed entry is not fatal: it is dropped, and the field it names
// resolves as unresolved later, which routes the deployment into manual
// schema review rather than failing it.
func Load(path string) (Catalogue, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field catalogue %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Catalogue, error) {
	entries := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing field catalogue: %w", err)
	}
	cat := Catalogue{}
	for name, entry := range entries {
		desc := domain.FieldDescriptor{}
		if err := json.Unmarshal(entry, &desc); err != nil {
			continue
		}
		desc.Name = name
		cat[name] = desc
	}
	return cat, nil
}
