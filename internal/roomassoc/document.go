package roomassoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and validates an association document.
//
// An empty document (or one containing only comments) yields no
// entries, which downstream means "empty the table". A non-empty
// document must carry the associations key; omitting it, or setting it
// to null, fails loudly so a typo in the key name cannot silently wipe
// every association.
//
// Parameters:
//   - path: Location of the YAML document
//
// Returns:
//   - []Association: Validated entries in document order
//   - error: File access, YAML syntax, or validation failure
func Load(path string) ([]Association, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// A presence check on the raw document distinguishes "empty file"
	// from "associations key missing".
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if v, ok := raw["associations"]; !ok || v == nil {
		return nil, ErrMissingAssociations
	}

	var doc struct {
		Associations []Association `yaml:"associations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for i, a := range doc.Associations {
		if a.SensorID == "" || a.RoomID == "" {
			return nil, fmt.Errorf("association #%d: %w", i, ErrInvalidAssociation)
		}
	}

	return doc.Associations, nil
}
