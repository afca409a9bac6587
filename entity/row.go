package entity

import (
	"encoding/json"

	"github.com/teranos/gripterra/errors"
)

// Raw is a row as the entity store returns it.
type Raw struct {
	Name       string                     `json:"name"`
	EntityType string                     `json:"entityType"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

// Row is one row of a vertex or edge collection.
type Row struct {
	ID         string
	Attributes map[string]any

	// Refs holds the reference-valued attributes, decoded at ingest.
	// Always empty for edge rows.
	Refs map[string]Reference
}

// Ingest decodes a raw upstream row into a vertex Row.
func Ingest(raw Raw) (*Row, error) {
	if raw.Name == "" {
		return nil, errors.New("entity has no name")
	}

	row := &Row{
		ID:         raw.Name,
		Attributes: make(map[string]any, len(raw.Attributes)),
	}

	for key, value := range raw.Attributes {
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return nil, errors.Wrapf(err, "entity %q attribute %q", raw.Name, key)
		}
		row.Attributes[key] = decoded

		if ref, ok := DecodeReference(value); ok {
			if row.Refs == nil {
				row.Refs = make(map[string]Reference)
			}
			row.Refs[key] = ref
		}
	}

	return row, nil
}

// AttributeEquals reports whether the named attribute is a string equal to
// value. Rows missing the attribute, or holding a non-string, never match.
func (r *Row) AttributeEquals(field, value string) bool {
	v, ok := r.Attributes[field]
	if !ok {
		return false
	}
	s, ok := v.(string)
	return ok && s == value
}
