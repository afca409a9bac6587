package entity

import (
	"encoding/json"
)

// EntityRef points at one row of another vertex collection.
type EntityRef struct {
	EntityType string `json:"entityType"`
	EntityName string `json:"entityName"`
}

// Reference is an attribute value that points at other rows.
// It is either a SingleRef or a MultiRef.
type Reference interface {
	// Targets returns the referenced rows in attribute order.
	Targets() []EntityRef
	isReference()
}

// SingleRef is the {entityType, entityName} attribute shape.
type SingleRef struct {
	Target EntityRef
}

// MultiRef is the {itemsType, items: [{entityType, entityName}, ...]} attribute shape.
type MultiRef struct {
	ItemsType string
	Items     []EntityRef
}

func (SingleRef) isReference() {}
func (MultiRef) isReference()  {}

func (r SingleRef) Targets() []EntityRef { return []EntityRef{r.Target} }
func (r MultiRef) Targets() []EntityRef  { return r.Items }

// refShape is the union of both reference payloads.
type refShape struct {
	ItemsType  *string           `json:"itemsType"`
	Items      []json.RawMessage `json:"items"`
	EntityType *string           `json:"entityType"`
	EntityName *string           `json:"entityName"`
}

// DecodeReference reads an attribute value and reports whether it is a
// reference. A value carrying itemsType is a MultiRef only when every item is
// itself an entity reference; lists of plain values are not references.
func DecodeReference(raw json.RawMessage) (Reference, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}

	var shape refShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, false
	}

	if shape.ItemsType != nil {
		items := make([]EntityRef, 0, len(shape.Items))
		for _, item := range shape.Items {
			ref, ok := decodeEntityRef(item)
			if !ok {
				return nil, false
			}
			items = append(items, ref)
		}
		return MultiRef{ItemsType: *shape.ItemsType, Items: items}, true
	}

	if shape.EntityType != nil && shape.EntityName != nil {
		return SingleRef{Target: EntityRef{EntityType: *shape.EntityType, EntityName: *shape.EntityName}}, true
	}

	return nil, false
}

func decodeEntityRef(raw json.RawMessage) (EntityRef, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return EntityRef{}, false
	}
	var shape refShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return EntityRef{}, false
	}
	if shape.EntityType == nil || shape.EntityName == nil {
		return EntityRef{}, false
	}
	return EntityRef{EntityType: *shape.EntityType, EntityName: *shape.EntityName}, true
}
