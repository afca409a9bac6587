package entity

import (
	"strings"

	"github.com/teranos/gripterra/errors"
)

// Address identifies a collection. It is either a VertexAddr or an EdgeAddr.
type Address interface {
	// Path returns the slash-joined collection name.
	Path() string
	isAddress()
}

// VertexAddr addresses the rows of one entity type in one workspace.
type VertexAddr struct {
	Namespace string
	Name      string
	Type      string
}

// EdgeAddr addresses the edges synthesized from Field on a vertex type.
type EdgeAddr struct {
	Namespace string
	Name      string
	Type      string
	Field     string
}

func (VertexAddr) isAddress() {}
func (EdgeAddr) isAddress()   {}

// Path returns namespace/name/type.
func (a VertexAddr) Path() string {
	return a.Namespace + "/" + a.Name + "/" + a.Type
}

// Path returns namespace/name/type/field.
func (a EdgeAddr) Path() string {
	return a.Namespace + "/" + a.Name + "/" + a.Type + "/" + a.Field
}

// Source returns the vertex collection the edges are derived from.
func (a EdgeAddr) Source() VertexAddr {
	return VertexAddr{Namespace: a.Namespace, Name: a.Name, Type: a.Type}
}

// ParseAddress splits a collection name into its address.
// Three segments address a vertex collection, four an edge collection;
// anything else, or an empty segment, is ErrInvalidPath.
func ParseAddress(path string) (Address, error) {
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return nil, errors.NewInvalidPathError("collection %q has an empty segment", path)
		}
	}

	switch len(parts) {
	case 3:
		return VertexAddr{Namespace: parts[0], Name: parts[1], Type: parts[2]}, nil
	case 4:
		return EdgeAddr{Namespace: parts[0], Name: parts[1], Type: parts[2], Field: parts[3]}, nil
	default:
		return nil, errors.NewInvalidPathError("collection %q has %d segments, want 3 or 4", path, len(parts))
	}
}
