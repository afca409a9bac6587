// Package catalog holds the static description of what the graph source
// serves: which vertex collections exist (ENTITIES) and which reference
// fields produce edge collections (EDGE_TABLES). It also builds catalogs by
// scanning the entity store and renders them as GRIP graph maps and schemas.
package catalog

import (
	"bytes"
	"os"
	"sort"
	"strings"

	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"gopkg.in/yaml.v3"
)

// VertexType describes one entity type of one workspace.
type VertexType struct {
	AttributeNames []string `yaml:"attributeNames"`
	IDName         string   `yaml:"idName"`
}

// Catalog is namespace -> name -> type -> description for vertices and
// namespace -> name -> type -> field -> destination type for edges.
// It is immutable once the server starts.
type Catalog struct {
	Entities   map[string]map[string]map[string]VertexType        `yaml:"ENTITIES"`
	EdgeTables map[string]map[string]map[string]map[string]string `yaml:"EDGE_TABLES"`
}

// document is the on-disk layout written by Write.
type document struct {
	Port       string                                              `yaml:"PORT,omitempty"`
	EdgeTables map[string]map[string]map[string]map[string]string `yaml:"EDGE_TABLES"`
	Entities   map[string]map[string]map[string]VertexType        `yaml:"ENTITIES"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		Entities:   map[string]map[string]map[string]VertexType{},
		EdgeTables: map[string]map[string]map[string]map[string]string{},
	}
}

// Parse decodes the ENTITIES and EDGE_TABLES sections of a YAML document.
// Other top-level keys are ignored.
func Parse(data []byte) (*Catalog, error) {
	cat := New()
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog")
	}
	if cat.Entities == nil {
		cat.Entities = map[string]map[string]map[string]VertexType{}
	}
	if cat.EdgeTables == nil {
		cat.EdgeTables = map[string]map[string]map[string]map[string]string{}
	}
	return cat, nil
}

// ReadFile parses the catalog sections of a config file.
func ReadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}
	return Parse(data)
}

// Marshal renders the catalog as a config document with the given port.
func (c *Catalog) Marshal(port string) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document{Port: port, EdgeTables: c.EdgeTables, Entities: c.Entities}); err != nil {
		return nil, errors.Wrap(err, "failed to encode catalog")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode catalog")
	}
	return buf.Bytes(), nil
}

// WriteFile writes the catalog as a config document.
func (c *Catalog) WriteFile(path, port string) error {
	data, err := c.Marshal(port)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// AddVertex registers a vertex collection.
func (c *Catalog) AddVertex(addr entity.VertexAddr, vt VertexType) {
	if c.Entities[addr.Namespace] == nil {
		c.Entities[addr.Namespace] = map[string]map[string]VertexType{}
	}
	if c.Entities[addr.Namespace][addr.Name] == nil {
		c.Entities[addr.Namespace][addr.Name] = map[string]VertexType{}
	}
	c.Entities[addr.Namespace][addr.Name][addr.Type] = vt
}

// AddEdge registers an edge-producing field with its destination type.
func (c *Catalog) AddEdge(addr entity.EdgeAddr, destination string) {
	if c.EdgeTables[addr.Namespace] == nil {
		c.EdgeTables[addr.Namespace] = map[string]map[string]map[string]string{}
	}
	if c.EdgeTables[addr.Namespace][addr.Name] == nil {
		c.EdgeTables[addr.Namespace][addr.Name] = map[string]map[string]string{}
	}
	if c.EdgeTables[addr.Namespace][addr.Name][addr.Type] == nil {
		c.EdgeTables[addr.Namespace][addr.Name][addr.Type] = map[string]string{}
	}
	c.EdgeTables[addr.Namespace][addr.Name][addr.Type][addr.Field] = destination
}

// Vertex returns the description of a configured vertex collection.
func (c *Catalog) Vertex(addr entity.VertexAddr) (VertexType, bool) {
	vt, ok := c.Entities[addr.Namespace][addr.Name][addr.Type]
	return vt, ok
}

// Destination returns the configured target entity type of an edge field.
func (c *Catalog) Destination(addr entity.EdgeAddr) (string, bool) {
	dst, ok := c.EdgeTables[addr.Namespace][addr.Name][addr.Type][addr.Field]
	return dst, ok
}

// VertexAddrs lists every configured vertex collection in path order.
func (c *Catalog) VertexAddrs() []entity.VertexAddr {
	var out []entity.VertexAddr
	for ns, names := range c.Entities {
		for name, types := range names {
			for typ := range types {
				out = append(out, entity.VertexAddr{Namespace: ns, Name: name, Type: typ})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

// EdgeAddrs lists every configured edge collection in path order.
func (c *Catalog) EdgeAddrs() []entity.EdgeAddr {
	var out []entity.EdgeAddr
	for ns, names := range c.EdgeTables {
		for name, types := range names {
			for typ, fields := range types {
				for field := range fields {
					out = append(out, entity.EdgeAddr{Namespace: ns, Name: name, Type: typ, Field: field})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

// Validate checks that every name is a usable path segment and that every
// edge field belongs to a configured vertex type.
func (c *Catalog) Validate() error {
	for _, v := range c.VertexAddrs() {
		if err := checkSegments(v.Namespace, v.Name, v.Type); err != nil {
			return errors.Wrapf(err, "ENTITIES %s", v.Path())
		}
	}
	for _, e := range c.EdgeAddrs() {
		if err := checkSegments(e.Namespace, e.Name, e.Type, e.Field); err != nil {
			return errors.Wrapf(err, "EDGE_TABLES %s", e.Path())
		}
		if _, ok := c.Vertex(e.Source()); !ok {
			return errors.WithHint(
				errors.Newf("EDGE_TABLES %s: vertex type %s is not in ENTITIES", e.Path(), e.Source().Path()),
				"re-run the scan with --edge or add the entity type to ENTITIES")
		}
		if dst, _ := c.Destination(e); dst == "" {
			return errors.Newf("EDGE_TABLES %s: empty destination type", e.Path())
		}
	}
	return nil
}

func checkSegments(segments ...string) error {
	for _, s := range segments {
		if s == "" {
			return errors.New("empty name")
		}
		if strings.Contains(s, "/") {
			return errors.Newf("name %q contains '/'", s)
		}
	}
	return nil
}

// TargetKey returns the attribute name edge rows of addr use for the target
// id: the destination type, or the field name when the destination is the
// source type itself.
func TargetKey(addr entity.EdgeAddr, destination string) string {
	if destination == addr.Type {
		return addr.Field
	}
	return destination
}
