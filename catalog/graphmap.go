package catalog

import (
	"bytes"

	"github.com/teranos/gripterra/errors"
	"gopkg.in/yaml.v3"
)

// DefaultSource is the source name graph maps give the graph source.
const DefaultSource = "terra"

// GraphMap is a GRIP graph map binding vertex and edge labels to the
// collections of one graph source.
type GraphMap struct {
	Sources  map[string]GraphSource `yaml:"sources"`
	Vertices map[string]GraphVertex `yaml:"vertices"`
	Edges    map[string]GraphEdge   `yaml:"edges"`
}

// GraphSource is the address of a graph source.
type GraphSource struct {
	Host string `yaml:"host"`
}

// GraphVertex maps a vertex label onto a vertex collection.
type GraphVertex struct {
	Source     string `yaml:"source"`
	Label      string `yaml:"label"`
	Collection string `yaml:"collection"`
}

// GraphEdge maps an edge label onto an edge collection.
type GraphEdge struct {
	FromVertex string    `yaml:"fromVertex"`
	ToVertex   string    `yaml:"toVertex"`
	Label      string    `yaml:"label"`
	EdgeTable  EdgeTable `yaml:"edgeTable"`
}

// EdgeTable names the collection and the row fields holding each end.
type EdgeTable struct {
	Source     string `yaml:"source"`
	Collection string `yaml:"collection"`
	FromField  string `yaml:"fromField"`
	ToField    string `yaml:"toField"`
}

// GraphMap renders the catalog as a graph map served by source at host.
// Vertex keys are the collection path with a trailing slash; edge keys are
// the edge collection path.
func (c *Catalog) GraphMap(source, host string) *GraphMap {
	if source == "" {
		source = DefaultSource
	}
	gm := &GraphMap{
		Sources:  map[string]GraphSource{source: {Host: host}},
		Vertices: map[string]GraphVertex{},
		Edges:    map[string]GraphEdge{},
	}

	for _, v := range c.VertexAddrs() {
		gm.Vertices[v.Path()+"/"] = GraphVertex{
			Source:     source,
			Label:      v.Type,
			Collection: v.Path(),
		}
	}

	for _, e := range c.EdgeAddrs() {
		dst, _ := c.Destination(e)
		to := e.Source()
		to.Type = dst
		gm.Edges[e.Path()] = GraphEdge{
			FromVertex: e.Source().Path() + "/",
			ToVertex:   to.Path() + "/",
			Label:      e.Field,
			EdgeTable: EdgeTable{
				Source:     source,
				Collection: e.Path(),
				FromField:  "$." + e.Type,
				ToField:    "$." + TargetKey(e, dst),
			},
		}
	}
	return gm
}

// Marshal renders the graph map as YAML.
func (g *GraphMap) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(g); err != nil {
		return nil, errors.Wrap(err, "failed to encode graph map")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to encode graph map")
	}
	return buf.Bytes(), nil
}
