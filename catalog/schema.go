package catalog

import (
	"encoding/json"
	"sort"

	"github.com/teranos/gripterra/errors"
)

// DefaultGraph is the graph name schemas are generated under.
const DefaultGraph = "anvil-terra"

// Schema is a GRIP graph schema.
type Schema struct {
	Graph    string         `json:"graph"`
	Vertices []SchemaVertex `json:"vertices"`
	Edges    []SchemaEdge   `json:"edges"`
}

// SchemaVertex describes one vertex label.
type SchemaVertex struct {
	Gid   string            `json:"gid"`
	Label string            `json:"label"`
	Data  map[string]string `json:"data"`
}

// SchemaEdge describes one edge label between two vertex labels.
type SchemaEdge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Schema renders the catalog as a graph schema. Entity types with the same
// name in different workspaces merge into one vertex whose data is the union
// of their attribute names; identical edges are listed once.
func (c *Catalog) Schema(graph string) *Schema {
	if graph == "" {
		graph = DefaultGraph
	}
	s := &Schema{Graph: graph, Vertices: []SchemaVertex{}, Edges: []SchemaEdge{}}

	attrs := map[string]map[string]string{}
	for _, v := range c.VertexAddrs() {
		vt, _ := c.Vertex(v)
		if attrs[v.Type] == nil {
			attrs[v.Type] = map[string]string{}
		}
		for _, a := range vt.AttributeNames {
			attrs[v.Type][a] = "STRING"
		}
	}
	for typ, data := range attrs {
		s.Vertices = append(s.Vertices, SchemaVertex{Gid: typ, Label: typ, Data: data})
	}
	sort.Slice(s.Vertices, func(i, j int) bool { return s.Vertices[i].Gid < s.Vertices[j].Gid })

	seen := map[SchemaEdge]bool{}
	for _, e := range c.EdgeAddrs() {
		dst, _ := c.Destination(e)
		edge := SchemaEdge{From: e.Type, To: dst, Label: e.Field}
		if seen[edge] {
			continue
		}
		seen[edge] = true
		s.Edges = append(s.Edges, edge)
	}
	sort.Slice(s.Edges, func(i, j int) bool {
		a, b := s.Edges[i], s.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.To < b.To
	})
	return s
}

// Marshal renders the schema as indented JSON.
func (s *Schema) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode schema")
	}
	return append(b, '\n'), nil
}
