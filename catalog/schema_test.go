package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/entity"
)

func TestSchemaMergesAcrossWorkspaces(t *testing.T) {
	cat := sampleCatalog()
	cat.AddVertex(entity.VertexAddr{Namespace: "ns", Name: "ws2", Type: "sample"},
		VertexType{AttributeNames: []string{"status", "tissue"}})
	cat.AddVertex(entity.VertexAddr{Namespace: "ns", Name: "ws2", Type: "participant"},
		VertexType{AttributeNames: []string{"age"}})
	cat.AddEdge(entity.EdgeAddr{Namespace: "ns", Name: "ws2", Type: "sample", Field: "participant"}, "participant")

	s := cat.Schema("")
	assert.Equal(t, DefaultGraph, s.Graph)

	require.Len(t, s.Vertices, 2)
	assert.Equal(t, SchemaVertex{
		Gid:   "participant",
		Label: "participant",
		Data:  map[string]string{"age": "STRING"},
	}, s.Vertices[0])
	assert.Equal(t, map[string]string{
		"participant": "STRING",
		"status":      "STRING",
		"tissue":      "STRING",
	}, s.Vertices[1].Data)

	assert.Equal(t, []SchemaEdge{{From: "sample", To: "participant", Label: "participant"}}, s.Edges)
}

func TestSchemaMarshal(t *testing.T) {
	data, err := New().Schema("g").Marshal()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "g", doc["graph"])
	assert.Equal(t, []any{}, doc["vertices"])
	assert.Equal(t, []any{}, doc["edges"])
}
