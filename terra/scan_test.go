package terra

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/entity"
	"go.uber.org/zap/zaptest"
)

func scanHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/workspaces", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"workspace": {"namespace": "anvil", "name": "ws1"}},
			{"workspace": {"namespace": "anvil", "name": "broken"}},
			{"workspace": {"namespace": "other", "name": "ws9"}}
		]`))
	})
	mux.HandleFunc("/api/workspaces/anvil/ws1/entities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"sample": {"count": 2, "idName": "sample_id", "attributeNames": ["files", "participant", "status"]},
			"participant": {"count": 1, "idName": "participant_id", "attributeNames": ["age"]}
		}`))
	})
	mux.HandleFunc("/api/workspaces/anvil/broken/entities", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workspace locked", http.StatusForbidden)
	})
	mux.HandleFunc("/api/workspaces/other/ws9/entities", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"file": {"count": 0, "idName": "file_id", "attributeNames": []}}`))
	})
	mux.HandleFunc("/api/workspaces/anvil/ws1/entities/sample", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name": "s1", "entityType": "sample", "attributes": {
				"status": "active",
				"participant": {"entityType": "participant", "entityName": "p1"},
				"files": {"itemsType": "EntityReference", "items": [{"entityType": "file", "entityName": "f1"}]}
			}},
			{"name": "s2", "entityType": "sample", "attributes": {
				"files": {"itemsType": "EntityReference", "items": []},
				"tags": {"itemsType": "AttributeValue", "items": ["a", "b"]}
			}}
		]`))
	})
	mux.HandleFunc("/api/workspaces/anvil/ws1/entities/participant", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name": "p1", "entityType": "participant", "attributes": {"age": 41}}]`))
	})
	mux.HandleFunc("/api/workspaces/other/ws9/entities/file", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	return mux
}

func TestScanEntities(t *testing.T) {
	client := newTestClient(t, scanHandler())

	cat, stats, err := Scan(context.Background(), client, ScanOptions{}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, ScanStats{Workspaces: 2, Skipped: 1, Types: 3}, stats)
	assert.Len(t, cat.VertexAddrs(), 3)
	assert.Empty(t, cat.EdgeAddrs())

	vt, ok := cat.Vertex(entity.VertexAddr{Namespace: "anvil", Name: "ws1", Type: "sample"})
	require.True(t, ok)
	assert.Equal(t, "sample_id", vt.IDName)
	assert.Equal(t, []string{"files", "participant", "status"}, vt.AttributeNames)
}

func TestScanNamespaceFilter(t *testing.T) {
	client := newTestClient(t, scanHandler())

	cat, stats, err := Scan(context.Background(), client, ScanOptions{Namespaces: []string{"other"}}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Workspaces)
	assert.Equal(t, []entity.VertexAddr{{Namespace: "other", Name: "ws9", Type: "file"}}, cat.VertexAddrs())
}

func TestScanEdges(t *testing.T) {
	client := newTestClient(t, scanHandler())

	cat, stats, err := Scan(context.Background(), client, ScanOptions{Edges: true, Concurrency: 2}, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Edges)

	dst, ok := cat.Destination(entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "participant"})
	require.True(t, ok)
	assert.Equal(t, "participant", dst)

	dst, ok = cat.Destination(entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "files"})
	require.True(t, ok)
	assert.Equal(t, "file", dst)

	_, ok = cat.Destination(entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "tags"})
	assert.False(t, ok)

	require.NoError(t, cat.Validate())
}
