package terra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/config"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.UpstreamConfig{
		BaseURL:        server.URL + "/",
		Token:          "tok",
		TimeoutSeconds: 5,
		AllowPrivate:   true,
	}, zaptest.NewLogger(t).Sugar())
}

func TestListEntities(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workspaces/my%20ns/ws/entities/sample", r.URL.EscapedPath())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name": "s1", "entityType": "sample", "attributes": {"participant": {"entityType": "participant", "entityName": "p1"}}},
			{"name": "s2", "entityType": "sample", "attributes": {}}
		]`))
	}))

	rows, err := client.ListEntities(context.Background(), entity.VertexAddr{Namespace: "my ns", Name: "ws", Type: "sample"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0].Name)
	assert.Contains(t, rows[0].Attributes, "participant")
}

func TestListEntityTypes(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workspaces/ns/ws/entities", r.URL.Path)
		w.Write([]byte(`{"sample": {"count": 2, "idName": "sample_id", "attributeNames": ["participant", "status"]}}`))
	}))

	types, err := client.ListEntityTypes(context.Background(), "ns", "ws")
	require.NoError(t, err)
	assert.Equal(t, TypeInfo{Count: 2, IDName: "sample_id", AttributeNames: []string{"participant", "status"}}, types["sample"])
}

func TestListWorkspaces(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workspaces", r.URL.Path)
		w.Write([]byte(`[
			{"accessLevel": "READER", "workspace": {"namespace": "a", "name": "one"}},
			{"accessLevel": "OWNER", "workspace": {"namespace": "b", "name": "two"}}
		]`))
	}))

	ws, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []WorkspaceRef{{Namespace: "a", Name: "one"}, {Namespace: "b", Name: "two"}}, ws)
}

func TestUpstreamStatusError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusServiceUnavailable)
	}))

	_, err := client.ListEntities(context.Background(), entity.VertexAddr{Namespace: "ns", Name: "ws", Type: "sample"})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamUnavailableError(err))
	assert.Contains(t, err.Error(), "status 503")
}

func TestUpstreamBadJSON(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))

	_, err := client.ListEntities(context.Background(), entity.VertexAddr{Namespace: "ns", Name: "ws", Type: "sample"})
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamUnavailableError(err))
}

func TestCancelledContext(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListEntities(ctx, entity.VertexAddr{Namespace: "ns", Name: "ws", Type: "sample"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.IsUpstreamUnavailableError(err))
	assert.Zero(t, calls.Load())
}

func TestUnreachableUpstream(t *testing.T) {
	client := NewClient(config.UpstreamConfig{
		BaseURL:        "http://127.0.0.1:1",
		TimeoutSeconds: 1,
		AllowPrivate:   true,
	}, zaptest.NewLogger(t).Sugar())

	_, err := client.ListWorkspaces(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsUpstreamUnavailableError(err))
}
