// Package testutil provides an in-memory entity store and a sample workspace
// for tests.
package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
)

// FakeUpstream serves entity rows from memory and counts fetches.
type FakeUpstream struct {
	mu       sync.Mutex
	rows     map[entity.VertexAddr][]entity.Raw
	failNext int
	gate     chan struct{}

	Fetches atomic.Int32
}

// NewFakeUpstream returns an empty FakeUpstream.
func NewFakeUpstream() *FakeUpstream {
	return &FakeUpstream{rows: make(map[entity.VertexAddr][]entity.Raw)}
}

// Put sets the rows of one entity type from a JSON array of upstream entities.
func (f *FakeUpstream) Put(t *testing.T, addr entity.VertexAddr, rowsJSON string) {
	t.Helper()
	var raws []entity.Raw
	require.NoError(t, json.Unmarshal([]byte(rowsJSON), &raws))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[addr] = raws
}

// FailNext makes the next n fetches fail with ErrUpstreamUnavailable.
func (f *FakeUpstream) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// Hold makes fetches block until the returned function is called or the
// fetch context is cancelled.
func (f *FakeUpstream) Hold() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// ListEntities implements rowstore.Upstream.
func (f *FakeUpstream) ListEntities(ctx context.Context, addr entity.VertexAddr) ([]entity.Raw, error) {
	f.Fetches.Add(1)

	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext > 0 {
		f.failNext--
		return nil, errors.NewUpstreamUnavailableError("GET %s: status 503", addr.Path())
	}

	rows, ok := f.rows[addr]
	if !ok {
		return nil, errors.NewUpstreamUnavailableError("GET %s: status 404", addr.Path())
	}
	return rows, nil
}

// Sample workspace addresses.
var (
	Participants = entity.VertexAddr{Namespace: "anvil", Name: "ws1", Type: "participant"}
	Samples      = entity.VertexAddr{Namespace: "anvil", Name: "ws1", Type: "sample"}
	Files        = entity.VertexAddr{Namespace: "anvil", Name: "ws1", Type: "file"}

	SampleParticipant = entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "participant"}
	SampleFiles       = entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "files"}
	SampleParent      = entity.EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "parent"}
)

// SampleWorkspace loads a small workspace into a FakeUpstream and returns
// the matching catalog.
//
//	participant: p1, p2
//	sample:      s1 -> participant p1, files [f1 f2 f1]
//	             s2 -> participant p2, files [f3], parent s1
//	             s3 (no references)
//	file:        f1, f2, f3
func SampleWorkspace(t *testing.T) (*FakeUpstream, *catalog.Catalog) {
	t.Helper()
	up := NewFakeUpstream()

	up.Put(t, Participants, `[
		{"name": "p1", "entityType": "participant", "attributes": {"age": 41, "status": "active"}},
		{"name": "p2", "entityType": "participant", "attributes": {"age": 35, "status": "withdrawn"}}
	]`)
	up.Put(t, Samples, `[
		{"name": "s1", "entityType": "sample", "attributes": {
			"status": "active",
			"participant": {"entityType": "participant", "entityName": "p1"},
			"files": {"itemsType": "EntityReference", "items": [
				{"entityType": "file", "entityName": "f1"},
				{"entityType": "file", "entityName": "f2"},
				{"entityType": "file", "entityName": "f1"}
			]}
		}},
		{"name": "s2", "entityType": "sample", "attributes": {
			"status": "inactive",
			"participant": {"entityType": "participant", "entityName": "p2"},
			"files": {"itemsType": "EntityReference", "items": [
				{"entityType": "file", "entityName": "f3"}
			]},
			"parent": {"entityType": "sample", "entityName": "s1"}
		}},
		{"name": "s3", "entityType": "sample", "attributes": {"depth": 12}}
	]`)
	up.Put(t, Files, `[
		{"name": "f1", "entityType": "file", "attributes": {"size": 10}},
		{"name": "f2", "entityType": "file", "attributes": {"size": 20}},
		{"name": "f3", "entityType": "file", "attributes": {"size": 30}}
	]`)

	cat := catalog.New()
	cat.AddVertex(Participants, catalog.VertexType{AttributeNames: []string{"age", "status"}, IDName: "participant_id"})
	cat.AddVertex(Samples, catalog.VertexType{AttributeNames: []string{"depth", "files", "parent", "participant", "status"}, IDName: "sample_id"})
	cat.AddVertex(Files, catalog.VertexType{AttributeNames: []string{"size"}, IDName: "file_id"})
	cat.AddEdge(SampleParticipant, "participant")
	cat.AddEdge(SampleFiles, "file")
	cat.AddEdge(SampleParent, "sample")
	require.NoError(t, cat.Validate())

	return up, cat
}
