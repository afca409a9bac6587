package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFromJSON(t *testing.T, s string) Raw {
	t.Helper()
	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestIngest_References(t *testing.T) {
	raw := rawFromJSON(t, `{
		"name": "s1",
		"entityType": "sample",
		"attributes": {
			"status": "active",
			"depth": 30,
			"participant": {"entityType": "participant", "entityName": "p1"},
			"files": {"itemsType": "EntityReference", "items": [
				{"entityType": "file", "entityName": "f1"},
				{"entityType": "file", "entityName": "f2"}
			]},
			"tags": {"itemsType": "AttributeValue", "items": ["a", "b"]},
			"meta": {"source": "lab"}
		}
	}`)

	row, err := Ingest(raw)
	require.NoError(t, err)

	assert.Equal(t, "s1", row.ID)
	assert.Equal(t, "active", row.Attributes["status"])
	assert.Equal(t, float64(30), row.Attributes["depth"])

	require.Len(t, row.Refs, 2)
	assert.Equal(t, SingleRef{Target: EntityRef{EntityType: "participant", EntityName: "p1"}}, row.Refs["participant"])
	assert.Equal(t, MultiRef{
		ItemsType: "EntityReference",
		Items: []EntityRef{
			{EntityType: "file", EntityName: "f1"},
			{EntityType: "file", EntityName: "f2"},
		},
	}, row.Refs["files"])

	// Reference attributes keep their JSON shape for output
	participant, ok := row.Attributes["participant"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", participant["entityName"])
}

func TestIngest_NoName(t *testing.T) {
	_, err := Ingest(Raw{Attributes: map[string]json.RawMessage{}})
	assert.Error(t, err)
}

func TestDecodeReference(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"single", `{"entityType":"a","entityName":"b"}`, true},
		{"multi", `{"itemsType":"EntityReference","items":[{"entityType":"a","entityName":"b"}]}`, true},
		{"empty multi", `{"itemsType":"EntityReference","items":[]}`, true},
		{"value list", `{"itemsType":"AttributeValue","items":[1,2]}`, false},
		{"missing name", `{"entityType":"a"}`, false},
		{"string", `"hello"`, false},
		{"number", `42`, false},
		{"null", `null`, false},
		{"plain object", `{"x":1}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := DecodeReference(json.RawMessage(tt.raw))
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestReference_Targets(t *testing.T) {
	multi := MultiRef{Items: []EntityRef{{"a", "1"}, {"a", "2"}}}
	assert.Len(t, multi.Targets(), 2)

	single := SingleRef{Target: EntityRef{"b", "3"}}
	assert.Equal(t, []EntityRef{{"b", "3"}}, single.Targets())
}

func TestRow_AttributeEquals(t *testing.T) {
	row := &Row{ID: "r", Attributes: map[string]any{
		"status": "active",
		"count":  float64(1),
		"nil":    nil,
	}}

	assert.True(t, row.AttributeEquals("status", "active"))
	assert.False(t, row.AttributeEquals("status", "inactive"))
	assert.False(t, row.AttributeEquals("count", "1"), "no coercion across types")
	assert.False(t, row.AttributeEquals("nil", ""))
	assert.False(t, row.AttributeEquals("missing", "active"))
}
