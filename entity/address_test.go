package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/errors"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Address
	}{
		{
			name: "vertex",
			path: "anvil/ws1/sample",
			want: VertexAddr{Namespace: "anvil", Name: "ws1", Type: "sample"},
		},
		{
			name: "edge",
			path: "anvil/ws1/sample/participant",
			want: EdgeAddr{Namespace: "anvil", Name: "ws1", Type: "sample", Field: "participant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.path, got.Path())
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, path := range []string{"", "a", "a/b", "a/b/c/d/e", "a//c", "a/b/c/"} {
		t.Run(path, func(t *testing.T) {
			_, err := ParseAddress(path)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidPathError(err))
		})
	}
}

func TestEdgeAddr_Source(t *testing.T) {
	e := EdgeAddr{Namespace: "n", Name: "w", Type: "sample", Field: "participant"}
	assert.Equal(t, VertexAddr{Namespace: "n", Name: "w", Type: "sample"}, e.Source())
}
