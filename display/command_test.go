package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/gripterra/logger"
)

func newCommand() *cobra.Command {
	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	child.Flags().Bool("json", false, "")
	root.AddCommand(child)
	return root
}

func TestShouldOutputJSON(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		jsonLogs bool
		want     bool
	}{
		{"default", []string{"child"}, false, false},
		{"json flag", []string{"child", "--json"}, false, true},
		{"json logs", []string{"child"}, true, true},
		{"explicit false wins", []string{"child", "--json=false"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger.JSONOutput = tt.jsonLogs
			t.Cleanup(func() { logger.JSONOutput = false })

			root := newCommand()
			root.SetArgs(tt.args)
			cmd, err := root.ExecuteC()
			require.NoError(t, err)
			assert.Equal(t, tt.want, ShouldOutputJSON(cmd))
		})
	}

	logger.JSONOutput = false
	assert.False(t, ShouldOutputJSON(nil))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}
