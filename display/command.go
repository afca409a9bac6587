// Package display chooses between human and machine output for commands.
package display

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/logger"
)

// ShouldOutputJSON reports whether cmd should print JSON: its own --json flag
// when set, otherwise whether the logger was initialized for JSON.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return logger.JSONOutput
	}
	if f := cmd.Flags().Lookup("json"); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool("json")
		return v
	}
	return logger.JSONOutput
}

// OutputJSON writes v to w as indented JSON followed by a newline.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
