package commands

import (
	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/catalog"
)

// SchemaCmd prints a GRIP graph schema for the catalog
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print a GRIP graph schema for the catalog",
	Long: `Print a GRIP graph schema. Entity types that share a name across workspaces
are merged into one vertex label.`,
	RunE: runSchema,
}

var (
	schemaGraph  string
	schemaOutput string
)

func init() {
	SchemaCmd.Flags().StringVar(&schemaGraph, "graph", catalog.DefaultGraph, "Graph name")
	SchemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "File to write (default: stdout)")
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := cfg.Catalog.Schema(schemaGraph).Marshal()
	if err != nil {
		return err
	}
	return writeOutput(cmd, schemaOutput, data)
}
