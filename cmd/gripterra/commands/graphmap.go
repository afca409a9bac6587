package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/catalog"
)

// GraphMapCmd prints a GRIP graph map for the catalog
var GraphMapCmd = &cobra.Command{
	Use:   "graphmap",
	Short: "Print a GRIP graph map for the catalog",
	Long: `Print the GRIP graph map binding each vertex and edge label to a collection
of this graph source.`,
	RunE: runGraphMap,
}

var (
	graphMapSource string
	graphMapHost   string
	graphMapOutput string
)

func init() {
	GraphMapCmd.Flags().StringVar(&graphMapSource, "source", catalog.DefaultSource, "Source name used in the map")
	GraphMapCmd.Flags().StringVar(&graphMapHost, "host", "", "Address GRIP dials (default: localhost:<port>)")
	GraphMapCmd.Flags().StringVarP(&graphMapOutput, "output", "o", "", "File to write (default: stdout)")
}

func runGraphMap(cmd *cobra.Command, args []string) error {
	host := graphMapHost
	if host == "" {
		host = fmt.Sprintf("localhost:%d", cfg.Port)
	}

	data, err := cfg.Catalog.GraphMap(graphMapSource, host).Marshal()
	if err != nil {
		return err
	}
	return writeOutput(cmd, graphMapOutput, data)
}
