package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/cmd/gripterra/commands"
	"github.com/teranos/gripterra/logger"
)

var rootCmd = &cobra.Command{
	Use:   "gripterra",
	Short: "gripterra - GRIP graph source over Terra workspace entities",
	Long: `gripterra - serve Terra/FireCloud workspace entities as a GRIP graph.

Entity types become vertex collections and reference-valued attributes become
edge collections, served over the GRIPSource gRPC protocol.

Available commands:
  scan        - Discover workspaces and write the collection catalog
  server      - Serve the catalog's collections over gRPC
  graphmap    - Print a GRIP graph map for the catalog
  schema      - Print a GRIP graph schema for the catalog
  collections - List the collections a running server offers
  version     - Show version information

Examples:
  gripterra scan -n anvil-datastorage --edge   # Build config.yaml with edges
  gripterra server                             # Serve on the configured port
  gripterra graphmap > graph.yaml              # Graph map for GRIP
  gripterra collections --info                 # Inspect a running server`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return commands.Setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "Config file holding settings and the collection catalog")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.ScanCmd)
	rootCmd.AddCommand(commands.GraphMapCmd)
	rootCmd.AddCommand(commands.SchemaCmd)
	rootCmd.AddCommand(commands.CollectionsCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
