// Package commands implements the gripterra subcommands.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/config"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/logger"
)

// cfg is the configuration loaded by Setup for the running command.
var cfg *config.Config

// Setup loads configuration for cmd and initializes the global logger.
func Setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}
	cfg = loaded

	verbosity, _ := cmd.Flags().GetCount("verbose")
	if err := logger.Initialize(cfg.Log.JSON, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	logger.Logger.Debugw("Loaded configuration",
		"file", cfg.File,
		"verbosity", logger.LevelName(verbosity),
		logger.FieldCount, len(cfg.Catalog.VertexAddrs()))
	return nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
