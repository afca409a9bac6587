package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/edges"
	"github.com/teranos/gripterra/gripper"
	"github.com/teranos/gripterra/logger"
	"github.com/teranos/gripterra/rowstore"
	"github.com/teranos/gripterra/terra"
)

// ServerCmd serves the catalog over the GRIPSource protocol
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Serve the catalog's collections over gRPC",
	Long: `Serve every vertex and edge collection in the catalog over the GRIPSource
gRPC protocol. Collections are fetched from the entity store on first use
and kept in memory for the life of the process.`,
	RunE: runServer,
}

func init() {
	ServerCmd.Flags().Int("port", 0, "Port to listen on (overrides config)")
	ServerCmd.Flags().String("upstream-url", "", "Entity store base URL (overrides config)")
}

func runServer(cmd *cobra.Command, args []string) error {
	log := logger.ComponentLogger("server")

	vertices, edgeTables := len(cfg.Catalog.VertexAddrs()), len(cfg.Catalog.EdgeAddrs())
	if vertices == 0 {
		log.Warnw("Catalog is empty, run 'gripterra scan' first", "config", cfg.File)
	}

	upstream := terra.NewClient(cfg.Upstream, logger.ComponentLogger("terra"))
	store := rowstore.New(cfg.Catalog, upstream, logger.ComponentLogger("rowstore"))
	synth := edges.New(cfg.Catalog, store, logger.ComponentLogger("edges"))
	servicer := gripper.NewServicer(cfg.Catalog, store, synth, cfg.Server.LookupConcurrency, logger.ComponentLogger("gripper"))
	srv := gripper.NewServer(servicer, cfg.Server.MaxWorkers, log)

	pterm.Info.Printf("Serving %d vertex and %d edge collections on %s\n", vertices, edgeTables, cfg.Address())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Address())
}
