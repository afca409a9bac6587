package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/gripterra/display"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/gripper/protocol"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// CollectionsCmd lists the collections a running server offers
var CollectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the collections a running server offers",
	RunE:  runCollections,
}

var (
	collectionsAddress string
	collectionsInfo    bool
	collectionsTimeout time.Duration
)

func init() {
	CollectionsCmd.Flags().StringVar(&collectionsAddress, "address", "", "Server address (default: localhost:<port>)")
	CollectionsCmd.Flags().BoolVar(&collectionsInfo, "info", false, "Also show each collection's search fields")
	CollectionsCmd.Flags().DurationVar(&collectionsTimeout, "timeout", 30*time.Second, "Overall timeout")
	CollectionsCmd.Flags().BoolP("json", "j", false, "Output as JSON")
}

// collectionEntry is one collection in --json output.
type collectionEntry struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	SearchFields []string `json:"search_fields,omitempty"`
}

func runCollections(cmd *cobra.Command, args []string) error {
	address := collectionsAddress
	if address == "" {
		address = fmt.Sprintf("localhost:%d", cfg.Port)
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", address)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), collectionsTimeout)
	defer cancel()

	client := protocol.NewClient(conn)
	stream, err := client.GetCollections(ctx)
	if err != nil {
		return errors.Wrap(err, "GetCollections")
	}
	collections, err := protocol.Collect(stream)
	if err != nil {
		return errors.Wrap(err, "GetCollections")
	}

	entries := make([]collectionEntry, 0, len(collections))
	for _, c := range collections {
		entry := collectionEntry{Name: c.Name, Kind: "vertex"}
		if strings.Count(c.Name, "/") == 3 {
			entry.Kind = "edge"
		}
		if collectionsInfo {
			info, err := client.GetCollectionInfo(ctx, c)
			if err != nil {
				return errors.Wrapf(err, "GetCollectionInfo %s", c.Name)
			}
			entry.SearchFields = info.SearchFields
		}
		entries = append(entries, entry)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), entries)
	}

	header := []string{"Collection", "Kind"}
	if collectionsInfo {
		header = append(header, "Search fields")
	}
	data := pterm.TableData{header}
	for _, e := range entries {
		row := []string{e.Name, e.Kind}
		if collectionsInfo {
			row = append(row, strings.Join(e.SearchFields, ", "))
		}
		data = append(data, row)
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("%d collections on %s\n", len(collections), address)
	return nil
}
