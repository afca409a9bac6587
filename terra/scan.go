package terra

import (
	"context"
	"sort"
	"sync"

	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the part of the entity store a scan reads.
type Source interface {
	ListWorkspaces(ctx context.Context) ([]WorkspaceRef, error)
	ListEntityTypes(ctx context.Context, namespace, name string) (map[string]TypeInfo, error)
	ListEntities(ctx context.Context, addr entity.VertexAddr) ([]entity.Raw, error)
}

// DefaultScanConcurrency bounds concurrent upstream calls during a scan.
const DefaultScanConcurrency = 4

// ScanOptions controls a workspace scan.
type ScanOptions struct {
	// Namespaces limits the scan; empty scans every visible workspace.
	Namespaces []string
	// Edges also reads every row to find reference-valued attributes.
	Edges bool
	// Concurrency bounds concurrent upstream calls.
	Concurrency int
}

// ScanStats summarizes a scan.
type ScanStats struct {
	Workspaces int
	Skipped    int
	Types      int
	Edges      int
}

// Scan builds a catalog from the entity store. Workspaces whose entity
// types cannot be listed are skipped with a warning.
func Scan(ctx context.Context, src Source, opts ScanOptions, log *zap.SugaredLogger) (*catalog.Catalog, ScanStats, error) {
	var stats ScanStats
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultScanConcurrency
	}

	workspaces, err := src.ListWorkspaces(ctx)
	if err != nil {
		return nil, stats, err
	}
	workspaces = filterNamespaces(workspaces, opts.Namespaces)

	cat := catalog.New()
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, ws := range workspaces {
		log.Infow("Scanning workspace", logger.FieldNamespace, ws.Namespace, logger.FieldWorkspace, ws.Name)

		types, err := src.ListEntityTypes(gctx, ws.Namespace, ws.Name)
		if err != nil {
			if !errors.IsUpstreamUnavailableError(err) {
				if werr := g.Wait(); werr != nil {
					err = werr
				}
				return nil, stats, err
			}
			log.Warnw("Skipping workspace",
				logger.FieldNamespace, ws.Namespace,
				logger.FieldWorkspace, ws.Name,
				logger.FieldError, err)
			stats.Skipped++
			continue
		}
		stats.Workspaces++

		for typ, info := range types {
			addr := entity.VertexAddr{Namespace: ws.Namespace, Name: ws.Name, Type: typ}

			mu.Lock()
			cat.AddVertex(addr, catalog.VertexType{AttributeNames: info.AttributeNames, IDName: info.IDName})
			stats.Types++
			mu.Unlock()

			if !opts.Edges {
				continue
			}
			g.Go(func() error {
				fields, err := referenceFields(gctx, src, addr)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				for field, dst := range fields {
					cat.AddEdge(entity.EdgeAddr{Namespace: addr.Namespace, Name: addr.Name, Type: addr.Type, Field: field}, dst)
					stats.Edges++
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, stats, err
	}
	return cat, stats, nil
}

// referenceFields maps every reference-valued attribute of a type to the
// entity type it points at. When rows disagree the last one read wins.
func referenceFields(ctx context.Context, src Source, addr entity.VertexAddr) (map[string]string, error) {
	raws, err := src.ListEntities(ctx, addr)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string)
	for _, raw := range raws {
		row, err := entity.Ingest(raw)
		if err != nil {
			continue
		}
		for field, ref := range row.Refs {
			targets := ref.Targets()
			if len(targets) == 0 {
				continue
			}
			fields[field] = targets[len(targets)-1].EntityType
		}
	}
	return fields, nil
}

func filterNamespaces(workspaces []WorkspaceRef, namespaces []string) []WorkspaceRef {
	out := make([]WorkspaceRef, 0, len(workspaces))
	want := make(map[string]bool, len(namespaces))
	for _, ns := range namespaces {
		want[ns] = true
	}
	for _, ws := range workspaces {
		if len(want) == 0 || want[ws.Namespace] {
			out = append(out, ws)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}
		return out[i].Name < out[j].Name
	})
	return out
}
