// Package rowstore is the lazy, process-lifetime cache of vertex collections.
//
// The first access to a configured collection fetches its full row set from
// the entity store once; every later access is served from memory. There is
// no eviction and no invalidation.
package rowstore

import (
	"context"
	"time"

	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/internal/flight"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
)

// Upstream fetches the full row set of one entity type.
type Upstream interface {
	ListEntities(ctx context.Context, addr entity.VertexAddr) ([]entity.Raw, error)
}

// Store serves vertex collections registered in the catalog.
type Store struct {
	catalog  *catalog.Catalog
	upstream Upstream
	tables   *flight.Cache[entity.VertexAddr, *entity.Table]
	logger   *zap.SugaredLogger
}

// New creates a Store over the given catalog and entity store.
func New(cat *catalog.Catalog, upstream Upstream, logger *zap.SugaredLogger) *Store {
	return &Store{
		catalog:  cat,
		upstream: upstream,
		tables:   flight.New[entity.VertexAddr, *entity.Table](),
		logger:   logger,
	}
}

// Table returns the cached row set of a vertex collection, fetching it on
// first access. Unregistered collections are ErrNotFound.
func (s *Store) Table(ctx context.Context, addr entity.VertexAddr) (*entity.Table, error) {
	if _, ok := s.catalog.Vertex(addr); !ok {
		return nil, errors.NewNotFoundError("vertex collection %s is not configured", addr.Path())
	}
	return s.tables.Get(ctx, addr, func(ctx context.Context) (*entity.Table, error) {
		return s.fetch(ctx, addr)
	})
}

// Rows returns every row of a vertex collection.
func (s *Store) Rows(ctx context.Context, addr entity.VertexAddr) ([]*entity.Row, error) {
	table, err := s.Table(ctx, addr)
	if err != nil {
		return nil, err
	}
	return table.Rows(), nil
}

// Row returns one row of a vertex collection by id.
func (s *Store) Row(ctx context.Context, addr entity.VertexAddr, id string) (*entity.Row, error) {
	table, err := s.Table(ctx, addr)
	if err != nil {
		return nil, err
	}
	row, ok := table.Row(id)
	if !ok {
		return nil, errors.NewNotFoundError("row %q not in %s", id, addr.Path())
	}
	return row, nil
}

// Cached reports whether a collection has been populated.
func (s *Store) Cached(addr entity.VertexAddr) bool {
	_, ok := s.tables.Peek(addr)
	return ok
}

func (s *Store) fetch(ctx context.Context, addr entity.VertexAddr) (*entity.Table, error) {
	log := logger.FromContext(ctx, s.logger)
	start := time.Now()

	raws, err := s.upstream.ListEntities(ctx, addr)
	if err != nil {
		log.Warnw("Failed to populate vertex collection",
			logger.FieldCollection, addr.Path(),
			logger.FieldError, err)
		return nil, err
	}

	rows := make([]*entity.Row, 0, len(raws))
	for _, raw := range raws {
		row, err := entity.Ingest(raw)
		if err != nil {
			log.Warnw("Skipping malformed entity",
				logger.FieldCollection, addr.Path(),
				logger.FieldError, err)
			continue
		}
		rows = append(rows, row)
	}

	table := entity.NewTable(rows)
	log.Infow("Cached vertex collection",
		logger.FieldCollection, addr.Path(),
		logger.FieldCount, table.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return table, nil
}
