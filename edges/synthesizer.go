// Package edges derives edge collections from reference-valued attributes of
// vertex rows.
//
// An edge collection is addressed by namespace/name/type/field. Its rows are
// built once, on first access, by scanning the source vertex collection and
// expanding the reference held in field:
//
//	single reference   <sourceId>/<targetId>
//	multi reference    <sourceId>/<index>/<targetId>
//
// Every edge row carries two attributes: the source type mapped to the
// source id and the destination type mapped to the target id.
package edges

import (
	"context"
	"strconv"
	"time"

	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/internal/flight"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
)

// VertexSource serves the vertex collections edges are derived from.
type VertexSource interface {
	Table(ctx context.Context, addr entity.VertexAddr) (*entity.Table, error)
}

// Synthesizer builds and caches edge collections.
type Synthesizer struct {
	catalog  *catalog.Catalog
	vertices VertexSource
	tables   *flight.Cache[entity.EdgeAddr, *entity.Table]
	logger   *zap.SugaredLogger
}

// New creates a Synthesizer reading vertex rows from vertices.
func New(cat *catalog.Catalog, vertices VertexSource, logger *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{
		catalog:  cat,
		vertices: vertices,
		tables:   flight.New[entity.EdgeAddr, *entity.Table](),
		logger:   logger,
	}
}

// DestinationType returns the configured target entity type of an edge field.
func (s *Synthesizer) DestinationType(addr entity.EdgeAddr) (string, error) {
	dst, ok := s.catalog.Destination(addr)
	if !ok {
		return "", errors.NewNotFoundError("edge collection %s is not configured", addr.Path())
	}
	return dst, nil
}

// TargetKey returns the attribute name edge rows of addr use for the target id.
func (s *Synthesizer) TargetKey(addr entity.EdgeAddr) (string, error) {
	dst, err := s.DestinationType(addr)
	if err != nil {
		return "", err
	}
	return catalog.TargetKey(addr, dst), nil
}

// Table returns the synthesized edge collection, building it on first access.
func (s *Synthesizer) Table(ctx context.Context, addr entity.EdgeAddr) (*entity.Table, error) {
	dst, err := s.DestinationType(addr)
	if err != nil {
		return nil, err
	}
	return s.tables.Get(ctx, addr, func(ctx context.Context) (*entity.Table, error) {
		return s.synthesize(ctx, addr, dst)
	})
}

// Rows returns every edge row of a collection.
// References whose entity type differs from the configured destination
// produce no row; the index in multi-reference ids keeps the upstream position.
func (s *Synthesizer) Rows(ctx context.Context, addr entity.EdgeAddr) ([]*entity.Row, error) {
	table, err := s.Table(ctx, addr)
	if err != nil {
		return nil, err
	}
	return table.Rows(), nil
}

// Row returns one edge row by synthetic id.
func (s *Synthesizer) Row(ctx context.Context, addr entity.EdgeAddr, id string) (*entity.Row, error) {
	table, err := s.Table(ctx, addr)
	if err != nil {
		return nil, err
	}
	row, ok := table.Row(id)
	if !ok {
		return nil, errors.NewNotFoundError("edge %q not in %s", id, addr.Path())
	}
	return row, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, addr entity.EdgeAddr, dst string) (*entity.Table, error) {
	log := logger.FromContext(ctx, s.logger)
	start := time.Now()

	source, err := s.vertices.Table(ctx, addr.Source())
	if err != nil {
		return nil, errors.Wrapf(err, "synthesize %s", addr.Path())
	}

	toKey := catalog.TargetKey(addr, dst)
	var rows []*entity.Row
	for _, src := range source.Rows() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ref, ok := src.Refs[addr.Field]
		if !ok {
			continue
		}

		switch ref := ref.(type) {
		case entity.SingleRef:
			if ref.Target.EntityType != dst {
				log.Debugw("Skipping reference to unexpected type",
					logger.FieldCollection, addr.Path(),
					logger.FieldRowID, src.ID,
					logger.FieldEntityType, ref.Target.EntityType)
				continue
			}
			rows = append(rows, edgeRow(src.ID+"/"+ref.Target.EntityName, addr.Type, src.ID, toKey, ref.Target.EntityName))

		case entity.MultiRef:
			for i, item := range ref.Items {
				if item.EntityType != dst {
					log.Debugw("Skipping reference to unexpected type",
						logger.FieldCollection, addr.Path(),
						logger.FieldRowID, src.ID,
						logger.FieldEntityType, item.EntityType)
					continue
				}
				id := src.ID + "/" + strconv.Itoa(i) + "/" + item.EntityName
				rows = append(rows, edgeRow(id, addr.Type, src.ID, toKey, item.EntityName))
			}
		}
	}

	table := entity.NewTable(rows)
	log.Infow("Synthesized edge collection",
		logger.FieldCollection, addr.Path(),
		logger.FieldCount, table.Len(),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return table, nil
}

func edgeRow(id, fromKey, fromID, toKey, toID string) *entity.Row {
	return &entity.Row{
		ID: id,
		Attributes: map[string]any{
			fromKey: fromID,
			toKey:   toID,
		},
	}
}
