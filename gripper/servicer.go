// Package gripper serves the catalog's vertex and edge collections over the
// GRIPSource protocol.
//
// Every request names a collection by path. The path is parsed once into an
// entity.VertexAddr, answered from the row store, or an entity.EdgeAddr,
// answered from the edge synthesizer.
package gripper

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teranos/gripterra/catalog"
	"github.com/teranos/gripterra/entity"
	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/gripper/protocol"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/known/structpb"
)

// VertexStore serves vertex collections.
type VertexStore interface {
	Rows(ctx context.Context, addr entity.VertexAddr) ([]*entity.Row, error)
	Row(ctx context.Context, addr entity.VertexAddr, id string) (*entity.Row, error)
}

// EdgeStore serves synthesized edge collections.
type EdgeStore interface {
	Rows(ctx context.Context, addr entity.EdgeAddr) ([]*entity.Row, error)
	Row(ctx context.Context, addr entity.EdgeAddr, id string) (*entity.Row, error)
	TargetKey(addr entity.EdgeAddr) (string, error)
}

// DefaultLookupConcurrency bounds concurrent GetRowsByID lookups per stream
// when the servicer is built with a non-positive limit.
const DefaultLookupConcurrency = 16

// Servicer implements protocol.GRIPSourceServer.
type Servicer struct {
	catalog           *catalog.Catalog
	vertices          VertexStore
	edges             EdgeStore
	lookupConcurrency int
	logger            *zap.SugaredLogger
}

var _ protocol.GRIPSourceServer = (*Servicer)(nil)

// NewServicer creates a Servicer.
func NewServicer(cat *catalog.Catalog, vertices VertexStore, edges EdgeStore, lookupConcurrency int, logger *zap.SugaredLogger) *Servicer {
	if lookupConcurrency <= 0 {
		lookupConcurrency = DefaultLookupConcurrency
	}
	return &Servicer{
		catalog:           cat,
		vertices:          vertices,
		edges:             edges,
		lookupConcurrency: lookupConcurrency,
		logger:            logger,
	}
}

// call tracks one RPC for logging.
type call struct {
	ctx    context.Context
	log    *zap.SugaredLogger
	method string
	start  time.Time
	count  int
}

func (s *Servicer) begin(ctx context.Context, method, collection string) *call {
	ctx = logger.WithCallID(ctx, uuid.NewString())
	log := logger.FromContext(ctx, s.logger).With(logger.FieldMethod, method)
	if collection != "" {
		log = log.With(logger.FieldCollection, collection)
	}
	log.Debugw("Call started")
	return &call{ctx: ctx, log: log, method: method, start: time.Now()}
}

// end logs the outcome and converts err to a gRPC status.
func (c *call) end(err error) error {
	if err != nil {
		st := toStatus(err)
		c.log.Warnw("Call failed",
			logger.FieldStatus, st.Code().String(),
			logger.FieldCount, c.count,
			logger.FieldDurationMS, time.Since(c.start).Milliseconds(),
			logger.FieldError, err)
		return st.Err()
	}
	c.log.Debugw("Call finished",
		logger.FieldCount, c.count,
		logger.FieldDurationMS, time.Since(c.start).Milliseconds())
	return nil
}

func (s *Servicer) rows(ctx context.Context, addr entity.Address) ([]*entity.Row, error) {
	switch a := addr.(type) {
	case entity.VertexAddr:
		return s.vertices.Rows(ctx, a)
	case entity.EdgeAddr:
		return s.edges.Rows(ctx, a)
	}
	return nil, errors.NewInvalidPathError("unsupported address %T", addr)
}

func (s *Servicer) row(ctx context.Context, addr entity.Address, id string) (*entity.Row, error) {
	switch a := addr.(type) {
	case entity.VertexAddr:
		return s.vertices.Row(ctx, a, id)
	case entity.EdgeAddr:
		return s.edges.Row(ctx, a, id)
	}
	return nil, errors.NewInvalidPathError("unsupported address %T", addr)
}

func toRow(r *entity.Row) (*protocol.Row, error) {
	data, err := structpb.NewStruct(r.Attributes)
	if err != nil {
		return nil, errors.Wrapf(err, "row %q", r.ID)
	}
	return &protocol.Row{ID: r.ID, Data: data}, nil
}

// GetCollections lists every configured vertex collection, then every
// configured edge collection.
func (s *Servicer) GetCollections(_ *protocol.Empty, out protocol.Sender[*protocol.Collection]) error {
	c := s.begin(out.Context(), "GetCollections", "")

	for _, v := range s.catalog.VertexAddrs() {
		if err := out.Send(&protocol.Collection{Name: v.Path()}); err != nil {
			return c.end(err)
		}
		c.count++
	}
	for _, e := range s.catalog.EdgeAddrs() {
		if err := out.Send(&protocol.Collection{Name: e.Path()}); err != nil {
			return c.end(err)
		}
		c.count++
	}
	return c.end(nil)
}

// GetCollectionInfo returns the attribute names of a vertex collection, or
// the source and target keys of an edge collection. The target key is the
// destination type, except for a self reference where it is the field name.
func (s *Servicer) GetCollectionInfo(ctx context.Context, in *protocol.Collection) (*protocol.CollectionInfo, error) {
	c := s.begin(ctx, "GetCollectionInfo", in.Name)

	info, err := s.collectionInfo(in.Name)
	if err != nil {
		return nil, c.end(err)
	}
	c.count = len(info.SearchFields)
	return info, c.end(nil)
}

func (s *Servicer) collectionInfo(name string) (*protocol.CollectionInfo, error) {
	addr, err := entity.ParseAddress(name)
	if err != nil {
		return nil, err
	}

	switch a := addr.(type) {
	case entity.VertexAddr:
		vt, ok := s.catalog.Vertex(a)
		if !ok {
			return nil, errors.NewNotFoundError("vertex collection %s is not configured", a.Path())
		}
		fields := make([]string, len(vt.AttributeNames))
		copy(fields, vt.AttributeNames)
		return &protocol.CollectionInfo{SearchFields: fields}, nil

	case entity.EdgeAddr:
		key, err := s.edges.TargetKey(a)
		if err != nil {
			return nil, err
		}
		return &protocol.CollectionInfo{SearchFields: []string{a.Type, key}}, nil
	}
	return nil, errors.NewInvalidPathError("unsupported address %T", addr)
}

// GetIDs streams the id of every row in a collection.
func (s *Servicer) GetIDs(in *protocol.Collection, out protocol.Sender[*protocol.RowID]) error {
	c := s.begin(out.Context(), "GetIDs", in.Name)

	addr, err := entity.ParseAddress(in.Name)
	if err != nil {
		return c.end(err)
	}
	rows, err := s.rows(c.ctx, addr)
	if err != nil {
		return c.end(err)
	}

	for _, r := range rows {
		if err := c.ctx.Err(); err != nil {
			return c.end(err)
		}
		if err := out.Send(&protocol.RowID{ID: r.ID}); err != nil {
			return c.end(err)
		}
		c.count++
	}
	return c.end(nil)
}

// GetRows streams every row of a collection.
func (s *Servicer) GetRows(in *protocol.Collection, out protocol.Sender[*protocol.Row]) error {
	c := s.begin(out.Context(), "GetRows", in.Name)

	addr, err := entity.ParseAddress(in.Name)
	if err != nil {
		return c.end(err)
	}
	rows, err := s.rows(c.ctx, addr)
	if err != nil {
		return c.end(err)
	}
	return c.end(s.sendRows(c, rows, nil, out))
}

// GetRowsByField streams the rows whose attribute equals a string value.
// A leading "$." is stripped from the field; the rest names one top-level
// attribute.
func (s *Servicer) GetRowsByField(in *protocol.FieldRequest, out protocol.Sender[*protocol.Row]) error {
	c := s.begin(out.Context(), "GetRowsByField", in.Collection)
	field := strings.TrimPrefix(in.Field, "$.")
	c.log = c.log.With(logger.FieldField, field)

	addr, err := entity.ParseAddress(in.Collection)
	if err != nil {
		return c.end(err)
	}
	rows, err := s.rows(c.ctx, addr)
	if err != nil {
		return c.end(err)
	}

	match := func(r *entity.Row) bool { return r.AttributeEquals(field, in.Value) }
	return c.end(s.sendRows(c, rows, match, out))
}

func (s *Servicer) sendRows(c *call, rows []*entity.Row, match func(*entity.Row) bool, out protocol.Sender[*protocol.Row]) error {
	for _, r := range rows {
		if err := c.ctx.Err(); err != nil {
			return err
		}
		if match != nil && !match(r) {
			continue
		}
		row, err := toRow(r)
		if err != nil {
			return err
		}
		if err := out.Send(row); err != nil {
			return err
		}
		c.count++
	}
	return nil
}

// GetRowsByID answers each inbound lookup with exactly one reply carrying
// its request id. Lookups run concurrently, so replies may arrive out of
// order. A failed lookup is reported on its reply and the stream continues.
func (s *Servicer) GetRowsByID(stream protocol.RowRequestStream) error {
	c := s.begin(stream.Context(), "GetRowsByID", "")

	g, ctx := errgroup.WithContext(c.ctx)
	g.SetLimit(s.lookupConcurrency)

	var mu sync.Mutex
	send := func(r *protocol.Row) error {
		mu.Lock()
		defer mu.Unlock()
		if err := stream.Send(r); err != nil {
			return err
		}
		c.count++
		return nil
	}

	var recvErr error
	for ctx.Err() == nil {
		req, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			recvErr = err
			break
		}

		g.Go(func() error {
			reply, err := s.lookup(ctx, c.log, req)
			if err != nil {
				return err
			}
			return send(reply)
		})
	}

	err := g.Wait()
	if err == nil {
		err = recvErr
	}
	return c.end(err)
}

// lookup resolves one request. Only cancellation is returned as an error;
// every other failure becomes an error reply.
func (s *Servicer) lookup(ctx context.Context, log *zap.SugaredLogger, req *protocol.RowRequest) (*protocol.Row, error) {
	fail := func(err error) (*protocol.Row, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Debugw("Lookup failed",
			logger.FieldCollection, req.Collection,
			logger.FieldRowID, req.ID,
			logger.FieldRequestID, req.RequestID,
			logger.FieldError, err)
		return &protocol.Row{ID: req.ID, RequestID: req.RequestID, Error: replyError(err)}, nil
	}

	addr, err := entity.ParseAddress(req.Collection)
	if err != nil {
		return fail(err)
	}
	r, err := s.row(ctx, addr, req.ID)
	if err != nil {
		return fail(err)
	}
	reply, err := toRow(r)
	if err != nil {
		return fail(err)
	}
	reply.RequestID = req.RequestID
	return reply, nil
}
