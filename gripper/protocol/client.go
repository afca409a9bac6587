package protocol

import (
	"context"
	"io"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Client is a typed GRIPSource client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Stream receives the replies of a server-streaming call.
type Stream[T any] struct {
	stream grpc.ClientStream
	desc   protoreflect.MessageDescriptor
	decode func(protoreflect.Message) (*T, error)
}

// Recv returns the next reply, or io.EOF once the server has finished.
func (s *Stream[T]) Recv() (*T, error) {
	return recv(s.stream, s.desc, s.decode)
}

// Collect drains a stream.
func Collect[T any](s *Stream[T]) ([]*T, error) {
	var out []*T
	for {
		v, err := s.Recv()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// RowsByIDStream is the client side of GetRowsByID.
type RowsByIDStream struct {
	*Stream[Row]
}

// Send queues one lookup.
func (s *RowsByIDStream) Send(req *RowRequest) error {
	return s.stream.SendMsg(req.toProto())
}

// CloseSend signals that no more lookups follow.
func (s *RowsByIDStream) CloseSend() error {
	return s.stream.CloseSend()
}

func streamDesc(name string) *grpc.StreamDesc {
	for i := range ServiceDesc.Streams {
		if ServiceDesc.Streams[i].StreamName == name {
			return &ServiceDesc.Streams[i]
		}
	}
	panic("unknown stream " + name)
}

func openStream[T any](ctx context.Context, cc grpc.ClientConnInterface, name string, req message,
	desc protoreflect.MessageDescriptor, decode func(protoreflect.Message) (*T, error), opts []grpc.CallOption) (*Stream[T], error) {
	cs, err := cc.NewStream(ctx, streamDesc(name), fullMethod(name), opts...)
	if err != nil {
		return nil, err
	}
	if err := cs.SendMsg(req.toProto()); err != nil {
		return nil, err
	}
	if err := cs.CloseSend(); err != nil {
		return nil, err
	}
	return &Stream[T]{stream: cs, desc: desc, decode: decode}, nil
}

// GetCollections lists every collection the source serves.
func (c *Client) GetCollections(ctx context.Context, opts ...grpc.CallOption) (*Stream[Collection], error) {
	return openStream(ctx, c.cc, "GetCollections", &Empty{}, collectionDesc, collectionFromProto, opts)
}

// GetCollectionInfo returns the search fields of a collection.
func (c *Client) GetCollectionInfo(ctx context.Context, in *Collection, opts ...grpc.CallOption) (*CollectionInfo, error) {
	out := dynamicpb.NewMessage(collectionInfoDesc)
	if err := c.cc.Invoke(ctx, fullMethod("GetCollectionInfo"), in.toProto(), out, opts...); err != nil {
		return nil, err
	}
	return collectionInfoFromProto(out)
}

// GetIDs streams the row ids of a collection.
func (c *Client) GetIDs(ctx context.Context, in *Collection, opts ...grpc.CallOption) (*Stream[RowID], error) {
	return openStream(ctx, c.cc, "GetIDs", in, rowIDDesc, rowIDFromProto, opts)
}

// GetRows streams every row of a collection.
func (c *Client) GetRows(ctx context.Context, in *Collection, opts ...grpc.CallOption) (*Stream[Row], error) {
	return openStream(ctx, c.cc, "GetRows", in, rowDesc, rowFromProto, opts)
}

// GetRowsByField streams the rows whose field equals a value.
func (c *Client) GetRowsByField(ctx context.Context, in *FieldRequest, opts ...grpc.CallOption) (*Stream[Row], error) {
	return openStream(ctx, c.cc, "GetRowsByField", in, rowDesc, rowFromProto, opts)
}

// GetRowsByID opens a lookup stream.
func (c *Client) GetRowsByID(ctx context.Context, opts ...grpc.CallOption) (*RowsByIDStream, error) {
	cs, err := c.cc.NewStream(ctx, streamDesc("GetRowsByID"), fullMethod("GetRowsByID"), opts...)
	if err != nil {
		return nil, err
	}
	return &RowsByIDStream{&Stream[Row]{stream: cs, desc: rowDesc, decode: rowFromProto}}, nil
}
