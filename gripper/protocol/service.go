package protocol

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

type message interface {
	toProto() *dynamicpb.Message
}

// Sender is the outbound half of a server-streaming call.
type Sender[T message] interface {
	Send(T) error
	Context() context.Context
}

// RowRequestStream is the server side of GetRowsByID.
type RowRequestStream interface {
	Send(*Row) error
	Recv() (*RowRequest, error)
	Context() context.Context
}

// GRIPSourceServer is the graph-source service.
type GRIPSourceServer interface {
	GetCollections(*Empty, Sender[*Collection]) error
	GetCollectionInfo(context.Context, *Collection) (*CollectionInfo, error)
	GetIDs(*Collection, Sender[*RowID]) error
	GetRows(*Collection, Sender[*Row]) error
	GetRowsByID(RowRequestStream) error
	GetRowsByField(*FieldRequest, Sender[*Row]) error
}

// RegisterGRIPSourceServer registers srv on s.
func RegisterGRIPSourceServer(s grpc.ServiceRegistrar, srv GRIPSourceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the GRIPSource service to gRPC.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GRIPSourceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCollectionInfo", Handler: getCollectionInfoHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "GetCollections", Handler: getCollectionsHandler, ServerStreams: true},
		{StreamName: "GetIDs", Handler: getIDsHandler, ServerStreams: true},
		{StreamName: "GetRows", Handler: getRowsHandler, ServerStreams: true},
		{StreamName: "GetRowsByID", Handler: getRowsByIDHandler, ServerStreams: true, ClientStreams: true},
		{StreamName: "GetRowsByField", Handler: getRowsByFieldHandler, ServerStreams: true},
	},
	Metadata: "gripper.proto",
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

type serverSender[T message] struct {
	grpc.ServerStream
}

func (s *serverSender[T]) Send(v T) error {
	return s.ServerStream.SendMsg(v.toProto())
}

type rowRequestStream struct {
	grpc.ServerStream
}

func (s *rowRequestStream) Send(r *Row) error {
	return s.ServerStream.SendMsg(r.toProto())
}

func (s *rowRequestStream) Recv() (*RowRequest, error) {
	return recv(s.ServerStream, rowRequestDesc, rowRequestFromProto)
}

type receiver interface {
	RecvMsg(m any) error
}

func recv[T any](r receiver, md protoreflect.MessageDescriptor, decode func(protoreflect.Message) (*T, error)) (*T, error) {
	m := dynamicpb.NewMessage(md)
	if err := r.RecvMsg(m); err != nil {
		return nil, err
	}
	return decode(m)
}

func getCollectionInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := dynamicpb.NewMessage(collectionDesc)
	if err := dec(in); err != nil {
		return nil, err
	}
	req, err := collectionFromProto(in)
	if err != nil {
		return nil, err
	}

	handler := func(ctx context.Context, req any) (any, error) {
		info, err := srv.(GRIPSourceServer).GetCollectionInfo(ctx, req.(*Collection))
		if err != nil {
			return nil, err
		}
		return info.toProto(), nil
	}
	if interceptor == nil {
		return handler(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetCollectionInfo")}
	return interceptor(ctx, req, info, handler)
}

func getCollectionsHandler(srv any, stream grpc.ServerStream) error {
	in, err := recv(stream, emptyDesc, emptyFromProto)
	if err != nil {
		return err
	}
	return srv.(GRIPSourceServer).GetCollections(in, &serverSender[*Collection]{stream})
}

func getIDsHandler(srv any, stream grpc.ServerStream) error {
	in, err := recv(stream, collectionDesc, collectionFromProto)
	if err != nil {
		return err
	}
	return srv.(GRIPSourceServer).GetIDs(in, &serverSender[*RowID]{stream})
}

func getRowsHandler(srv any, stream grpc.ServerStream) error {
	in, err := recv(stream, collectionDesc, collectionFromProto)
	if err != nil {
		return err
	}
	return srv.(GRIPSourceServer).GetRows(in, &serverSender[*Row]{stream})
}

func getRowsByIDHandler(srv any, stream grpc.ServerStream) error {
	return srv.(GRIPSourceServer).GetRowsByID(&rowRequestStream{stream})
}

func getRowsByFieldHandler(srv any, stream grpc.ServerStream) error {
	in, err := recv(stream, fieldRequestDesc, fieldRequestFromProto)
	if err != nil {
		return err
	}
	return srv.(GRIPSourceServer).GetRowsByField(in, &serverSender[*Row]{stream})
}
