// Package protocol defines the GRIPSource wire protocol: its messages, the
// gRPC service description, and typed server and client stubs.
//
// The schema in gripper.proto is built in Go at init and messages travel as
// dynamicpb values, converted to and from the plain structs in this package.
package protocol

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "gripper.GRIPSource"

// File is the descriptor of gripper.proto.
var File protoreflect.FileDescriptor

var (
	emptyDesc          protoreflect.MessageDescriptor
	collectionDesc     protoreflect.MessageDescriptor
	collectionInfoDesc protoreflect.MessageDescriptor
	rowIDDesc          protoreflect.MessageDescriptor
	rowRequestDesc     protoreflect.MessageDescriptor
	fieldRequestDesc   protoreflect.MessageDescriptor
	rowDesc            protoreflect.MessageDescriptor
)

func init() {
	fd, err := protodesc.NewFile(fileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic("gripper.proto: " + err.Error())
	}
	File = fd

	msgs := fd.Messages()
	emptyDesc = msgs.ByName("Empty")
	collectionDesc = msgs.ByName("Collection")
	collectionInfoDesc = msgs.ByName("CollectionInfo")
	rowIDDesc = msgs.ByName("RowID")
	rowRequestDesc = msgs.ByName("RowRequest")
	fieldRequestDesc = msgs.ByName("FieldRequest")
	rowDesc = msgs.ByName("Row")
}

func fileProto() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:       proto.String("gripper.proto"),
		Package:    proto.String("gripper"),
		Syntax:     proto.String("proto3"),
		Dependency: []string{structpb.File_google_protobuf_struct_proto.Path()},
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/teranos/gripterra/gripper/protocol"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			messageProto("Empty"),
			messageProto("Collection",
				scalar("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			messageProto("CollectionInfo",
				repeated(scalar("search_fields", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING))),
			messageProto("RowID",
				scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			messageProto("RowRequest",
				scalar("collection", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("id", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("requestID", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT64)),
			messageProto("FieldRequest",
				scalar("collection", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("field", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				scalar("value", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			messageProto("Row",
				scalar("id", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
				messageField("data", 2, ".google.protobuf.Struct"),
				scalar("requestID", 3, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
				scalar("error", 4, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("GRIPSource"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("GetCollections", "Empty", "Collection", false, true),
				method("GetCollectionInfo", "Collection", "CollectionInfo", false, false),
				method("GetIDs", "Collection", "RowID", false, true),
				method("GetRows", "Collection", "Row", false, true),
				method("GetRowsByID", "RowRequest", "Row", true, true),
				method("GetRowsByField", "FieldRequest", "Row", false, true),
			},
		}},
	}
}

func messageProto(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func scalar(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func messageField(name string, number int32, typeName string) *descriptorpb.FieldDescriptorProto {
	f := scalar(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(typeName)
	return f
}

func method(name, in, out string, clientStreaming, serverStreaming bool) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:            proto.String(name),
		InputType:       proto.String(".gripper." + in),
		OutputType:      proto.String(".gripper." + out),
		ClientStreaming: proto.Bool(clientStreaming),
		ServerStreaming: proto.Bool(serverStreaming),
	}
}
