package protocol

import (
	"github.com/teranos/gripterra/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Empty is the request of GetCollections.
type Empty struct{}

// Collection names one collection.
type Collection struct {
	Name string
}

// CollectionInfo lists the fields a collection can be filtered on.
type CollectionInfo struct {
	SearchFields []string
}

// RowID is one streamed row identifier.
type RowID struct {
	ID string
}

// RowRequest asks for one row by id. RequestID is echoed on the reply.
type RowRequest struct {
	Collection string
	ID         string
	RequestID  uint64
}

// FieldRequest asks for the rows whose Field equals Value.
type FieldRequest struct {
	Collection string
	Field      string
	Value      string
}

// Row is one vertex or edge row. Error is set, and Data left nil, when a
// GetRowsByID lookup failed.
type Row struct {
	ID        string
	Data      *structpb.Struct
	RequestID uint64
	Error     string
}

func field(md protoreflect.MessageDescriptor, name protoreflect.Name) protoreflect.FieldDescriptor {
	return md.Fields().ByName(name)
}

func getString(m protoreflect.Message, name protoreflect.Name) string {
	return m.Get(field(m.Descriptor(), name)).String()
}

func getUint(m protoreflect.Message, name protoreflect.Name) uint64 {
	return m.Get(field(m.Descriptor(), name)).Uint()
}

func (*Empty) toProto() *dynamicpb.Message {
	return dynamicpb.NewMessage(emptyDesc)
}

func (c *Collection) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(collectionDesc)
	m.Set(field(collectionDesc, "name"), protoreflect.ValueOfString(c.Name))
	return m
}

func (c *CollectionInfo) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(collectionInfoDesc)
	list := m.Mutable(field(collectionInfoDesc, "search_fields")).List()
	for _, f := range c.SearchFields {
		list.Append(protoreflect.ValueOfString(f))
	}
	return m
}

func (r *RowID) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(rowIDDesc)
	m.Set(field(rowIDDesc, "id"), protoreflect.ValueOfString(r.ID))
	return m
}

func (r *RowRequest) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(rowRequestDesc)
	m.Set(field(rowRequestDesc, "collection"), protoreflect.ValueOfString(r.Collection))
	m.Set(field(rowRequestDesc, "id"), protoreflect.ValueOfString(r.ID))
	m.Set(field(rowRequestDesc, "requestID"), protoreflect.ValueOfUint64(r.RequestID))
	return m
}

func (r *FieldRequest) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(fieldRequestDesc)
	m.Set(field(fieldRequestDesc, "collection"), protoreflect.ValueOfString(r.Collection))
	m.Set(field(fieldRequestDesc, "field"), protoreflect.ValueOfString(r.Field))
	m.Set(field(fieldRequestDesc, "value"), protoreflect.ValueOfString(r.Value))
	return m
}

func (r *Row) toProto() *dynamicpb.Message {
	m := dynamicpb.NewMessage(rowDesc)
	m.Set(field(rowDesc, "id"), protoreflect.ValueOfString(r.ID))
	if r.Data != nil {
		m.Set(field(rowDesc, "data"), protoreflect.ValueOfMessage(r.Data.ProtoReflect()))
	}
	m.Set(field(rowDesc, "requestID"), protoreflect.ValueOfUint64(r.RequestID))
	m.Set(field(rowDesc, "error"), protoreflect.ValueOfString(r.Error))
	return m
}

func collectionFromProto(m protoreflect.Message) (*Collection, error) {
	return &Collection{Name: getString(m, "name")}, nil
}

func collectionInfoFromProto(m protoreflect.Message) (*CollectionInfo, error) {
	list := m.Get(field(collectionInfoDesc, "search_fields")).List()
	info := &CollectionInfo{SearchFields: make([]string, 0, list.Len())}
	for i := 0; i < list.Len(); i++ {
		info.SearchFields = append(info.SearchFields, list.Get(i).String())
	}
	return info, nil
}

func rowIDFromProto(m protoreflect.Message) (*RowID, error) {
	return &RowID{ID: getString(m, "id")}, nil
}

func rowRequestFromProto(m protoreflect.Message) (*RowRequest, error) {
	return &RowRequest{
		Collection: getString(m, "collection"),
		ID:         getString(m, "id"),
		RequestID:  getUint(m, "requestID"),
	}, nil
}

func fieldRequestFromProto(m protoreflect.Message) (*FieldRequest, error) {
	return &FieldRequest{
		Collection: getString(m, "collection"),
		Field:      getString(m, "field"),
		Value:      getString(m, "value"),
	}, nil
}

func emptyFromProto(protoreflect.Message) (*Empty, error) {
	return &Empty{}, nil
}

func rowFromProto(m protoreflect.Message) (*Row, error) {
	row := &Row{
		ID:        getString(m, "id"),
		RequestID: getUint(m, "requestID"),
		Error:     getString(m, "error"),
	}

	fd := field(rowDesc, "data")
	if !m.Has(fd) {
		return row, nil
	}

	// The nested message may be dynamic; round-trip it into a concrete Struct.
	b, err := proto.Marshal(m.Get(fd).Message().Interface())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode row data")
	}
	row.Data = &structpb.Struct{}
	if err := proto.Unmarshal(b, row.Data); err != nil {
		return nil, errors.Wrap(err, "failed to decode row data")
	}
	return row, nil
}
