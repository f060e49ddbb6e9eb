package rpc

import (
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/proto"
)

// CodecName is the gRPC content subtype under which messages of this package travel. It replaces
// grpc's default protobuf codec with one that also accepts the messages of this package.
const CodecName = "proto"

// wireMessage is implemented by every message of this package
type wireMessage interface {
	appendProto(b []byte) []byte
	consumeProto(b []byte) error
}

type protoCodec struct{}

func (protoCodec) Marshal(v interface{}) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.appendProto(nil), nil
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("failed to marshal, message is %T, want proto.Message", v)
}

func (protoCodec) Unmarshal(data []byte, v interface{}) error {
	switch m := v.(type) {
	case wireMessage:
		return m.consumeProto(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("failed to unmarshal, message is %T, want proto.Message", v)
}

func (protoCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(protoCodec{})
}

// Dial connects to an sjoin node over an insecure connection
func Dial(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)
	return grpc.Dial(target, opts...)
}
