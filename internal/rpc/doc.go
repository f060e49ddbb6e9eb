// Package rpc holds the messages and gRPC service definitions used between sjoin nodes. Messages
// are plain structs which encode themselves in the protobuf wire format, so any protobuf peer
// with matching field numbers can read them. Service descriptors are declared by hand in the
// shape protoc-gen-go-grpc would produce.
package rpc
