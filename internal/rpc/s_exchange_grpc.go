package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ExchangeServiceClient is the client API for ExchangeService
type ExchangeServiceClient interface {
	Deliver(ctx context.Context, opts ...grpc.CallOption) (ExchangeService_DeliverClient, error)
}

type exchangeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewExchangeServiceClient creates an ExchangeServiceClient on top of a connection
func NewExchangeServiceClient(cc grpc.ClientConnInterface) ExchangeServiceClient {
	return &exchangeServiceClient{cc}
}

func (c *exchangeServiceClient) Deliver(ctx context.Context, opts ...grpc.CallOption) (ExchangeService_DeliverClient, error) {
	stream, err := c.cc.NewStream(ctx, &ExchangeService_ServiceDesc.Streams[0], "/sjoin.ExchangeService/Deliver", opts...)
	if err != nil {
		return nil, err
	}
	return &exchangeServiceDeliverClient{stream}, nil
}

// ExchangeService_DeliverClient streams the chunks of one part and receives a single acknowledgement
type ExchangeService_DeliverClient interface {
	Send(*MExchangeChunk) error
	CloseAndRecv() (*MExchangeAck, error)
	grpc.ClientStream
}

type exchangeServiceDeliverClient struct {
	grpc.ClientStream
}

func (x *exchangeServiceDeliverClient) Send(m *MExchangeChunk) error {
	return x.ClientStream.SendMsg(m)
}

func (x *exchangeServiceDeliverClient) CloseAndRecv() (*MExchangeAck, error) {
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	m := new(MExchangeAck)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ExchangeServiceServer is the server API for ExchangeService
type ExchangeServiceServer interface {
	Deliver(ExchangeService_DeliverServer) error
}

// RegisterExchangeServiceServer registers srv with a gRPC server
func RegisterExchangeServiceServer(s grpc.ServiceRegistrar, srv ExchangeServiceServer) {
	s.RegisterService(&ExchangeService_ServiceDesc, srv)
}

func _ExchangeService_Deliver_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(ExchangeServiceServer).Deliver(&exchangeServiceDeliverServer{stream})
}

// ExchangeService_DeliverServer receives the chunks of one part and sends a single acknowledgement
type ExchangeService_DeliverServer interface {
	SendAndClose(*MExchangeAck) error
	Recv() (*MExchangeChunk, error)
	grpc.ServerStream
}

type exchangeServiceDeliverServer struct {
	grpc.ServerStream
}

func (x *exchangeServiceDeliverServer) SendAndClose(m *MExchangeAck) error {
	return x.ServerStream.SendMsg(m)
}

func (x *exchangeServiceDeliverServer) Recv() (*MExchangeChunk, error) {
	m := new(MExchangeChunk)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ExchangeService_ServiceDesc describes ExchangeService, which every worker serves
var ExchangeService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sjoin.ExchangeService",
	HandlerType: (*ExchangeServiceServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{StreamName: "Deliver", Handler: _ExchangeService_Deliver_Handler, ClientStreams: true},
	},
	Metadata: "s_exchange",
}
