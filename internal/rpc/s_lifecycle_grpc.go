package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// LifecycleServiceClient is the client API for LifecycleService
type LifecycleServiceClient interface {
	GracefulStop(ctx context.Context, in *MWorkerDescriptor, opts ...grpc.CallOption) (*MStopResponse, error)
	Stop(ctx context.Context, in *MWorkerDescriptor, opts ...grpc.CallOption) (*MStopResponse, error)
	ProvideStatistics(ctx context.Context, in *MStatisticsRequest, opts ...grpc.CallOption) (*MStatisticsResponse, error)
}

type lifecycleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewLifecycleServiceClient creates a LifecycleServiceClient on top of a connection
func NewLifecycleServiceClient(cc grpc.ClientConnInterface) LifecycleServiceClient {
	return &lifecycleServiceClient{cc}
}

func (c *lifecycleServiceClient) GracefulStop(ctx context.Context, in *MWorkerDescriptor, opts ...grpc.CallOption) (*MStopResponse, error) {
	out := new(MStopResponse)
	if err := c.cc.Invoke(ctx, "/sjoin.LifecycleService/GracefulStop", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *lifecycleServiceClient) Stop(ctx context.Context, in *MWorkerDescriptor, opts ...grpc.CallOption) (*MStopResponse, error) {
	out := new(MStopResponse)
	if err := c.cc.Invoke(ctx, "/sjoin.LifecycleService/Stop", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *lifecycleServiceClient) ProvideStatistics(ctx context.Context, in *MStatisticsRequest, opts ...grpc.CallOption) (*MStatisticsResponse, error) {
	out := new(MStatisticsResponse)
	if err := c.cc.Invoke(ctx, "/sjoin.LifecycleService/ProvideStatistics", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// LifecycleServiceServer is the server API for LifecycleService
type LifecycleServiceServer interface {
	GracefulStop(context.Context, *MWorkerDescriptor) (*MStopResponse, error)
	Stop(context.Context, *MWorkerDescriptor) (*MStopResponse, error)
	ProvideStatistics(context.Context, *MStatisticsRequest) (*MStatisticsResponse, error)
}

// RegisterLifecycleServiceServer registers srv with a gRPC server
func RegisterLifecycleServiceServer(s grpc.ServiceRegistrar, srv LifecycleServiceServer) {
	s.RegisterService(&LifecycleService_ServiceDesc, srv)
}

func _LifecycleService_GracefulStop_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MWorkerDescriptor)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LifecycleServiceServer).GracefulStop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.LifecycleService/GracefulStop"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LifecycleServiceServer).GracefulStop(ctx, req.(*MWorkerDescriptor))
	}
	return interceptor(ctx, in, info, handler)
}

func _LifecycleService_Stop_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MWorkerDescriptor)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LifecycleServiceServer).Stop(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.LifecycleService/Stop"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LifecycleServiceServer).Stop(ctx, req.(*MWorkerDescriptor))
	}
	return interceptor(ctx, in, info, handler)
}

func _LifecycleService_ProvideStatistics_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MStatisticsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LifecycleServiceServer).ProvideStatistics(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.LifecycleService/ProvideStatistics"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LifecycleServiceServer).ProvideStatistics(ctx, req.(*MStatisticsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// LifecycleService_ServiceDesc describes LifecycleService, which every worker serves
var LifecycleService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sjoin.LifecycleService",
	HandlerType: (*LifecycleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GracefulStop", Handler: _LifecycleService_GracefulStop_Handler},
		{MethodName: "Stop", Handler: _LifecycleService_Stop_Handler},
		{MethodName: "ProvideStatistics", Handler: _LifecycleService_ProvideStatistics_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "s_lifecycle",
}
