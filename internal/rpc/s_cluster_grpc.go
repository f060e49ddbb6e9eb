package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ClusterServiceClient is the client API for ClusterService
type ClusterServiceClient interface {
	RegisterWorker(ctx context.Context, in *MRegisterRequest, opts ...grpc.CallOption) (*MRegisterResponse, error)
	Roster(ctx context.Context, in *MRosterRequest, opts ...grpc.CallOption) (*MRosterResponse, error)
	ReportCompletion(ctx context.Context, in *MCompletionReport, opts ...grpc.CallOption) (*MCompletionAck, error)
}

type clusterServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewClusterServiceClient creates a ClusterServiceClient on top of a connection
func NewClusterServiceClient(cc grpc.ClientConnInterface) ClusterServiceClient {
	return &clusterServiceClient{cc}
}

func (c *clusterServiceClient) RegisterWorker(ctx context.Context, in *MRegisterRequest, opts ...grpc.CallOption) (*MRegisterResponse, error) {
	out := new(MRegisterResponse)
	if err := c.cc.Invoke(ctx, "/sjoin.ClusterService/RegisterWorker", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) Roster(ctx context.Context, in *MRosterRequest, opts ...grpc.CallOption) (*MRosterResponse, error) {
	out := new(MRosterResponse)
	if err := c.cc.Invoke(ctx, "/sjoin.ClusterService/Roster", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *clusterServiceClient) ReportCompletion(ctx context.Context, in *MCompletionReport, opts ...grpc.CallOption) (*MCompletionAck, error) {
	out := new(MCompletionAck)
	if err := c.cc.Invoke(ctx, "/sjoin.ClusterService/ReportCompletion", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ClusterServiceServer is the server API for ClusterService
type ClusterServiceServer interface {
	RegisterWorker(context.Context, *MRegisterRequest) (*MRegisterResponse, error)
	Roster(context.Context, *MRosterRequest) (*MRosterResponse, error)
	ReportCompletion(context.Context, *MCompletionReport) (*MCompletionAck, error)
}

// RegisterClusterServiceServer registers srv with a gRPC server
func RegisterClusterServiceServer(s grpc.ServiceRegistrar, srv ClusterServiceServer) {
	s.RegisterService(&ClusterService_ServiceDesc, srv)
}

func _ClusterService_RegisterWorker_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MRegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).RegisterWorker(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.ClusterService/RegisterWorker"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).RegisterWorker(ctx, req.(*MRegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClusterService_Roster_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MRosterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).Roster(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.ClusterService/Roster"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).Roster(ctx, req.(*MRosterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ClusterService_ReportCompletion_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(MCompletionReport)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ClusterServiceServer).ReportCompletion(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sjoin.ClusterService/ReportCompletion"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ClusterServiceServer).ReportCompletion(ctx, req.(*MCompletionReport))
	}
	return interceptor(ctx, in, info, handler)
}

// ClusterService_ServiceDesc describes ClusterService, which the coordinator serves
var ClusterService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sjoin.ClusterService",
	HandlerType: (*ClusterServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterWorker", Handler: _ClusterService_RegisterWorker_Handler},
		{MethodName: "Roster", Handler: _ClusterService_Roster_Handler},
		{MethodName: "ReportCompletion", Handler: _ClusterService_ReportCompletion_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "s_cluster",
}
