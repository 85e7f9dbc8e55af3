package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of the biometric.ReportControl service.
const (
	ReportControl_GenerateReport_FullMethodName  = "/biometric.ReportControl/GenerateReport"
	ReportControl_GetLatestReport_FullMethodName = "/biometric.ReportControl/GetLatestReport"
)

// ReportControlServer is the server API for the ReportControl service.
// Messages are well-known types so no generated code is needed.
type ReportControlServer interface {
	GenerateReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetLatestReport(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterReportControlServer(s grpc.ServiceRegistrar, srv ReportControlServer) {
	s.RegisterService(&ReportControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _ReportControl_GenerateReport_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportControlServer).GenerateReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportControl_GenerateReport_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportControlServer).GenerateReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportControl_GetLatestReport_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportControlServer).GetLatestReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportControl_GetLatestReport_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportControlServer).GetLatestReport(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ReportControl_ServiceDesc is the grpc.ServiceDesc for the ReportControl service.
var ReportControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "biometric.ReportControl",
	HandlerType: (*ReportControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GenerateReport",
			Handler:    _ReportControl_GenerateReport_Handler,
		},
		{
			MethodName: "GetLatestReport",
			Handler:    _ReportControl_GetLatestReport_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "biometric/report_control.proto",
}

// -----------------------------------------------------------------------------

// ReportControlClient is the client API for the ReportControl service.
type ReportControlClient struct {
	cc grpc.ClientConnInterface
}

func NewReportControlClient(cc grpc.ClientConnInterface) *ReportControlClient {
	return &ReportControlClient{cc: cc}
}

func (c *ReportControlClient) GenerateReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReportControl_GenerateReport_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ReportControlClient) GetLatestReport(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ReportControl_GetLatestReport_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
