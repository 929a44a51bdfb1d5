package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Wire names. Messages are google.protobuf.Struct so the service needs no
// generated code; the field layout is documented on ClaimsService.
const (
	ServiceName       = "claimassist.v1.ClaimAnalysisService"
	AnalyzeMethod     = "/" + ServiceName + "/Analyze"
	AnalyzeFileMethod = "/" + ServiceName + "/AnalyzeFile"
)

// ClaimAnalysisServer is the server API for ClaimAnalysisService.
type ClaimAnalysisServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterClaimAnalysisServer(s grpc.ServiceRegistrar, srv ClaimAnalysisServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler(method string, call func(ClaimAnalysisServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ClaimAnalysisServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ClaimAnalysisServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for ClaimAnalysisService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClaimAnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unaryHandler(AnalyzeMethod, ClaimAnalysisServer.Analyze)},
		{MethodName: "AnalyzeFile", Handler: unaryHandler(AnalyzeFileMethod, ClaimAnalysisServer.AnalyzeFile)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "claimassist/v1/claims.proto",
}

// ClaimAnalysisClient calls ClaimAnalysisService.
type ClaimAnalysisClient struct {
	cc grpc.ClientConnInterface
}

func NewClaimAnalysisClient(cc grpc.ClientConnInterface) *ClaimAnalysisClient {
	return &ClaimAnalysisClient{cc: cc}
}

func (c *ClaimAnalysisClient) Analyze(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AnalyzeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ClaimAnalysisClient) AnalyzeFile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AnalyzeFileMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
