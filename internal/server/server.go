package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

// RequestIDHeader carries the caller's request id in both directions.
const RequestIDHeader = "x-request-id"

// NewGRPCServer registers the claims service with health and reflection.
// maxDocBytes sizes the receive limit so a base64 document of that size fits.
func NewGRPCServer(svc ClaimAnalysisServer, maxDocBytes int64, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	maxMsg := int(maxDocBytes/3*4) + 1<<20

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxMsg),
		grpc.ChainUnaryInterceptor(requestIDInterceptor(logger)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	RegisterClaimAnalysisServer(grpcServer, svc)
	return grpcServer, hs
}

// requestIDInterceptor adopts the caller's x-request-id or mints one, echoes
// it in the response header and logs each call.
func requestIDInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
				ctx = common.WithRequestID(ctx, ids[0])
			}
		}
		ctx, rid := common.EnsureRequestID(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, rid))

		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc.call.failed", "method", info.FullMethod, "request_id", rid, "code", status.Code(err).String(), "error", err)
		} else {
			logger.Info("grpc.call.ok", "method", info.FullMethod, "request_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}
