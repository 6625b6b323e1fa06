// Package health 提供 gRPC 健康检查服务，牌桌结束后状态变为 NOT_SERVING。
package health

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// ServiceName 牌桌服务在健康检查中的名称
const ServiceName = "daifugo.Table"

// Server gRPC 健康检查服务
type Server struct {
	grpc   *grpc.Server
	health *grpchealth.Server
	log    *zap.Logger
}

// New 创建健康检查服务，初始状态为 SERVING
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(log),
			loggingInterceptor(log),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	)

	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpc: gs, health: hs, log: log}
}

// GRPC 底层的 grpc.Server，用于 Serve
func (s *Server) GRPC() *grpc.Server {
	return s.grpc
}

// SetServing 设置牌桌服务的状态
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_SERVING
	if !serving {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

// Watch 在 done 关闭后把状态设为 NOT_SERVING，ctx 取消时直接返回
func (s *Server) Watch(ctx context.Context, done <-chan struct{}) {
	select {
	case <-done:
		s.log.Info("牌桌已结束，健康状态切换为 NOT_SERVING")
		s.SetServing(false)
	case <-ctx.Done():
	}
}

// Stop 停止服务
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func recoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc panic recovered",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.Stack("stack"))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc request",
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return resp, err
	}
}
