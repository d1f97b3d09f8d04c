package grpcapi

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health-check name reported for the social core.
const ServiceName = "movie.social"

// Server is the social service's gRPC endpoint.
type Server struct {
	srv    *grpc.Server
	health *health.Server
	log    *zap.Logger
}

func New(log *zap.Logger, opts ...grpc.ServerOption) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(UnaryLogging(log))}, opts...)
	srv := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{srv: srv, health: hs, log: log}
	s.SetServing(false)
	return s
}

// SetServing flips the health status of the whole server and the social core.
func (s *Server) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("grpc server starting", zap.String("addr", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// Stop drains in-flight calls, forcing a stop after timeout.
func (s *Server) Stop(timeout time.Duration) {
	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		s.srv.Stop()
	}
}

// UnaryLogging logs every unary call with its status code. Errors that carry
// a gRPC status, including social.Error, keep their code.
func UnaryLogging(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		st := status.Convert(err)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", st.Code().String()),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			log.Debug("grpc call failed", append(fields, zap.String("message", st.Message()))...)
			return resp, st.Err()
		}
		log.Debug("grpc call", fields...)
		return resp, nil
	}
}
