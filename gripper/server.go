package gripper

import (
	"context"
	"net"

	"github.com/teranos/gripterra/errors"
	"github.com/teranos/gripterra/gripper/protocol"
	"github.com/teranos/gripterra/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// DefaultMaxWorkers bounds concurrent streaming calls when the server is
// built with a non-positive limit.
const DefaultMaxWorkers = 100

// Server hosts a Servicer on a gRPC server.
type Server struct {
	grpc   *grpc.Server
	logger *zap.SugaredLogger
}

// NewServer creates a gRPC server for servicer. maxWorkers bounds both the
// stream worker pool and the number of concurrent streams per connection.
func NewServer(servicer *Servicer, maxWorkers int, logger *zap.SugaredLogger) *Server {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	gs := grpc.NewServer(
		grpc.NumStreamWorkers(uint32(maxWorkers)),
		grpc.MaxConcurrentStreams(uint32(maxWorkers)),
	)
	protocol.RegisterGRIPSourceServer(gs, servicer)
	return &Server{grpc: gs, logger: logger}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", addr)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.logger.Infow("Starting graph source", logger.FieldAddress, lis.Addr().String())

	served := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down graph source")
			s.grpc.GracefulStop()
		case <-served:
		}
	}()

	err := s.grpc.Serve(lis)
	close(served)
	<-stopped
	if err != nil {
		return errors.Wrap(err, "gRPC server error")
	}
	return nil
}

// Stop stops the server immediately, closing open streams.
func (s *Server) Stop() {
	s.grpc.Stop()
}
