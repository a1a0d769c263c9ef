package workers

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ChatService is the service name reported by the health endpoint.
const ChatService = "chatroom.Chat"

// AdminWorker exposes the standard gRPC health service.
// The chat service is SERVING while the worker runs and NOT_SERVING once it stops.
// Each run gets a fresh health server, a shut down one ignores status updates.
type AdminWorker struct {
	log      *slog.Logger
	listener *reboundListener
}

// NewAdminWorker serves on listener first, then rebinds its address after a failure.
func NewAdminWorker(log *slog.Logger, listener net.Listener) *AdminWorker {
	return &AdminWorker{log: log, listener: newReboundListener(listener)}
}

func (w *AdminWorker) Run(ctx context.Context) error {
	listener, err := w.listener.acquire()
	if err != nil {
		return err
	}

	checker := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, checker)
	checker.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	checker.SetServingStatus(ChatService, healthpb.HealthCheckResponse_SERVING)

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Admin gRPC server listening", "address", listener.Addr().String())
		errChan <- grpcServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		checker.Shutdown()
		grpcServer.GracefulStop()
		w.log.Info("Admin gRPC server stopped")
		return nil
	case err := <-errChan:
		checker.Shutdown()
		return err
	}
}
