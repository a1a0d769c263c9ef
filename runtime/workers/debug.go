package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const debugShutdownTimeout = 5 * time.Second

// DebugWorker serves a read-only HTTP handler (the gin debug router) on its own listener.
type DebugWorker struct {
	log      *slog.Logger
	listener *reboundListener
	handler  http.Handler
}

// NewDebugWorker serves on listener first, then rebinds its address after a failure.
func NewDebugWorker(log *slog.Logger, listener net.Listener, handler http.Handler) *DebugWorker {
	return &DebugWorker{log: log, listener: newReboundListener(listener), handler: handler}
}

func (w *DebugWorker) Run(ctx context.Context) error {
	listener, err := w.listener.acquire()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           w.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Debug HTTP server listening", "address", listener.Addr().String())
		errChan <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), debugShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("Debug HTTP server shutdown", "error", err)
		}
		return nil
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
