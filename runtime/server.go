// Package runtime holds the concurrent core of the chat room:
// the user directory, the broadcaster, one session per connection and the accept loop.
package runtime

import (
	"chatroom/contract"
	"chatroom/observability"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const acceptRetryDelay = 50 * time.Millisecond

// Server accepts connections and runs one Session per connection.
// The directory and broadcaster are built once and shared by every session.
type Server struct {
	log         *slog.Logger
	directory   contract.IDirectory
	broadcaster contract.IBroadcaster
	censor      contract.Censor
	stats       *observability.RoomStats
	opts        SessionOptions
	wg          sync.WaitGroup
}

func NewServer(
	log *slog.Logger,
	directory contract.IDirectory,
	broadcaster contract.IBroadcaster,
	censor contract.Censor,
	stats *observability.RoomStats,
	opts SessionOptions) *Server {
	return &Server{
		log:         log,
		directory:   directory,
		broadcaster: broadcaster,
		censor:      censor,
		stats:       stats,
		opts:        opts,
	}
}

// Listen binds the chat port. A failure here is fatal for the caller.
func Listen(address string) (net.Listener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return listener, nil
}

// ListenAndServe binds address then serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	listener, err := Listen(address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections until ctx is canceled or the listener is closed.
// A failed Accept is logged and the loop goes on. On cancellation every open
// session is closed and Serve waits for their teardown before returning.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()
	defer s.wg.Wait()

	s.log.Info("Waiting for clients", "address", listener.Addr().String())
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.log.Info("Stopped accepting clients")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed: %w", err)
			}
			s.log.Error("Accept failed", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}

		s.stats.IncrConnectionsAccepted()
		session := NewSession(s.log, conn, s.directory, s.broadcaster, s.censor, s.stats, s.opts)
		s.log.Debug("Connection accepted", "session_id", session.ID(), "remote_addr", conn.RemoteAddr().String())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			_ = session.Run(ctx)
		}()
	}
}
