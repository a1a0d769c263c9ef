package runtime

import (
	"bufio"
	"chatroom/domain"
	errs "chatroom/errors"
	"chatroom/observability"
	"chatroom/protocol"
	"context"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newPipeSession(t *testing.T, opts SessionOptions) (*Session, net.Conn, *observability.RoomStats) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() { _ = clientConn.Close() })
	directory := NewDirectory()
	stats := observability.NewRoomStats()
	session := NewSession(log, serverConn, directory, NewBroadcaster(log, directory, stats), nil, stats, opts)
	return session, clientConn, stats
}

func TestSession_Deliver_Never_Blocks_On_Slow_Client(t *testing.T) {
	req := require.New(t)
	session, _, stats := newPipeSession(t, SessionOptions{OutboxSize: 2, WriteTimeout: 50 * time.Millisecond})
	go session.writeLoop()

	// Given a client that never reads
	// When far more lines than the queue holds are delivered
	line := strings.Repeat("x", 8192)
	start := time.Now()
	dropped := 0
	for i := 0; i < 100; i++ {
		if err := session.Deliver(line); err != nil {
			req.ErrorIs(err, errs.ErrOutboxFull)
			dropped++
		}
	}

	// Then the caller was never held up and the surplus was dropped
	req.Less(time.Since(start), 50*time.Millisecond)
	req.Positive(dropped)
	req.Equal(uint64(dropped), stats.Snapshot().DroppedDeliveries)

	// And the stalled write closes the session
	waitFor(t, func() bool {
		return session.Deliver("late") == errs.ErrSessionClosed
	})
	req.Equal(uint64(1), stats.Snapshot().WriteFailures)
}

func TestSession_Close_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	session, _, _ := newPipeSession(t, DefaultSessionOptions())

	req.NoError(session.Close())
	req.NoError(session.Close())
	req.ErrorIs(session.Deliver("x"), errs.ErrSessionClosed)
}

func TestSession_Disconnect_Before_Join(t *testing.T) {
	req := require.New(t)
	session, client, stats := newPipeSession(t, DefaultSessionOptions())

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()
	waitFor(t, func() bool { return stats.Snapshot().ActiveSessions == 1 })

	// When the client leaves during the handshake
	_ = client.Close()

	// Then the session ends without touching the directory
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(lineTimeout):
		req.Fail("session did not end")
	}
	req.Equal(domain.Closed, session.State())
	req.Equal("", session.Name())
	req.Equal(int64(0), stats.Snapshot().ActiveSessions)
}

func TestSession_Context_Cancel_Closes(t *testing.T) {
	req := require.New(t)
	session, _, _ := newPipeSession(t, DefaultSessionOptions())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- session.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(lineTimeout):
		req.Fail("session did not end")
	}
	req.Equal(domain.Closed, session.State())
}

func TestSession_Private_Message_To_Full_Outbox_Is_Not_Confirmed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given bob is online but his queue is full
	directory := NewDirectory()
	bob := mockPeer(ctrl, "bob")
	bob.EXPECT().Deliver("From alice: hi").Return(errs.ErrOutboxFull).Times(1)
	bob.EXPECT().Deliver(gomock.Any()).Return(nil).AnyTimes()
	req.NoError(directory.Join("bob", bob))

	stats := observability.NewRoomStats()
	serverConn, client := net.Pipe()
	defer client.Close()
	session := NewSession(log, serverConn, directory, NewBroadcaster(log, directory, stats), nil, stats, DefaultSessionOptions())
	done := make(chan struct{})
	go func() {
		_ = session.Run(context.Background())
		close(done)
	}()

	lines := make(chan string, 64)
	go func() {
		scanner := bufio.NewScanner(client)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// When alice joins and whispers to bob, then asks for help
	for _, line := range []string{"alice", "/bob hi", "/help"} {
		_, err := client.Write([]byte(line + "\n"))
		req.NoError(err)
	}

	// Then alice gets no delivery confirmation before the help text
	var seen []string
	last := protocol.HelpLines[len(protocol.HelpLines)-1]
	for line := range lines {
		seen = append(seen, line)
		if line == last {
			break
		}
	}
	req.NotContains(seen, "To bob: hi")
	req.Contains(seen, protocol.HelpLines[0])
	req.Zero(stats.Snapshot().PrivateMessages)

	_ = client.Close()
	<-done
}
