package runtime_test

import (
	"bufio"
	"chatroom/observability"
	"chatroom/runtime"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer_LoadTest(t *testing.T) {
	if testing.Short() {
		t.Skip("load test")
	}
	req := require.New(t)

	// 1. A room with queues large enough to never drop
	log := slog.New(slog.DiscardHandler)
	listener, err := runtime.Listen("127.0.0.1:0")
	req.NoError(err)

	stats := observability.NewRoomStats()
	directory := runtime.NewDirectory()
	broadcaster := runtime.NewBroadcaster(log, directory, stats)
	server := runtime.NewServer(log, directory, broadcaster, nil, stats, runtime.SessionOptions{
		OutboxSize:   4096,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- server.Serve(ctx, listener) }()
	defer func() {
		cancel()
		<-served
	}()

	numClients := 20
	messagesPerClient := 50
	expected := uint64(numClients * messagesPerClient)

	// 2. Every client joins before anyone talks
	conns := make([]net.Conn, numClients)
	received := make([]atomic.Uint64, numClients)
	var readers sync.WaitGroup
	for i := range conns {
		conn, err := net.Dial("tcp", listener.Addr().String())
		req.NoError(err)
		defer conn.Close()
		conns[i] = conn
		_, err = fmt.Fprintf(conn, "user-%d\n", i)
		req.NoError(err)

		readers.Add(1)
		go func(i int) {
			defer readers.Done()
			scanner := bufio.NewScanner(conn)
			for scanner.Scan() {
				if strings.HasSuffix(scanner.Text(), ": load") {
					if received[i].Add(1) == expected {
						return
					}
				}
			}
		}(i)
	}
	req.Eventually(func() bool { return directory.Len() == numClients }, 5*time.Second, 10*time.Millisecond)

	// 3. Traffic
	start := time.Now()
	var writers sync.WaitGroup
	for i, conn := range conns {
		writers.Add(1)
		go func(i int, conn net.Conn) {
			defer writers.Done()
			w := bufio.NewWriter(conn)
			for j := 0; j < messagesPerClient; j++ {
				_, _ = w.WriteString("load\n")
			}
			_ = w.Flush()
		}(i, conn)
	}
	writers.Wait()

	done := make(chan struct{})
	go func() {
		readers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(20 * time.Second):
		req.Fail("clients did not receive every message")
	}
	duration := time.Since(start)

	// 4. Every client saw every message, nothing was dropped
	for i := range received {
		req.Equal(expected, received[i].Load(), "client %d", i)
	}
	snapshot := stats.Snapshot()
	req.Equal(expected, snapshot.RoomMessages)
	req.Zero(snapshot.DroppedDeliveries)
	t.Logf("%d messages fanned out to %d clients in %v (%.0f deliveries/sec)",
		expected, numClients, duration, float64(expected)*float64(numClients)/duration.Seconds())
}
