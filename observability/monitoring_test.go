package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomStats_ConcurrentCounters(t *testing.T) {
	req := require.New(t)
	stats := NewRoomStats()

	// When many goroutines record the same events
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stats.IncrConnectionsAccepted()
			stats.SessionOpened()
			stats.IncrRoomMessages()
			stats.IncrBroadcasts()
			stats.SessionClosed()
		}()
	}
	wg.Wait()
	stats.IncrPrivateMessages()
	stats.IncrDroppedDeliveries()
	stats.IncrWriteFailures()

	// Then no increment is lost
	snapshot := stats.Snapshot()
	req.Equal(uint64(50), snapshot.ConnectionsAccepted)
	req.Equal(int64(0), snapshot.ActiveSessions)
	req.Equal(uint64(50), snapshot.RoomMessages)
	req.Equal(uint64(50), snapshot.Broadcasts)
	req.Equal(uint64(1), snapshot.PrivateMessages)
	req.Equal(uint64(1), snapshot.DroppedDeliveries)
	req.Equal(uint64(1), snapshot.WriteFailures)
	req.Positive(snapshot.NumGoroutine)
}

func TestRoomStats_NilIsNoop(t *testing.T) {
	req := require.New(t)
	var stats *RoomStats

	req.NotPanics(func() {
		stats.IncrConnectionsAccepted()
		stats.SessionOpened()
		stats.IncrDroppedDeliveries()
	})
	req.Equal(RoomSnapshot{}, stats.Snapshot())
}
