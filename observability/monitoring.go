package observability

import (
	"runtime"
	"sync/atomic"
	"time"
)

// RoomSnapshot aggregates the room counters for logs and the debug endpoint.
type RoomSnapshot struct {
	ConnectionsAccepted uint64 `json:"connections_accepted"`
	ActiveSessions      int64  `json:"active_sessions"`
	RoomMessages        uint64 `json:"room_messages"`
	PrivateMessages     uint64 `json:"private_messages"`
	Broadcasts          uint64 `json:"broadcasts"`
	DroppedDeliveries   uint64 `json:"dropped_deliveries"`
	WriteFailures       uint64 `json:"write_failures"`
	Uptime              string `json:"uptime"`

	// --- SYSTEM METRICS ---
	AllocMemMb   uint64 `json:"alloc_mem_mb"`
	NumGC        uint32 `json:"num_gc"`
	NumGoroutine int    `json:"num_goroutine"`
}

// RoomStats holds lock-free counters shared by the server, the sessions and the broadcaster.
// A nil *RoomStats is valid and records nothing.
type RoomStats struct {
	startedAt time.Time

	ConnectionsAccepted uint64
	ActiveSessions      int64
	RoomMessages        uint64
	PrivateMessages     uint64
	Broadcasts          uint64
	DroppedDeliveries   uint64
	WriteFailures       uint64
}

func NewRoomStats() *RoomStats {
	return &RoomStats{startedAt: time.Now()}
}

func (rs *RoomStats) IncrConnectionsAccepted() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.ConnectionsAccepted, 1)
}

func (rs *RoomStats) SessionOpened() {
	if rs == nil {
		return
	}
	atomic.AddInt64(&rs.ActiveSessions, 1)
}

func (rs *RoomStats) SessionClosed() {
	if rs == nil {
		return
	}
	atomic.AddInt64(&rs.ActiveSessions, -1)
}

func (rs *RoomStats) IncrRoomMessages() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.RoomMessages, 1)
}

func (rs *RoomStats) IncrPrivateMessages() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.PrivateMessages, 1)
}

func (rs *RoomStats) IncrBroadcasts() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.Broadcasts, 1)
}

func (rs *RoomStats) IncrDroppedDeliveries() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.DroppedDeliveries, 1)
}

func (rs *RoomStats) IncrWriteFailures() {
	if rs == nil {
		return
	}
	atomic.AddUint64(&rs.WriteFailures, 1)
}

// Snapshot loads every counter plus a few Go runtime metrics.
func (rs *RoomStats) Snapshot() RoomSnapshot {
	if rs == nil {
		return RoomSnapshot{}
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RoomSnapshot{
		ConnectionsAccepted: atomic.LoadUint64(&rs.ConnectionsAccepted),
		ActiveSessions:      atomic.LoadInt64(&rs.ActiveSessions),
		RoomMessages:        atomic.LoadUint64(&rs.RoomMessages),
		PrivateMessages:     atomic.LoadUint64(&rs.PrivateMessages),
		Broadcasts:          atomic.LoadUint64(&rs.Broadcasts),
		DroppedDeliveries:   atomic.LoadUint64(&rs.DroppedDeliveries),
		WriteFailures:       atomic.LoadUint64(&rs.WriteFailures),
		Uptime:              time.Since(rs.startedAt).Truncate(time.Second).String(),
		AllocMemMb:          m.Alloc / 1024 / 1024,
		NumGC:               m.NumGC,
		NumGoroutine:        runtime.NumGoroutine(),
	}
}
