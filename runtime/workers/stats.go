package workers

import (
	"chatroom/contract"
	"chatroom/domain"
	"chatroom/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsWorker periodically logs the room counters together with the server process footprint.
type StatsWorker struct {
	log       *slog.Logger
	directory contract.IDirectory
	stats     *observability.RoomStats
	interval  time.Duration
	sample    func() (domain.ProcessStats, error)
}

func NewStatsWorker(
	log *slog.Logger,
	directory contract.IDirectory,
	stats *observability.RoomStats,
	interval time.Duration,
) *StatsWorker {
	return &StatsWorker{
		log:       log,
		directory: directory,
		stats:     stats,
		interval:  interval,
		sample:    SampleSelf,
	}
}

// Run logs one stats line per interval until ctx is canceled.
func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats worker", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *StatsWorker) report() {
	snapshot := w.stats.Snapshot()
	attrs := []any{
		"users", w.directory.Len(),
		"active_sessions", snapshot.ActiveSessions,
		"connections_accepted", snapshot.ConnectionsAccepted,
		"room_messages", snapshot.RoomMessages,
		"private_messages", snapshot.PrivateMessages,
		"dropped_deliveries", snapshot.DroppedDeliveries,
		"write_failures", snapshot.WriteFailures,
		"goroutines", snapshot.NumGoroutine,
		"uptime", snapshot.Uptime,
	}

	self, err := w.sample()
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
	} else {
		attrs = append(attrs,
			"pid", self.PID,
			"pid_status", self.Status,
			"rss_bytes", self.RSS,
			"cpu_percent", self.CPUPercent,
		)
	}
	w.log.Info("Room stats", attrs...)
}

// SampleSelf retrieves memory, CPU and OS status for the current process.
func SampleSelf() (domain.ProcessStats, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		return domain.ProcessStats{}, err
	}

	memInfo, err := p.MemoryInfo()
	if err != nil {
		return domain.ProcessStats{}, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return domain.ProcessStats{}, err
	}

	status, err := p.Status()
	if err != nil {
		return domain.ProcessStats{}, err
	}

	return domain.ProcessStats{
		PID:        domain.PID(pid),
		Status:     domain.ToStatus(status),
		RSS:        memInfo.RSS,
		CPUPercent: cpuPercent,
	}, nil
}
