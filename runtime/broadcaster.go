package runtime

import (
	"chatroom/contract"
	errs "chatroom/errors"
	"chatroom/observability"
	"chatroom/protocol"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

var _ contract.IBroadcaster = (*Broadcaster)(nil)

// Broadcaster is the only path by which a session's line reaches another session.
//
// Delivery is best-effort: a failing peer is logged and skipped, there is no retry.
// Every fan-out runs under one lock, so all recipients see room lines and user lists
// in the same order and the last "$UL" a peer gets matches the directory. Deliver only
// enqueues, no network I/O happens under the lock.
type Broadcaster struct {
	log       *slog.Logger
	directory contract.IDirectory
	stats     *observability.RoomStats
	mu        sync.Mutex
}

func NewBroadcaster(log *slog.Logger, directory contract.IDirectory, stats *observability.RoomStats) *Broadcaster {
	return &Broadcaster{log: log, directory: directory, stats: stats}
}

// BroadcastAll sends line to every peer except the given ones and returns the number of delivery attempts.
func (b *Broadcaster) BroadcastAll(line string, except ...contract.Peer) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fanout(line, except...)
}

// BroadcastUserList sends the current "$UL[...]" line and returns it.
// The snapshot and the fan-out happen under the same lock.
func (b *Broadcaster) BroadcastUserList(except ...contract.Peer) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	line := protocol.UserList(b.directory.SnapshotNames())
	b.fanout(line, except...)
	return line
}

// Admit registers peer under name, then queues the welcome lines and the user list
// to the newcomer and the join announcement and user list to everyone else.
// No other fan-out or private message can reach the newcomer before its welcome lines.
func (b *Broadcaster) Admit(name string, peer contract.Peer, welcome []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.directory.Join(name, peer); err != nil {
		return err
	}
	for _, line := range welcome {
		b.deliver(peer, line)
	}
	b.fanout(protocol.Joined(name), peer)
	userList := protocol.UserList(b.directory.SnapshotNames())
	b.fanout(userList, peer)
	b.deliver(peer, userList)
	return nil
}

// SendTo queues line to the peer currently registered as name.
func (b *Broadcaster) SendTo(name, line string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	peer, ok := b.directory.Lookup(name)
	if !ok {
		return fmt.Errorf("send to %q: %w", name, errs.ErrUserNotFound)
	}
	return peer.Deliver(line)
}

func (b *Broadcaster) fanout(line string, except ...contract.Peer) int {
	skipped := lo.Map(except, func(p contract.Peer, _ int) string { return p.ID() })
	attempts := 0
	for _, peer := range b.directory.Peers() {
		if lo.Contains(skipped, peer.ID()) {
			continue
		}
		attempts++
		b.deliver(peer, line)
	}
	b.stats.IncrBroadcasts()
	b.log.Debug("Broadcasted", "line", line, "recipients", attempts)
	return attempts
}

func (b *Broadcaster) deliver(peer contract.Peer, line string) {
	if err := peer.Deliver(line); err != nil {
		if errors.Is(err, errs.ErrSessionClosed) {
			b.log.Debug("Delivery to closed session skipped", "session_id", peer.ID())
			return
		}
		b.log.Warn("Delivery skipped", "session_id", peer.ID(), "username", peer.Name(), "error", err)
	}
}
