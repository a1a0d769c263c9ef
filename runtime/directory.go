package runtime

import (
	"chatroom/contract"
	errs "chatroom/errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

var _ contract.IDirectory = (*Directory)(nil)

// Directory is the single source of truth for who is online.
// The map and the ordered name list are only ever mutated together under mu,
// and every read returns a copy so callers never iterate shared state.
type Directory struct {
	mu    sync.RWMutex
	users map[string]contract.Peer // map username -> Peer
	names []string                 // usernames in join order
}

func NewDirectory() *Directory {
	return &Directory{users: make(map[string]contract.Peer)}
}

// Join registers a new username. Empty and already taken names are rejected.
func (d *Directory) Join(name string, peer contract.Peer) error {
	if name == "" {
		return errs.ErrEmptyUsername
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[name]; ok {
		return fmt.Errorf("join %q: %w", name, errs.ErrDuplicateUsername)
	}
	d.users[name] = peer
	d.names = append(d.names, name)
	return nil
}

// Rename moves the entry of oldName to newName, keeping its position in the ordered list.
// Renaming to the current name is a no-op.
func (d *Directory) Rename(oldName, newName string) error {
	if newName == "" {
		return errs.ErrEmptyUsername
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	peer, ok := d.users[oldName]
	if !ok {
		return fmt.Errorf("rename %q: %w", oldName, errs.ErrUserNotFound)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := d.users[newName]; taken {
		return fmt.Errorf("rename %q to %q: %w", oldName, newName, errs.ErrDuplicateUsername)
	}

	delete(d.users, oldName)
	d.users[newName] = peer
	d.names[lo.IndexOf(d.names, oldName)] = newName
	return nil
}

// Leave removes the entry. It reports false when the name was not registered.
func (d *Directory) Leave(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[name]; !ok {
		return false
	}
	delete(d.users, name)
	d.names = lo.Without(d.names, name)
	return true
}

func (d *Directory) Lookup(name string) (contract.Peer, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	peer, ok := d.users[name]
	return peer, ok
}

// SnapshotNames returns the usernames in join order.
func (d *Directory) SnapshotNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]string{}, d.names...)
}

// Peers returns the registered peers in join order.
func (d *Directory) Peers() []contract.Peer {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Map(d.names, func(name string, _ int) contract.Peer {
		return d.users[name]
	})
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.names)
}
