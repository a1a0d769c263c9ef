//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Peer is the delivery side of a connected session.
// Deliver hands a line to the peer's own outbound queue and never writes to its connection directly.
type Peer interface {
	ID() string
	Name() string
	Deliver(line string) error
}

// IDirectory is the process-wide registry of who is online under which name.
type IDirectory interface {
	Join(name string, peer Peer) error
	Rename(oldName, newName string) error
	Leave(name string) bool
	Lookup(name string) (Peer, bool)
	SnapshotNames() []string
	Peers() []Peer
	Len() int
}

// IBroadcaster is the single path for lines sent from one session to others.
type IBroadcaster interface {
	BroadcastAll(line string, except ...Peer) int
	BroadcastUserList(except ...Peer) string
	Admit(name string, peer Peer, welcome []string) error
	SendTo(name, line string) error
}

// Censor masks forbidden words in chat text and reports the words it found.
type Censor interface {
	Censor(text string) (string, []string)
}
