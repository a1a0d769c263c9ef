// Package domain contains core concepts of the chat room.
// No runtime, network, or UI logic should be added here.
package domain

// SessionState is the lifecycle position of one connected client.
type SessionState int

const (
	// Connecting means the join handshake has not completed yet.
	Connecting SessionState = iota
	// Active means the username is registered and the message loop is running.
	Active
	// Closed is terminal: the connection is released and the name is gone from the directory.
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}
