package workers

import (
	"fmt"
	"net"
)

// reboundListener hands out the listener bound at startup once, then binds
// the same address again for every restart, since Serve closes what it was given.
type reboundListener struct {
	address string
	first   net.Listener
}

func newReboundListener(listener net.Listener) *reboundListener {
	return &reboundListener{address: listener.Addr().String(), first: listener}
}

func (r *reboundListener) acquire() (net.Listener, error) {
	if listener := r.first; listener != nil {
		r.first = nil
		return listener, nil
	}
	listener, err := net.Listen("tcp", r.address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", r.address, err)
	}
	return listener, nil
}
