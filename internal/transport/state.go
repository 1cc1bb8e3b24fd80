// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"fmt"

	"github.com/pkg/errors"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen  // transport open, HELLO not yet answered
	StateReady // HELLO answered, identity bound
	StateReconnecting
	StateFailed // reconnect attempts exhausted
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a point-in-time view of the connection.
type Status struct {
	State     State
	Connected bool
	Ready     bool
	// Attempt counts consecutive reconnect attempts since the last
	// successful handshake.
	Attempt  int
	QueueLen int
	Err      error
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotConnected is returned by Send when there is no open transport
	// and outbound queueing is disabled.
	ErrNotConnected = errors.New("transport: not connected")

	// ErrQueueFull is returned by Send when the outbound queue is at capacity.
	ErrQueueFull = errors.New("transport: outbound queue full")

	// ErrHelloTimeout is recorded when the server never answers HELLO.
	ErrHelloTimeout = errors.New("transport: hello timeout")
)

// TransportError wraps a connect, read or write failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return "transport " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
