// Package execution manages the single persistent channel to the flow
// executor: connecting it, sending run requests, and reconciling the
// inbound event stream into graph state.
package execution

import (
	"context"
	"errors"
)

// ErrNotConnected is returned by transports asked to send before a
// successful Connect.
var ErrNotConnected = errors.New("execution channel is not connected")

// Transport is the duplex message channel to the executor. Receive
// returns the inbound message stream for the current connection; the
// channel is closed when the connection drops. A Transport carries raw
// payloads only; framing and event semantics live above it.
type Transport interface {
	Connect(ctx context.Context) error
	Send(ctx context.Context, payload []byte) error
	Receive() <-chan []byte
	Close() error
}
