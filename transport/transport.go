// Package transport defines the byte-stream capability a modcontrol client
// talks through, and helpers shared by the transport implementations.
package transport

import "errors"

var (
	ErrNotConnected = errors.New("transport: not connected")
	ErrClosed       = errors.New("transport: closed")
)

// DataHandler receives one chunk of inbound bytes. Chunks have no frame
// alignment: a frame may be split over several chunks, and a chunk may hold
// more than one frame.
//
// The slice is owned by the handler.
type DataHandler func(data []byte)

// Transport is a connection to one or more devices.
//
// Implementations deliver inbound data on their own goroutine, in arrival
// order. Send may be called concurrently with data delivery.
type Transport interface {
	// IsConnected reports whether the transport can currently send.
	IsConnected() bool
	// Connect opens the underlying connection.
	Connect() error
	// Disconnect closes the connection. It is best effort and idempotent.
	Disconnect()
	// Send writes data. Sending an empty slice is a no-op.
	Send(data []byte) error
	// Subscribe registers h for inbound data and returns a function that
	// removes it again.
	Subscribe(h DataHandler) (unsubscribe func())
}
