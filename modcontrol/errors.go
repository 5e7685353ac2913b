package modcontrol

import "errors"

var (
	// ErrClientConfigNil indicates that a nil ClientConfig was provided.
	ErrClientConfigNil = errors.New("modcontrol: client config is nil")

	// ErrNilTransport indicates that Connect was called without a transport.
	ErrNilTransport = errors.New("modcontrol: transport is nil")

	// ErrNilCommand indicates that Execute was called without a command.
	ErrNilCommand = errors.New("modcontrol: command is nil")

	// ErrNotConnected indicates that no connected transport is bound to the client.
	ErrNotConnected = errors.New("modcontrol: not connected")

	// ErrConnectFailed indicates that the transport could not be opened.
	ErrConnectFailed = errors.New("modcontrol: connect failed")

	// ErrDeviceNotResponding indicates that the transport was opened but the
	// device did not answer the version request.
	ErrDeviceNotResponding = errors.New("modcontrol: device not responding")
)
