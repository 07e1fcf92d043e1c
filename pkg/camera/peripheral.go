package camera

import "context"

// Peripheral is the camera hardware. Every call on it must be made
// while holding the access guard.
type Peripheral interface {
	UUID() string
	Init() error
	// Grab may return a nil frame without an error, callers treat that
	// the same as a failed grab.
	Grab() (Frame, error)
	Close() error
}

// Buffered is implemented by peripherals that can tell whether a frame
// from a previous cycle is still queued inside the driver.
type Buffered interface {
	HasBuffered() bool
}

// Backend opens peripherals for a device address.
type Backend interface {
	Open(ctx context.Context, device string, dims Dimensions) (Peripheral, error)
}
