package pkg

import "errors"

// Driver errors.
var (
	// ErrNoDevice indicates the device is not present. Session operations
	// observe this when their device handle has gone stale after a detach.
	ErrNoDevice = errors.New("device not present")

	// ErrNoSlots indicates the device table is full.
	ErrNoSlots = errors.New("no device slots available")

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotSupported indicates the bus lacks a required transaction capability.
	ErrNotSupported = errors.New("not supported")

	// ErrBusy indicates the resource is busy (e.g. detach with open sessions).
	ErrBusy = errors.New("resource busy")

	// ErrShortTransfer indicates the bus moved fewer bytes than requested
	// without reporting a failure of its own.
	ErrShortTransfer = errors.New("short transfer")

	// ErrBufferFault indicates a data marshaling fault while staging bytes
	// for a bus transaction, distinct from failure of the transaction itself.
	ErrBufferFault = errors.New("buffer marshaling fault")

	// ErrInvalidOffset indicates a register offset outside the window or a
	// seek to a negative position.
	ErrInvalidOffset = errors.New("invalid register offset")

	// ErrBusClosed indicates a transaction on a closed bus handle.
	ErrBusClosed = errors.New("bus closed")

	// ErrLineArmed indicates the interrupt line is already armed.
	ErrLineArmed = errors.New("interrupt line already armed")
)

// FaultClass classifies a failure for compact trace recording.
type FaultClass uint8

// Fault classes.
const (
	FaultNone      FaultClass = iota // No fault
	FaultTransport                   // Bus transaction failed
	FaultBuffer                      // Data marshaling fault
	FaultDevice                      // Device absent or bus closed
	FaultSession                     // Session or lifecycle violation
)

// String returns a string representation of the fault class.
func (c FaultClass) String() string {
	switch c {
	case FaultNone:
		return "none"
	case FaultTransport:
		return "transport"
	case FaultBuffer:
		return "buffer"
	case FaultDevice:
		return "device"
	case FaultSession:
		return "session"
	default:
		return "unknown"
	}
}

// Classify maps an error to its fault class. Errors that are not package
// sentinels classify as transport failures, which sessions surface verbatim.
func Classify(err error) FaultClass {
	switch {
	case err == nil:
		return FaultNone
	case errors.Is(err, ErrBufferFault):
		return FaultBuffer
	case errors.Is(err, ErrNoDevice), errors.Is(err, ErrBusClosed):
		return FaultDevice
	case errors.Is(err, ErrSessionClosed), errors.Is(err, ErrBusy),
		errors.Is(err, ErrNoSlots), errors.Is(err, ErrLineArmed):
		return FaultSession
	default:
		return FaultTransport
	}
}
