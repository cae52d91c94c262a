package hal

import (
	"context"
	"strings"
)

// Caps is a bitmask of transaction capabilities reported by a [Bus].
type Caps uint32

// Capability flags.
const (
	CapRead  Caps = 1 << iota // Register read transactions
	CapWrite                  // Register write transactions
	CapBlock                  // Multi-register block transactions
	CapLine                   // Out-of-band interrupt line
)

// CapRequired is the minimum capability set a device needs to attach.
const CapRequired = CapRead | CapWrite

// Has returns true if all capabilities in want are present.
func (c Caps) Has(want Caps) bool {
	return c&want == want
}

// String returns a human-readable capability list.
func (c Caps) String() string {
	if c == 0 {
		return "none"
	}
	names := make([]string, 0, 4)
	if c.Has(CapRead) {
		names = append(names, "read")
	}
	if c.Has(CapWrite) {
		names = append(names, "write")
	}
	if c.Has(CapBlock) {
		names = append(names, "block")
	}
	if c.Has(CapLine) {
		names = append(names, "line")
	}
	return strings.Join(names, "|")
}

// Bus defines the register transport interface for the device core.
//
// A Bus carries byte transactions against a chip's register window. Backend
// implementations adapt this interface to a concrete transport (an i2c-dev
// adapter, a simulated chip) so the device core stays platform-agnostic.
//
// Implementations must be safe for concurrent use: the device core issues
// transactions from session goroutines and its deferred-work goroutine
// without external serialization.
type Bus interface {
	// Probe returns the transaction capabilities of the transport.
	// The device core requires [CapRequired] to attach.
	Probe(ctx context.Context) (Caps, error)

	// ReadReg reads len(buf) bytes into buf, starting at register offset reg
	// and continuing through consecutive offsets. On nil error the full
	// buffer has been filled; a short transaction is reported as an error.
	ReadReg(ctx context.Context, reg uint8, buf []byte) error

	// WriteReg writes len(data) bytes from data, starting at register offset
	// reg and continuing through consecutive offsets. On nil error the full
	// buffer has been transferred.
	WriteReg(ctx context.Context, reg uint8, data []byte) error

	// Close releases the transport. The device core never calls Close; the
	// bus is owned by whoever opened it.
	Close() error
}

// Handler is invoked once per interrupt line edge. It runs on the line's
// event goroutine and must not block and must not touch the bus; it only
// schedules work elsewhere.
type Handler func()

// Line defines the out-of-band interrupt line interface.
//
// A Line delivers chip service requests between bus transactions. Arming
// installs an edge handler; disarming removes it. A transport without a
// usable line simply never surfaces one, and the device core falls back to
// operating without interrupt delivery.
type Line interface {
	// Arm installs fn as the edge handler and enables event delivery.
	// Returns an error if the line is already armed or cannot be enabled.
	Arm(fn Handler) error

	// Disarm disables event delivery and removes the handler. Disarming an
	// unarmed line is a no-op.
	Disarm() error
}
