package trace

import (
	"time"

	"github.com/ardnew/softregs/pkg"
)

// Event represents one captured transport operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the operation completed (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Op is the operation kind.
	Op Op `cbor:"2,keyasint"`

	// Label identifies the captured transport (for example "i2c-1:0x49"
	// or "sim0"). Set once when the wrapper is created.
	Label string `cbor:"3,keyasint,omitempty"`

	// Reg is the starting register offset of a transaction.
	Reg uint8 `cbor:"4,keyasint,omitempty"`

	// Len is the full transaction length in bytes.
	Len int `cbor:"5,keyasint,omitempty"`

	// Data holds the transferred bytes (may be truncated for large
	// transactions). Read data is captured only on success; write data is
	// the payload as attempted.
	Data []byte `cbor:"6,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"7,keyasint,omitempty"`

	// Elapsed is the operation duration. Stored as nanoseconds.
	Elapsed time.Duration `cbor:"8,keyasint,omitempty"`

	// Fault classifies a failed operation; zero on success.
	Fault pkg.FaultClass `cbor:"9,keyasint,omitempty"`

	// Error is the failed operation's message.
	Error string `cbor:"10,keyasint,omitempty"`

	// Caps carries the capability bits reported by a probe.
	Caps uint32 `cbor:"11,keyasint,omitempty"`
}

// Op is the kind of transport operation an event describes.
type Op uint8

const (
	// OpRead indicates a register read transaction.
	OpRead Op = 0
	// OpWrite indicates a register write transaction.
	OpWrite Op = 1
	// OpProbe indicates a transport capability probe.
	OpProbe Op = 2
	// OpClose indicates the transport was closed.
	OpClose Op = 3
	// OpArm indicates the interrupt line was armed.
	OpArm Op = 4
	// OpDisarm indicates the interrupt line was disarmed.
	OpDisarm Op = 5
	// OpEdge indicates an interrupt line edge was delivered.
	OpEdge Op = 6
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpRead:
		return "READ"
	case OpWrite:
		return "WRITE"
	case OpProbe:
		return "PROBE"
	case OpClose:
		return "CLOSE"
	case OpArm:
		return "ARM"
	case OpDisarm:
		return "DISARM"
	case OpEdge:
		return "EDGE"
	default:
		return "UNKNOWN"
	}
}
