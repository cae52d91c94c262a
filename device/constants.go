package device

// Register window geometry.
const (
	// WindowSize is the number of byte-wide registers in the device window.
	WindowSize = 256

	// windowMask folds a session cursor into the window address space.
	windowMask = WindowSize - 1
)

// Register offsets (fixed layout shared by all supported chips).
const (
	// RegIntMask0 and RegIntMask1 are the interrupt mask registers. A set
	// bit disables the corresponding source; MaskAllDisabled silences the
	// whole bank.
	RegIntMask0 = 0x17
	RegIntMask1 = 0x18

	// RegIntStatus0 and RegIntStatus1 latch pending interrupt causes.
	// Reading returns the latched causes; writing zero acknowledges and
	// clears them.
	RegIntStatus0 = 0x83
	RegIntStatus1 = 0x84

	// RegChipID and RegChipRev hold the part identity and silicon revision,
	// read once at attach.
	RegChipID  = 0x86
	RegChipRev = 0x87
)

// MaskAllDisabled is written to both interrupt mask registers at last close,
// silencing every interrupt source before the line is released.
const MaskAllDisabled = 0xFF

// DefaultSlots is the device table capacity used when none is given.
const DefaultSlots = 8

// Readiness is the session readiness state reported by the event notifier.
type Readiness uint8

// Readiness states.
const (
	// ReadyNone is the zero value, reported only alongside an error.
	ReadyNone Readiness = iota

	// ReadyNormal indicates no event is pending; ordinary register reads
	// and writes are available.
	ReadyNormal

	// ReadyUrgent indicates a peripheral event is pending; the consumer
	// should read the status registers. Observing this state consumes the
	// event, so exactly one session sees it per event.
	ReadyUrgent
)

// String returns a human-readable readiness name.
func (r Readiness) String() string {
	switch r {
	case ReadyNone:
		return "none"
	case ReadyNormal:
		return "normal"
	case ReadyUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}
