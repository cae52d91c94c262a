package sim

import (
	"context"
	"sync"
	"time"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
)

// WindowSize is the number of byte-wide registers the simulated chip exposes.
const WindowSize = 256

// Default identity register values.
const (
	DefaultChipID  = 0x5A // SR90 peripheral controller
	DefaultChipRev = 0x02 // B0 stepping
)

// Register layout of the simulated chip.
const (
	regIntMask0   = 0x17 // Interrupt mask bank 0 (set bits disable sources)
	regIntMask1   = 0x18 // Interrupt mask bank 1
	regIntStatus0 = 0x83 // Latched interrupt causes bank 0 (write zero to clear)
	regIntStatus1 = 0x84 // Latched interrupt causes bank 1
	regChipID     = 0x86 // Part identity (read-only)
	regChipRev    = 0x87 // Silicon revision (read-only)
)

// Chip implements hal.Bus and hal.Line against an in-memory register file.
//
// The chip models the register window of an SR-family peripheral controller:
// a 256-byte window with interrupt mask and latched cause registers, plus
// read-only identity registers. Raise latches interrupt causes and pulses
// the armed line handler, standing in for the hardware interrupt pin.
//
// Fault injection hooks let tests exercise every failure path of the device
// core without real hardware.
type Chip struct {
	// Register file (latched causes live at their window offsets)
	regs [WindowSize]byte

	// Reported transaction capabilities
	caps hal.Caps

	// Interrupt line state
	handler hal.Handler
	armed   bool

	// Injected faults
	probeErr error // Probe fails persistently
	armErr   error // Arm fails persistently
	readErr  error // Next ReadReg fails (one-shot)
	writeErr error // Next WriteReg fails (one-shot)

	// Simulated transaction latency
	latency time.Duration

	// Transaction counters
	reads  uint64
	writes uint64

	closed bool
	mutex  sync.Mutex
}

// New creates a simulated chip with all registers zeroed, the default
// identity, and every capability advertised. Zeroed mask registers leave
// all interrupt sources enabled, matching the chip's reset state.
func New() *Chip {
	c := &Chip{
		caps: hal.CapRead | hal.CapWrite | hal.CapBlock | hal.CapLine,
	}
	c.regs[regChipID] = DefaultChipID
	c.regs[regChipRev] = DefaultChipRev
	return c
}

// Probe returns the simulated transaction capabilities.
func (c *Chip) Probe(ctx context.Context) (hal.Caps, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return 0, pkg.ErrBusClosed
	}
	if c.probeErr != nil {
		return 0, c.probeErr
	}
	return c.caps, nil
}

// ReadReg reads len(buf) bytes starting at register offset reg. The chip's
// internal address counter wraps past the end of the window.
func (c *Chip) ReadReg(ctx context.Context, reg uint8, buf []byte) error {
	if err := c.delay(ctx); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return pkg.ErrBusClosed
	}
	if c.readErr != nil {
		err := c.readErr
		c.readErr = nil
		return err
	}

	for i := range buf {
		buf[i] = c.regs[reg+uint8(i)]
	}
	c.reads++

	pkg.LogDebug(pkg.ComponentHAL, "sim read", "reg", reg, "len", len(buf))
	return nil
}

// WriteReg writes len(data) bytes starting at register offset reg. Identity
// registers ignore writes; all other offsets store the written value, so a
// zero written to a cause register clears its latched bits.
func (c *Chip) WriteReg(ctx context.Context, reg uint8, data []byte) error {
	if err := c.delay(ctx); err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return pkg.ErrBusClosed
	}
	if c.writeErr != nil {
		err := c.writeErr
		c.writeErr = nil
		return err
	}

	for i, v := range data {
		off := reg + uint8(i)
		switch off {
		case regChipID, regChipRev:
			// Read-only
		default:
			c.regs[off] = v
		}
	}
	c.writes++

	pkg.LogDebug(pkg.ComponentHAL, "sim write", "reg", reg, "len", len(data))
	return nil
}

// Close marks the bus closed. Subsequent transactions fail with
// pkg.ErrBusClosed. Close is idempotent.
func (c *Chip) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	c.handler = nil
	c.armed = false
	return nil
}

// Arm installs fn as the line handler and enables edge delivery.
func (c *Chip) Arm(fn hal.Handler) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return pkg.ErrBusClosed
	}
	if c.armErr != nil {
		return c.armErr
	}
	if c.armed {
		return pkg.ErrLineArmed
	}

	c.handler = fn
	c.armed = true
	pkg.LogDebug(pkg.ComponentHAL, "sim line armed")
	return nil
}

// Disarm disables edge delivery. Disarming an unarmed line is a no-op.
func (c *Chip) Disarm() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.handler = nil
	c.armed = false
	pkg.LogDebug(pkg.ComponentHAL, "sim line disarmed")
	return nil
}

// Raise latches interrupt causes into the two cause registers and pulses
// the line handler if the line is armed and at least one latched cause is
// unmasked. Returns true if the handler fired.
//
// The handler runs on the caller's goroutine, standing in for the line's
// event goroutine; handler discipline (no blocking, no bus transactions)
// keeps this deadlock-free.
func (c *Chip) Raise(causes0, causes1 byte) bool {
	c.mutex.Lock()

	if c.closed {
		c.mutex.Unlock()
		return false
	}

	c.regs[regIntStatus0] |= causes0
	c.regs[regIntStatus1] |= causes1

	unmasked := (c.regs[regIntStatus0] &^ c.regs[regIntMask0]) |
		(c.regs[regIntStatus1] &^ c.regs[regIntMask1])

	fire := c.armed && c.handler != nil && unmasked != 0
	fn := c.handler
	c.mutex.Unlock()

	if fire {
		fn()
	}
	return fire
}

// SetChipIdentity overrides the identity registers.
func (c *Chip) SetChipIdentity(id, rev byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.regs[regChipID] = id
	c.regs[regChipRev] = rev
}

// SetCaps overrides the capabilities reported by Probe.
func (c *Chip) SetCaps(caps hal.Caps) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.caps = caps
}

// SetLatency adds a fixed delay to every transaction, simulating a slow bus.
func (c *Chip) SetLatency(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.latency = d
}

// FailProbe makes Probe fail persistently with err. Pass nil to restore.
func (c *Chip) FailProbe(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.probeErr = err
}

// FailArm makes Arm fail persistently with err. Pass nil to restore.
func (c *Chip) FailArm(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.armErr = err
}

// FailNextRead makes the next ReadReg fail with err. The fault is one-shot.
func (c *Chip) FailNextRead(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.readErr = err
}

// FailNextWrite makes the next WriteReg fail with err. The fault is one-shot.
func (c *Chip) FailNextWrite(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.writeErr = err
}

// Peek returns the register value at reg without a bus transaction.
func (c *Chip) Peek(reg uint8) byte {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.regs[reg]
}

// Poke stores a register value at reg without a bus transaction, bypassing
// read-only protection.
func (c *Chip) Poke(reg uint8, v byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.regs[reg] = v
}

// Armed reports whether the line handler is installed.
func (c *Chip) Armed() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.armed
}

// Reads returns the number of completed read transactions.
func (c *Chip) Reads() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.reads
}

// Writes returns the number of completed write transactions.
func (c *Chip) Writes() uint64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.writes
}

// delay applies the configured transaction latency, honoring cancellation.
func (c *Chip) delay(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mutex.Lock()
	d := c.latency
	c.mutex.Unlock()

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Compile-time interface checks
var (
	_ hal.Bus  = (*Chip)(nil)
	_ hal.Line = (*Chip)(nil)
)
