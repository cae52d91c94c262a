package device

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
	"github.com/ardnew/softregs/pkg/prof"
)

// Device represents one attached register-window peripheral.
//
// A Device tracks the shared state behind every session opened on it: the
// open-session count, the sticky event flag, and the deferred-work context
// that exists while at least one session is open.
type Device struct {
	// Identity, fixed at attach
	slot    int
	chipID  byte
	chipRev byte
	caps    hal.Caps

	// Transport (shared, not owned)
	bus  hal.Bus
	line hal.Line // nil when the transport has no interrupt line

	// lifecycle serializes open/close/detach including their arm/disarm
	// and mask-write side effects, so racing opens cannot both observe a
	// first-open transition.
	lifecycle sync.Mutex
	detached  bool // guarded by lifecycle
	lineArmed bool // guarded by lifecycle

	// state guards the open-session count, the sticky event flag, and the
	// wake channel. Critical sections are short and never span a bus
	// transaction.
	state    sync.Mutex
	sessions int
	pending  bool          // sticky event flag, set by deferred work only
	wakeCh   chan struct{} // closed and replaced on each wake-all

	// accepting gates dispatch. Interrupt edges arriving while false are
	// dropped before reaching the work queue.
	accepting atomic.Bool

	// work is the capacity-1 coalescing queue between interrupt context
	// and the deferred worker. Allocated once at attach, never closed; a
	// queued token means one deferred unit is outstanding.
	work chan struct{}

	// Worker lifetime (present iff sessions > 0)
	cancel context.CancelFunc
	done   chan struct{}
}

// newDevice creates the in-core record for an attached peripheral.
func newDevice(slot int, bus hal.Bus, line hal.Line, caps hal.Caps, chipID, chipRev byte) *Device {
	return &Device{
		slot:    slot,
		chipID:  chipID,
		chipRev: chipRev,
		caps:    caps,
		bus:     bus,
		line:    line,
		wakeCh:  make(chan struct{}),
		work:    make(chan struct{}, 1),
	}
}

// Slot returns the device's table slot index.
func (d *Device) Slot() int {
	return d.slot
}

// ChipID returns the part identity read at attach.
func (d *Device) ChipID() byte {
	return d.chipID
}

// ChipRev returns the silicon revision read at attach.
func (d *Device) ChipRev() byte {
	return d.chipRev
}

// Caps returns the transport capabilities probed at attach.
func (d *Device) Caps() hal.Caps {
	return d.caps
}

// SessionCount returns the number of open sessions.
func (d *Device) SessionCount() int {
	d.state.Lock()
	defer d.state.Unlock()
	return d.sessions
}

// String returns a short identity string for logs.
func (d *Device) String() string {
	return fmt.Sprintf("slot %d chip 0x%02X rev 0x%02X", d.slot, d.chipID, d.chipRev)
}

// open admits one more session. The whole body runs under the lifecycle
// mutex so the count transition and its side effects are one atomic step
// with respect to other opens and closes.
//
// On the 0 -> 1 transition it starts the deferred worker and then attempts
// to arm the interrupt line. Arming failure degrades event delivery but
// never fails the open.
func (d *Device) open() error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.detached {
		return pkg.ErrNoDevice
	}

	if d.count() == 0 {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		d.cancel, d.done = cancel, done

		go prof.Do(ctx, func(ctx context.Context) {
			d.worker(ctx, done)
		}, "worker", "regs", "slot", strconv.Itoa(d.slot))

		d.accepting.Store(true)

		if d.line != nil {
			if err := d.line.Arm(func() { d.dispatch() }); err != nil {
				pkg.LogWarn(pkg.ComponentDevice, "interrupt line arming failed; event delivery disabled",
					"slot", d.slot,
					"error", err)
			} else {
				d.lineArmed = true
			}
		} else {
			pkg.LogDebug(pkg.ComponentDevice, "no interrupt line; event delivery disabled",
				"slot", d.slot)
		}
	}

	d.state.Lock()
	d.sessions++
	n := d.sessions
	d.state.Unlock()

	pkg.LogDebug(pkg.ComponentDevice, "session opened", "slot", d.slot, "sessions", n)
	return nil
}

// closeSession retires one session. The whole body runs under the lifecycle
// mutex, making the count check and the teardown side effects one atomic
// step with respect to other opens and closes.
//
// On the 1 -> 0 transition it silences the peripheral's interrupt sources,
// releases the line, and stops the deferred worker, in that order, so no
// new deferred work can be queued once teardown begins.
func (d *Device) closeSession(ctx context.Context) {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.count() == 1 {
		d.teardown(ctx)
	}

	d.state.Lock()
	d.sessions--
	n := d.sessions
	d.wakeAllLocked()
	d.state.Unlock()

	pkg.LogDebug(pkg.ComponentDevice, "session closed", "slot", d.slot, "sessions", n)
}

// teardown stops event delivery for the current open epoch. Caller holds
// the lifecycle mutex.
func (d *Device) teardown(ctx context.Context) {
	d.accepting.Store(false)

	// Both mask registers are adjacent; one block write silences them.
	masks := [2]byte{MaskAllDisabled, MaskAllDisabled}
	if err := d.bus.WriteReg(ctx, RegIntMask0, masks[:]); err != nil {
		pkg.LogError(pkg.ComponentDevice, "failed to disable interrupt sources",
			"slot", d.slot,
			"error", err)
	}

	if d.lineArmed {
		if err := d.line.Disarm(); err != nil {
			pkg.LogWarn(pkg.ComponentDevice, "interrupt line disarm failed",
				"slot", d.slot,
				"error", err)
		}
		d.lineArmed = false
	}

	d.cancel()
	<-d.done
	d.cancel, d.done = nil, nil

	// Drop any token queued between the accepting gate closing and the
	// worker exiting, so the next epoch starts without stale work.
	select {
	case <-d.work:
	default:
	}

	d.state.Lock()
	d.pending = false
	d.state.Unlock()

	pkg.LogDebug(pkg.ComponentDevice, "deferred worker stopped", "slot", d.slot)
}

// dispatch runs in interrupt context: the line's event goroutine. It must
// not block, must not touch the bus, and must not disarm the line; storm
// pressure is absorbed by the capacity-1 work queue instead.
//
// Returns true if a new deferred unit was queued, false if one was already
// pending or no session epoch is accepting work. An edge with zero open
// sessions is dropped here without side effects.
func (d *Device) dispatch() bool {
	if !d.accepting.Load() {
		pkg.LogDebug(pkg.ComponentDevice, "interrupt dropped, no open sessions", "slot", d.slot)
		return false
	}

	select {
	case d.work <- struct{}{}:
		return true
	default:
		// Coalesced into the already-pending unit.
		return false
	}
}

// detach marks the device unusable for new sessions. Fails with ErrBusy
// while any session remains open.
func (d *Device) detach() error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.count() > 0 {
		return pkg.ErrBusy
	}
	d.detached = true
	return nil
}

// ready is the non-blocking readiness fast path: consume the sticky event
// flag if set.
func (d *Device) ready() Readiness {
	d.state.Lock()
	defer d.state.Unlock()

	if d.pending {
		d.pending = false
		return ReadyUrgent
	}
	return ReadyNormal
}

// wait blocks until the next wake-all or ctx cancellation. Upon wake it
// re-checks the event flag once: whichever waiter gets there first consumes
// the event and reports urgent, the rest report normal. A waiter never
// observes an indeterminate state.
func (d *Device) wait(ctx context.Context) (Readiness, error) {
	d.state.Lock()
	if d.pending {
		d.pending = false
		d.state.Unlock()
		return ReadyUrgent, nil
	}
	ch := d.wakeCh
	d.state.Unlock()

	select {
	case <-ctx.Done():
		return ReadyNone, ctx.Err()
	case <-ch:
	}

	d.state.Lock()
	defer d.state.Unlock()
	if d.pending {
		d.pending = false
		return ReadyUrgent, nil
	}
	return ReadyNormal, nil
}

// wakeAllLocked wakes every blocked waiter. Caller holds the state mutex.
func (d *Device) wakeAllLocked() {
	close(d.wakeCh)
	d.wakeCh = make(chan struct{})
}

// count returns the open-session count.
func (d *Device) count() int {
	d.state.Lock()
	n := d.sessions
	d.state.Unlock()
	return n
}
