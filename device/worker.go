package device

import (
	"context"

	"github.com/ardnew/softregs/pkg"
)

// worker is the single deferred-work execution context for one device. It
// exists while at least one session is open and drains the capacity-1 work
// queue, running one service pass per queued unit. Serialization of
// deferred work comes from there being exactly one worker, not from
// additional locking.
func (d *Device) worker(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	pkg.LogDebug(pkg.ComponentWorker, "deferred worker started", "slot", d.slot)

	for {
		select {
		case <-ctx.Done():
			pkg.LogDebug(pkg.ComponentWorker, "deferred worker exiting", "slot", d.slot)
			return
		case <-d.work:
			d.service(ctx)
		}
	}
}

// service is the deferred event-clear routine, executed once per queued
// unit, off interrupt context:
//
//  1. Read both interrupt-status registers, capturing the latched causes.
//  2. Write zero to both to acknowledge and reset the peripheral's latch.
//  3. Set the sticky event flag under the state lock.
//  4. Wake all sessions blocked on this device.
//
// Register failures are logged and the flag is still set anyway: the
// wake-up must not be lost, and consumers re-validate device state with
// explicit register reads.
func (d *Device) service(ctx context.Context) {
	// Status and clear registers are adjacent banks; one block transaction
	// covers both.
	var causes [2]byte
	if err := d.bus.ReadReg(ctx, RegIntStatus0, causes[:]); err != nil {
		pkg.LogError(pkg.ComponentWorker, "status register read failed",
			"slot", d.slot,
			"error", err)
	} else {
		pkg.LogDebug(pkg.ComponentWorker, "interrupt causes latched",
			"slot", d.slot,
			"status0", causes[0],
			"status1", causes[1])
	}

	var zero [2]byte
	if err := d.bus.WriteReg(ctx, RegIntStatus0, zero[:]); err != nil {
		pkg.LogError(pkg.ComponentWorker, "clear register write failed",
			"slot", d.slot,
			"error", err)
	}

	d.state.Lock()
	d.pending = true
	d.wakeAllLocked()
	d.state.Unlock()
}
