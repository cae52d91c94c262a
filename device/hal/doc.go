// Package hal defines the transport abstraction for register-window devices.
//
// The HAL provides a platform-agnostic interface between the device core and
// the underlying bus hardware. Backend implementations adapt this interface
// to a concrete transport so the same device core runs against real adapters
// and simulated chips alike.
//
// # Design Principles
//
// The HAL is designed to be:
//
//   - Minimal: Only expose operations essential for register access
//   - Generic: No platform-specific assumptions or details
//   - Flexible: Adaptable to a wide range of bus adapters
//
// The device core implements all session, dispatch, and window logic, leaving
// the HAL to handle only raw register transactions and line events.
//
// # Interface Overview
//
// Two interfaces define the contract:
//
//   - [Bus] carries register transactions: a capability probe, multi-byte
//     reads and writes at consecutive register offsets, and handle teardown.
//   - [Line] delivers out-of-band interrupt edges: arming installs a handler,
//     disarming removes it.
//
// A transport that has no interrupt line simply never surfaces a [Line]; the
// device core then operates without interrupt delivery.
//
// # Implementing a Backend
//
// To implement a backend for a new transport:
//
//  1. Create a type that implements all [Bus] methods
//  2. Report honest capabilities from Probe()
//  3. Guarantee full-length transfers on nil error from ReadReg/WriteReg
//  4. Keep transactions safe for concurrent callers
//  5. Implement [Line] if the transport has an interrupt line
//
// # Handler Constraints
//
// A [Handler] runs on the line's event goroutine. It must return promptly,
// must not block, and must not issue bus transactions. The device core's
// handler only marks work pending for its deferred-work goroutine.
//
// # Example
//
//	type MyBus struct {
//	    // Transport-specific fields
//	}
//
//	func (b *MyBus) Probe(ctx context.Context) (hal.Caps, error) {
//	    return hal.CapRead | hal.CapWrite, nil
//	}
//
//	// ... implement remaining Bus methods
//
// A simulated chip for testing is available in
// [github.com/ardnew/softregs/device/hal/sim].
package hal
