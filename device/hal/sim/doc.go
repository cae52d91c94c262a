// Package sim implements an in-memory simulated chip for register-window devices.
//
// This backend is primarily intended for testing and simulation purposes. It
// models the full register window and interrupt behavior of an SR-family
// peripheral controller in process memory, enabling tests of the device core
// and of applications without actual hardware.
//
// # Register Model
//
// The simulated chip exposes a 256-byte register window:
//
//	0x17  interrupt mask bank 0     (set bits disable sources)
//	0x18  interrupt mask bank 1
//	0x83  latched causes bank 0     (write zero to clear)
//	0x84  latched causes bank 1
//	0x86  part identity             (read-only)
//	0x87  silicon revision          (read-only)
//
// All other offsets behave as plain read-write storage. Multi-byte
// transactions walk consecutive offsets and wrap past the end of the window,
// matching the chip's internal address counter.
//
// The chip resets with zeroed mask registers, leaving every interrupt source
// enabled until software masks them through the window.
//
// # Interrupt Line
//
// [Chip.Raise] latches causes into the cause registers and pulses the armed
// line handler if any latched cause is unmasked. The handler runs on the
// caller's goroutine; handler discipline (return promptly, no bus
// transactions) makes this safe. Each Raise with unmasked causes pending
// produces one pulse, so a burst of events exercises the consumer's
// coalescing behavior.
//
// # Fault Injection
//
// Every failure path of a real transport can be simulated:
//
//   - [Chip.FailProbe] makes capability probing fail, as an adapter without
//     the required transaction support would.
//   - [Chip.FailArm] makes line arming fail, as a busy or absent interrupt
//     line would.
//   - [Chip.FailNextRead] and [Chip.FailNextWrite] inject one-shot
//     transaction faults.
//   - [Chip.SetLatency] adds per-transaction delay to widen race windows.
//
// # Usage
//
//	chip := sim.New()
//
//	table := device.NewTable(device.DefaultSlots)
//	handle, _ := table.Attach(ctx, chip, chip)
//
//	sess, _ := table.Open(ctx, handle)
//	defer sess.Close(ctx)
//
//	chip.Raise(0x01, 0x00) // latch a cause and pulse the line
//
// [Chip.Peek] and [Chip.Poke] give tests direct register access without bus
// transactions, and [Chip.Reads]/[Chip.Writes] count completed transactions
// for asserting on coalescing and fail-open behavior.
package sim
