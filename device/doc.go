// Package device implements a session-oriented driver core for a
// register-addressable peripheral on a two-wire serial bus.
//
// It is platform-agnostic and reaches hardware through the [hal.Bus] and
// [hal.Line] interfaces defined in the
// [github.com/ardnew/softregs/device/hal] package. The HAL exposes register
// transactions and interrupt-line arming, allowing platform vendors to
// provide concrete transports without changing the driver core.
//
// # Architecture
//
// The driver core is organized into three layers:
//
//   - [Table] owns the device slots, identifies chips at attach, and issues
//     the handles every other operation resolves devices through
//   - [Device] tracks per-chip lifecycle: the open-session count, interrupt
//     line arming, and the deferred worker that services events
//   - [Session] is one open handle onto a device, carrying a private cursor
//     into the chip's register window
//
// # Register Window
//
// The chip exposes a window of WindowSize consecutive byte registers.
// Sessions address it through [Session.Read], [Session.Write], and
// [Session.Seek] with byte-stream semantics: a transfer starting at cursor
// c moves min(len(p), WindowSize-(c mod WindowSize)) bytes, so transfers
// clamp at the window edge and the cursor wraps on the next call instead
// of reporting end-of-stream. Writes clamped short return io.ErrShortWrite
// alongside the transferred count.
//
// # Event Pipeline
//
// Chip service requests travel a two-stage pipeline:
//
//	line edge -> dispatch -> work queue -> deferred worker ->
//	    read and clear status registers -> sticky event flag -> wake-all
//
// Dispatch runs in interrupt context: it never blocks and never touches
// the bus, it only offers a token to a capacity-1 queue. Edges arriving
// while a token is already queued coalesce into that token. The deferred
// worker performs the bus transactions and then publishes a single sticky
// event flag shared by all sessions on the device.
//
// [Session.Ready] and [Session.Wait] consume that flag: the first session
// to observe it reports ReadyUrgent, every other woken waiter reports
// ReadyNormal. The answer is always determinate.
//
// # Lifecycle
//
// Sessions on one device are counted. The first open starts the deferred
// worker and arms the interrupt line; arming failure is logged and the
// open still succeeds, with event delivery disabled for that epoch. The
// last close masks all interrupt sources on the chip, disarms the line,
// and stops the worker, in that order, and always succeeds. A device with
// open sessions refuses [Table.Detach] with ErrBusy.
//
// # Example
//
//	table := device.NewTable(0)
//	h, err := table.Attach(ctx, bus, line)
//	if err != nil {
//	    return err
//	}
//	sess, err := table.Open(h)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close(ctx)
//
//	if _, err := sess.Seek(0x40, io.SeekStart); err != nil {
//	    return err
//	}
//	buf := make([]byte, 16)
//	if _, err := sess.Read(ctx, buf); err != nil {
//	    return err
//	}
//
// A simulated chip for testing is available in
// [github.com/ardnew/softregs/device/hal/sim].
package device
