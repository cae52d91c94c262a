package device

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ardnew/softregs/pkg"
)

// Session is one open handle onto a device, with a private cursor into the
// register window. Sessions reach their device through a table handle, so a
// session outliving its device fails cleanly instead of dangling.
//
// All methods are safe for concurrent use; cursor operations on a single
// session serialize against each other.
type Session struct {
	table  *Table
	handle Handle
	id     uuid.UUID

	mutex  sync.Mutex
	cursor int64 // stored unmasked; folded into the window at use
	closed bool
}

// newSession creates a session bound to the given table handle.
func newSession(t *Table, h Handle) *Session {
	return &Session{
		table:  t,
		handle: h,
		id:     uuid.New(),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Handle returns the table handle of the session's device.
func (s *Session) Handle() Handle {
	return s.handle
}

// Cursor returns the current unmasked cursor position.
func (s *Session) Cursor() int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cursor
}

// Read transfers up to len(p) bytes from the register window into p,
// starting at the cursor. The transfer length is clamped to the end of the
// window: exactly min(len(p), WindowSize - cursor mod WindowSize) bytes
// move on success, and the cursor advances by that count. The cursor wraps
// into the window on the next call rather than producing end-of-stream.
//
// On transport failure the error is surfaced verbatim and the cursor does
// not advance. A zero-length read returns (0, nil).
func (s *Session) Read(ctx context.Context, p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return 0, pkg.ErrSessionClosed
	}
	d, err := s.table.lookup(s.handle)
	if err != nil {
		return 0, err
	}

	off := int(s.cursor & windowMask)
	n := len(p)
	if avail := WindowSize - off; n > avail {
		n = avail
	}
	if n == 0 {
		return 0, nil
	}

	if err := d.bus.ReadReg(ctx, uint8(off), p[:n]); err != nil {
		return 0, err
	}
	s.cursor += int64(n)

	pkg.LogDebug(pkg.ComponentSession, "window read",
		"session", s.id,
		"reg", off,
		"len", n)
	return n, nil
}

// Write transfers up to len(p) bytes from p into the register window,
// starting at the cursor, with the same clamping and cursor rules as Read.
// A write clamped short of len(p) returns the transferred count together
// with io.ErrShortWrite.
//
// On transport failure the error is surfaced verbatim and the cursor does
// not advance. A zero-length write returns (0, nil).
func (s *Session) Write(ctx context.Context, p []byte) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return 0, pkg.ErrSessionClosed
	}
	d, err := s.table.lookup(s.handle)
	if err != nil {
		return 0, err
	}

	off := int(s.cursor & windowMask)
	n := len(p)
	clamped := false
	if avail := WindowSize - off; n > avail {
		n = avail
		clamped = true
	}
	if n == 0 {
		return 0, nil
	}

	if err := d.bus.WriteReg(ctx, uint8(off), p[:n]); err != nil {
		return 0, err
	}
	s.cursor += int64(n)

	pkg.LogDebug(pkg.ComponentSession, "window write",
		"session", s.id,
		"reg", off,
		"len", n)

	if clamped {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Seek repositions the session cursor. Whence values follow [io.Seeker].
// The cursor is not range-checked against the window; it is folded into
// the window at use, so positions at or past WindowSize wrap on the next
// transfer. Seeking to a negative position fails with ErrInvalidOffset.
func (s *Session) Seek(offset int64, whence int) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return 0, pkg.ErrSessionClosed
	}

	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = s.cursor + offset
	case io.SeekEnd:
		next = WindowSize + offset
	default:
		return 0, pkg.ErrInvalidOffset
	}
	if next < 0 {
		return 0, pkg.ErrInvalidOffset
	}

	s.cursor = next
	return next, nil
}

// Ready is the non-blocking readiness query. It reports ReadyUrgent and
// consumes the event if one is pending, otherwise ReadyNormal. Concurrent
// sessions race for the single event; the first observer wins.
func (s *Session) Ready() (Readiness, error) {
	if s.isClosed() {
		return ReadyNone, pkg.ErrSessionClosed
	}
	d, err := s.table.lookup(s.handle)
	if err != nil {
		return ReadyNone, err
	}
	return d.ready(), nil
}

// Wait blocks until the device signals an event, another wake-up occurs,
// or ctx is cancelled. If an event is pending on entry it is consumed
// without blocking. Upon a wake-up the event flag is re-checked once:
// the first waiter to observe it reports ReadyUrgent, the rest report
// ReadyNormal. The answer is always determinate.
//
// If the interrupt line failed to arm for this open epoch, no event
// wake-ups occur and Wait blocks until ctx is cancelled.
func (s *Session) Wait(ctx context.Context) (Readiness, error) {
	if s.isClosed() {
		return ReadyNone, pkg.ErrSessionClosed
	}
	d, err := s.table.lookup(s.handle)
	if err != nil {
		return ReadyNone, err
	}

	r, err := d.wait(ctx)
	if err != nil {
		return ReadyNone, err
	}
	if s.isClosed() {
		return ReadyNone, pkg.ErrSessionClosed
	}
	return r, nil
}

// Close retires the session, releasing the device's shared resources if
// this was the last open session. Close is idempotent and always succeeds;
// failures while silencing the peripheral are logged, not returned.
//
// Waiters blocked on this session are woken and return ErrSessionClosed.
func (s *Session) Close(ctx context.Context) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	s.closed = true
	s.mutex.Unlock()

	d, err := s.table.lookup(s.handle)
	if err != nil {
		// Device already gone; nothing left to release.
		return nil
	}
	d.closeSession(ctx)

	pkg.LogDebug(pkg.ComponentSession, "session closed", "session", s.id)
	return nil
}

// isClosed reports whether Close has been called.
func (s *Session) isClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}
