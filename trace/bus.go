package trace

import (
	"context"
	"time"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
)

// CaptureLimit is the maximum number of data bytes stored per event.
// Larger transactions record a truncated prefix.
const CaptureLimit = 64

// Bus wraps a [hal.Bus] and records one event per transaction. The wrapped
// bus is transparent to the driver core: errors, capabilities, and data
// pass through unchanged.
type Bus struct {
	inner hal.Bus
	rec   Recorder
	label string
}

// NewBus wraps inner so every transaction is recorded to rec. label tags
// each event with the transport's identity. A nil rec disables capture.
func NewBus(inner hal.Bus, rec Recorder, label string) *Bus {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Bus{inner: inner, rec: rec, label: label}
}

// Probe forwards to the wrapped bus and records the reported capabilities.
func (b *Bus) Probe(ctx context.Context) (hal.Caps, error) {
	start := time.Now()
	caps, err := b.inner.Probe(ctx)
	b.emit(Event{
		Op:      OpProbe,
		Caps:    uint32(caps),
		Elapsed: time.Since(start),
	}, err)
	return caps, err
}

// ReadReg forwards to the wrapped bus. Data is captured only when the
// transaction succeeds; a failed read leaves buf contents undefined.
func (b *Bus) ReadReg(ctx context.Context, reg uint8, buf []byte) error {
	start := time.Now()
	err := b.inner.ReadReg(ctx, reg, buf)
	ev := Event{
		Op:      OpRead,
		Reg:     reg,
		Len:     len(buf),
		Elapsed: time.Since(start),
	}
	if err == nil {
		ev.Data, ev.Truncated = captureData(buf)
	}
	b.emit(ev, err)
	return err
}

// WriteReg forwards to the wrapped bus. The payload is captured as
// attempted, whether or not the transaction succeeds.
func (b *Bus) WriteReg(ctx context.Context, reg uint8, data []byte) error {
	start := time.Now()
	err := b.inner.WriteReg(ctx, reg, data)
	ev := Event{
		Op:      OpWrite,
		Reg:     reg,
		Len:     len(data),
		Elapsed: time.Since(start),
	}
	ev.Data, ev.Truncated = captureData(data)
	b.emit(ev, err)
	return err
}

// Close forwards to the wrapped bus and records the closure.
func (b *Bus) Close() error {
	err := b.inner.Close()
	b.emit(Event{Op: OpClose}, err)
	return err
}

func (b *Bus) emit(ev Event, err error) {
	ev.Timestamp = time.Now()
	ev.Label = b.label
	if err != nil {
		ev.Fault = pkg.Classify(err)
		ev.Error = err.Error()
	}
	b.rec.Record(ev)
}

// Compile-time interface satisfaction check.
var _ hal.Bus = (*Bus)(nil)

// Line wraps a [hal.Line] and records arm and disarm transitions plus
// every delivered edge. Edge events are recorded on the line's event
// goroutine, before the driver's handler runs; the Recorder contract
// requires Record to return quickly.
type Line struct {
	inner hal.Line
	rec   Recorder
	label string
}

// NewLine wraps inner so line activity is recorded to rec. A nil rec
// disables capture.
func NewLine(inner hal.Line, rec Recorder, label string) *Line {
	if rec == nil {
		rec = NopRecorder{}
	}
	return &Line{inner: inner, rec: rec, label: label}
}

// Arm installs fn behind an edge-recording shim and enables delivery.
func (l *Line) Arm(fn hal.Handler) error {
	err := l.inner.Arm(func() {
		l.emit(Event{Op: OpEdge}, nil)
		fn()
	})
	l.emit(Event{Op: OpArm}, err)
	return err
}

// Disarm disables delivery and removes the handler.
func (l *Line) Disarm() error {
	err := l.inner.Disarm()
	l.emit(Event{Op: OpDisarm}, err)
	return err
}

func (l *Line) emit(ev Event, err error) {
	ev.Timestamp = time.Now()
	ev.Label = l.label
	if err != nil {
		ev.Fault = pkg.Classify(err)
		ev.Error = err.Error()
	}
	l.rec.Record(ev)
}

// Compile-time interface satisfaction check.
var _ hal.Line = (*Line)(nil)

// captureData copies p for event storage, clipping at CaptureLimit.
func captureData(p []byte) ([]byte, bool) {
	if len(p) == 0 {
		return nil, false
	}
	if len(p) > CaptureLimit {
		return append([]byte(nil), p[:CaptureLimit]...), true
	}
	return append([]byte(nil), p...), false
}
