package trace_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/device/hal/sim"
	"github.com/ardnew/softregs/pkg"
	"github.com/ardnew/softregs/trace"
)

// memRecorder collects events in memory for assertions.
type memRecorder struct {
	mu     sync.Mutex
	events []trace.Event
}

func (m *memRecorder) Record(ev trace.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *memRecorder) all() []trace.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]trace.Event(nil), m.events...)
}

// TestBus_RecordsTransactions verifies one event per bus operation with the
// operation kind, register, and payload captured.
func TestBus_RecordsTransactions(t *testing.T) {
	ctx := context.Background()
	chip := sim.New()
	rec := &memRecorder{}
	bus := trace.NewBus(chip, rec, "sim0")

	caps, err := bus.Probe(ctx)
	require.NoError(t, err)
	require.True(t, caps.Has(hal.CapRequired))

	require.NoError(t, bus.WriteReg(ctx, 0x10, []byte{0xAB, 0xCD}))

	buf := make([]byte, 2)
	require.NoError(t, bus.ReadReg(ctx, 0x10, buf))
	require.Equal(t, []byte{0xAB, 0xCD}, buf)

	events := rec.all()
	require.Len(t, events, 3)

	assert.Equal(t, trace.OpProbe, events[0].Op)
	assert.Equal(t, uint32(caps), events[0].Caps)
	assert.Equal(t, "sim0", events[0].Label)

	assert.Equal(t, trace.OpWrite, events[1].Op)
	assert.Equal(t, uint8(0x10), events[1].Reg)
	assert.Equal(t, 2, events[1].Len)
	assert.Equal(t, []byte{0xAB, 0xCD}, events[1].Data)
	assert.False(t, events[1].Truncated)

	assert.Equal(t, trace.OpRead, events[2].Op)
	assert.Equal(t, []byte{0xAB, 0xCD}, events[2].Data)
	assert.Equal(t, pkg.FaultNone, events[2].Fault)
	assert.Empty(t, events[2].Error)
}

// TestBus_RecordsFaults verifies that a failed transaction is recorded with
// its fault classification and no read data.
func TestBus_RecordsFaults(t *testing.T) {
	ctx := context.Background()
	chip := sim.New()
	rec := &memRecorder{}
	bus := trace.NewBus(chip, rec, "sim0")

	busErr := errors.New("bus arbitration lost")
	chip.FailNextRead(busErr)

	err := bus.ReadReg(ctx, 0x40, make([]byte, 4))
	require.ErrorIs(t, err, busErr)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, trace.OpRead, events[0].Op)
	assert.Equal(t, pkg.FaultTransport, events[0].Fault)
	assert.Equal(t, busErr.Error(), events[0].Error)
	assert.Nil(t, events[0].Data)
}

// TestBus_TruncatesLargePayloads verifies the capture limit clips data
// while Len keeps the full transaction size.
func TestBus_TruncatesLargePayloads(t *testing.T) {
	ctx := context.Background()
	chip := sim.New()
	rec := &memRecorder{}
	bus := trace.NewBus(chip, rec, "sim0")

	payload := bytes.Repeat([]byte{0x55}, trace.CaptureLimit+36)
	require.NoError(t, bus.WriteReg(ctx, 0x00, payload))

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, len(payload), events[0].Len)
	assert.Len(t, events[0].Data, trace.CaptureLimit)
	assert.True(t, events[0].Truncated)
}

// TestLine_RecordsArmEdgeDisarm verifies line wrapper events around the
// arm, edge delivery, and disarm sequence.
func TestLine_RecordsArmEdgeDisarm(t *testing.T) {
	chip := sim.New()
	rec := &memRecorder{}
	line := trace.NewLine(chip, rec, "sim0")

	fired := false
	require.NoError(t, line.Arm(func() { fired = true }))

	// The simulated chip delivers edges synchronously.
	require.True(t, chip.Raise(0x01, 0x00))
	require.True(t, fired, "wrapped handler did not run")

	require.NoError(t, line.Disarm())

	var ops []trace.Op
	for _, ev := range rec.all() {
		ops = append(ops, ev.Op)
	}
	assert.Equal(t, []trace.Op{trace.OpArm, trace.OpEdge, trace.OpDisarm}, ops)
}

// TestLine_RecordsArmFailure verifies a failed arm is captured with its
// error text.
func TestLine_RecordsArmFailure(t *testing.T) {
	chip := sim.New()
	rec := &memRecorder{}
	line := trace.NewLine(chip, rec, "sim0")

	armErr := errors.New("line controller busy")
	chip.FailArm(armErr)

	require.ErrorIs(t, line.Arm(func() {}), armErr)

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, trace.OpArm, events[0].Op)
	assert.Equal(t, armErr.Error(), events[0].Error)
}

// TestBus_NilRecorderDisablesCapture verifies a nil recorder is accepted
// and operations still pass through.
func TestBus_NilRecorderDisablesCapture(t *testing.T) {
	ctx := context.Background()
	chip := sim.New()
	bus := trace.NewBus(chip, nil, "sim0")

	require.NoError(t, bus.WriteReg(ctx, 0x10, []byte{1}))
	assert.Equal(t, byte(1), chip.Peek(0x10))
}
