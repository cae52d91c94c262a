package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
	"github.com/ardnew/softregs/pkg/chipid"
)

// Handle identifies an attached device within a [Table]. Handles are small
// value types, safe to copy and share between goroutines.
//
// A handle goes stale when its device is detached. Operations through a
// stale handle fail with ErrNoDevice; they can never reach a different
// device later attached to the same slot, because each slot carries a
// generation counter that advances on detach.
type Handle struct {
	slot int
	gen  uint64
}

// Slot returns the table slot this handle refers to.
func (h Handle) Slot() int {
	return h.slot
}

func (h Handle) String() string {
	return fmt.Sprintf("slot %d gen %d", h.slot, h.gen)
}

// tableSlot pairs an attached device with the generation counter that
// invalidates stale handles.
type tableSlot struct {
	dev *Device
	gen uint64
}

// Table owns a fixed set of device slots. Every session and every caller
// reaches a device through a [Handle] issued by Attach, so device lookup
// is always explicit and stale references fail cleanly.
//
// A Table is safe for concurrent use.
type Table struct {
	mutex sync.Mutex
	slots []tableSlot
	db    *chipid.Database
}

// NewTable creates a table with the given number of device slots. A count
// of zero or less selects DefaultSlots.
func NewTable(slots int) *Table {
	if slots <= 0 {
		slots = DefaultSlots
	}
	db := chipid.New()
	if db.Load() {
		pkg.LogDebug(pkg.ComponentTable, "part database loaded",
			"parts", db.PartCount(),
			"revisions", db.RevisionCount())
	}
	return &Table{
		slots: make([]tableSlot, slots),
		db:    db,
	}
}

// Attach registers a peripheral reachable over bus, identified by reading
// its chip ID and revision registers, and returns a handle for it. The
// transport must support at least register reads and writes; otherwise
// attach fails with ErrNotSupported. When every slot is occupied, attach
// fails with ErrNoSlots.
//
// line carries out-of-band service requests from the chip. A nil line is
// accepted: the device operates without event delivery, and sessions
// learn about chip state by polling registers.
//
// The table shares bus and line with the caller but never closes them.
func (t *Table) Attach(ctx context.Context, bus hal.Bus, line hal.Line) (Handle, error) {
	caps, err := bus.Probe(ctx)
	if err != nil {
		return Handle{}, err
	}
	if !caps.Has(hal.CapRequired) {
		pkg.LogWarn(pkg.ComponentTable, "transport lacks required capabilities",
			"caps", caps)
		return Handle{}, pkg.ErrNotSupported
	}

	// Chip ID and revision occupy adjacent registers; read both in one
	// transaction.
	var ident [2]byte
	if err := bus.ReadReg(ctx, RegChipID, ident[:]); err != nil {
		return Handle{}, err
	}

	t.mutex.Lock()
	slot := -1
	for i := range t.slots {
		if t.slots[i].dev == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		t.mutex.Unlock()
		return Handle{}, pkg.ErrNoSlots
	}
	d := newDevice(slot, bus, line, caps, ident[0], ident[1])
	t.slots[slot].dev = d
	h := Handle{slot: slot, gen: t.slots[slot].gen}
	t.mutex.Unlock()

	pkg.LogInfo(pkg.ComponentTable, "device attached",
		"slot", slot,
		"chip", fmt.Sprintf("0x%02X", ident[0]),
		"rev", fmt.Sprintf("0x%02X", ident[1]),
		"part", t.db.Describe(ident[0], ident[1]),
		"caps", caps)
	if line == nil {
		pkg.LogWarn(pkg.ComponentDevice, "no interrupt line; event delivery disabled",
			"slot", slot)
	}
	return h, nil
}

// Open creates a new session on the device identified by h. The first
// session on a device starts its deferred worker and arms its interrupt
// line; subsequent sessions share both.
func (t *Table) Open(h Handle) (*Session, error) {
	d, err := t.lookup(h)
	if err != nil {
		return nil, err
	}
	if err := d.open(); err != nil {
		return nil, err
	}
	s := newSession(t, h)
	pkg.LogDebug(pkg.ComponentSession, "session opened",
		"session", s.id,
		"slot", h.slot)
	return s, nil
}

// Detach removes the device identified by h from the table. Detach fails
// with ErrBusy while the device has open sessions, and with ErrNoDevice
// when the handle is stale. After a successful detach the slot is free
// for reuse and every outstanding handle to the old device is stale.
func (t *Table) Detach(h Handle) error {
	d, err := t.lookup(h)
	if err != nil {
		return err
	}

	if err := d.detach(); err != nil {
		return err
	}

	t.mutex.Lock()
	if h.slot < len(t.slots) && t.slots[h.slot].gen == h.gen {
		t.slots[h.slot].dev = nil
		t.slots[h.slot].gen++
	}
	t.mutex.Unlock()

	pkg.LogInfo(pkg.ComponentTable, "device detached",
		"slot", h.slot,
		"chip", fmt.Sprintf("0x%02X", d.chipID))
	return nil
}

// Device returns the device record for h, primarily for inspection. The
// returned value remains valid only while the device stays attached.
func (t *Table) Device(h Handle) (*Device, error) {
	return t.lookup(h)
}

// Describe returns a human-readable part name for the device identified
// by h, resolved through the part database.
func (t *Table) Describe(h Handle) (string, error) {
	d, err := t.lookup(h)
	if err != nil {
		return "", err
	}
	return t.db.Describe(d.chipID, d.chipRev), nil
}

// Size returns the number of slots in the table.
func (t *Table) Size() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.slots)
}

// Attached returns the number of currently occupied slots.
func (t *Table) Attached() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	n := 0
	for i := range t.slots {
		if t.slots[i].dev != nil {
			n++
		}
	}
	return n
}

// lookup resolves a handle to its device, failing with ErrNoDevice when
// the slot is empty or the generation no longer matches.
func (t *Table) lookup(h Handle) (*Device, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if h.slot < 0 || h.slot >= len(t.slots) {
		return nil, pkg.ErrNoDevice
	}
	s := &t.slots[h.slot]
	if s.dev == nil || s.gen != h.gen {
		return nil, pkg.ErrNoDevice
	}
	return s.dev, nil
}
