//go:build linux

package linux

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
)

// =============================================================================
// SMBus ioctl Structures
// =============================================================================

// smbusIoctlData matches the kernel's struct i2c_smbus_ioctl_data layout.
type smbusIoctlData struct {
	readWrite uint8
	command   uint8
	size      uint32
	data      unsafe.Pointer // *union i2c_smbus_data
}

// =============================================================================
// I2CBus
// =============================================================================

// I2CBus implements [hal.Bus] over the kernel's i2c-dev interface. Register
// transactions are issued as SMBus I2C-block transfers, chunked at
// SMBusBlockMax bytes; adapters without block support fall back to
// byte-data transfers.
//
// An I2CBus serializes its transactions internally, so it is safe for
// concurrent use by session goroutines and the deferred worker.
type I2CBus struct {
	// Identity, fixed at open
	bus  int
	addr uint16

	// funcs caches the adapter functionality mask read at open.
	funcs uint32

	// mu serializes transactions on the shared descriptor.
	mu     sync.Mutex
	fd     int
	closed bool
}

// OpenI2C opens adapter /dev/i2c-<bus> and binds it to the peripheral at
// the given 7-bit address.
func OpenI2C(bus int, addr uint16) (*I2CBus, error) {
	path := fmt.Sprintf("%s%d", DevI2CPrefix, bus)
	fd, err := openDevice(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := ioctlRaw(fd, I2CSlave, uintptr(addr)); err != nil {
		closeDevice(fd)
		return nil, fmt.Errorf("bind address 0x%02X on %s: %w", addr, path, err)
	}

	var funcs uint32
	if err := ioctlRaw(fd, I2CFuncs, uintptr(unsafe.Pointer(&funcs))); err != nil {
		closeDevice(fd)
		return nil, fmt.Errorf("query adapter functionality on %s: %w", path, err)
	}

	pkg.LogDebug(pkg.ComponentHAL, "i2c adapter opened",
		"bus", bus,
		"addr", fmt.Sprintf("0x%02X", addr),
		"funcs", fmt.Sprintf("0x%08X", funcs))

	return &I2CBus{bus: bus, addr: addr, funcs: funcs, fd: fd}, nil
}

// Probe reports the transaction capabilities derived from the adapter's
// functionality mask. The interrupt line travels separately over GPIO, so
// no bus ever reports [hal.CapLine].
func (b *I2CBus) Probe(ctx context.Context) (hal.Caps, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, pkg.ErrBusClosed
	}

	var caps hal.Caps
	if b.funcs&(I2CFuncSMBusReadByteData|I2CFuncSMBusReadI2CBlock) != 0 {
		caps |= hal.CapRead
	}
	if b.funcs&(I2CFuncSMBusWriteByteData|I2CFuncSMBusWriteI2CBlock) != 0 {
		caps |= hal.CapWrite
	}
	if b.funcs&I2CFuncSMBusReadI2CBlock != 0 && b.funcs&I2CFuncSMBusWriteI2CBlock != 0 {
		caps |= hal.CapBlock
	}
	return caps, nil
}

// ReadReg reads len(buf) bytes starting at register offset reg. The
// transfer is chunked at SMBusBlockMax; ctx is checked between chunks,
// not during a chunk's ioctl.
func (b *I2CBus) ReadReg(ctx context.Context, reg uint8, buf []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return pkg.ErrBusClosed
	}

	for len(buf) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := len(buf)
		if n > SMBusBlockMax {
			n = SMBusBlockMax
		}
		if err := b.readChunk(reg, buf[:n]); err != nil {
			return err
		}
		reg += uint8(n)
		buf = buf[n:]
	}
	return nil
}

// WriteReg writes len(data) bytes starting at register offset reg, with
// the same chunking and ctx rules as ReadReg.
func (b *I2CBus) WriteReg(ctx context.Context, reg uint8, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return pkg.ErrBusClosed
	}

	for len(data) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := len(data)
		if n > SMBusBlockMax {
			n = SMBusBlockMax
		}
		if err := b.writeChunk(reg, data[:n]); err != nil {
			return err
		}
		reg += uint8(n)
		data = data[n:]
	}
	return nil
}

// Close releases the adapter descriptor. Close is idempotent.
func (b *I2CBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return closeDevice(b.fd)
}

// String identifies the adapter and address, matching the default profile
// label format.
func (b *I2CBus) String() string {
	return fmt.Sprintf("i2c-%d:0x%02X", b.bus, b.addr)
}

// readChunk moves up to SMBusBlockMax bytes in one transaction. Caller
// holds b.mu and has bounded len(buf).
func (b *I2CBus) readChunk(reg uint8, buf []byte) error {
	if b.funcs&I2CFuncSMBusReadI2CBlock == 0 {
		return b.readBytes(reg, buf)
	}

	// union i2c_smbus_data as block transfer: count byte, then data.
	var block [smbusDataSize]byte
	block[0] = byte(len(buf))
	data := smbusIoctlData{
		readWrite: SMBusRead,
		command:   reg,
		size:      SMBusI2CBlockData,
		data:      unsafe.Pointer(&block[0]),
	}
	if err := ioctlRaw(b.fd, I2CSMBus, uintptr(unsafe.Pointer(&data))); err != nil {
		return fmt.Errorf("smbus block read reg 0x%02X len %d: %w", reg, len(buf), err)
	}
	if _, err := blockCount(&block, len(buf)); err != nil {
		return fmt.Errorf("smbus block read reg 0x%02X: %w", reg, err)
	}
	copy(buf, block[1:1+len(buf)])
	return nil
}

// blockCount validates the byte count the adapter reported in the first
// cell of the staging union after a block read. A count past SMBusBlockMax
// means the kernel overran the staging buffer; a count below the requested
// length is a transfer the adapter completed short without reporting an
// error of its own.
func blockCount(block *[smbusDataSize]byte, want int) (int, error) {
	n := int(block[0])
	if n > SMBusBlockMax {
		return 0, fmt.Errorf("adapter staged %d bytes past the block limit: %w", n, pkg.ErrBufferFault)
	}
	if n < want {
		return n, fmt.Errorf("adapter moved %d of %d bytes: %w", n, want, pkg.ErrShortTransfer)
	}
	return n, nil
}

// writeChunk moves up to SMBusBlockMax bytes in one transaction. Caller
// holds b.mu and has bounded len(data).
func (b *I2CBus) writeChunk(reg uint8, payload []byte) error {
	if b.funcs&I2CFuncSMBusWriteI2CBlock == 0 {
		return b.writeBytes(reg, payload)
	}

	var block [smbusDataSize]byte
	block[0] = byte(len(payload))
	copy(block[1:], payload)
	data := smbusIoctlData{
		readWrite: SMBusWrite,
		command:   reg,
		size:      SMBusI2CBlockData,
		data:      unsafe.Pointer(&block[0]),
	}
	if err := ioctlRaw(b.fd, I2CSMBus, uintptr(unsafe.Pointer(&data))); err != nil {
		return fmt.Errorf("smbus block write reg 0x%02X len %d: %w", reg, len(payload), err)
	}
	return nil
}

// readBytes is the byte-data fallback for adapters without I2C block
// support: one transaction per register.
func (b *I2CBus) readBytes(reg uint8, buf []byte) error {
	for i := range buf {
		var val [smbusDataSize]byte
		data := smbusIoctlData{
			readWrite: SMBusRead,
			command:   reg + uint8(i),
			size:      SMBusByteData,
			data:      unsafe.Pointer(&val[0]),
		}
		if err := ioctlRaw(b.fd, I2CSMBus, uintptr(unsafe.Pointer(&data))); err != nil {
			return fmt.Errorf("smbus byte read reg 0x%02X: %w", reg+uint8(i), err)
		}
		buf[i] = val[0]
	}
	return nil
}

// writeBytes is the byte-data fallback for adapters without I2C block
// support: one transaction per register.
func (b *I2CBus) writeBytes(reg uint8, payload []byte) error {
	for i, v := range payload {
		var val [smbusDataSize]byte
		val[0] = v
		data := smbusIoctlData{
			readWrite: SMBusWrite,
			command:   reg + uint8(i),
			size:      SMBusByteData,
			data:      unsafe.Pointer(&val[0]),
		}
		if err := ioctlRaw(b.fd, I2CSMBus, uintptr(unsafe.Pointer(&data))); err != nil {
			return fmt.Errorf("smbus byte write reg 0x%02X: %w", reg+uint8(i), err)
		}
	}
	return nil
}

// Compile-time interface satisfaction check.
var _ hal.Bus = (*I2CBus)(nil)
