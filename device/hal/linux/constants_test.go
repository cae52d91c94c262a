package linux

import (
	"testing"
)

// =============================================================================
// I2C Constant Tests
// =============================================================================

func TestI2CIoctlConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    uintptr
		expected uintptr
	}{
		{"I2CRetries", I2CRetries, 0x0701},
		{"I2CTimeout", I2CTimeout, 0x0702},
		{"I2CSlave", I2CSlave, 0x0703},
		{"I2CFuncs", I2CFuncs, 0x0705},
		{"I2CSlaveForce", I2CSlaveForce, 0x0706},
		{"I2CSMBus", I2CSMBus, 0x0720},
	}

	for _, tt := range tests {
		if tt.value != tt.expected {
			t.Errorf("%s = 0x%04X, want 0x%04X", tt.name, tt.value, tt.expected)
		}
	}
}

func TestSMBusBlockMax(t *testing.T) {
	// The SMBus specification caps block transfers at 32 data bytes.
	if SMBusBlockMax != 32 {
		t.Errorf("SMBusBlockMax = %d, want 32", SMBusBlockMax)
	}
	// The kernel's union carries a count byte ahead of the block.
	if smbusDataSize != SMBusBlockMax+2 {
		t.Errorf("smbusDataSize = %d, want %d", smbusDataSize, SMBusBlockMax+2)
	}
}

func TestSMBusTransactionConstants(t *testing.T) {
	if SMBusWrite != 0 || SMBusRead != 1 {
		t.Errorf("SMBusWrite, SMBusRead = %d, %d, want 0, 1", SMBusWrite, SMBusRead)
	}
	if SMBusByteData != 2 {
		t.Errorf("SMBusByteData = %d, want 2", SMBusByteData)
	}
	if SMBusI2CBlockData != 8 {
		t.Errorf("SMBusI2CBlockData = %d, want 8", SMBusI2CBlockData)
	}
}

func TestI2CFuncBits(t *testing.T) {
	// Functionality bits must be distinct so Probe can map them to
	// capabilities independently.
	bits := []uint64{
		I2CFuncI2C,
		I2CFuncSMBusReadByteData,
		I2CFuncSMBusWriteByteData,
		I2CFuncSMBusReadI2CBlock,
		I2CFuncSMBusWriteI2CBlock,
	}
	var seen uint64
	for _, b := range bits {
		if b == 0 {
			t.Error("functionality bit is zero")
		}
		if seen&b != 0 {
			t.Errorf("functionality bit 0x%08X overlaps another", b)
		}
		seen |= b
	}
}

// =============================================================================
// GPIO Constant Tests
// =============================================================================

func TestGPIOV2GetLineIoctl(t *testing.T) {
	// _IOWR(0xB4, 0x07, struct gpio_v2_line_request) decomposed into the
	// kernel's dir:size:type:nr ioctl encoding.
	const (
		dir  = (GPIOV2GetLineIoctl >> 30) & 0x3
		size = (GPIOV2GetLineIoctl >> 16) & 0x3FFF
		typ  = (GPIOV2GetLineIoctl >> 8) & 0xFF
		nr   = GPIOV2GetLineIoctl & 0xFF
	)
	if dir != 3 {
		t.Errorf("direction = %d, want 3 (read-write)", dir)
	}
	if size != LineRequestSize {
		t.Errorf("size field = %d, want %d", size, LineRequestSize)
	}
	if typ != 0xB4 {
		t.Errorf("type = 0x%02X, want 0xB4", typ)
	}
	if nr != 0x07 {
		t.Errorf("nr = 0x%02X, want 0x07", nr)
	}
}

func TestGPIOLineFlags(t *testing.T) {
	if GPIOV2LineFlagInput != 1<<2 {
		t.Errorf("GPIOV2LineFlagInput = 0x%X, want 0x%X", GPIOV2LineFlagInput, 1<<2)
	}
	if GPIOV2LineFlagEdgeRising != 1<<4 {
		t.Errorf("GPIOV2LineFlagEdgeRising = 0x%X, want 0x%X", GPIOV2LineFlagEdgeRising, 1<<4)
	}
	if GPIOV2LineFlagEdgeFalling != 1<<5 {
		t.Errorf("GPIOV2LineFlagEdgeFalling = 0x%X, want 0x%X", GPIOV2LineFlagEdgeFalling, 1<<5)
	}
}

func TestEdgeFlags(t *testing.T) {
	tests := []struct {
		edge string
		want uint64
	}{
		{"", GPIOV2LineFlagEdgeRising},
		{"rising", GPIOV2LineFlagEdgeRising},
		{"falling", GPIOV2LineFlagEdgeFalling},
		{"both", GPIOV2LineFlagEdgeRising | GPIOV2LineFlagEdgeFalling},
	}

	for _, tt := range tests {
		if got := EdgeFlags(tt.edge); got != tt.want {
			t.Errorf("EdgeFlags(%q) = 0x%X, want 0x%X", tt.edge, got, tt.want)
		}
	}
}

func TestGPIOConsumer(t *testing.T) {
	if GPIOConsumer == "" {
		t.Error("GPIOConsumer is empty")
	}
	if len(GPIOConsumer) >= GPIOMaxNameSize {
		t.Errorf("GPIOConsumer %q does not fit in %d bytes with NUL", GPIOConsumer, GPIOMaxNameSize)
	}
}

// =============================================================================
// Path Constant Tests
// =============================================================================

func TestDevicePrefixes(t *testing.T) {
	if DevI2CPrefix != "/dev/i2c-" {
		t.Errorf("DevI2CPrefix = %q, want %q", DevI2CPrefix, "/dev/i2c-")
	}
	if DevGPIOPrefix != "/dev/gpiochip" {
		t.Errorf("DevGPIOPrefix = %q, want %q", DevGPIOPrefix, "/dev/gpiochip")
	}
}
