package linux

// =============================================================================
// I2C Character Device ioctls (linux/i2c-dev.h)
// =============================================================================

// ioctl request numbers for /dev/i2c-N.
const (
	I2CRetries    = 0x0701 // Number of times a device address should be polled
	I2CTimeout    = 0x0702 // Set timeout in units of 10 ms
	I2CSlave      = 0x0703 // Set peripheral address
	I2CFuncs      = 0x0705 // Get the adapter functionality mask
	I2CSlaveForce = 0x0706 // Set peripheral address even if already claimed
	I2CSMBus      = 0x0720 // Perform an SMBus transfer
)

// =============================================================================
// Adapter Functionality Bits (linux/i2c.h)
// =============================================================================

// Functionality flags reported by I2CFuncs.
const (
	I2CFuncI2C                = 0x00000001
	I2CFuncSMBusReadByteData  = 0x00080000
	I2CFuncSMBusWriteByteData = 0x00100000
	I2CFuncSMBusReadI2CBlock  = 0x04000000
	I2CFuncSMBusWriteI2CBlock = 0x08000000
)

// =============================================================================
// SMBus Transaction Constants
// =============================================================================

// Transfer direction for an SMBus ioctl.
const (
	SMBusWrite = 0
	SMBusRead  = 1
)

// Transaction sizes for an SMBus ioctl.
const (
	SMBusByteData     = 2 // One data byte at a command register
	SMBusI2CBlockData = 8 // Up to SMBusBlockMax bytes at a command register
)

// SMBusBlockMax is the largest block transferable in one SMBus transaction.
// Longer register windows are moved in chunks of this size.
const SMBusBlockMax = 32

// smbusDataSize is the byte size of the kernel's union i2c_smbus_data:
// block[SMBusBlockMax + 2].
const smbusDataSize = SMBusBlockMax + 2

// =============================================================================
// GPIO Character Device uAPI v2 (linux/gpio.h)
// =============================================================================

// Fixed array sizes in the v2 line request structures.
const (
	GPIOV2LinesMax        = 64 // Maximum lines per request
	GPIOMaxNameSize       = 32 // Consumer and line name length
	GPIOV2LineNumAttrsMax = 10 // Maximum config attributes per request
)

// GPIOV2GetLineIoctl is GPIO_V2_GET_LINE_IOCTL:
// _IOWR(0xB4, 0x07, struct gpio_v2_line_request).
const GPIOV2GetLineIoctl = 0xC250B407

// Line request flags.
const (
	GPIOV2LineFlagInput       = 1 << 2
	GPIOV2LineFlagEdgeRising  = 1 << 4
	GPIOV2LineFlagEdgeFalling = 1 << 5
)

// Edge event identifiers carried in struct gpio_v2_line_event.
const (
	GPIOV2LineEventRisingEdge  = 1
	GPIOV2LineEventFallingEdge = 2
)

// Byte sizes of the kernel structures crossed by the GPIO uAPI. These must
// match the Go mirror structs exactly; the ioctl request number encodes
// LineRequestSize.
const (
	LineRequestSize = 592
	LineEventSize   = 48
)

// GPIOConsumer is the consumer label attached to requested lines, visible
// in gpioinfo output.
const GPIOConsumer = "softregs"

// =============================================================================
// System Paths
// =============================================================================

// DevI2CPrefix is the devfs path prefix for I2C adapter nodes.
const DevI2CPrefix = "/dev/i2c-"

// DevGPIOPrefix is the devfs path prefix for GPIO chip nodes.
const DevGPIOPrefix = "/dev/gpiochip"

// =============================================================================
// Polling Constants
// =============================================================================

// Epoll event flags.
const (
	EPOLLIN  = 0x001
	EPOLLERR = 0x008
	EPOLLHUP = 0x010
)

// MaxEpollEvents is the maximum events to retrieve per epoll_wait call.
const MaxEpollEvents = 4

// EdgeFlags maps a profile edge selector to GPIO v2 line request flags.
// An empty or unknown selector defaults to rising.
func EdgeFlags(edge string) uint64 {
	switch edge {
	case "falling":
		return GPIOV2LineFlagEdgeFalling
	case "both":
		return GPIOV2LineFlagEdgeRising | GPIOV2LineFlagEdgeFalling
	default:
		return GPIOV2LineFlagEdgeRising
	}
}
