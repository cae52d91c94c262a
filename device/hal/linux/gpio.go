//go:build linux

package linux

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
)

// =============================================================================
// GPIO uAPI v2 Structures
// =============================================================================

// lineAttribute matches the kernel's struct gpio_v2_line_attribute.
type lineAttribute struct {
	id      uint32
	padding uint32
	value   uint64 // union: flags, values, debounce_period_us
}

// lineConfigAttribute matches the kernel's struct gpio_v2_line_config_attribute.
type lineConfigAttribute struct {
	attr lineAttribute
	mask uint64
}

// lineConfig matches the kernel's struct gpio_v2_line_config.
type lineConfig struct {
	flags    uint64
	numAttrs uint32
	padding  [5]uint32
	attrs    [GPIOV2LineNumAttrsMax]lineConfigAttribute
}

// lineRequest matches the kernel's struct gpio_v2_line_request.
// Its size is encoded in GPIOV2GetLineIoctl.
type lineRequest struct {
	offsets         [GPIOV2LinesMax]uint32
	consumer        [GPIOMaxNameSize]byte
	config          lineConfig
	numLines        uint32
	eventBufferSize uint32
	padding         [5]uint32
	fd              int32
}

// lineEvent matches the kernel's struct gpio_v2_line_event.
type lineEvent struct {
	timestamp uint64 // Nanoseconds, monotonic clock
	id        uint32 // Rising or falling edge
	offset    uint32
	seqno     uint32
	lineSeqno uint32
	padding   [6]uint32
}

// =============================================================================
// GPIOLine
// =============================================================================

// GPIOLine implements [hal.Line] over a GPIO character device. Arming
// requests the line with edge detection and starts a watcher goroutine
// that delivers one handler call per edge event; disarming releases the
// line, which stops kernel-side edge capture.
type GPIOLine struct {
	chip   string
	offset uint32
	edge   string

	mu     sync.Mutex
	armed  bool
	wakeFD int           // eventfd that unblocks the watcher for disarm
	done   chan struct{} // closed when the watcher exits
}

// OpenGPIO prepares the line at the given offset on a GPIO chip device
// such as /dev/gpiochip0. edge selects which edges deliver events:
// "rising" (the default for empty input), "falling", or "both". The line
// itself is not requested from the kernel until Arm.
func OpenGPIO(chip string, offset uint32, edge string) (*GPIOLine, error) {
	// Probe the chip node now so a bad path fails at setup, not at arm.
	fd, err := openDevice(chip)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", chip, err)
	}
	closeDevice(fd)

	return &GPIOLine{chip: chip, offset: offset, edge: edge}, nil
}

// Arm requests the line with edge detection and installs fn as the edge
// handler. fn runs on the watcher goroutine, once per delivered edge.
func (l *GPIOLine) Arm(fn hal.Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.armed {
		return pkg.ErrLineArmed
	}

	chipFD, err := openDevice(l.chip)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.chip, err)
	}
	defer closeDevice(chipFD)

	var req lineRequest
	req.offsets[0] = l.offset
	req.numLines = 1
	req.config.flags = GPIOV2LineFlagInput | EdgeFlags(l.edge)
	copy(req.consumer[:], GPIOConsumer)

	if err := ioctlRaw(chipFD, GPIOV2GetLineIoctl, uintptr(unsafe.Pointer(&req))); err != nil {
		return fmt.Errorf("request line %d on %s: %w", l.offset, l.chip, err)
	}
	lineFD := int(req.fd)

	epfd, err := epollCreate1(syscall.EPOLL_CLOEXEC)
	if err != nil {
		closeDevice(lineFD)
		return err
	}
	wakeFD, err := eventfdCreate(0, syscall.O_NONBLOCK|syscall.O_CLOEXEC)
	if err != nil {
		closeDevice(epfd)
		closeDevice(lineFD)
		return err
	}
	if err := addEpollFD(epfd, lineFD, EPOLLIN); err != nil {
		closeDevice(wakeFD)
		closeDevice(epfd)
		closeDevice(lineFD)
		return err
	}
	if err := addEpollFD(epfd, wakeFD, EPOLLIN); err != nil {
		closeDevice(wakeFD)
		closeDevice(epfd)
		closeDevice(lineFD)
		return err
	}

	l.armed = true
	l.wakeFD = wakeFD
	l.done = make(chan struct{})

	go l.watch(lineFD, epfd, wakeFD, fn, l.done)

	pkg.LogDebug(pkg.ComponentHAL, "gpio line armed",
		"chip", l.chip,
		"line", l.offset,
		"edge", l.edge)
	return nil
}

// Disarm stops edge delivery and releases the line. Disarming an unarmed
// line is a no-op.
func (l *GPIOLine) Disarm() error {
	l.mu.Lock()
	if !l.armed {
		l.mu.Unlock()
		return nil
	}
	l.armed = false
	wakeFD, done := l.wakeFD, l.done
	l.wakeFD, l.done = -1, nil
	l.mu.Unlock()

	// Unblock the watcher; it owns the descriptors and closes them on the
	// way out.
	var one [8]byte
	one[0] = 1
	syscall.Write(wakeFD, one[:])
	<-done

	pkg.LogDebug(pkg.ComponentHAL, "gpio line disarmed",
		"chip", l.chip,
		"line", l.offset)
	return nil
}

// watch is the line's event goroutine. It blocks in epoll until the line
// delivers edge events or the disarm wake fires, invoking fn once per
// event. All three descriptors are closed when it exits.
func (l *GPIOLine) watch(lineFD, epfd, wakeFD int, fn hal.Handler, done chan<- struct{}) {
	defer close(done)
	defer closeDevice(wakeFD)
	defer closeDevice(epfd)
	defer closeDevice(lineFD)

	var events [MaxEpollEvents]epollEvent
	buf := make([]byte, LineEventSize*16)

	for {
		n, err := epollWait(epfd, events[:], -1)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			pkg.LogError(pkg.ComponentHAL, "gpio epoll wait failed",
				"chip", l.chip,
				"line", l.offset,
				"error", err)
			return
		}

		for i := 0; i < n; i++ {
			fd := *(*int)(unsafe.Pointer(&events[i].data))
			if fd == wakeFD {
				return
			}

			m, err := syscall.Read(lineFD, buf)
			if err != nil {
				if isAgain(err) {
					continue
				}
				if isNoDevice(err) {
					pkg.LogWarn(pkg.ComponentHAL, "gpio chip removed",
						"chip", l.chip,
						"line", l.offset)
					return
				}
				pkg.LogError(pkg.ComponentHAL, "gpio event read failed",
					"chip", l.chip,
					"line", l.offset,
					"error", err)
				return
			}

			for off := 0; off+LineEventSize <= m; off += LineEventSize {
				ev := (*lineEvent)(unsafe.Pointer(&buf[off]))
				pkg.LogDebug(pkg.ComponentHAL, "gpio edge",
					"chip", l.chip,
					"line", ev.offset,
					"seq", ev.seqno)
				fn()
			}
		}
	}
}

// String identifies the chip and line offset.
func (l *GPIOLine) String() string {
	return fmt.Sprintf("%s:%d", l.chip, l.offset)
}

// Compile-time interface satisfaction check.
var _ hal.Line = (*GPIOLine)(nil)
