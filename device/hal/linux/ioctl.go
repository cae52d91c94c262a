//go:build linux

package linux

import (
	"syscall"
	"unsafe"
)

// =============================================================================
// Raw Syscall Wrappers
// =============================================================================

// atFDCWD is AT_FDCWD, resolving paths relative to the working directory.
const atFDCWD = -0x64

// openDevice opens a character device node for read/write access.
func openDevice(path string) (int, error) {
	pathBytes := make([]byte, len(path)+1)
	copy(pathBytes, path)

	dirfd := atFDCWD
	fd, _, errno := syscall.Syscall6(
		syscall.SYS_OPENAT,
		uintptr(dirfd),
		uintptr(unsafe.Pointer(&pathBytes[0])),
		uintptr(syscall.O_RDWR|syscall.O_CLOEXEC),
		0, 0, 0,
	)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

// closeDevice closes a device file descriptor.
func closeDevice(fd int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_CLOSE, uintptr(fd), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlRaw performs a raw ioctl syscall.
func ioctlRaw(fd int, req uintptr, arg uintptr) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// =============================================================================
// Epoll Wrappers
// =============================================================================

// epollEvent is defined per architecture; the kernel packs the struct on
// x86 and pads it to 16 bytes everywhere else.

// epollCreate1 creates an epoll instance.
func epollCreate1(flags int) (int, error) {
	fd, _, errno := syscall.Syscall(syscall.SYS_EPOLL_CREATE1, uintptr(flags), 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

// epollCtl controls an epoll instance.
func epollCtl(epfd, op, fd int, event *epollEvent) error {
	var eventPtr uintptr
	if event != nil {
		eventPtr = uintptr(unsafe.Pointer(event))
	}
	_, _, errno := syscall.Syscall6(
		syscall.SYS_EPOLL_CTL,
		uintptr(epfd),
		uintptr(op),
		uintptr(fd),
		eventPtr,
		0, 0,
	)
	if errno != 0 {
		return errno
	}
	return nil
}

// epollWait waits for events on an epoll instance.
func epollWait(epfd int, events []epollEvent, timeout int) (int, error) {
	n, _, errno := syscall.Syscall6(
		syscall.SYS_EPOLL_PWAIT,
		uintptr(epfd),
		uintptr(unsafe.Pointer(&events[0])),
		uintptr(len(events)),
		uintptr(timeout),
		0, 0,
	)
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}

// eventfdCreate creates an eventfd used to wake a blocked epoll wait.
func eventfdCreate(initval uint, flags int) (int, error) {
	fd, _, errno := syscall.Syscall(syscall.SYS_EVENTFD2, uintptr(initval), uintptr(flags), 0)
	if errno != 0 {
		return -1, errno
	}
	return int(fd), nil
}

// addEpollFD registers fd with the epoll instance, tagging events with fd.
func addEpollFD(epfd, fd int, events uint32) error {
	event := epollEvent{events: events}
	*(*int)(unsafe.Pointer(&event.data)) = fd
	return epollCtl(epfd, syscall.EPOLL_CTL_ADD, fd, &event)
}

// =============================================================================
// Error Helpers
// =============================================================================

// isNoDevice returns true if the error indicates the device went away.
func isNoDevice(err error) bool {
	if errno, ok := err.(syscall.Errno); ok {
		return errno == syscall.ENODEV || errno == syscall.ENXIO
	}
	return false
}

// isAgain returns true if the error indicates try again (EAGAIN).
func isAgain(err error) bool {
	if errno, ok := err.(syscall.Errno); ok {
		return errno == syscall.EAGAIN
	}
	return false
}
