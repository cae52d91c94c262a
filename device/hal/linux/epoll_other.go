//go:build linux && !386 && !amd64

package linux

// epollEvent matches the kernel's struct epoll_event, padded to 16 bytes
// on architectures that align 64-bit fields naturally.
type epollEvent struct {
	events uint32
	_      uint32
	data   [8]byte // union: ptr, fd, u32, u64
}
