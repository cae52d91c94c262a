//go:build linux && (386 || amd64)

package linux

// epollEvent matches the kernel's struct epoll_event, which x86 packs to
// 12 bytes.
type epollEvent struct {
	events uint32
	data   [8]byte // union: ptr, fd, u32, u64
}
