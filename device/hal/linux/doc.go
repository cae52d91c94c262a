// Package linux implements the register-window transport on Linux hosts.
//
// The backend drives a peripheral attached to an I2C adapter through the
// kernel's i2c-dev interface and receives its interrupt edges through the
// GPIO character device. Both paths use raw system calls against the
// character devices; no helper daemons or out-of-tree drivers are involved.
//
// # I2C Transport
//
// [I2CBus] carries register transactions over /dev/i2c-N using SMBus block
// transfers. Transfers longer than the 32-byte SMBus block limit are split
// into consecutive chunks, advancing the register offset with each chunk so
// the peripheral's address counter stays in step. Adapters without block
// transfer support fall back to byte-data transactions at one register per
// transfer.
//
// Probe reports capabilities from the adapter's functionality mask, so a
// device core can reject adapters that cannot carry its transactions before
// any traffic is issued.
//
// # Interrupt Line
//
// [GPIOLine] delivers edges from a GPIO character device using the v2 line
// request interface. Arming requests the line with edge detection and starts
// a watcher goroutine that multiplexes the line's event stream with an
// eventfd through epoll. Disarming writes the eventfd to unblock the watcher,
// which closes its descriptors and exits; the kernel releases the line when
// the request descriptor closes.
//
// The installed handler runs on the watcher goroutine once per kernel edge
// event and must follow the [hal.Handler] discipline.
//
// # Profiles
//
// [Profile] gathers the host coordinates of one peripheral in a YAML
// document:
//
//	label: front-panel
//	i2c:
//	  bus: 1
//	  addr: 0x49
//	gpio:
//	  chip: /dev/gpiochip0
//	  line: 17
//	  edge: rising
//
// [LoadProfile] parses and validates the document, and [Profile.Open] turns
// it into live [hal.Bus] and [hal.Line] handles. A profile without a gpio
// section yields a nil line; the device then runs without event delivery.
//
// # Requirements
//
// The process needs read-write access to the selected /dev/i2c-N and
// /dev/gpiochipN nodes, which usually means membership in the i2c and gpio
// groups or a matching udev rule. The kernel must be built with I2C_CHARDEV
// and the GPIO character device (any modern distribution kernel qualifies).
//
// # Example
//
//	profile, err := linux.LoadProfile("front-panel.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	bus, line, err := profile.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	table := device.NewTable(device.DefaultSlots)
//	handle, err := table.Attach(ctx, bus, line)
package linux
