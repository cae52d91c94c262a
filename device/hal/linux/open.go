//go:build linux

package linux

import (
	"github.com/ardnew/softregs/device/hal"
	"github.com/ardnew/softregs/pkg"
)

// Open realizes the profile as live transport handles. The returned line
// is nil when the profile configures no GPIO; the device then runs
// without event delivery.
func (p *Profile) Open() (hal.Bus, hal.Line, error) {
	bus, err := OpenI2C(p.I2C.Bus, p.I2C.Addr)
	if err != nil {
		return nil, nil, err
	}
	if p.GPIO == nil {
		pkg.LogInfo(pkg.ComponentHAL, "transport open",
			"label", p.Label, "bus", bus.String())
		// Return a plain nil interface, not a typed nil, so callers can
		// compare the line against nil directly.
		return bus, nil, nil
	}

	line, err := OpenGPIO(p.GPIO.DevicePath(), p.GPIO.Line, p.GPIO.Edge)
	if err != nil {
		bus.Close()
		return nil, nil, err
	}

	pkg.LogInfo(pkg.ComponentHAL, "transport open",
		"label", p.Label,
		"bus", bus.String(),
		"line", line.String())
	return bus, line, nil
}
