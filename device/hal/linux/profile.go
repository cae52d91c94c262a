package linux

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes how to reach one peripheral on a Linux host: the I2C
// adapter and address carrying its register window, and optionally the
// GPIO line carrying its service requests.
//
//	label: front-panel
//	i2c:
//	  bus: 1
//	  addr: 0x49
//	gpio:
//	  chip: /dev/gpiochip0
//	  line: 17
//	  edge: rising
//	capture: /var/log/softregs/front-panel.rlog
type Profile struct {
	// Label tags logs and capture events for this device. Defaults to
	// "i2c-<bus>:0x<addr>" when empty.
	Label string `yaml:"label,omitempty"`

	// I2C selects the bus adapter and peripheral address.
	I2C I2CConfig `yaml:"i2c"`

	// GPIO selects the interrupt line. Omit it and the device operates
	// without event delivery.
	GPIO *GPIOConfig `yaml:"gpio,omitempty"`

	// Capture is an optional path for a transport capture file.
	Capture string `yaml:"capture,omitempty"`
}

// I2CConfig locates the peripheral on an I2C adapter.
type I2CConfig struct {
	// Bus is the adapter number N in /dev/i2c-N.
	Bus int `yaml:"bus"`

	// Addr is the peripheral's 7-bit address.
	Addr uint16 `yaml:"addr"`
}

// GPIOConfig locates the peripheral's interrupt line.
type GPIOConfig struct {
	// Chip is a bare chip number N, selecting /dev/gpiochipN, or an
	// absolute character device path such as /dev/gpiochip0.
	Chip string `yaml:"chip"`

	// Line is the line offset on the chip.
	Line uint32 `yaml:"line"`

	// Edge selects which edges deliver events: "rising" (default),
	// "falling", or "both".
	Edge string `yaml:"edge,omitempty"`
}

// DevicePath returns the chip's character device node. A bare chip number
// composes with DevGPIOPrefix the way I2CConfig.Bus composes with
// DevI2CPrefix; absolute paths pass through for symlinked nodes.
func (g *GPIOConfig) DevicePath() string {
	if strings.HasPrefix(g.Chip, "/") {
		return g.Chip
	}
	return DevGPIOPrefix + g.Chip
}

// LoadProfile reads and validates a YAML profile. A missing label is
// filled with DefaultLabel.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	if p.Label == "" {
		p.Label = p.DefaultLabel()
	}
	return &p, nil
}

// Validate checks the profile for values the kernel interfaces would
// reject.
func (p *Profile) Validate() error {
	if p.I2C.Bus < 0 {
		return fmt.Errorf("i2c bus %d out of range", p.I2C.Bus)
	}
	if p.I2C.Addr < 0x08 || p.I2C.Addr > 0x77 {
		return fmt.Errorf("i2c address 0x%02X outside the 7-bit device range", p.I2C.Addr)
	}
	if p.GPIO != nil {
		if p.GPIO.Chip == "" {
			return fmt.Errorf("gpio chip required")
		}
		if !strings.HasPrefix(p.GPIO.Chip, "/") {
			if _, err := strconv.Atoi(p.GPIO.Chip); err != nil {
				return fmt.Errorf("gpio chip %q: want a chip number or an absolute device path", p.GPIO.Chip)
			}
		}
		switch p.GPIO.Edge {
		case "", "rising", "falling", "both":
		default:
			return fmt.Errorf("gpio edge %q not one of rising, falling, both", p.GPIO.Edge)
		}
	}
	return nil
}

// DefaultLabel derives a transport label from the I2C coordinates.
func (p *Profile) DefaultLabel() string {
	return fmt.Sprintf("i2c-%d:0x%02X", p.I2C.Bus, p.I2C.Addr)
}
