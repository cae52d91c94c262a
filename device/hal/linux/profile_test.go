package linux

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
label: front-panel
i2c:
  bus: 1
  addr: 0x49
gpio:
  chip: /dev/gpiochip0
  line: 17
  edge: rising
capture: /tmp/front-panel.rlog
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if p.Label != "front-panel" {
		t.Errorf("Label = %q, want %q", p.Label, "front-panel")
	}
	if p.I2C.Bus != 1 {
		t.Errorf("I2C.Bus = %d, want 1", p.I2C.Bus)
	}
	if p.I2C.Addr != 0x49 {
		t.Errorf("I2C.Addr = 0x%02X, want 0x49", p.I2C.Addr)
	}
	if p.GPIO == nil {
		t.Fatal("GPIO = nil, want configured line")
	}
	if p.GPIO.Chip != "/dev/gpiochip0" {
		t.Errorf("GPIO.Chip = %q, want %q", p.GPIO.Chip, "/dev/gpiochip0")
	}
	if p.GPIO.Line != 17 {
		t.Errorf("GPIO.Line = %d, want 17", p.GPIO.Line)
	}
	if p.GPIO.Edge != "rising" {
		t.Errorf("GPIO.Edge = %q, want %q", p.GPIO.Edge, "rising")
	}
	if p.Capture != "/tmp/front-panel.rlog" {
		t.Errorf("Capture = %q, want %q", p.Capture, "/tmp/front-panel.rlog")
	}
}

func TestLoadProfile_MinimalDocument(t *testing.T) {
	path := writeProfile(t, `
i2c:
  bus: 0
  addr: 0x3C
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if p.GPIO != nil {
		t.Errorf("GPIO = %+v, want nil", p.GPIO)
	}
	if p.Label != "i2c-0:0x3C" {
		t.Errorf("Label = %q, want default %q", p.Label, "i2c-0:0x3C")
	}
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadProfile() error = nil, want missing-file error")
	}
}

func TestLoadProfile_Malformed(t *testing.T) {
	path := writeProfile(t, "i2c: [not, a, mapping\n")
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("LoadProfile() error = nil, want parse error")
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name:    "minimal valid",
			profile: Profile{I2C: I2CConfig{Bus: 0, Addr: 0x3C}},
		},
		{
			name: "with gpio",
			profile: Profile{
				I2C:  I2CConfig{Bus: 1, Addr: 0x49},
				GPIO: &GPIOConfig{Chip: "/dev/gpiochip0", Line: 17, Edge: "both"},
			},
		},
		{
			name: "gpio default edge",
			profile: Profile{
				I2C:  I2CConfig{Bus: 1, Addr: 0x49},
				GPIO: &GPIOConfig{Chip: "/dev/gpiochip0", Line: 4},
			},
		},
		{
			name:    "negative bus",
			profile: Profile{I2C: I2CConfig{Bus: -1, Addr: 0x3C}},
			wantErr: true,
		},
		{
			name:    "address below device range",
			profile: Profile{I2C: I2CConfig{Bus: 0, Addr: 0x07}},
			wantErr: true,
		},
		{
			name:    "address above device range",
			profile: Profile{I2C: I2CConfig{Bus: 0, Addr: 0x78}},
			wantErr: true,
		},
		{
			name: "gpio without chip",
			profile: Profile{
				I2C:  I2CConfig{Bus: 0, Addr: 0x3C},
				GPIO: &GPIOConfig{Line: 17},
			},
			wantErr: true,
		},
		{
			name: "gpio chip by number",
			profile: Profile{
				I2C:  I2CConfig{Bus: 0, Addr: 0x3C},
				GPIO: &GPIOConfig{Chip: "2", Line: 5},
			},
		},
		{
			name: "gpio chip relative name",
			profile: Profile{
				I2C:  I2CConfig{Bus: 0, Addr: 0x3C},
				GPIO: &GPIOConfig{Chip: "gpiochip0", Line: 5},
			},
			wantErr: true,
		},
		{
			name: "unknown edge",
			profile: Profile{
				I2C:  I2CConfig{Bus: 0, Addr: 0x3C},
				GPIO: &GPIOConfig{Chip: "/dev/gpiochip0", Edge: "level"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadProfile_RejectsInvalid(t *testing.T) {
	path := writeProfile(t, `
i2c:
  bus: 0
  addr: 0x03
`)
	if _, err := LoadProfile(path); err == nil {
		t.Fatal("LoadProfile() error = nil, want validation error")
	}
}

func TestLoadProfile_ChipNumber(t *testing.T) {
	path := writeProfile(t, `
i2c:
  bus: 1
  addr: 0x49
gpio:
  chip: "2"
  line: 5
`)

	p, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if got := p.GPIO.DevicePath(); got != "/dev/gpiochip2" {
		t.Errorf("DevicePath() = %q, want %q", got, "/dev/gpiochip2")
	}
}

func TestGPIODevicePath(t *testing.T) {
	tests := []struct {
		chip string
		want string
	}{
		{"0", "/dev/gpiochip0"},
		{"12", "/dev/gpiochip12"},
		{"/dev/gpiochip3", "/dev/gpiochip3"},
		{"/dev/gpio-by-name/expander", "/dev/gpio-by-name/expander"},
	}

	for _, tt := range tests {
		t.Run(tt.chip, func(t *testing.T) {
			g := GPIOConfig{Chip: tt.chip}
			if got := g.DevicePath(); got != tt.want {
				t.Errorf("DevicePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultLabel(t *testing.T) {
	p := Profile{I2C: I2CConfig{Bus: 11, Addr: 0x5A}}
	if got := p.DefaultLabel(); got != "i2c-11:0x5A" {
		t.Errorf("DefaultLabel() = %q, want %q", got, "i2c-11:0x5A")
	}
}
