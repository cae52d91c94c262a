package device

import (
	"testing"
)

func TestReadiness_String(t *testing.T) {
	tests := []struct {
		r    Readiness
		want string
	}{
		{ReadyNone, "none"},
		{ReadyNormal, "normal"},
		{ReadyUrgent, "urgent"},
		{Readiness(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.r.String(); got != tt.want {
				t.Errorf("Readiness.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterLayout(t *testing.T) {
	// The mask, status, and identity register pairs must stay adjacent:
	// the driver reads and writes each pair as one block transaction.
	if RegIntMask1 != RegIntMask0+1 {
		t.Errorf("mask registers not adjacent: 0x%02X, 0x%02X", RegIntMask0, RegIntMask1)
	}
	if RegIntStatus1 != RegIntStatus0+1 {
		t.Errorf("status registers not adjacent: 0x%02X, 0x%02X", RegIntStatus0, RegIntStatus1)
	}
	if RegChipRev != RegChipID+1 {
		t.Errorf("identity registers not adjacent: 0x%02X, 0x%02X", RegChipID, RegChipRev)
	}

	if WindowSize != 256 {
		t.Errorf("WindowSize = %d, want 256", WindowSize)
	}
	if windowMask != WindowSize-1 {
		t.Errorf("windowMask = %d, want %d", windowMask, WindowSize-1)
	}
}
