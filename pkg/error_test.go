package pkg

import (
	"errors"
	"fmt"
	"testing"
)

func TestFaultClass_String(t *testing.T) {
	tests := []struct {
		class FaultClass
		want  string
	}{
		{FaultNone, "none"},
		{FaultTransport, "transport"},
		{FaultBuffer, "buffer"},
		{FaultDevice, "device"},
		{FaultSession, "session"},
		{FaultClass(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.class.String(); got != tt.want {
				t.Errorf("FaultClass.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want FaultClass
	}{
		{nil, FaultNone},
		{ErrBufferFault, FaultBuffer},
		{ErrNoDevice, FaultDevice},
		{ErrBusClosed, FaultDevice},
		{ErrSessionClosed, FaultSession},
		{ErrBusy, FaultSession},
		{ErrNoSlots, FaultSession},
		{ErrLineArmed, FaultSession},
		{ErrShortTransfer, FaultTransport},
		{ErrNotSupported, FaultTransport},
		{errors.New("i2c transaction failed"), FaultTransport},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_Wrapped(t *testing.T) {
	// Classification follows errors.Is through wrapping.
	wrapped := fmt.Errorf("slot 3: %w", ErrNoDevice)
	if got := Classify(wrapped); got != FaultDevice {
		t.Errorf("Classify(wrapped ErrNoDevice) = %v, want %v", got, FaultDevice)
	}
}

func TestSentinelErrors(t *testing.T) {
	// Verify all sentinel errors are distinct
	errs := []error{
		ErrNoDevice,
		ErrNoSlots,
		ErrSessionClosed,
		ErrNotSupported,
		ErrBusy,
		ErrShortTransfer,
		ErrBufferFault,
		ErrInvalidOffset,
		ErrBusClosed,
		ErrLineArmed,
	}

	for i, err1 := range errs {
		if err1 == nil {
			t.Errorf("error %d is nil", i)
			continue
		}
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("error %d and %d are equal", i, j)
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err     error
		wantMsg string
	}{
		{ErrNoDevice, "device not present"},
		{ErrNoSlots, "no device slots available"},
		{ErrSessionClosed, "session closed"},
		{ErrBufferFault, "buffer marshaling fault"},
		{ErrInvalidOffset, "invalid register offset"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("error.Error() = %v, want %v", got, tt.wantMsg)
			}
		})
	}
}
