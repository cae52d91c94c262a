package trace

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Recorder is the interface applications implement to receive capture
// events. Pass nil or NopRecorder to disable capture.
type Recorder interface {
	// Record captures a transport event. Implementations must be safe for
	// concurrent use and should return quickly; Record is invoked on bus
	// caller goroutines and on the interrupt line's event goroutine.
	Record(event Event)
}

// NopRecorder discards all events. Use when capture is disabled.
// NopRecorder is safe for concurrent use and usable as a zero value.
type NopRecorder struct{}

// Record discards the event.
func (NopRecorder) Record(Event) {}

// Compile-time interface satisfaction check.
var _ Recorder = NopRecorder{}

// FileRecorder writes capture events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileRecorder struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileRecorder creates a FileRecorder that writes to the specified path.
// If the file exists, new events are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Record writes an event to the capture file.
// This method is safe for concurrent use.
func (r *FileRecorder) Record(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	// Ignore encoding errors - capture must not disrupt the bus path
	_ = r.encoder.Encode(event)
}

// Close closes the capture file.
// It is safe to call Close multiple times.
// After Close is called, subsequent Record calls are silently ignored.
func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}

	r.closed = true
	return r.file.Close()
}

// Compile-time interface satisfaction check.
var _ Recorder = (*FileRecorder)(nil)
