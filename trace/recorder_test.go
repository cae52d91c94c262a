package trace

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorderCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	rec, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	defer rec.Close()

	// File should exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("capture file was not created")
	}
}

func TestFileRecorderWritesCBOR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	rec, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		Op:        OpWrite,
		Label:     "sim0",
		Reg:       0x17,
		Len:       2,
		Data:      []byte{0xFF, 0xFF},
	}

	rec.Record(event)
	rec.Close()

	// Read the file and decode
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read capture file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("capture file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}

	if decoded.Op != event.Op {
		t.Errorf("Op: got %v, want %v", decoded.Op, event.Op)
	}
	if decoded.Label != event.Label {
		t.Errorf("Label: got %q, want %q", decoded.Label, event.Label)
	}
	if decoded.Reg != event.Reg {
		t.Errorf("Reg: got 0x%02X, want 0x%02X", decoded.Reg, event.Reg)
	}
	if len(decoded.Data) != 2 || decoded.Data[0] != 0xFF {
		t.Errorf("Data: got % X, want FF FF", decoded.Data)
	}
}

func TestFileRecorderClosedIgnoresRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	rec, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close is idempotent
	if err := rec.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	rec.Record(Event{Op: OpRead})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read capture file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("closed recorder wrote %d bytes", len(data))
	}
}

func TestReaderStreamsEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	rec, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	ops := []Op{OpProbe, OpRead, OpWrite, OpRead}
	for _, op := range ops {
		rec.Record(Event{Timestamp: time.Now(), Op: op, Label: "sim0"})
	}
	rec.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	var got []Op
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, ev.Op)
	}

	if len(got) != len(ops) {
		t.Fatalf("read %d events, want %d", len(got), len(ops))
	}
	for i, op := range ops {
		if got[i] != op {
			t.Errorf("event %d: got %v, want %v", i, got[i], op)
		}
	}
}

func TestFilteredReaderSelectsMatching(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	rec, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	rec.Record(Event{Timestamp: time.Now(), Op: OpRead, Reg: 0x10})
	rec.Record(Event{Timestamp: time.Now(), Op: OpWrite, Reg: 0x20})
	rec.Record(Event{Timestamp: time.Now(), Op: OpRead, Reg: 0x30})
	rec.Close()

	opRead := OpRead
	r, err := NewFilteredReader(path, Filter{Op: &opRead})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		ev, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if ev.Op != OpRead {
			t.Errorf("filtered event has Op %v, want %v", ev.Op, OpRead)
		}
		count++
	}
	if count != 2 {
		t.Errorf("filtered read returned %d events, want 2", count)
	}
}

func TestFileRecorderAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	// Write first event
	rec1, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	rec1.Record(Event{Timestamp: time.Now(), Op: OpProbe})
	rec1.Close()

	// Reopen and write a second event
	rec2, err := NewFileRecorder(path)
	if err != nil {
		t.Fatalf("NewFileRecorder failed: %v", err)
	}
	rec2.Record(Event{Timestamp: time.Now(), Op: OpClose})
	rec2.Close()

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		if _, err := r.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("appended file holds %d events, want 2", count)
	}
}
