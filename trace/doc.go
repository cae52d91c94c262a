// Package trace provides machine-readable capture of register transport
// activity.
//
// This package defines the Recorder interface and Event type for capturing
// bus transactions and interrupt line activity. It is separate from
// operational logging (slog) - transport capture produces a complete binary
// event stream for debugging, replay, and timing analysis.
//
// # Basic Usage
//
// Wrap a transport before attaching it, and every transaction the driver
// performs is recorded:
//
//	rec, err := trace.NewFileRecorder("capture.rlog")
//	if err != nil {
//	    return err
//	}
//	defer rec.Close()
//
//	bus := trace.NewBus(chip, rec, "sim0")
//	line := trace.NewLine(chip, rec, "sim0")
//	h, err := table.Attach(ctx, bus, line)
//
// # Event Contents
//
// Each event carries the operation kind, starting register, transaction
// length, the transferred bytes (clipped at [CaptureLimit]), the elapsed
// time, and, for failures, the error text with its fault classification
// from [github.com/ardnew/softregs/pkg.Classify].
//
// # File Format
//
// Capture files use CBOR encoding with integer keys. [Reader] streams a
// file back, optionally filtered by label, operation, register, fault
// class, or time range:
//
//	r, err := trace.NewFilteredReader("capture.rlog", trace.Filter{
//	    FailedOnly: true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for {
//	    ev, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package trace
