// Package pkg provides shared utilities for the softregs driver.
//
// This package contains common functionality used across the device core
// and its bus backends, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for driver and bus errors
//   - Fault classification for trace recording
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with driver-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentDevice, "session opened", "slot", 0)
//
// # Errors
//
// Common driver errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrNoDevice) {
//	    // Handle stale device handle
//	}
//
// Errors classify into coarse fault classes for compact trace records:
//
//	class := pkg.Classify(err) // pkg.FaultTransport, pkg.FaultDevice, ...
package pkg
