// Package chipid names register-window chips from their identity registers.
//
// Every supported chip exposes its part ID and silicon revision in two
// read-only registers. This package maps those raw values to human-readable
// part and stepping names for attach-time logging and diagnostics.
//
// A built-in table covers the chip families the driver supports. An optional
// external database file can extend or override it, using a format of
// two-digit hex part lines with tab-indented revision lines:
//
//	# softregs chip database
//	5a  SR90 peripheral controller
//		00  A0
//		02  B0
//
// # Usage
//
// Load the database once at startup:
//
//	db := chipid.New()
//	db.Load()
//
// Then look up part and stepping names:
//
//	partName := db.LookupPart(0x5A)
//	stepping := db.LookupRevision(0x5A, 0x02)
//	summary := db.Describe(0x5A, 0x02) // "SR90 peripheral controller (rev B0)"
//
// # Database Locations
//
// The package searches for an external database in these locations:
//
//   - /etc/softregs/chip.ids
//   - /usr/local/share/softregs/chip.ids
//
// If no file is found, the built-in table still serves lookups.
//
// # Thread Safety
//
// All methods are safe for concurrent use. The database uses read-write locks
// to allow concurrent lookups while protecting against concurrent loads.
package chipid
