package chipid

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPaths lists the standard locations for the chip ID database.
var DefaultPaths = []string{
	"/etc/softregs/chip.ids",
	"/usr/local/share/softregs/chip.ids",
}

// builtinParts names the chip families this driver is known to support,
// keyed by the identity register value.
var builtinParts = map[uint8]string{
	0x3C: "SR30 sensor hub",
	0x5A: "SR90 peripheral controller",
	0x71: "SR71 bus bridge",
}

// builtinRevisions names known silicon steppings, keyed by (id<<8)|rev.
var builtinRevisions = map[uint16]string{
	0x3C00: "A0",
	0x3C01: "A1",
	0x5A00: "A0",
	0x5A01: "A1",
	0x5A02: "B0",
	0x7100: "A0",
}

// Database caches part and revision names for register-window chips.
// It starts with the built-in table and can merge entries from an
// external database file.
type Database struct {
	parts     map[uint8]string  // id -> part name
	revisions map[uint16]string // (id<<8)|rev -> stepping name
	loaded    bool
	mu        sync.RWMutex
	paths     []string
}

// New creates a new chip ID database that searches the default paths.
func New() *Database {
	return NewWithPaths(DefaultPaths)
}

// NewWithPaths creates a new chip ID database that searches the specified paths.
func NewWithPaths(paths []string) *Database {
	db := &Database{
		parts:     make(map[uint8]string, len(builtinParts)),
		revisions: make(map[uint16]string, len(builtinRevisions)),
		paths:     paths,
	}
	for id, name := range builtinParts {
		db.parts[id] = name
	}
	for key, name := range builtinRevisions {
		db.revisions[key] = name
	}
	return db
}

// Load parses the chip ID database file, merging its entries over the
// built-in table. This method is idempotent - subsequent calls do nothing
// if the database is already loaded.
//
// Returns true if a database file was loaded (or already loaded), false if
// no database file could be found. The built-in table is available either way.
func (db *Database) Load() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.loaded {
		return true
	}

	for _, path := range db.paths {
		file, err := os.Open(path)
		if err == nil {
			defer file.Close()
			db.parseDatabase(file)
			db.loaded = true
			return true
		}
	}

	// Mark as loaded even if file not found to prevent repeated searches
	db.loaded = true
	return false
}

// parseDatabase parses the chip ID database format.
//
// Part lines have the format "xx  Part Name" with a two-digit hex ID.
// Revision lines are tab-indented under their part: "\txx  Stepping".
func (db *Database) parseDatabase(file *os.File) {
	scanner := bufio.NewScanner(file)
	var currentID uint8
	var haveID bool

	for scanner.Scan() {
		line := scanner.Text()

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if line[0] == '\t' {
			// Revision line
			if !haveID {
				continue
			}
			line = line[1:] // Remove leading tab
			if len(line) < 4 {
				continue
			}
			rev, err := strconv.ParseUint(line[:2], 16, 8)
			if err != nil {
				continue
			}
			if line[2] == ' ' {
				name := strings.TrimLeft(line[3:], " ")
				key := (uint16(currentID) << 8) | uint16(rev)
				db.revisions[key] = name
			}
		} else if len(line) >= 4 {
			// Part line
			id, err := strconv.ParseUint(line[:2], 16, 8)
			if err != nil {
				haveID = false
				continue
			}
			currentID = uint8(id)
			haveID = true
			if line[2] == ' ' {
				name := strings.TrimLeft(line[3:], " ")
				db.parts[currentID] = name
			}
		} else {
			haveID = false
		}
	}
}

// LookupPart returns the part name for the given chip ID.
// Returns an empty string if the part is not known.
func (db *Database) LookupPart(id uint8) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.parts[id]
}

// LookupRevision returns the stepping name for the given chip ID and
// revision. Returns an empty string if the revision is not known.
func (db *Database) LookupRevision(id, rev uint8) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	key := (uint16(id) << 8) | uint16(rev)
	return db.revisions[key]
}

// Describe returns a human-readable description of the chip identity,
// falling back to raw register values for unknown parts or revisions.
func (db *Database) Describe(id, rev uint8) string {
	part := db.LookupPart(id)
	if part == "" {
		return fmt.Sprintf("unknown device (id 0x%02X rev 0x%02X)", id, rev)
	}
	stepping := db.LookupRevision(id, rev)
	if stepping == "" {
		return fmt.Sprintf("%s (rev 0x%02X)", part, rev)
	}
	return fmt.Sprintf("%s (rev %s)", part, stepping)
}

// IsLoaded returns true if a load has been attempted.
func (db *Database) IsLoaded() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.loaded
}

// PartCount returns the number of parts in the database.
func (db *Database) PartCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.parts)
}

// RevisionCount returns the number of revisions in the database.
func (db *Database) RevisionCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.revisions)
}
