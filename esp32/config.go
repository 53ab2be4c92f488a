package esp32

import (
	"time"

	"libdb.so/bytepulse/pattern"
)

// NoPin marks an unassigned UART pin.
const NoPin = -1

// Variant is one firmware build: which pins the UART uses and what it sends.
type Variant struct {
	Baud uint32
	TX   int8
	RX   int8
	// Table is the pattern table to emit.
	Table pattern.Table
	// Diagnostics mirrors every transmitted byte on the USB console.
	Diagnostics bool
}

var (
	// Interval is the pause between two transmissions.
	Interval = time.Second

	// Beacon sends 0x3F on GPIO17 with no receive pin.
	Beacon = Variant{
		Baud:  115200,
		TX:    17,
		RX:    NoPin,
		Table: pattern.Beacon,
	}

	// Sweep sends the sweep table with the pins swapped relative to Beacon
	// and logs every byte.
	Sweep = Variant{
		Baud:        115200,
		TX:          16,
		RX:          17,
		Table:       pattern.Sweep,
		Diagnostics: true,
	}
)
