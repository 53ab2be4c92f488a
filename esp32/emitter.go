package esp32

import (
	"fmt"
	"io"
	"time"

	"libdb.so/bytepulse/pattern"
)

// Emitter writes one byte of its table to the UART per interval.
type Emitter struct {
	uart     io.ByteWriter
	diag     io.Writer
	interval time.Duration
	cursor   *pattern.Cursor
}

// NewEmitter creates an emitter for the given variant. diag may be nil.
func NewEmitter(uart io.ByteWriter, v Variant, diag io.Writer) *Emitter {
	if !v.Diagnostics {
		diag = nil
	}
	return &Emitter{
		uart:     uart,
		diag:     diag,
		interval: Interval,
		cursor:   pattern.NewCursor(v.Table),
	}
}

// Run runs the emitter loop forever.
func (e *Emitter) Run() {
	for {
		e.transmit()
		time.Sleep(e.interval)
		e.cursor.Advance()
	}
}

// Step transmits the current byte and advances without sleeping.
func (e *Emitter) Step() {
	e.transmit()
	e.cursor.Advance()
}

func (e *Emitter) transmit() {
	b := e.cursor.Byte()
	if err := e.uart.WriteByte(b); err != nil {
		// There is nothing to recover to on the device.
		panic(err)
	}
	if e.diag != nil {
		fmt.Fprintf(e.diag, "TX %s\r\n", pattern.Hex(b))
	}
}
