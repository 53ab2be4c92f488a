// Package pattern describes the byte tables that the emitter cycles through.
// It has no dependencies outside the standard library so that the firmware
// can import it as well.
package pattern

import (
	"fmt"
	"io"
	"strings"
)

// Table is an ordered, fixed sequence of bytes. A Table must not be modified
// once it is handed to a Cursor.
type Table []byte

var (
	// Beacon is the minimal table: a single constant byte.
	Beacon = Table{0x3F}
	// Sweep is the richer table.
	Sweep = Table{0x01, 0x02, 0x04, 0x07, 0x08, 0x10, 0x20, 0x3F, 0x00}
)

var named = map[string]Table{
	"beacon": Beacon,
	"sweep":  Sweep,
}

// Named returns a copy of the built-in table with the given name.
func Named(name string) (Table, bool) {
	t, ok := named[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Names returns the names of the built-in tables.
func Names() []string {
	return []string{"beacon", "sweep"}
}

// FromInts builds a table from integers, each of which must fit in a byte.
func FromInts(values []int) (Table, error) {
	t := make(Table, len(values))
	for i, v := range values {
		if v < 0 || v > 0xFF {
			return nil, fmt.Errorf("value %d at index %d is out of byte range", v, i)
		}
		t[i] = byte(v)
	}
	return t, nil
}

// Clone returns a copy of the table.
func (t Table) Clone() Table {
	return append(Table(nil), t...)
}

// At returns the byte for the n-th iteration, wrapping around the table.
// It panics if the table is empty.
func (t Table) At(n int) byte {
	return t[n%len(t)]
}

// WriteTo implements io.WriterTo. It writes one full period of the table.
func (t Table) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(t)
	return int64(n), err
}

// String formats the table as a list of hexadecimal bytes.
func (t Table) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range t {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(Hex(c))
	}
	b.WriteByte(']')
	return b.String()
}

// Hex formats a single byte as 0xHH.
func Hex(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}

// Cursor walks a Table in order, wrapping to the start after the last
// element. The zero value is not usable; use NewCursor.
type Cursor struct {
	table Table
	index int
}

// NewCursor creates a cursor positioned at the first byte of t. It panics if
// t is empty.
func NewCursor(t Table) *Cursor {
	if len(t) == 0 {
		panic("pattern: empty table")
	}
	return &Cursor{table: t}
}

// Byte returns the byte at the current position.
func (c *Cursor) Byte() byte {
	return c.table[c.index]
}

// Index returns the current position.
func (c *Cursor) Index() int {
	return c.index
}

// Len returns the length of the underlying table, which is also the period of
// the cursor.
func (c *Cursor) Len() int {
	return len(c.table)
}

// Advance moves to the next position.
func (c *Cursor) Advance() {
	c.index = (c.index + 1) % len(c.table)
}
