// Package diag writes the human-readable diagnostic stream that mirrors every
// transmitted byte.
package diag

import (
	"fmt"
	"io"
	"sync"

	"libdb.so/bytepulse/pattern"
)

// Stream writes one line per transmitted byte. A nil *Stream discards
// everything.
type Stream struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStream wraps w. It returns nil if w is nil.
func NewStream(w io.Writer) *Stream {
	if w == nil {
		return nil
	}
	return &Stream{w: w}
}

// Transmitted writes a line stating the byte that was sent, e.g. "TX 0x3F".
func (s *Stream) Transmitted(b byte) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintf(s.w, "TX %s\n", pattern.Hex(b))
	return err
}
