// Package serialtest provides an in-memory serial port for tests.
package serialtest

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
	"libdb.so/bytepulse/uart"
)

// Port is an in-memory uart.Port. Every Write is recorded and each written
// byte is also delivered on Bytes, if that channel is set.
type Port struct {
	// Bytes receives each written byte. It may be nil.
	Bytes chan byte
	// WriteErr, if set, is returned by every Write.
	WriteErr error

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

var _ uart.Port = (*Port)(nil)

// NewPort creates a port that delivers written bytes on a channel with the
// given buffer size.
func NewPort(buffer int) *Port {
	return &Port{
		Bytes: make(chan byte, buffer),
	}
}

func (p *Port) Write(b []byte) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, io.ErrClosedPipe
	}
	if p.WriteErr != nil {
		p.mu.Unlock()
		return 0, p.WriteErr
	}
	p.writes = append(p.writes, append([]byte(nil), b...))
	p.mu.Unlock()

	for _, c := range b {
		if p.Bytes != nil {
			p.Bytes <- c
		}
	}
	return len(b), nil
}

func (p *Port) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Closed reports whether Close has been called.
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Writes returns a copy of every Write call's argument, in order.
func (p *Port) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.writes...)
}

// Opener records how ports were opened. It hands out Ports[device] when
// Ports is set and Port otherwise.
type Opener struct {
	Port  *Port
	Ports map[string]*Port
	Err   error

	mu     sync.Mutex
	device string
	modes  []serial.Mode
}

// Open implements uart.Opener.
func (o *Opener) Open(device string, mode *serial.Mode) (uart.Port, error) {
	o.mu.Lock()
	o.device = device
	o.modes = append(o.modes, *mode)
	o.mu.Unlock()

	if o.Err != nil {
		return nil, o.Err
	}
	if o.Ports != nil {
		port, ok := o.Ports[device]
		if !ok {
			return nil, fmt.Errorf("no such device %s", device)
		}
		return port, nil
	}
	return o.Port, nil
}

// Device returns the device path of the last Open call.
func (o *Opener) Device() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.device
}

// Modes returns the modes of every Open call.
func (o *Opener) Modes() []serial.Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]serial.Mode(nil), o.modes...)
}
