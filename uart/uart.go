// Package uart owns the serial transmit line that bytes are emitted on.
package uart

import (
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// NoPin marks a pin that is not assigned.
const NoPin = -1

// Port is the part of a serial port that the emitter needs.
type Port interface {
	io.Writer
	Close() error
}

// Opener opens a serial port. Tests replace it to avoid real hardware.
type Opener func(device string, mode *serial.Mode) (Port, error)

// DefaultOpener opens a real serial port through go.bug.st/serial.
func DefaultOpener(device string, mode *serial.Mode) (Port, error) {
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// ListPorts returns the serial ports the operating system knows about.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list serial ports")
	}
	return ports, nil
}

// Config is the fixed configuration of a Handle.
type Config struct {
	// Device is the path of the serial device, e.g. /dev/ttyUSB0.
	Device string
	// Baud is the line rate in bits per second.
	Baud int
	// Format is the frame format.
	Format Format
	// TXPin and RXPin identify the pins the line is routed to. On a host
	// adapter they are informational only.
	TXPin int
	RXPin int
}

// Mode returns the go.bug.st/serial mode for the configuration.
func (c Config) Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: c.Baud,
		DataBits: c.Format.DataBits,
		Parity:   c.Format.Parity.serial(),
		StopBits: c.Format.StopBits.serial(),
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Device == "" {
		return errors.New("no serial device configured")
	}
	if c.Baud <= 0 {
		return errors.Errorf("invalid baud rate %d", c.Baud)
	}
	if err := c.Format.Validate(); err != nil {
		return errors.Wrap(err, "invalid frame format")
	}
	if c.TXPin < NoPin || c.RXPin < NoPin {
		return errors.New("invalid pin assignment")
	}
	if c.TXPin != NoPin && c.TXPin == c.RXPin {
		return errors.Errorf("TX and RX share pin %d", c.TXPin)
	}
	return nil
}

// Handle is exclusive ownership of one serial transmit line. It is not safe
// for concurrent use.
type Handle struct {
	port Port
	cfg  Config
}

var _ io.ByteWriter = (*Handle)(nil)

// Open acquires the line described by cfg. If open is nil, DefaultOpener is
// used.
func Open(cfg Config, open Opener) (*Handle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if open == nil {
		open = DefaultOpener
	}

	port, err := open(cfg.Device, cfg.Mode())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", cfg.Device)
	}

	return &Handle{port: port, cfg: cfg}, nil
}

// Config returns the configuration the handle was opened with.
func (h *Handle) Config() Config {
	return h.cfg
}

// WriteByte transmits a single byte. It does not wait for the byte to leave
// the wire.
func (h *Handle) WriteByte(b byte) error {
	n, err := h.port.Write([]byte{b})
	if err != nil {
		return err
	}
	if n != 1 {
		return io.ErrShortWrite
	}
	return nil
}

// Close releases the line.
func (h *Handle) Close() error {
	return h.port.Close()
}
