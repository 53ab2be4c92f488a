// Package bytepulse emits a fixed pattern of bytes on a serial line, one byte
// per interval.
package bytepulse

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/bytepulse/internal/diag"
	"libdb.so/bytepulse/pattern"
	"libdb.so/bytepulse/uart"
)

// Emitter is the periodic byte emitter. It owns one serial transmit line and
// writes one byte of its pattern table to it per interval until stopped.
type Emitter struct {
	cfg    *Config
	table  pattern.Table
	logger *slog.Logger

	open   uart.Opener
	clock  clockwork.Clock
	stdout io.Writer

	sent atomic.Uint64
}

// Option configures an Emitter.
type Option func(*Emitter)

// WithOpener replaces the function used to open serial ports.
func WithOpener(open uart.Opener) Option {
	return func(e *Emitter) { e.open = open }
}

// WithClock replaces the clock that paces transmissions.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Emitter) { e.clock = clock }
}

// WithDiagnostics sets where the diagnostic stream goes when it is enabled
// and its device is Stdout. The default is os.Stdout.
func WithDiagnostics(w io.Writer) Option {
	return func(e *Emitter) { e.stdout = w }
}

// NewEmitter creates a new emitter.
func NewEmitter(cfg *Config, logger *slog.Logger, opts ...Option) (*Emitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	table, err := cfg.Table()
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	e := &Emitter{
		cfg:    cfg,
		table:  table,
		logger: logger,
		open:   uart.DefaultOpener,
		clock:  clockwork.NewRealClock(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Table returns the pattern table the emitter cycles through.
func (e *Emitter) Table() pattern.Table {
	return e.table.Clone()
}

// Sent returns the number of bytes transmitted so far.
func (e *Emitter) Sent() uint64 {
	return e.sent.Load()
}

// Run opens the serial line and transmits until the given context is
// canceled. A failure to open or write the line is returned and is not
// retried.
func (e *Emitter) Run(ctx context.Context) error {
	return (&internalEmitter{Emitter: e}).Run(ctx)
}

type internalEmitter struct {
	*Emitter
	line *uart.Handle
	diag *diag.Stream
}

func (e *internalEmitter) Run(ctx context.Context) error {
	line, err := uart.Open(e.cfg.UART(), e.open)
	if err != nil {
		return errors.Wrap(err, "failed to open serial port")
	}
	defer line.Close()

	e.line = line
	e.logger.Debug(
		"opened serial port",
		"device", e.cfg.Device,
		"baud", e.cfg.Baud,
		"format", e.cfg.Format,
		"tx_pin", e.cfg.TXPin,
		"rx_pin", e.cfg.RXPin)

	if e.cfg.Diagnostics.Enabled {
		w, closeDiag := e.openDiagnostics()
		defer closeDiag()
		e.diag = diag.NewStream(w)
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		e.logger.Debug("closing serial port")
		if err := line.Close(); err != nil {
			return errors.Wrap(err, "failed to close serial port")
		}
		return ctx.Err()
	})
	errg.Go(func() error {
		return e.transmitLoop(ctx)
	})

	return errg.Wait()
}

// openDiagnostics returns the diagnostic writer. The diagnostic stream is
// observational, so failing to open it only disables it.
func (e *internalEmitter) openDiagnostics() (io.Writer, func()) {
	if e.cfg.Diagnostics.Device == Stdout {
		return e.stdout, func() {}
	}

	dcfg := e.cfg.DiagnosticsUART()
	if err := dcfg.Validate(); err != nil {
		e.logger.Warn("diagnostics disabled", "error", err)
		return nil, func() {}
	}

	port, err := e.open(dcfg.Device, dcfg.Mode())
	if err != nil {
		e.logger.Warn(
			"failed to open diagnostics port, diagnostics disabled",
			"device", dcfg.Device,
			"error", err)
		return nil, func() {}
	}

	return port, func() { port.Close() }
}

func (e *internalEmitter) transmitLoop(ctx context.Context) error {
	interval := time.Duration(e.cfg.Interval)
	cursor := pattern.NewCursor(e.table)

	for ctx.Err() == nil {
		b := cursor.Byte()

		if err := e.line.WriteByte(b); err != nil {
			// The watcher closes the port on cancellation, which fails any
			// write in flight.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrapf(err, "failed to transmit %s", pattern.Hex(b))
		}
		e.sent.Add(1)

		e.logger.Debug(
			"transmitted byte",
			"byte", pattern.Hex(b),
			"index", cursor.Index())

		if err := e.diag.Transmitted(b); err != nil {
			e.logger.Warn(
				"failed to write diagnostics",
				"error", err)
		}

		timer := e.clock.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.Chan():
		}

		cursor.Advance()
	}

	return ctx.Err()
}
