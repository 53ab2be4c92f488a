package bytepulse

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"libdb.so/bytepulse/pattern"
	"libdb.so/bytepulse/uart"
)

// Config is the configuration for the bytepulse emitter.
type Config struct {
	// Device is the path to the serial device to transmit on.
	// This is usually /dev/ttyUSB0 or /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
	// Format is the frame format, e.g. "8N1".
	Format uart.Format `toml:"format"`
	// TXPin and RXPin are the pins the line is routed to, or -1 if unused.
	TXPin int `toml:"tx_pin"`
	RXPin int `toml:"rx_pin"`
	// Interval is the pause between two transmissions.
	Interval TOMLDuration `toml:"interval"`
	// Pattern is the name of a built-in pattern table.
	Pattern string `toml:"pattern"`
	// Bytes is a custom pattern table. It overrides Pattern when set.
	Bytes []int `toml:"bytes,omitempty"`
	// Diagnostics configures the diagnostic stream.
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// DiagnosticsConfig is the configuration for the diagnostic stream.
type DiagnosticsConfig struct {
	// Enabled turns the diagnostic stream on.
	Enabled bool `toml:"enabled"`
	// Device is a serial device to write diagnostics to. "-" means stdout.
	Device string `toml:"device"`
	// Baud is the baud rate of the diagnostic serial device.
	Baud int `toml:"baud"`
}

// Stdout is the diagnostics device name that selects standard output.
const Stdout = "-"

// DefaultConfig returns the configuration used when no file is given: the
// beacon pattern at 115200 8N1, one byte per second.
func DefaultConfig() *Config {
	return &Config{
		Device:   "/dev/ttyUSB0",
		Baud:     115200,
		Format:   uart.Format8N1,
		TXPin:    17,
		RXPin:    uart.NoPin,
		Interval: TOMLDuration(time.Second),
		Pattern:  "beacon",
		Diagnostics: DiagnosticsConfig{
			Device: Stdout,
			Baud:   9600,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.UART().Validate(); err != nil {
		return err
	}

	if c.Interval <= 0 {
		return errors.Errorf("invalid interval %s", time.Duration(c.Interval))
	}

	if _, err := c.Table(); err != nil {
		return err
	}

	if c.Diagnostics.Enabled && c.Diagnostics.Device != Stdout {
		if c.Diagnostics.Baud <= 0 {
			return errors.Errorf("invalid diagnostics baud rate %d", c.Diagnostics.Baud)
		}
		if c.Diagnostics.Device == c.Device {
			return errors.New("diagnostics cannot share the transmit device")
		}
	}

	return nil
}

// UART returns the configuration of the transmit line.
func (c *Config) UART() uart.Config {
	return uart.Config{
		Device: c.Device,
		Baud:   c.Baud,
		Format: c.Format,
		TXPin:  c.TXPin,
		RXPin:  c.RXPin,
	}
}

// DiagnosticsUART returns the configuration of the diagnostic serial line.
// The diagnostic line carries text only, so it is always 8N1.
func (c *Config) DiagnosticsUART() uart.Config {
	return uart.Config{
		Device: c.Diagnostics.Device,
		Baud:   c.Diagnostics.Baud,
		Format: uart.Format8N1,
		TXPin:  uart.NoPin,
		RXPin:  uart.NoPin,
	}
}

// Table returns the pattern table to emit.
func (c *Config) Table() (pattern.Table, error) {
	if len(c.Bytes) > 0 {
		t, err := pattern.FromInts(c.Bytes)
		if err != nil {
			return nil, errors.Wrap(err, "invalid bytes")
		}
		return t, nil
	}

	t, ok := pattern.Named(c.Pattern)
	if !ok {
		return nil, errors.Errorf("unknown pattern %q, expected one of %v", c.Pattern, pattern.Names())
	}
	return t, nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Keys missing from the
// input keep the values of DefaultConfig.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig reads and parses the configuration file at path.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open config file")
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return config, nil
}
