package uart_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"libdb.so/bytepulse/internal/serialtest"
	"libdb.so/bytepulse/uart"
)

func testConfig() uart.Config {
	return uart.Config{
		Device: "/dev/ttyUSB0",
		Baud:   115200,
		Format: uart.Format8N1,
		TXPin:  17,
		RXPin:  uart.NoPin,
	}
}

func TestOpenConfiguresMode(t *testing.T) {
	t.Parallel()

	opener := &serialtest.Opener{Port: serialtest.NewPort(1)}
	h, err := uart.Open(testConfig(), opener.Open)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, "/dev/ttyUSB0", opener.Device())
	require.Len(t, opener.Modes(), 1)
	mode := opener.Modes()[0]
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
	assert.Equal(t, testConfig(), h.Config())
}

func TestOpenError(t *testing.T) {
	t.Parallel()

	opener := &serialtest.Opener{Err: errors.New("no such device")}
	_, err := uart.Open(testConfig(), opener.Open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open /dev/ttyUSB0")
	assert.Contains(t, err.Error(), "no such device")
}

func TestOpenInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*uart.Config)
		want   string
	}{
		{"no device", func(c *uart.Config) { c.Device = "" }, "no serial device"},
		{"zero baud", func(c *uart.Config) { c.Baud = 0 }, "invalid baud rate"},
		{"bad data bits", func(c *uart.Config) { c.Format.DataBits = 9 }, "invalid frame format"},
		{"bad pin", func(c *uart.Config) { c.TXPin = -2 }, "invalid pin"},
		{"shared pin", func(c *uart.Config) { c.RXPin = 17 }, "share pin 17"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			tt.mutate(&cfg)

			opener := &serialtest.Opener{Port: serialtest.NewPort(1)}
			_, err := uart.Open(cfg, opener.Open)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, opener.Modes(), "port must not be opened")
		})
	}
}

func TestWriteByte(t *testing.T) {
	t.Parallel()

	port := serialtest.NewPort(4)
	opener := &serialtest.Opener{Port: port}
	h, err := uart.Open(testConfig(), opener.Open)
	require.NoError(t, err)

	require.NoError(t, h.WriteByte(0x3F))
	require.NoError(t, h.WriteByte(0x00))

	assert.Equal(t, [][]byte{{0x3F}, {0x00}}, port.Writes())

	require.NoError(t, h.Close())
	assert.True(t, port.Closed())
	assert.Error(t, h.WriteByte(0x01))
}

func TestWriteByteShortWrite(t *testing.T) {
	t.Parallel()

	h, err := uart.Open(testConfig(), func(string, *serial.Mode) (uart.Port, error) {
		return shortPort{}, nil
	})
	require.NoError(t, err)

	err = h.WriteByte(0x3F)
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

type shortPort struct{}

func (shortPort) Write(b []byte) (int, error) { return 0, nil }
func (shortPort) Close() error                { return nil }
