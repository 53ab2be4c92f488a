package uart

import (
	"encoding"
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// Parity is the parity mode of a frame.
type Parity uint8

const (
	NoParity Parity = iota
	OddParity
	EvenParity
	MarkParity
	SpaceParity
)

var parityLetters = [...]byte{
	NoParity:    'N',
	OddParity:   'O',
	EvenParity:  'E',
	MarkParity:  'M',
	SpaceParity: 'S',
}

// String returns the single-letter form of the parity, as used in "8N1".
func (p Parity) String() string {
	if int(p) < len(parityLetters) {
		return string(parityLetters[p])
	}
	return fmt.Sprintf("Parity(%d)", p)
}

func (p Parity) serial() serial.Parity {
	switch p {
	case OddParity:
		return serial.OddParity
	case EvenParity:
		return serial.EvenParity
	case MarkParity:
		return serial.MarkParity
	case SpaceParity:
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

// StopBits is the number of stop bits of a frame.
type StopBits uint8

const (
	OneStopBit StopBits = iota
	OnePointFiveStopBits
	TwoStopBits
)

// String returns the number of stop bits, as used in "8N1".
func (s StopBits) String() string {
	switch s {
	case OneStopBit:
		return "1"
	case OnePointFiveStopBits:
		return "1.5"
	case TwoStopBits:
		return "2"
	default:
		return fmt.Sprintf("StopBits(%d)", s)
	}
}

func (s StopBits) serial() serial.StopBits {
	switch s {
	case OnePointFiveStopBits:
		return serial.OnePointFiveStopBits
	case TwoStopBits:
		return serial.TwoStopBits
	default:
		return serial.OneStopBit
	}
}

// Format is the frame format of a UART line.
type Format struct {
	DataBits int
	Parity   Parity
	StopBits StopBits
}

// Format8N1 is 8 data bits, no parity, 1 stop bit.
var Format8N1 = Format{DataBits: 8, Parity: NoParity, StopBits: OneStopBit}

var (
	_ encoding.TextUnmarshaler = (*Format)(nil)
	_ encoding.TextMarshaler   = Format{}
)

// ParseFormat parses the conventional short form of a frame format, such as
// "8N1", "7E2" or "8N1.5".
func ParseFormat(s string) (Format, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 3 {
		return Format{}, fmt.Errorf("invalid frame format %q", s)
	}

	var f Format

	if s[0] < '5' || s[0] > '8' {
		return Format{}, fmt.Errorf("invalid data bits in frame format %q", s)
	}
	f.DataBits = int(s[0] - '0')

	parity := -1
	for p, letter := range parityLetters {
		if letter == s[1] {
			parity = p
			break
		}
	}
	if parity < 0 {
		return Format{}, fmt.Errorf("invalid parity in frame format %q", s)
	}
	f.Parity = Parity(parity)

	switch s[2:] {
	case "1":
		f.StopBits = OneStopBit
	case "1.5":
		f.StopBits = OnePointFiveStopBits
	case "2":
		f.StopBits = TwoStopBits
	default:
		return Format{}, fmt.Errorf("invalid stop bits in frame format %q", s)
	}

	return f, nil
}

// Validate checks that the format describes a frame the hardware can send.
func (f Format) Validate() error {
	if f.DataBits < 5 || f.DataBits > 8 {
		return fmt.Errorf("invalid data bits %d", f.DataBits)
	}
	if int(f.Parity) >= len(parityLetters) {
		return fmt.Errorf("invalid parity %d", f.Parity)
	}
	if f.StopBits > TwoStopBits {
		return fmt.Errorf("invalid stop bits %d", f.StopBits)
	}
	return nil
}

// String returns the short form, e.g. "8N1".
func (f Format) String() string {
	return fmt.Sprintf("%d%s%s", f.DataBits, f.Parity, f.StopBits)
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}
