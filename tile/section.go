package tile

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/egonelbre/exp-tile-compression/arithcode"
	"github.com/egonelbre/exp-tile-compression/bitstream"
)

// Mode selects how the values of a section are coded.
type Mode uint8

const (
	// ModeRunLength codes values with the run-length context coder.
	ModeRunLength Mode = 1
	// ModeContext codes values with a single context model.
	ModeContext Mode = 2
	// ModeStrings codes zero terminated strings byte by byte with the
	// run-length context coder, using the previous byte as context.
	ModeStrings Mode = 3
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRunLength:
		return "runlength"
	case ModeContext:
		return "context"
	case ModeStrings:
		return "strings"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses the name of a mode.
func ParseMode(name string) (Mode, error) {
	for _, m := range []Mode{ModeRunLength, ModeContext, ModeStrings} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", name)
}

// Section is one compressed stream of a tile.
type Section struct {
	Name    string
	Mode    Mode
	Count   int    // Number of values or strings
	Payload []byte // Coded data
	Bits    int64  // Payload length in bits, without padding
}

// NewSection compresses values into a section. Strings sections are
// created with NewStringSection.
func NewSection(name string, mode Mode, values []int, opts arithcode.Options) (Section, error) {
	var buf bytes.Buffer
	w := bitstream.NewWriter(&buf)

	var err error
	switch mode {
	case ModeRunLength:
		err = arithcode.WriteValues(w, values, opts)
	case ModeContext:
		err = arithcode.WriteSymbols(w, values)
	default:
		return Section{}, fmt.Errorf("section %q: mode %v does not code values", name, mode)
	}
	if err != nil {
		return Section{}, fmt.Errorf("section %q: %w", name, err)
	}

	bits := w.BitsWritten()
	if err := w.Flush(); err != nil {
		return Section{}, fmt.Errorf("section %q: %w", name, err)
	}
	return Section{
		Name:    name,
		Mode:    mode,
		Count:   len(values),
		Payload: buf.Bytes(),
		Bits:    bits,
	}, nil
}

// NewStringSection compresses strings, such as tag keys and values, into
// a section. The strings must not contain zero bytes.
func NewStringSection(name string, values []string) (Section, error) {
	var data []int
	for i, s := range values {
		if strings.IndexByte(s, 0) >= 0 {
			return Section{}, fmt.Errorf("section %q: string %d contains a zero byte", name, i)
		}
		for j := 0; j < len(s); j++ {
			data = append(data, int(s[j]))
		}
		data = append(data, 0)
	}

	s, err := NewSection(name, ModeRunLength, data, arithcode.Options{
		MaxValue:     255,
		MinRunLength: arithcode.DefaultMinRunLength,
	})
	if err != nil {
		return Section{}, err
	}
	s.Mode = ModeStrings
	s.Count = len(values)
	return s, nil
}

// Values decompresses the values of a section.
func (s *Section) Values() ([]int, error) {
	r := bitstream.NewReader(bytes.NewReader(s.Payload))

	var values []int
	var err error
	switch s.Mode {
	case ModeRunLength:
		values, err = arithcode.ReadValues(r)
	case ModeContext:
		values, err = arithcode.ReadSymbols(r)
	default:
		return nil, fmt.Errorf("%w: section %q has mode %v", ErrFormat, s.Name, s.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", s.Name, err)
	}
	if len(values) != s.Count {
		return nil, fmt.Errorf("%w: section %q has %d values, expected %d", ErrFormat, s.Name, len(values), s.Count)
	}
	return values, nil
}

// Strings decompresses the strings of a section created by NewStringSection.
func (s *Section) Strings() ([]string, error) {
	if s.Mode != ModeStrings {
		return nil, fmt.Errorf("%w: section %q has mode %v", ErrFormat, s.Name, s.Mode)
	}

	data, err := arithcode.ReadValues(bitstream.NewReader(bytes.NewReader(s.Payload)))
	if err != nil {
		return nil, fmt.Errorf("section %q: %w", s.Name, err)
	}

	values := make([]string, 0, s.Count)
	var current []byte
	for _, v := range data {
		if v == 0 {
			values = append(values, string(current))
			current = current[:0]
			continue
		}
		current = append(current, byte(v))
	}
	if len(current) > 0 || len(values) != s.Count {
		return nil, fmt.Errorf("%w: section %q has %d strings, expected %d", ErrFormat, s.Name, len(values), s.Count)
	}
	return values, nil
}
