package arithcode

import (
	"fmt"
	"io"

	"github.com/egonelbre/exp-tile-compression/bitstream"
)

// valueCountBits is the minimum width of the value count header.
const valueCountBits = 8

// DefaultMinRunLength is the run length from which EncodeValues uses the escape.
const DefaultMinRunLength = 4

// Options configures EncodeValues.
type Options struct {
	// MaxValue is the largest value in the stream. Negative values derive it
	// from the data.
	MaxValue int
	// MinRunLength is the shortest run coded as escape, length and value.
	MinRunLength int
}

// DefaultOptions returns options that derive MaxValue from the data.
func DefaultOptions() Options {
	return Options{MaxValue: -1, MinRunLength: DefaultMinRunLength}
}

// EncodeValues compresses values with the run-length context coder.
// The output starts with the value count, followed by the coder dictionaries
// and the coded stream.
func EncodeValues(values []int, opts Options, w io.Writer) error {
	bw := bitstream.NewWriter(w)
	if err := WriteValues(bw, values, opts); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteValues writes values to a bit channel shared with other data.
func WriteValues(w BitWriter, values []int, opts Options) error {
	maxValue := opts.MaxValue
	if maxValue < 0 {
		maxValue = 0
		for _, v := range values {
			maxValue = max(maxValue, v)
		}
	}

	counter, err := NewRunLengthCounter(maxValue, opts.MinRunLength)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := counter.Encode(v); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}

	if err := w.WriteVarBits(uint64(len(values)), valueCountBits); err != nil {
		return fmt.Errorf("value count: %w", err)
	}

	enc := NewRangeEncoder(w)
	stream, err := counter.Finalize(enc)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := stream.Encode(v); err != nil {
			return fmt.Errorf("value %d: %w", i, err)
		}
	}
	return stream.Finish()
}

// DecodeValues decompresses values written by EncodeValues.
func DecodeValues(r io.Reader) ([]int, error) {
	return ReadValues(bitstream.NewReader(r))
}

// ReadValues reads values written by WriteValues.
func ReadValues(r BitReader) ([]int, error) {
	count, err := r.ReadVarBits(valueCountBits)
	if err != nil {
		return nil, fmt.Errorf("value count: %w", err)
	}

	dec := NewRangeDecoder(r)
	stream, err := NewRunLengthDecoder(dec)
	if err != nil {
		return nil, err
	}

	values := make([]int, 0, min(count, 1<<16))
	for i := uint64(0); i < count; i++ {
		v, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// EncodeSymbols compresses symbols with a single context model.
func EncodeSymbols(symbols []int, w io.Writer) error {
	bw := bitstream.NewWriter(w)
	if err := WriteSymbols(bw, symbols); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteSymbols writes symbols to a bit channel shared with other data.
func WriteSymbols(w BitWriter, symbols []int) error {
	counter := NewContextCounter()
	for i, s := range symbols {
		if err := counter.Encode(s); err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
	}

	if err := w.WriteVarBits(uint64(len(symbols)), valueCountBits); err != nil {
		return fmt.Errorf("symbol count: %w", err)
	}

	enc := NewRangeEncoder(w)
	model, err := counter.Finalize(enc)
	if err != nil {
		return err
	}
	for i, s := range symbols {
		if err := model.Encode(s); err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
	}
	return enc.Finish()
}

// DecodeSymbols decompresses symbols written by EncodeSymbols.
func DecodeSymbols(r io.Reader) ([]int, error) {
	return ReadSymbols(bitstream.NewReader(r))
}

// ReadSymbols reads symbols written by WriteSymbols.
func ReadSymbols(r BitReader) ([]int, error) {
	count, err := r.ReadVarBits(valueCountBits)
	if err != nil {
		return nil, fmt.Errorf("symbol count: %w", err)
	}

	dec := NewRangeDecoder(r)
	model, err := NewContextDecoder(dec)
	if err != nil {
		return nil, err
	}

	symbols := make([]int, 0, min(count, 1<<16))
	for i := uint64(0); i < count; i++ {
		s, err := model.Decode()
		if err != nil {
			return nil, fmt.Errorf("symbol %d: %w", i, err)
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}
