package arithcode

import (
	"fmt"
	"io"
)

// BitReader is the bit channel a decoder reads from.
// bitstream.Reader implements it.
type BitReader interface {
	ReadBit() (bool, error)
	ReadBits(n uint) (uint64, error)
	ReadVarBits(minBits uint) (uint64, error)
	ReadUniqueSortedArray(dst []uint64, offset, count int) error
}

// RangeDecoder decompresses symbols written by RangeEncoder.
type RangeDecoder struct {
	coder
	input   BitReader
	code    uint64 // Current value being decoded
	started bool
	overrun int // Zero bits supplied past the end of input
}

// NewRangeDecoder creates a new range decoder that reads from r.
// Nothing is read until the first call to Read, so dictionaries and other
// header data may precede the coded stream.
func NewRangeDecoder(r BitReader) *RangeDecoder {
	return &RangeDecoder{
		coder: newCoder(),
		input: r,
	}
}

// Read decodes the next symbol using the cumulative frequency table stats.
func (d *RangeDecoder) Read(stats Stats) (int, error) {
	if !d.started {
		d.started = true
		for i := 0; i < stateBits; i++ {
			bit, err := d.readCodeBit()
			if err != nil {
				return 0, err
			}
			d.code = d.code<<1 | bit
		}
	}

	total := stats.Total()
	if total == 0 || total > MaximumTotal {
		return 0, fmt.Errorf("%w: invalid total %d", ErrConfiguration, total)
	}
	if d.code < d.low || d.code > d.high {
		return 0, fmt.Errorf("%w: code outside interval", ErrProtocol)
	}

	// Calculate the position within the current interval
	rangeSize := d.high - d.low + 1
	offset := d.code - d.low
	value := ((offset+1)*total - 1) / rangeSize

	symbol := stats.Find(value)
	if err := d.update(stats, symbol, d); err != nil {
		return 0, err
	}
	if d.code < d.low || d.code > d.high {
		return 0, fmt.Errorf("%w: code outside interval", ErrProtocol)
	}
	return symbol, nil
}

// header returns the bit channel for reading dictionary data.
func (d *RangeDecoder) header() (BitReader, error) {
	if d.started {
		return nil, fmt.Errorf("%w: header read after decoding started", ErrProtocol)
	}
	return d.input, nil
}

func (d *RangeDecoder) shift() error {
	bit, err := d.readCodeBit()
	if err != nil {
		return err
	}
	d.code = ((d.code << 1) & stateMask) | bit
	return nil
}

func (d *RangeDecoder) underflow() error {
	bit, err := d.readCodeBit()
	if err != nil {
		return err
	}
	d.code = (d.code & halfRange) | ((d.code << 1) & (stateMask >> 1)) | bit
	return nil
}

// readCodeBit reads the next bit, treating the end of input as zero bits.
func (d *RangeDecoder) readCodeBit() (uint64, error) {
	bit, err := d.input.ReadBit()
	if err == io.EOF {
		d.overrun++
		if d.overrun > stateBits {
			return 0, fmt.Errorf("%w: read past end of stream", ErrProtocol)
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if bit {
		return 1, nil
	}
	return 0, nil
}
