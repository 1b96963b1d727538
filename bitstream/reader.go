package bitstream

import (
	"bufio"
	"io"
	"math/bits"
)

// Reader reads individual bits from an io.Reader, most significant bit first.
type Reader struct {
	input       io.ByteReader
	accumulator byte
	numBits     int
	read        int64
}

// NewReader creates a bit reader that reads from r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{input: br}
}

// ReadBit reads a single bit. It returns io.EOF when the input is exhausted.
func (br *Reader) ReadBit() (bool, error) {
	if br.numBits == 0 {
		b, err := br.input.ReadByte()
		if err != nil {
			return false, err
		}
		br.accumulator = b
		br.numBits = 8
	}

	br.numBits--
	br.read++
	return (br.accumulator>>br.numBits)&1 == 1, nil
}

// ReadBits reads an n bit integer, most significant bit first.
func (br *Reader) ReadBits(n uint) (uint64, error) {
	if n > 64 {
		return 0, ErrValue
	}
	var value uint64
	for i := uint(0); i < n; i++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, noEOF(err)
		}
		value <<= 1
		if bit {
			value |= 1
		}
	}
	return value, nil
}

// ReadVarBits reads a value written by Writer.WriteVarBits with the same minBits.
func (br *Reader) ReadVarBits(minBits uint) (uint64, error) {
	if minBits > 63 {
		return 0, ErrValue
	}
	width := minBits
	limit := uint64(1)<<width - 1
	var base uint64
	for {
		stop, err := br.ReadBit()
		if err != nil {
			return 0, noEOF(err)
		}
		if stop {
			break
		}
		if width == 64 {
			return 0, ErrValue
		}
		base += limit + 1
		width++
		limit = limit<<1 | 1
	}

	offset, err := br.ReadBits(width)
	if err != nil {
		return 0, err
	}
	return base + offset, nil
}

// ReadUniqueSortedArray reads count values written by
// Writer.WriteUniqueSortedArray into dst[offset:].
func (br *Reader) ReadUniqueSortedArray(dst []uint64, offset, count int) error {
	if count == 0 {
		return nil
	}
	if offset < 0 || count < 0 || offset+count > len(dst) {
		return ErrValue
	}
	values := dst[offset : offset+count]

	width, err := br.ReadVarBits(2)
	if err != nil {
		return err
	}
	if width > 64 {
		return ErrValue
	}
	if width == 0 {
		for i := range values {
			values[i] = 0
		}
		return nil
	}
	return br.readSorted(values, uint64(1)<<(width-1), 0)
}

func (br *Reader) readSorted(values []uint64, nextbit, prefix uint64) error {
	if len(values) == 1 {
		value := prefix
		for ; nextbit != 0; nextbit >>= 1 {
			bit, err := br.ReadBit()
			if err != nil {
				return noEOF(err)
			}
			if bit {
				value |= nextbit
			}
		}
		values[0] = value
		return nil
	}
	if nextbit == 0 {
		for i := range values {
			values[i] = prefix
		}
		return nil
	}

	split, err := br.ReadBits(uint(bits.Len64(uint64(len(values)))))
	if err != nil {
		return err
	}
	if split > uint64(len(values)) {
		return ErrValue
	}

	if split > 0 {
		if err := br.readSorted(values[:split], nextbit>>1, prefix); err != nil {
			return err
		}
	}
	if split < uint64(len(values)) {
		if err := br.readSorted(values[split:], nextbit>>1, prefix|nextbit); err != nil {
			return err
		}
	}
	return nil
}

// BitsRead returns the number of bits consumed so far.
func (br *Reader) BitsRead() int64 {
	return br.read
}

// noEOF converts io.EOF in the middle of a value into io.ErrUnexpectedEOF.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
