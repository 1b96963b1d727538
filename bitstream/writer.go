// Package bitstream implements a sequential bit channel over io.Writer and
// io.Reader. Besides single bits and fixed width integers it supports
// variable length unsigned integers and compact encoding of sorted integer
// arrays, which is what tile dictionaries are written with.
package bitstream

import (
	"errors"
	"io"
	"math/bits"
)

// ErrValue is returned when a value cannot be represented in the requested form.
var ErrValue = errors.New("bitstream: invalid value")

// Writer writes individual bits to an io.Writer, most significant bit first.
type Writer struct {
	output      io.Writer
	accumulator byte
	numBits     int
	written     int64
	err         error
}

// NewWriter creates a bit writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{output: w}
}

// WriteBit writes a single bit.
func (bw *Writer) WriteBit(bit bool) error {
	if bw.err != nil {
		return bw.err
	}

	bw.accumulator <<= 1
	if bit {
		bw.accumulator |= 1
	}
	bw.numBits++
	bw.written++

	if bw.numBits == 8 {
		if _, err := bw.output.Write([]byte{bw.accumulator}); err != nil {
			bw.err = err
			return err
		}
		bw.accumulator = 0
		bw.numBits = 0
	}

	return nil
}

// WriteBits writes the low n bits of value, most significant first.
func (bw *Writer) WriteBits(n uint, value uint64) error {
	if n > 64 {
		return ErrValue
	}
	for i := int(n) - 1; i >= 0; i-- {
		if err := bw.WriteBit(value&(1<<uint(i)) != 0); err != nil {
			return err
		}
	}
	return nil
}

// WriteVarBits writes value using buckets of growing width. The first bucket
// holds values below 1<<minBits; every '0' bit escalates to the next bucket,
// which is twice as large, and a '1' bit ends the prefix. The offset inside
// the bucket follows as a fixed width integer.
func (bw *Writer) WriteVarBits(value uint64, minBits uint) error {
	if minBits > 63 {
		return ErrValue
	}
	width := minBits
	limit := uint64(1)<<width - 1
	for value > limit {
		if width == 64 {
			return ErrValue
		}
		if err := bw.WriteBit(false); err != nil {
			return err
		}
		value -= limit + 1
		width++
		limit = limit<<1 | 1
	}
	if err := bw.WriteBit(true); err != nil {
		return err
	}
	return bw.WriteBits(width, value)
}

// WriteUniqueSortedArray writes count non-decreasing values starting at
// src[offset]. The count itself is not written; the reader must know it.
func (bw *Writer) WriteUniqueSortedArray(src []uint64, offset, count int) error {
	if count == 0 {
		return nil
	}
	if offset < 0 || count < 0 || offset+count > len(src) {
		return ErrValue
	}
	values := src[offset : offset+count]
	for i := 1; i < len(values); i++ {
		if values[i] < values[i-1] {
			return ErrValue
		}
	}

	width := uint(bits.Len64(values[len(values)-1]))
	if err := bw.WriteVarBits(uint64(width), 2); err != nil {
		return err
	}
	if width == 0 {
		return nil
	}
	return bw.writeSorted(values, uint64(1)<<(width-1))
}

// writeSorted writes values that share all bits above nextbit.
func (bw *Writer) writeSorted(values []uint64, nextbit uint64) error {
	if len(values) == 1 {
		for ; nextbit != 0; nextbit >>= 1 {
			if err := bw.WriteBit(values[0]&nextbit != 0); err != nil {
				return err
			}
		}
		return nil
	}
	if nextbit == 0 {
		return nil
	}

	split := 0
	for split < len(values) && values[split]&nextbit == 0 {
		split++
	}
	if err := bw.writeBounded(uint64(split), uint64(len(values))); err != nil {
		return err
	}

	if split > 0 {
		if err := bw.writeSorted(values[:split], nextbit>>1); err != nil {
			return err
		}
	}
	if split < len(values) {
		if err := bw.writeSorted(values[split:], nextbit>>1); err != nil {
			return err
		}
	}
	return nil
}

// writeBounded writes value in [0, max] with just enough bits for max.
func (bw *Writer) writeBounded(value, max uint64) error {
	return bw.WriteBits(uint(bits.Len64(max)), value)
}

// BitsWritten returns the number of bits written so far, excluding padding.
func (bw *Writer) BitsWritten() int64 {
	return bw.written
}

// Flush pads the pending bits with zeros to complete the byte.
func (bw *Writer) Flush() error {
	if bw.err != nil {
		return bw.err
	}
	if bw.numBits > 0 {
		bw.accumulator <<= (8 - bw.numBits)
		if _, err := bw.output.Write([]byte{bw.accumulator}); err != nil {
			bw.err = err
			return err
		}
		bw.accumulator = 0
		bw.numBits = 0
	}
	return nil
}
