package arithcode

import "fmt"

// BitWriter is the bit channel an encoder writes to.
// bitstream.Writer implements it.
type BitWriter interface {
	WriteBit(bit bool) error
	WriteBits(n uint, value uint64) error
	WriteVarBits(value uint64, minBits uint) error
	WriteUniqueSortedArray(src []uint64, offset, count int) error
}

// RangeEncoder compresses symbols using range coding.
//
// A RangeEncoder owns the position of its bit channel for one session.
// Context models borrow it and write their dictionaries through it, but only
// before the first symbol is coded.
type RangeEncoder struct {
	coder
	output      BitWriter
	pendingBits int  // Number of pending underflow bits
	coded       bool // Whether any symbol went through the coder
	finished    bool
}

// NewRangeEncoder creates a new range encoder that writes to w.
func NewRangeEncoder(w BitWriter) *RangeEncoder {
	return &RangeEncoder{
		coder:  newCoder(),
		output: w,
	}
}

// Write encodes symbol using the cumulative frequency table stats.
func (e *RangeEncoder) Write(stats Stats, symbol int) error {
	if e.finished {
		return fmt.Errorf("%w: write after finish", ErrProtocol)
	}
	e.coded = true
	return e.update(stats, symbol, e)
}

// Finish flushes the state so that a decoder can resolve the last symbol.
// It writes nothing when no symbol was coded. The encoder cannot be used
// afterwards.
func (e *RangeEncoder) Finish() error {
	if e.finished {
		return fmt.Errorf("%w: finish called twice", ErrProtocol)
	}
	e.finished = true
	if !e.coded {
		return nil
	}

	// halfRange is always inside [low, high] after renormalization.
	if err := e.writeBitAndFollow(true); err != nil {
		return err
	}
	return e.output.WriteBits(stateBits-1, 0)
}

// header returns the bit channel for writing dictionary data.
func (e *RangeEncoder) header() (BitWriter, error) {
	if e.coded || e.finished {
		return nil, fmt.Errorf("%w: header written after coding started", ErrProtocol)
	}
	return e.output, nil
}

func (e *RangeEncoder) shift() error {
	return e.writeBitAndFollow(e.low>>(stateBits-1) != 0)
}

func (e *RangeEncoder) underflow() error {
	e.pendingBits++
	return nil
}

// writeBitAndFollow writes bit followed by the pending underflow bits inverted.
func (e *RangeEncoder) writeBitAndFollow(bit bool) error {
	if err := e.output.WriteBit(bit); err != nil {
		return err
	}
	for ; e.pendingBits > 0; e.pendingBits-- {
		if err := e.output.WriteBit(!bit); err != nil {
			return err
		}
	}
	return nil
}
