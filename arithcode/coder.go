package arithcode

import "fmt"

const (
	// stateBits defines the precision of the arithmetic coding state.
	stateBits = 32
	// fullRange is the size of the state space (2^32).
	fullRange uint64 = 1 << stateBits
	// halfRange is the midpoint of the state range.
	halfRange = fullRange >> 1
	// quarterRange is one quarter of the state range.
	quarterRange = halfRange >> 1
	// minimumRange is the smallest range left after renormalization.
	minimumRange = quarterRange + 2
	// stateMask masks a value to stateBits.
	stateMask = fullRange - 1

	// MaximumTotal is the largest frequency total a table may have. It keeps
	// total*range within 63 bits and every symbol at least one unit wide.
	MaximumTotal = min((1<<63)/fullRange, minimumRange)
)

// renormalizer receives the renormalization steps of a coder.
// shift is called before a settled top bit is shifted out,
// underflow before the second highest bit is removed.
type renormalizer interface {
	shift() error
	underflow() error
}

// coder holds the interval shared by RangeEncoder and RangeDecoder.
type coder struct {
	low  uint64 // Lower bound of the current interval
	high uint64 // Upper bound of the current interval (inclusive)
}

func newCoder() coder {
	return coder{low: 0, high: stateMask}
}

// update narrows the interval to symbol and renormalizes it.
func (c *coder) update(stats Stats, symbol int, r renormalizer) error {
	if c.low >= c.high || c.low&stateMask != c.low || c.high&stateMask != c.high {
		return fmt.Errorf("%w: invalid interval [%d, %d]", ErrProtocol, c.low, c.high)
	}
	rangeSize := c.high - c.low + 1
	if rangeSize < minimumRange || rangeSize > fullRange {
		return fmt.Errorf("%w: range %d out of bounds", ErrProtocol, rangeSize)
	}

	if symbol < 0 || symbol >= stats.SymbolCount() {
		return fmt.Errorf("%w: symbol %d outside table of %d", ErrConfiguration, symbol, stats.SymbolCount())
	}
	total := stats.Total()
	symLow, symHigh := stats.Freq(symbol)
	if symLow >= symHigh {
		return fmt.Errorf("%w: symbol %d has zero frequency", ErrConfiguration, symbol)
	}
	if total > MaximumTotal {
		return fmt.Errorf("%w: total %d exceeds %d", ErrConfiguration, total, MaximumTotal)
	}

	// Calculate the new interval
	c.high = c.low + symHigh*rangeSize/total - 1
	c.low = c.low + symLow*rangeSize/total

	// Shift out settled top bits
	for (c.low^c.high)&halfRange == 0 {
		if err := r.shift(); err != nil {
			return err
		}
		c.low = (c.low << 1) & stateMask
		c.high = ((c.high << 1) & stateMask) | 1
	}

	// Underflow: low is 01..., high is 10...
	for c.low&^c.high&quarterRange != 0 {
		if err := r.underflow(); err != nil {
			return err
		}
		c.low = (c.low << 1) ^ halfRange
		c.high = ((c.high ^ halfRange) << 1) | halfRange | 1
	}

	return nil
}
