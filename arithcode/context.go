package arithcode

import (
	"fmt"
	"math"
	"sort"
)

const (
	// symbolCountBits is the minimum width of the dictionary size.
	symbolCountBits = 3
	// maxDictionarySize limits the distinct symbols of one context model.
	maxDictionarySize = 1 << 24
)

// symbolEncoder is implemented by both passes of a context model.
type symbolEncoder interface {
	Encode(symbol int) error
}

// ContextCounter collects symbol frequencies for one context model.
// It is the counting pass of a ContextEncoder: every symbol that will be
// encoded must be passed to Encode, in the same order, before Finalize.
type ContextCounter struct {
	counts    map[int]uint64
	finalized bool
}

// NewContextCounter creates an empty counter.
func NewContextCounter() *ContextCounter {
	return &ContextCounter{counts: make(map[int]uint64)}
}

// Encode counts one occurrence of symbol. No bits are written.
func (c *ContextCounter) Encode(symbol int) error {
	if c.finalized {
		return fmt.Errorf("%w: counting after finalize", ErrProtocol)
	}
	if symbol < 0 {
		return fmt.Errorf("%w: negative symbol %d", ErrConfiguration, symbol)
	}
	c.counts[symbol]++
	return nil
}

// Finalize freezes the dictionary, writes it through enc and returns the
// encoder for the streaming pass. It must be called before enc codes any
// symbol.
func (c *ContextCounter) Finalize(enc *RangeEncoder) (*ContextEncoder, error) {
	if c.finalized {
		return nil, fmt.Errorf("%w: finalized twice", ErrProtocol)
	}
	w, err := enc.header()
	if err != nil {
		return nil, err
	}
	c.finalized = true

	if len(c.counts) > maxDictionarySize {
		return nil, fmt.Errorf("%w: %d distinct symbols", ErrConfiguration, len(c.counts))
	}

	// Symbols are indexed in ascending value order.
	symbols := make([]int, 0, len(c.counts))
	for symbol := range c.counts {
		symbols = append(symbols, symbol)
	}
	sort.Ints(symbols)

	index := make(map[int]int, len(symbols))
	freqs := make([]uint64, len(symbols))
	values := make([]uint64, len(symbols))
	for i, symbol := range symbols {
		index[symbol] = i
		freqs[i] = c.counts[symbol]
		values[i] = uint64(symbol)
	}
	c.counts = nil

	stats, err := StatsFromFrequencies(freqs)
	if err != nil {
		return nil, err
	}

	n := len(symbols)
	if err := w.WriteVarBits(uint64(n), symbolCountBits); err != nil {
		return nil, fmt.Errorf("dictionary size: %w", err)
	}
	if n > 1 {
		if err := w.WriteUniqueSortedArray(stats, 0, n); err != nil {
			return nil, fmt.Errorf("dictionary frequencies: %w", err)
		}
	}
	if err := w.WriteUniqueSortedArray(values, 0, n); err != nil {
		return nil, fmt.Errorf("dictionary symbols: %w", err)
	}

	return &ContextEncoder{
		enc:     enc,
		symbols: symbols,
		index:   index,
		stats:   stats,
	}, nil
}

// ContextEncoder is the streaming pass of a context model.
type ContextEncoder struct {
	enc     *RangeEncoder
	symbols []int
	index   map[int]int
	stats   Stats
}

// Encode writes symbol through the shared range encoder.
// Only symbols seen while counting can be encoded.
func (e *ContextEncoder) Encode(symbol int) error {
	i, ok := e.index[symbol]
	if !ok {
		return fmt.Errorf("%w: symbol %d not in dictionary", ErrProtocol, symbol)
	}
	if len(e.symbols) == 1 {
		return nil
	}
	return e.enc.Write(e.stats, i)
}

// Symbols returns the dictionary in index order.
func (e *ContextEncoder) Symbols() []int {
	return e.symbols
}

// ContextDecoder decodes symbols written by ContextEncoder.
type ContextDecoder struct {
	dec     *RangeDecoder
	symbols []int
	stats   Stats
}

// NewContextDecoder reads a dictionary through dec. It must be called
// before dec decodes any symbol.
func NewContextDecoder(dec *RangeDecoder) (*ContextDecoder, error) {
	r, err := dec.header()
	if err != nil {
		return nil, err
	}

	count, err := r.ReadVarBits(symbolCountBits)
	if err != nil {
		return nil, fmt.Errorf("dictionary size: %w", err)
	}
	if count > maxDictionarySize {
		return nil, fmt.Errorf("%w: dictionary size %d", ErrProtocol, count)
	}
	n := int(count)

	var stats Stats
	if n > 1 {
		stats = make(Stats, n)
		if err := r.ReadUniqueSortedArray(stats, 0, n); err != nil {
			return nil, fmt.Errorf("dictionary frequencies: %w", err)
		}
		if !strictlyIncreasing(stats) || stats[0] == 0 || stats.Total() > MaximumTotal {
			return nil, fmt.Errorf("%w: invalid dictionary frequencies", ErrProtocol)
		}
	}

	values := make([]uint64, n)
	if err := r.ReadUniqueSortedArray(values, 0, n); err != nil {
		return nil, fmt.Errorf("dictionary symbols: %w", err)
	}
	if !strictlyIncreasing(values) || (n > 0 && values[n-1] > math.MaxInt) {
		return nil, fmt.Errorf("%w: invalid dictionary symbols", ErrProtocol)
	}

	symbols := make([]int, n)
	for i, v := range values {
		symbols[i] = int(v)
	}

	return &ContextDecoder{
		dec:     dec,
		symbols: symbols,
		stats:   stats,
	}, nil
}

// Decode reads the next symbol.
func (d *ContextDecoder) Decode() (int, error) {
	switch len(d.symbols) {
	case 0:
		return 0, fmt.Errorf("%w: empty dictionary", ErrProtocol)
	case 1:
		return d.symbols[0], nil
	}

	i, err := d.dec.Read(d.stats)
	if err != nil {
		return 0, err
	}
	return d.symbols[i], nil
}

// Symbols returns the dictionary in index order.
func (d *ContextDecoder) Symbols() []int {
	return d.symbols
}

func strictlyIncreasing(values []uint64) bool {
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			return false
		}
	}
	return true
}
