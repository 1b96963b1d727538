// Package arithcode implements the range coder used for routing tiles.
// Symbols are coded against static cumulative frequency tables that are
// collected in a counting pass and shipped as a compact dictionary ahead of
// the coded stream. Context models and a run-length escape build on top of
// the plain RangeEncoder and RangeDecoder.
package arithcode

import (
	"fmt"
	"sort"
)

// Stats is a cumulative frequency table. Stats[i] is the summed frequency of
// symbols 0..i, so the last entry is the total and the frequency range of
// symbol i is [Stats[i-1], Stats[i]).
type Stats []uint64

// SymbolCount returns the number of symbols in the table.
func (s Stats) SymbolCount() int {
	return len(s)
}

// Total returns the sum of all symbol frequencies.
func (s Stats) Total() uint64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Freq returns the cumulative frequency range [low, high) for the given symbol.
func (s Stats) Freq(symbol int) (low, high uint64) {
	if symbol > 0 {
		low = s[symbol-1]
	}
	return low, s[symbol]
}

// Find returns the symbol whose frequency range contains value.
// The value must be in range [0, Total()).
func (s Stats) Find(value uint64) int {
	return sort.Search(len(s), func(i int) bool {
		return s[i] > value
	})
}

// StatsFromFrequencies converts per-symbol counts in place into a cumulative
// table whose total does not exceed MaximumTotal. Counts are halved,
// rounding up, until they fit, so nonzero counts stay nonzero.
func StatsFromFrequencies(counts []uint64) (Stats, error) {
	if uint64(len(counts)) > MaximumTotal {
		return nil, fmt.Errorf("%w: %d symbols exceed maximum total %d", ErrConfiguration, len(counts), MaximumTotal)
	}

	for {
		var sum uint64
		overflow := false
		for _, v := range counts {
			if sum+v < sum {
				overflow = true
			}
			sum += v
		}
		if !overflow && sum <= MaximumTotal {
			break
		}
		for i, v := range counts {
			counts[i] = v>>1 + v&1
		}
	}

	var sum uint64
	for i, v := range counts {
		sum += v
		counts[i] = sum
	}
	return Stats(counts), nil
}
