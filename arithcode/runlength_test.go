package arithcode

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/egonelbre/exp-tile-compression/bitstream"
)

// encodeRunLength runs both passes of the run-length coder over values.
func encodeRunLength(t testing.TB, values []int, maxValue, minRunLength int) (*RunLengthEncoder, []byte) {
	t.Helper()

	counter, err := NewRunLengthCounter(maxValue, minRunLength)
	if err != nil {
		t.Fatalf("NewRunLengthCounter failed: %v", err)
	}
	for i, v := range values {
		if err := counter.Encode(v); err != nil {
			t.Fatalf("Count at position %d failed: %v", i, err)
		}
	}

	var buf bytes.Buffer
	w := bitstream.NewWriter(&buf)
	stream, err := counter.Finalize(NewRangeEncoder(w))
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	for i, v := range values {
		if err := stream.Encode(v); err != nil {
			t.Fatalf("Encode at position %d failed: %v", i, err)
		}
	}
	if err := stream.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	return stream, buf.Bytes()
}

func decodeRunLength(t testing.TB, data []byte, n int) []int {
	t.Helper()

	stream, err := NewRunLengthDecoder(NewRangeDecoder(bitstream.NewReader(bytes.NewReader(data))))
	if err != nil {
		t.Fatalf("NewRunLengthDecoder failed: %v", err)
	}
	values := make([]int, n)
	for i := range values {
		values[i], err = stream.Decode()
		if err != nil {
			t.Fatalf("Decode at position %d failed: %v", i, err)
		}
	}
	return values
}

func TestRunLengthSingleRun(t *testing.T) {
	values := []int{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}

	stream, encoded := encodeRunLength(t, values, 5, 4)
	decoded := decodeRunLength(t, encoded, len(values))
	for i, expected := range values {
		if decoded[i] != expected {
			t.Errorf("Position %d: expected %d, got %d", i, expected, decoded[i])
		}
	}

	// The whole run went through the escape: one length of 10, and the
	// starting context saw the escape and the value 3 (coded as 4).
	lengths := stream.run.models[6].(*ContextEncoder).Symbols()
	if len(lengths) != 1 || lengths[0] != 10 {
		t.Errorf("Expected run lengths [10], got %v", lengths)
	}
	first := stream.run.models[0].(*ContextEncoder).Symbols()
	if len(first) != 2 || first[0] != escapeSymbol || first[1] != 4 {
		t.Errorf("Expected context 0 symbols [0 4], got %v", first)
	}
}

func TestRunLengthBeatsPerSymbolCoding(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	var values []int
	for i := 0; i < 100; i++ {
		values = append(values, rng.Intn(6))
	}
	for _, v := range []int{1, 4, 2, 5, 3} {
		for i := 0; i < 5000; i++ {
			values = append(values, v)
		}
	}

	_, runLength := encodeRunLength(t, values, 5, 4)

	var perSymbol bytes.Buffer
	if err := EncodeSymbols(values, &perSymbol); err != nil {
		t.Fatal(err)
	}

	t.Logf("Run-length: %d bytes, per symbol: %d bytes", len(runLength), perSymbol.Len())
	if len(runLength)*10 > perSymbol.Len() {
		t.Errorf("Run-length coding (%d bytes) not clearly smaller than per symbol coding (%d bytes)",
			len(runLength), perSymbol.Len())
	}

	decoded := decodeRunLength(t, runLength, len(values))
	for i, expected := range values {
		if decoded[i] != expected {
			t.Fatalf("Position %d: expected %d, got %d", i, expected, decoded[i])
		}
	}
}

func TestRunLengthEconomy(t *testing.T) {
	size := func(n int) int {
		values := make([]int, n)
		for i := range values {
			values[i] = 2
		}
		_, encoded := encodeRunLength(t, values, 3, 4)
		return len(encoded)
	}

	short, long := size(10), size(10000)
	t.Logf("Run of 10: %d bytes, run of 10000: %d bytes", short, long)
	if long > 2*short {
		t.Errorf("Run of 10000 (%d bytes) grew too much compared to run of 10 (%d bytes)", long, short)
	}
}

func TestRunLengthRoundtripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	for trial := 0; trial < 100; trial++ {
		maxValue := rng.Intn(20)
		minRunLength := 1 + rng.Intn(8)

		target := 1 + rng.Intn(3000)
		values := make([]int, 0, target)
		for len(values) < target {
			v := rng.Intn(maxValue + 1)
			// Mix isolated values with runs of varying length.
			n := 1
			if rng.Intn(4) == 0 {
				n = 1 + rng.Intn(3*minRunLength)
			}
			for i := 0; i < n; i++ {
				values = append(values, v)
			}
		}

		_, encoded := encodeRunLength(t, values, maxValue, minRunLength)
		decoded := decodeRunLength(t, encoded, len(values))
		for i, expected := range values {
			if decoded[i] != expected {
				t.Fatalf("Trial %d (max %d, min run %d), position %d: expected %d, got %d",
					trial, maxValue, minRunLength, i, expected, decoded[i])
			}
		}
	}
}

func TestRunLengthTail(t *testing.T) {
	tests := []struct {
		name   string
		values []int
	}{
		{"SingleValue", []int{4}},
		{"ShortTail", []int{1, 1, 1, 1, 1, 2}},
		{"LongTail", []int{2, 0, 0, 0, 0, 0, 0, 0}},
		{"ShortRunTail", []int{5, 5, 3, 3}},
		{"Alternating", []int{0, 1, 0, 1, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, encoded := encodeRunLength(t, tt.values, 5, 4)
			decoded := decodeRunLength(t, encoded, len(tt.values))
			for i, expected := range tt.values {
				if decoded[i] != expected {
					t.Errorf("Position %d: expected %d, got %d", i, expected, decoded[i])
				}
			}
		})
	}
}

func TestRunLengthEmpty(t *testing.T) {
	_, encoded := encodeRunLength(t, nil, 2, 4)

	stream, err := NewRunLengthDecoder(NewRangeDecoder(bitstream.NewReader(bytes.NewReader(encoded))))
	if err != nil {
		t.Fatal(err)
	}
	if stream.MaxValue() != 2 {
		t.Errorf("Expected max value 2, got %d", stream.MaxValue())
	}
	if _, err := stream.Decode(); !errors.Is(err, ErrProtocol) {
		t.Errorf("Expected ErrProtocol, got %v", err)
	}
}

func TestRunLengthOptions(t *testing.T) {
	if _, err := NewRunLengthCounter(-1, 4); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for negative max value, got %v", err)
	}
	if _, err := NewRunLengthCounter(5, 0); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for zero run length, got %v", err)
	}

	counter, err := NewRunLengthCounter(5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := counter.Encode(6); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for value above max, got %v", err)
	}
	if err := counter.Encode(-1); !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration for negative value, got %v", err)
	}
}

func TestRunLengthCounterLifecycle(t *testing.T) {
	counter, err := NewRunLengthCounter(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := counter.Encode(1); err != nil {
		t.Fatal(err)
	}
	enc := NewRangeEncoder(bitstream.NewWriter(&bytes.Buffer{}))
	if _, err := counter.Finalize(enc); err != nil {
		t.Fatal(err)
	}
	if _, err := counter.Finalize(enc); !errors.Is(err, ErrProtocol) {
		t.Errorf("Expected ErrProtocol for second finalize, got %v", err)
	}
	if err := counter.Encode(1); !errors.Is(err, ErrProtocol) {
		t.Errorf("Expected ErrProtocol for counting after finalize, got %v", err)
	}
}

func TestRunLengthSharedCoder(t *testing.T) {
	// Two coders on one range coder, each flushed before the next starts.
	first := []int{1, 1, 1, 1, 1, 0, 2, 2, 1}
	second := []int{7, 7, 0, 0, 0, 0, 0, 0, 3}

	a, err := NewRunLengthCounter(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRunLengthCounter(7, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range first {
		_ = a.Encode(v)
	}
	for _, v := range second {
		_ = b.Encode(v)
	}

	var buf bytes.Buffer
	w := bitstream.NewWriter(&buf)
	enc := NewRangeEncoder(w)
	streamA, err := a.Finalize(enc)
	if err != nil {
		t.Fatal(err)
	}
	streamB, err := b.Finalize(enc)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range first {
		if err := streamA.Encode(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := streamA.Flush(); err != nil {
		t.Fatal(err)
	}
	for _, v := range second {
		if err := streamB.Encode(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := streamB.Finish(); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	dec := NewRangeDecoder(bitstream.NewReader(&buf))
	decA, err := NewRunLengthDecoder(dec)
	if err != nil {
		t.Fatal(err)
	}
	decB, err := NewRunLengthDecoder(dec)
	if err != nil {
		t.Fatal(err)
	}
	for i, expected := range first {
		if v, err := decA.Decode(); err != nil || v != expected {
			t.Fatalf("First, position %d: expected %d, got %d, %v", i, expected, v, err)
		}
	}
	for i, expected := range second {
		if v, err := decB.Decode(); err != nil || v != expected {
			t.Fatalf("Second, position %d: expected %d, got %d, %v", i, expected, v, err)
		}
	}
}

func TestRunLengthDeterministic(t *testing.T) {
	values := []int{0, 0, 0, 0, 0, 1, 2, 1, 2, 2, 2, 2, 2, 2, 0}
	_, first := encodeRunLength(t, values, 2, 4)
	_, second := encodeRunLength(t, values, 2, 4)
	if !bytes.Equal(first, second) {
		t.Error("Encoding the same values twice produced different output")
	}
}
