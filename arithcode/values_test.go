package arithcode

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/egonelbre/exp-tile-compression/bitstream"
)

func TestValuesRoundtrip(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		opts   Options
	}{
		{"Empty", nil, DefaultOptions()},
		{"Single", []int{42}, DefaultOptions()},
		{"Zeros", make([]int, 1000), DefaultOptions()},
		{"Fixed max", []int{0, 1, 2, 3, 3, 3, 3, 3, 2, 1}, Options{MaxValue: 10, MinRunLength: 3}},
		{"No runs", []int{5, 5, 5, 5, 5, 5, 1}, Options{MaxValue: -1, MinRunLength: 100}},
		{"Every run", []int{1, 2, 2, 3, 3, 3}, Options{MaxValue: -1, MinRunLength: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeValues(tt.values, tt.opts, &buf); err != nil {
				t.Fatalf("EncodeValues failed: %v", err)
			}

			decoded, err := DecodeValues(&buf)
			if err != nil {
				t.Fatalf("DecodeValues failed: %v", err)
			}
			if len(decoded) != len(tt.values) {
				t.Fatalf("Expected %d values, got %d", len(tt.values), len(decoded))
			}
			for i, expected := range tt.values {
				if decoded[i] != expected {
					t.Errorf("Position %d: expected %d, got %d", i, expected, decoded[i])
				}
			}
		})
	}
}

func TestValuesRejectsOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeValues([]int{1, 2, 9}, Options{MaxValue: 5, MinRunLength: 4}, &buf)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestSymbolsRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	symbols := make([]int, 2000)
	for i := range symbols {
		symbols[i] = rng.Intn(10) * rng.Intn(10) * 1000
	}

	var buf bytes.Buffer
	if err := EncodeSymbols(symbols, &buf); err != nil {
		t.Fatalf("EncodeSymbols failed: %v", err)
	}
	decoded, err := DecodeSymbols(&buf)
	if err != nil {
		t.Fatalf("DecodeSymbols failed: %v", err)
	}
	for i, expected := range symbols {
		if decoded[i] != expected {
			t.Fatalf("Position %d: expected %d, got %d", i, expected, decoded[i])
		}
	}
}

func TestStreamsShareChannel(t *testing.T) {
	values := []int{0, 0, 0, 0, 0, 0, 1, 1, 2, 0, 0, 0, 0, 0}
	symbols := []int{100, 200, 100, 100, 300}
	empty := []int{}

	var buf bytes.Buffer
	w := bitstream.NewWriter(&buf)
	if err := WriteValues(w, values, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if err := WriteSymbols(w, empty); err != nil {
		t.Fatal(err)
	}
	if err := WriteSymbols(w, symbols); err != nil {
		t.Fatal(err)
	}
	if err := WriteValues(w, values, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := bitstream.NewReader(&buf)
	check := func(name string, got []int, err error, expected []int) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(got) != len(expected) {
			t.Fatalf("%s: expected %v, got %v", name, expected, got)
		}
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("%s: expected %v, got %v", name, expected, got)
			}
		}
	}

	got, err := ReadValues(r)
	check("values", got, err, values)
	got, err = ReadSymbols(r)
	check("empty", got, err, empty)
	got, err = ReadSymbols(r)
	check("symbols", got, err, symbols)
	got, err = ReadValues(r)
	check("values again", got, err, values)
}

func TestDecodeValuesTruncated(t *testing.T) {
	values := make([]int, 500)
	rng := rand.New(rand.NewSource(3))
	for i := range values {
		values[i] = rng.Intn(30)
	}

	var buf bytes.Buffer
	if err := EncodeValues(values, DefaultOptions(), &buf); err != nil {
		t.Fatal(err)
	}
	truncated := buf.Bytes()[:buf.Len()/3]

	if _, err := DecodeValues(bytes.NewReader(truncated)); err == nil {
		t.Error("Expected an error for truncated input")
	}
}
