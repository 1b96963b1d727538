package arithcode

import "fmt"

const (
	// maxValueBits is the minimum width of the maxValue header.
	maxValueBits = 4
	// escapeSymbol marks a run inside a value model; values are shifted by one.
	escapeSymbol = 0
)

// runWriter splits values into runs and routes them to context models.
// Models 0..maxValue are selected by the previous value, the last model
// holds run lengths. The same logic drives counting and streaming so that
// both passes see identical symbol sequences.
type runWriter struct {
	models       []symbolEncoder
	maxValue     int
	minRunLength int

	context   int // Previous value written to the models
	lastValue int // Value being repeated
	repCount  int // Buffered repeats of lastValue
}

func (w *runWriter) lengthModel() symbolEncoder {
	return w.models[w.maxValue+1]
}

func (w *runWriter) encode(value int) error {
	if value < 0 || value > w.maxValue {
		return fmt.Errorf("%w: value %d outside [0, %d]", ErrConfiguration, value, w.maxValue)
	}
	if w.repCount > 0 && value == w.lastValue {
		w.repCount++
		return nil
	}
	if err := w.flush(); err != nil {
		return err
	}
	w.lastValue = value
	w.repCount = 1
	return nil
}

// flush writes the buffered run.
func (w *runWriter) flush() error {
	if w.repCount == 0 {
		return nil
	}
	count := w.repCount
	w.repCount = 0

	if count >= w.minRunLength {
		if err := w.models[w.context].Encode(escapeSymbol); err != nil {
			return fmt.Errorf("run escape: %w", err)
		}
		if err := w.lengthModel().Encode(count); err != nil {
			return fmt.Errorf("run length: %w", err)
		}
		// The value itself follows once, in the same context.
		count = 1
	}

	for ; count > 0; count-- {
		if err := w.models[w.context].Encode(w.lastValue + 1); err != nil {
			return fmt.Errorf("value %d: %w", w.lastValue, err)
		}
		w.context = w.lastValue
	}
	return nil
}

// reset prepares the writer for the next pass.
func (w *runWriter) reset(models []symbolEncoder) {
	w.models = models
	w.context = 0
	w.lastValue = 0
	w.repCount = 0
}

// RunLengthCounter is the counting pass of a RunLengthEncoder.
type RunLengthCounter struct {
	run       runWriter
	counters  []*ContextCounter
	finalized bool
}

// NewRunLengthCounter creates a counter for values in [0, maxValue].
// Runs of at least minRunLength equal values are coded as escape, length
// and value instead of one symbol per value.
func NewRunLengthCounter(maxValue, minRunLength int) (*RunLengthCounter, error) {
	if maxValue < 0 || maxValue >= maxDictionarySize {
		return nil, fmt.Errorf("%w: invalid max value %d", ErrConfiguration, maxValue)
	}
	if minRunLength < 1 {
		return nil, fmt.Errorf("%w: invalid minimum run length %d", ErrConfiguration, minRunLength)
	}

	counters := make([]*ContextCounter, maxValue+2)
	models := make([]symbolEncoder, len(counters))
	for i := range counters {
		counters[i] = NewContextCounter()
		models[i] = counters[i]
	}

	c := &RunLengthCounter{counters: counters}
	c.run.maxValue = maxValue
	c.run.minRunLength = minRunLength
	c.run.reset(models)
	return c, nil
}

// Encode counts value.
func (c *RunLengthCounter) Encode(value int) error {
	if c.finalized {
		return fmt.Errorf("%w: counting after finalize", ErrProtocol)
	}
	return c.run.encode(value)
}

// Finalize flushes the pending run, writes maxValue and all dictionaries
// through enc and returns the encoder for the streaming pass.
func (c *RunLengthCounter) Finalize(enc *RangeEncoder) (*RunLengthEncoder, error) {
	if c.finalized {
		return nil, fmt.Errorf("%w: finalized twice", ErrProtocol)
	}
	c.finalized = true
	if err := c.run.flush(); err != nil {
		return nil, err
	}

	w, err := enc.header()
	if err != nil {
		return nil, err
	}
	if err := w.WriteVarBits(uint64(c.run.maxValue), maxValueBits); err != nil {
		return nil, fmt.Errorf("max value: %w", err)
	}

	models := make([]symbolEncoder, len(c.counters))
	for i, counter := range c.counters {
		model, err := counter.Finalize(enc)
		if err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
		models[i] = model
	}

	e := &RunLengthEncoder{enc: enc, run: c.run}
	e.run.reset(models)
	return e, nil
}

// RunLengthEncoder is the streaming pass of the run-length context coder.
type RunLengthEncoder struct {
	enc *RangeEncoder
	run runWriter
}

// Encode writes value. Values are replayed in exactly the counted order.
func (e *RunLengthEncoder) Encode(value int) error {
	return e.run.encode(value)
}

// Flush writes the buffered run without finishing the range encoder.
func (e *RunLengthEncoder) Flush() error {
	return e.run.flush()
}

// Finish writes the buffered run and finishes the range encoder.
func (e *RunLengthEncoder) Finish() error {
	if err := e.run.flush(); err != nil {
		return err
	}
	return e.enc.Finish()
}

// RunLengthDecoder decodes values written by RunLengthEncoder.
type RunLengthDecoder struct {
	models   []*ContextDecoder
	maxValue int

	context  int
	repCount int // Repeats of context still to return
}

// NewRunLengthDecoder reads maxValue and all dictionaries through dec.
func NewRunLengthDecoder(dec *RangeDecoder) (*RunLengthDecoder, error) {
	r, err := dec.header()
	if err != nil {
		return nil, err
	}
	maxValue, err := r.ReadVarBits(maxValueBits)
	if err != nil {
		return nil, fmt.Errorf("max value: %w", err)
	}
	if maxValue >= maxDictionarySize {
		return nil, fmt.Errorf("%w: max value %d", ErrProtocol, maxValue)
	}

	models := make([]*ContextDecoder, maxValue+2)
	for i := range models {
		models[i], err = NewContextDecoder(dec)
		if err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
	}

	return &RunLengthDecoder{
		models:   models,
		maxValue: int(maxValue),
	}, nil
}

// MaxValue returns the largest value the stream can contain.
func (d *RunLengthDecoder) MaxValue() int {
	return d.maxValue
}

// Decode reads the next value.
func (d *RunLengthDecoder) Decode() (int, error) {
	if d.repCount > 0 {
		d.repCount--
		return d.context, nil
	}

	model := d.models[d.context]
	raw, err := model.Decode()
	if err != nil {
		return 0, err
	}
	if raw == escapeSymbol {
		length, err := d.models[d.maxValue+1].Decode()
		if err != nil {
			return 0, fmt.Errorf("run length: %w", err)
		}
		if length < 1 {
			return 0, fmt.Errorf("%w: run length %d", ErrProtocol, length)
		}
		d.repCount = length - 1

		raw, err = model.Decode()
		if err != nil {
			return 0, err
		}
		if raw == escapeSymbol {
			return 0, fmt.Errorf("%w: escape after escape", ErrProtocol)
		}
	}

	value := raw - 1
	if value > d.maxValue {
		return 0, fmt.Errorf("%w: value %d exceeds %d", ErrProtocol, value, d.maxValue)
	}
	d.context = value
	return value, nil
}
