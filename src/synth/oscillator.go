package synth

import (
	"math"

	"github.com/faiface/beep"
)

// Waveform is the shape of one oscillator cycle
type Waveform int

const (
	Sine Waveform = iota
	Square
)

// at evaluates the waveform at a phase in [0, 1)
func (w Waveform) at(phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Oscillator is a phase-accumulating tone generator. Its instantaneous
// frequency is Frequency plus whatever the FM input carries (in Hz), plus
// its own previous output scaled by Feedback and the current frequency.
type Oscillator struct {
	clock
	graph *Graph

	Wave      Waveform
	Frequency *Param
	// Feedback is dimensionless; nil means no self-modulation
	Feedback *Param

	fm      beep.Streamer
	scratch [][2]float64

	start, stop float64
	started     bool
	stopped     bool

	phase float64
	last  float64
}

// Modulate routes a signal into the frequency input, replacing any previous
// one
func (o *Oscillator) Modulate(fm beep.Streamer) *Oscillator {
	o.fm = fm
	return o
}

// Start begins producing sound at absolute time t
func (o *Oscillator) Start(t float64) *Oscillator {
	o.start, o.started = t, true
	return o
}

// Stop silences the oscillator from absolute time t and extends the owning
// graph's lifetime to cover it
func (o *Oscillator) Stop(t float64) *Oscillator {
	o.stop, o.stopped = t, true
	o.graph.extend(t)
	return o
}

func (o *Oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	var fm [][2]float64
	if o.fm != nil {
		if cap(o.scratch) < len(samples) {
			o.scratch = make([][2]float64, len(samples))
		}
		fm = o.scratch[:len(samples)]
		fn, _ := o.fm.Stream(fm)
		silence(fm[fn:])
	}

	for i := range samples {
		t := o.at(i)
		if !o.started || t < o.start || (o.stopped && t >= o.stop) {
			samples[i] = [2]float64{}
			continue
		}

		freq := o.Frequency.ValueAt(t)
		if fm != nil {
			freq += fm[i][0]
		}
		if o.Feedback != nil {
			freq += o.Feedback.ValueAt(t) * o.last * freq
		}

		v := o.Wave.at(o.phase)
		o.last = v
		samples[i] = [2]float64{v, v}

		o.phase += freq / o.rate
		o.phase -= math.Floor(o.phase)
	}
	o.advance(len(samples))
	return len(samples), true
}

func (o *Oscillator) Err() error { return nil }

func (o *Oscillator) Disconnect() {
	o.fm = nil
	o.scratch = nil
}

// Operator is a carrier/modulator FM pair. The modulator's output, scaled by
// Index (the modulation depth in Hz), drives the carrier's frequency input.
type Operator struct {
	Carrier   *Oscillator
	Modulator *Oscillator
	Index     *Param
	depth     *Gain
}

// Start starts both oscillators at t
func (op *Operator) Start(t float64) *Operator {
	op.Carrier.Start(t)
	op.Modulator.Start(t)
	return op
}

// Stop stops both oscillators at t
func (op *Operator) Stop(t float64) *Operator {
	op.Carrier.Stop(t)
	op.Modulator.Stop(t)
	return op
}

// WithFeedback lets the carrier modulate itself
func (op *Operator) WithFeedback(fb *Param) *Operator {
	op.Carrier.Feedback = fb
	return op
}

func (op *Operator) Stream(samples [][2]float64) (n int, ok bool) {
	return op.Carrier.Stream(samples)
}

func (op *Operator) Err() error { return nil }

func (op *Operator) Disconnect() {
	op.Carrier.Disconnect()
	op.depth.Disconnect()
}
