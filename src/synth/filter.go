package synth

import (
	"math"

	"github.com/faiface/beep"
)

type FilterKind int

const (
	Lowpass FilterKind = iota
	Highpass
	Bandpass
	Peaking
)

// Biquad is a second order filter with cookbook coefficients. The response
// is fixed when the node is built.
type Biquad struct {
	in beep.Streamer

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func newBiquad(in beep.Streamer, kind FilterKind, rate, freq, q, gainDB float64) *Biquad {
	w := 2 * math.Pi * math.Min(freq, rate*0.49) / rate
	cosw := math.Cos(w)
	alpha := math.Sin(w) / (2 * q)

	var b0, b1, b2, a0, a1, a2 float64
	switch kind {
	case Highpass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = (1 + cosw) / 2
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case Bandpass:
		// constant 0 dB peak gain
		b0, b1, b2 = alpha, 0, -alpha
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	case Peaking:
		A := math.Pow(10, gainDB/40)
		b0, b1, b2 = 1+alpha*A, -2*cosw, 1-alpha*A
		a0, a1, a2 = 1+alpha/A, -2*cosw, 1-alpha/A
	default:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = (1 - cosw) / 2
		a0, a1, a2 = 1+alpha, -2*cosw, 1-alpha
	}

	return &Biquad{
		in: in,
		b0: b0 / a0, b1: b1 / a0, b2: b2 / a0,
		a1: a1 / a0, a2: a2 / a0,
	}
}

func (f *Biquad) Stream(samples [][2]float64) (n int, ok bool) {
	if f.in == nil {
		silence(samples)
		return len(samples), true
	}
	n, _ = f.in.Stream(samples)
	silence(samples[n:])
	for i := range samples {
		x := samples[i][0]
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2

		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y

		samples[i] = [2]float64{y, y}
	}
	return len(samples), true
}

func (f *Biquad) Err() error  { return nil }
func (f *Biquad) Disconnect() { f.in = nil }
