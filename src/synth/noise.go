package synth

import (
	"math"
	"math/rand"
)

// Rand is the slice of *rand.Rand the synthesis code draws from
type Rand interface {
	Float64() float64
}

// Uniform draws from [lo, hi)
func Uniform(r Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

var _ Rand = (*rand.Rand)(nil)

// NoiseBuffer fills sampleRate*seconds samples with independent uniform
// noise in [-1, 1]. A positive decay bakes in exp(-i/(len*decay)), which is
// cheaper than an automated gain for a fixed fade.
func NoiseBuffer(r Rand, sampleRate int, seconds, decay float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	buf := make([]float64, n)
	for i := range buf {
		buf[i] = r.Float64()*2 - 1
		if decay > 0 {
			buf[i] *= math.Exp(-float64(i) / (float64(n) * decay))
		}
	}
	return buf
}

// BufferSource plays a mono buffer once from its start time
type BufferSource struct {
	clock
	graph *Graph
	data  []float64
	start float64
	from  int
	on    bool
}

// Start begins playback at absolute time t and keeps the graph alive until
// the buffer has played out
func (b *BufferSource) Start(t float64) *BufferSource {
	b.start, b.on = t, true
	b.graph.extend(t + float64(len(b.data))/b.rate)
	return b
}

func (b *BufferSource) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := b.at(i)
		if !b.on || t < b.start || b.from >= len(b.data) {
			samples[i] = [2]float64{}
			continue
		}
		v := b.data[b.from]
		b.from++
		samples[i] = [2]float64{v, v}
	}
	b.advance(len(samples))
	return len(samples), true
}

func (b *BufferSource) Err() error  { return nil }
func (b *BufferSource) Disconnect() { b.data = nil }
