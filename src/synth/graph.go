package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"
)

// ReleaseMargin is how long a graph keeps streaming after its last scheduled
// stop before it is torn down
const ReleaseMargin = 0.05

// Graph is the node tree built for a single trigger. It owns its nodes, plays
// from origin until the latest scheduled stop plus ReleaseMargin, then
// disconnects every node and runs its release callbacks. Nothing is shared
// between graphs.
type Graph struct {
	rate   beep.SampleRate
	origin float64
	end    float64

	nodes []Node
	out   beep.Streamer

	pos       int
	once      sync.Once
	released  int32
	onRelease []func()
}

// NewGraph starts an empty graph whose time zero is the absolute audio
// clock time t0
func NewGraph(rate beep.SampleRate, t0 float64) *Graph {
	return &Graph{rate: rate, origin: t0, end: t0}
}

func (g *Graph) SampleRate() beep.SampleRate { return g.rate }

// Origin is the absolute time the graph was triggered at
func (g *Graph) Origin() float64 { return g.origin }

// StopTime is the latest scheduled stop of any node in the graph
func (g *Graph) StopTime() float64 { return g.end }

// Len is the number of samples the graph streams before releasing itself
func (g *Graph) Len() int {
	return int(math.Ceil((g.end + ReleaseMargin - g.origin) * float64(g.rate)))
}

// Nodes returns the nodes the graph owns
func (g *Graph) Nodes() []Node { return g.nodes }

func (g *Graph) extend(t float64) {
	if t > g.end {
		g.end = t
	}
}

func (g *Graph) clock() clock {
	return clock{origin: g.origin, rate: float64(g.rate)}
}

func (g *Graph) add(n Node) { g.nodes = append(g.nodes, n) }

// Oscillator adds an oscillator at a fixed starting frequency. It is silent
// until started.
func (g *Graph) Oscillator(wave Waveform, freq float64) *Oscillator {
	o := &Oscillator{clock: g.clock(), graph: g, Wave: wave, Frequency: NewParam(freq)}
	g.add(o)
	return o
}

// Operator adds an FM pair: a sine carrier at freq and a sine modulator at
// freq*ratio whose output is scaled by an index of depth Hz
func (g *Graph) Operator(freq, ratio, depth float64) *Operator {
	op := &Operator{
		Carrier:   g.Oscillator(Sine, freq),
		Modulator: g.Oscillator(Sine, freq*ratio),
		Index:     NewParam(depth),
	}
	op.depth = g.Gain(op.Modulator, op.Index)
	op.Carrier.Modulate(op.depth)
	return op
}

// Gain adds a node scaling in by level
func (g *Graph) Gain(in beep.Streamer, level *Param) *Gain {
	n := &Gain{clock: g.clock(), in: in, Level: level}
	g.add(n)
	return n
}

// Sum adds a node mixing ins together
func (g *Graph) Sum(ins ...beep.Streamer) *Sum {
	n := &Sum{ins: ins, mix: beep.Mix(ins...)}
	g.add(n)
	return n
}

// Filter adds a biquad. gainDB only matters for Peaking.
func (g *Graph) Filter(in beep.Streamer, kind FilterKind, freq, q, gainDB float64) *Biquad {
	n := newBiquad(in, kind, float64(g.rate), freq, q, gainDB)
	g.add(n)
	return n
}

// Shape adds a waveshaper with the given transfer curve
func (g *Graph) Shape(in beep.Streamer, curve func(float64) float64) *Shaper {
	n := &Shaper{in: in, curve: curve}
	g.add(n)
	return n
}

// Crush adds a bit depth reducer
func (g *Graph) Crush(in beep.Streamer, bits int) *Shaper {
	return g.Shape(in, NewBitcrusher(bits).Crush)
}

// Saturate adds a soft clipper
func (g *Graph) Saturate(in beep.Streamer, s Saturator) *Shaper {
	return g.Shape(in, s.Saturate)
}

// Buffer adds a one-shot player for data
func (g *Graph) Buffer(data []float64) *BufferSource {
	n := &BufferSource{clock: g.clock(), graph: g, data: data}
	g.add(n)
	return n
}

// Connect makes in the graph's output
func (g *Graph) Connect(in beep.Streamer) { g.out = in }

// OnRelease registers f to run once when the graph is torn down
func (g *Graph) OnRelease(f func()) { g.onRelease = append(g.onRelease, f) }

// Release disconnects every node and runs the release callbacks. It is safe
// to call more than once.
func (g *Graph) Release() {
	g.once.Do(func() {
		for _, n := range g.nodes {
			n.Disconnect()
		}
		g.out = nil
		atomic.StoreInt32(&g.released, 1)
		for _, f := range g.onRelease {
			f()
		}
	})
}

func (g *Graph) Released() bool { return atomic.LoadInt32(&g.released) == 1 }

// Stream plays the graph. Once Len samples have been produced the graph
// releases itself and reports that it is drained.
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	remaining := g.Len() - g.pos
	if remaining <= 0 || g.out == nil {
		g.Release()
		return 0, false
	}
	if len(samples) > remaining {
		samples = samples[:remaining]
	}
	n, _ = g.out.Stream(samples)
	g.pos += n
	if g.pos >= g.Len() {
		g.Release()
	}
	return n, true
}

func (g *Graph) Err() error { return nil }
