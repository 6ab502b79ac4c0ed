package synth

import (
	"github.com/faiface/beep"
)

// Node is a mono signal stage of a Graph. Nodes write the same value to both
// channels so they can be handed straight to beep.
type Node interface {
	beep.Streamer
	// Disconnect drops the node's inputs; a disconnected node streams silence
	Disconnect()
}

// clock tracks the absolute audio time of the next sample a node produces.
// All nodes of a graph share an origin and are pulled in lockstep.
type clock struct {
	origin float64
	rate   float64
	pos    int
}

func (c *clock) at(i int) float64 { return c.origin + float64(c.pos+i)/c.rate }

func (c *clock) advance(n int) { c.pos += n }

func silence(samples [][2]float64) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
}

// Gain scales its input by an automated level
type Gain struct {
	clock
	in    beep.Streamer
	Level *Param
}

func (g *Gain) Stream(samples [][2]float64) (n int, ok bool) {
	if g.in == nil {
		silence(samples)
		g.advance(len(samples))
		return len(samples), true
	}
	n, _ = g.in.Stream(samples)
	silence(samples[n:])
	for i := range samples {
		v := g.Level.ValueAt(g.at(i))
		samples[i][0] *= v
		samples[i][1] *= v
	}
	g.advance(len(samples))
	return len(samples), true
}

func (g *Gain) Err() error  { return nil }
func (g *Gain) Disconnect() { g.in = nil }

// Sum adds its inputs sample by sample
type Sum struct {
	ins []beep.Streamer
	mix beep.Streamer
}

func (s *Sum) Stream(samples [][2]float64) (n int, ok bool) {
	if s.mix == nil {
		silence(samples)
		return len(samples), true
	}
	n, _ = s.mix.Stream(samples)
	silence(samples[n:])
	return len(samples), true
}

func (s *Sum) Err() error { return nil }

func (s *Sum) Disconnect() {
	s.ins = nil
	s.mix = nil
}

// Shaper runs every sample through a transfer function, the way a waveshaper
// with a fixed curve does
type Shaper struct {
	in    beep.Streamer
	curve func(float64) float64
}

func (s *Shaper) Stream(samples [][2]float64) (n int, ok bool) {
	if s.in == nil {
		silence(samples)
		return len(samples), true
	}
	n, _ = s.in.Stream(samples)
	silence(samples[n:])
	for i := range samples {
		samples[i][0] = s.curve(samples[i][0])
		samples[i][1] = s.curve(samples[i][1])
	}
	return len(samples), true
}

func (s *Shaper) Err() error  { return nil }
func (s *Shaper) Disconnect() { s.in = nil }
