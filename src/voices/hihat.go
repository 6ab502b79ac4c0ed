package voices

import (
	"math"

	"github.com/faiface/beep"

	"tjweldon/drumkit/src/synth"
)

// metal pairs: carrier base and a deliberately non-integer modulator ratio
var hihatPairs = [3]struct{ base, ratio float64 }{
	{3140, 1.4471},
	{4750, 1.6173},
	{6370, 2.3317},
}

const hihatDecay = 0.08

// hihatDraw is everything a hihat hit randomizes, each an independent
// uniform draw
type hihatDraw struct {
	decay      float64
	bits       int
	drift      float64
	wobble     [len(hihatPairs)][2]float64 // cents, carrier then modulator
	index      float64
	indexDecay float64
	band       float64
	noiseBand  float64
}

func drawHihat(r synth.Rand) hihatDraw {
	d := hihatDraw{
		decay:      hihatDecay * synth.Uniform(r, 0.85, 1.15),
		bits:       10 + int(r.Float64()*3),
		drift:      synth.Uniform(r, 0.97, 1.03),
		index:      synth.Uniform(r, 0.8, 1.6),
		indexDecay: synth.Uniform(r, 0.02, 0.05),
		band:       synth.Uniform(r, 5500, 6500),
		noiseBand:  synth.Uniform(r, 3500, 4500),
	}
	for i := range d.wobble {
		for j := range d.wobble[i] {
			c := synth.Uniform(r, 5, 15)
			if r.Float64() < 0.5 {
				c = -c
			}
			d.wobble[i][j] = c
		}
	}
	return d
}

func cents(c float64) float64 { return math.Exp2(c / 1200) }

// Hihat is three detuned FM pairs plus a darker noise layer, crushed to
// 10-12 bits and filtered like an old drum machine. No two hits are the
// same.
func Hihat(g *synth.Graph, r synth.Rand, _ Options) {
	t0 := g.Origin()
	d := drawHihat(r)
	stop := t0 + d.decay

	metal := make([]beep.Streamer, 0, len(hihatPairs)+1)
	for i, p := range hihatPairs {
		freq := p.base * d.drift * cents(d.wobble[i][0])
		op := g.Operator(freq, p.ratio, freq*d.index)
		op.Modulator.Frequency.SetValueAtTime(freq*p.ratio*cents(d.wobble[i][1]), t0)
		op.Index.Apply(t0,
			synth.Set(0, freq*d.index),
			synth.Exp(d.indexDecay, freq*d.index*0.05),
		)
		op.Start(t0).Stop(stop)
		metal = append(metal, g.Gain(op, synth.Const(1.0/3)))
	}

	noise := g.Buffer(synth.NoiseBuffer(r, int(g.SampleRate()), d.decay, 0)).Start(t0)
	dark := g.Filter(noise, synth.Bandpass, d.noiseBand, 1, 0)
	metal = append(metal, g.Gain(dark, synth.Const(0.35)))

	crushed := g.Crush(g.Sum(metal...), d.bits)
	vintage := g.Filter(crushed, synth.Bandpass, d.band, 1.2, 0)
	cut := g.Filter(vintage, synth.Lowpass, 11000, 0.707, 0)

	amp := g.Gain(cut, synth.NewParam(0).Apply(t0,
		synth.Set(0, 1),
		synth.Exp(d.decay, synth.Floor),
	))
	output(g, amp, 1.6)
}
