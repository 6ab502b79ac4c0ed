package voices

import (
	"math"

	"tjweldon/drumkit/src/synth"
)

const (
	kickBase     = 60.0
	kickSweep    = 0.05
	kickDecay    = 0.15
	kickRatio    = 1.5
	kickStartMul = 2.2
)

// Kick is one FM pair whose pitch drops from kickStartMul times the base
// frequency to the base over kickSweep, under a fast exponential decay
func Kick(g *synth.Graph, _ synth.Rand, opts Options) {
	t0 := g.Origin()
	base := kickBase * math.Exp2(opts.KickPitch/12)

	op := g.Operator(base*kickStartMul, kickRatio, base*2)
	op.Carrier.Frequency.Apply(t0,
		synth.Set(0, base*kickStartMul),
		synth.Exp(kickSweep, base),
	)
	op.Modulator.Frequency.Apply(t0,
		synth.Set(0, base*kickStartMul*kickRatio),
		synth.Exp(kickSweep, base*kickRatio),
	)
	op.Index.Apply(t0,
		synth.Set(0, base*2),
		synth.Exp(0.06, synth.Floor),
	)
	op.Start(t0).Stop(t0 + kickDecay)

	amp := g.Gain(op, synth.NewParam(0).Apply(t0,
		synth.Set(0, 1),
		synth.Exp(kickDecay, synth.Floor),
	))
	output(g, amp, 1.1)
}
