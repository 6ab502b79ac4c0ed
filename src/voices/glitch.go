package voices

import (
	"tjweldon/drumkit/src/synth"
)

// layer weights into the glitch master; they sum to 1
const (
	glitchBodyMix  = 0.4
	glitchClickMix = 0.2
	glitchBedMix   = 0.3
	glitchSubMix   = 0.1
)

const (
	glitchBodyLen = 0.2
	glitchClick   = 0.005
	glitchBed     = 3.0
	glitchSubLen  = 0.12
)

// Glitch layers a feedback FM body, a digital click, a long crushed noise
// bed and a sub thump, then shares one master chain between them
func Glitch(g *synth.Graph, r synth.Rand, _ Options) {
	t0 := g.Origin()
	rate := int(g.SampleRate())

	master := g.Sum(
		g.Gain(glitchBody(g, r, t0), synth.Const(glitchBodyMix)),
		g.Gain(glitchClickLayer(g, r, t0, rate), synth.Const(glitchClickMix)),
		g.Gain(glitchBedLayer(g, r, t0, rate), synth.Const(glitchBedMix)),
		g.Gain(glitchSub(g, t0), synth.Const(glitchSubMix)),
	)

	air := g.Filter(master, synth.Lowpass, 14000, 0.707, 0)
	character := g.Filter(air, synth.Peaking, synth.Uniform(r, 1800, 3200), 1, 4)
	clean := g.Filter(character, synth.Highpass, 35, 0.707, 0)
	output(g, clean, 1.4)
}

var glitchOps = [3]struct{ lo, hi, ratio float64 }{
	{180, 260, 3.71},
	{700, 1100, 5.13},
	{2400, 3600, 0.51},
}

// three operators driven hard, each feeding back into itself, through a
// 9-bit quantizer
func glitchBody(g *synth.Graph, r synth.Rand, t0 float64) *synth.Shaper {
	ops := make([]*synth.Gain, 0, len(glitchOps))
	for _, o := range glitchOps {
		freq := synth.Uniform(r, o.lo, o.hi)
		depth := freq * synth.Uniform(r, 4, 8)

		op := g.Operator(freq, o.ratio, depth)
		op.Index.Apply(t0,
			synth.Set(0, depth),
			synth.Exp(synth.Uniform(r, 0.05, 0.1), synth.Floor),
		)
		op.WithFeedback(synth.NewParam(0).Apply(t0,
			synth.Set(0, synth.Uniform(r, 0.9, 1.2)),
			synth.Exp(0.06, synth.Floor),
		))
		op.Start(t0).Stop(t0 + glitchBodyLen)
		ops = append(ops, g.Gain(op, synth.Const(1.0/3)))
	}

	sum := g.Sum(ops[0], ops[1], ops[2])
	env := g.Gain(sum, synth.NewParam(0).Apply(t0,
		synth.Set(0, 1),
		synth.Exp(glitchBodyLen-0.02, synth.Floor),
	))
	return g.Crush(env, 9)
}

func glitchClickLayer(g *synth.Graph, r synth.Rand, t0 float64, rate int) *synth.Shaper {
	click := g.Buffer(synth.NoiseBuffer(r, rate, glitchClick, 0.3)).Start(t0)
	return g.Crush(click, 6)
}

func glitchBedLayer(g *synth.Graph, r synth.Rand, t0 float64, rate int) *synth.Shaper {
	bed := g.Buffer(synth.NoiseBuffer(r, rate, glitchBed, 0.08)).Start(t0)
	band := g.Filter(bed, synth.Bandpass, synth.Uniform(r, 1500, 2500), 0.7, 0)
	return g.Crush(band, 8)
}

func glitchSub(g *synth.Graph, t0 float64) *synth.Gain {
	sub := g.Oscillator(synth.Sine, 90).Start(t0)
	sub.Frequency.Apply(t0, synth.Set(0, 90), synth.Exp(0.08, 45))
	sub.Stop(t0 + glitchSubLen)
	return g.Gain(sub, synth.NewParam(0).Apply(t0,
		synth.Set(0, 1),
		synth.Exp(glitchSubLen, synth.Floor),
	))
}
