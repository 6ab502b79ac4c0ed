package voices

import (
	"tjweldon/drumkit/src/synth"
)

const (
	snareBody      = 200.0
	snareRatio     = 2.3
	snareIndex     = 900.0
	snareBodyDecay = 0.12
	snareNoiseLen  = 0.15
	snareBand      = 3000.0
)

// Snare sums an inharmonic FM body with band-passed noise and runs the pair
// through the shared saturation
func Snare(g *synth.Graph, r synth.Rand, _ Options) {
	t0 := g.Origin()
	rate := int(g.SampleRate())

	body := g.Operator(snareBody, snareRatio, snareIndex)
	body.Carrier.Frequency.Apply(t0,
		synth.Set(0, snareBody),
		synth.Exp(0.1, snareBody*0.9),
	)
	body.Index.Apply(t0,
		synth.Set(0, snareIndex),
		synth.Exp(snareBodyDecay, synth.Floor),
	)
	body.Start(t0).Stop(t0 + snareBodyDecay)
	bodyAmp := g.Gain(body, synth.NewParam(0).Apply(t0,
		synth.Set(0, 0.7),
		synth.Exp(snareBodyDecay, synth.Floor),
	))

	noise := g.Buffer(synth.NoiseBuffer(r, rate, snareNoiseLen, 0)).Start(t0)
	band := g.Filter(noise, synth.Bandpass, snareBand, 0.9, 0)
	noiseAmp := g.Gain(band, synth.NewParam(0).Apply(t0,
		synth.Set(0, 1),
		synth.Exp(synth.Uniform(r, 0.1, 0.15), synth.Floor),
	))

	output(g, g.Sum(bodyAmp, noiseAmp), 0.9)
}
