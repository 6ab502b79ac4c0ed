// Package voices holds the four percussion voices and the Synth that plays
// them. Every trigger builds a fresh synth.Graph from the modulation
// primitives, hands it to the output sink and returns.
package voices

import (
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/faiface/beep"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/streams"
	"tjweldon/drumkit/src/synth"
	"tjweldon/drumkit/src/util"
)

var logger = util.Logger{}.Ctx("voices")

// Options are the voice settings that persist between triggers
type Options struct {
	// KickPitch shifts the kick's base pitch in semitones
	KickPitch float64
}

// Builder wires one voice into g, starting at g.Origin(). r is owned by the
// caller for the duration of the build.
type Builder func(g *synth.Graph, r synth.Rand, opts Options)

var builders = map[kit.VoiceID]Builder{
	kit.Kick:   Kick,
	kit.Snare:  Snare,
	kit.Hihat:  Hihat,
	kit.Glitch: Glitch,
}

// Synth triggers voices into a sink. Trigger may be called from several
// goroutines; the only shared state is the seed generator, which is locked.
type Synth struct {
	sink streams.Sink

	mu   sync.Mutex
	seed *rand.Rand
	opts Options

	live int64
}

// New makes a Synth playing into sink. seed supplies one fresh generator per
// trigger; pass a fixed source for repeatable renders.
func New(sink streams.Sink, seed *rand.Rand) *Synth {
	return &Synth{sink: sink, seed: seed}
}

func (s *Synth) SetKickPitch(semitones float64) {
	s.mu.Lock()
	s.opts.KickPitch = semitones
	s.mu.Unlock()
}

// Live is the number of graphs triggered but not yet released
func (s *Synth) Live() int { return int(atomic.LoadInt64(&s.live)) }

func (s *Synth) draw() (*rand.Rand, Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rand.New(rand.NewSource(s.seed.Int63())), s.opts
}

// Build constructs the graph for id at audio time t0 without playing it
func (s *Synth) Build(id kit.VoiceID, t0 float64) *synth.Graph {
	r, opts := s.draw()
	g := synth.NewGraph(s.sink.SampleRate(), t0)
	if build, ok := builders[id]; ok {
		build(g, r, opts)
	}
	return g
}

// Trigger starts voice id now. It never blocks on audio and never fails: if
// the sink cannot take the voice the hit is dropped with a warning and the
// sink is asked again on the next trigger.
func (s *Synth) Trigger(id kit.VoiceID) {
	logger := logger.Ctx("Trigger").Vol(util.Quiet)

	g := s.Build(id, s.sink.Now())
	atomic.AddInt64(&s.live, 1)
	g.OnRelease(func() { atomic.AddInt64(&s.live, -1) })

	if err := s.sink.Play(g); err != nil {
		logger.Warn("dropped", id, "hit:", err)
		g.Release()
		return
	}
	logger.Log(id, "at", g.Origin(), "until", g.StopTime())
}

// output is the shared tail of every voice: a level, then the soft clipper
func output(g *synth.Graph, in beep.Streamer, level float64) {
	g.Connect(g.Saturate(g.Gain(in, synth.Const(level)), synth.DefaultSaturator))
}
