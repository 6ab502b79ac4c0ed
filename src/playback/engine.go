// Package playback joins the clock, the pattern and the voices: on every new
// step it triggers the voices switched on for that step.
package playback

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"

	"tjweldon/drumkit/src/kit"
	"tjweldon/drumkit/src/pattern"
	"tjweldon/drumkit/src/sequencer"
	"tjweldon/drumkit/src/streams"
	"tjweldon/drumkit/src/util"
	"tjweldon/drumkit/src/voices"
)

var logger = util.Logger{}.Ctx("playback")

// Engine is the drum machine with its parts wired together
type Engine struct {
	clock *sequencer.Clock
	store *pattern.Store
	synth *voices.Synth
	sink  streams.Sink

	hintOnce sync.Once
}

// New wires store and clock to a Synth playing into sink. The engine hears
// about steps before any observer added later with OnStepChange.
func New(sink streams.Sink, store *pattern.Store, clock *sequencer.Clock, seed *rand.Rand) *Engine {
	e := &Engine{
		clock: clock,
		store: store,
		synth: voices.New(sink, seed),
		sink:  sink,
	}
	clock.OnStepChange(e.onStep)
	return e
}

func (e *Engine) onStep(step int) {
	for _, v := range e.store.Active(step) {
		e.synth.Trigger(v)
	}
}

// hint asks the sink to treat our audio as playback, once. A sink without
// session hints is fine.
func (e *Engine) hint() {
	e.hintOnce.Do(func() {
		logger := logger.Ctx("hint")
		h, ok := e.sink.(streams.SessionHinter)
		if !ok {
			logger.Warn("sink has no audio session hints, skipping")
			return
		}
		if err := h.SetSessionHint(streams.HintPlayback); err != nil {
			logger.Warn(errors.Wrap(err, "set session hint"))
		}
	})
}

// Play starts the clock. Step 0 plays straight away.
func (e *Engine) Play(ctx context.Context) {
	e.hint()
	e.clock.Start(ctx)
}

// Stop halts the clock. Voices already sounding ring out.
func (e *Engine) Stop() { e.clock.Stop() }

func (e *Engine) Toggle(ctx context.Context) sequencer.State {
	if e.clock.State() == sequencer.Stopped {
		e.hint()
	}
	return e.clock.Toggle(ctx)
}

func (e *Engine) SetTempo(bpm sequencer.Tempo) error { return e.clock.SetTempo(bpm) }

// OnStepChange registers f with the clock
func (e *Engine) OnStepChange(f func(step int)) { e.clock.OnStepChange(f) }

// Trigger plays one voice now, outside the pattern
func (e *Engine) Trigger(id kit.VoiceID) error {
	if !id.Valid() {
		return errors.Wrapf(kit.ErrUnknownVoice, "%v", id)
	}
	e.hint()
	e.synth.Trigger(id)
	return nil
}

// Preview plays the selected instrument
func (e *Engine) Preview() kit.VoiceID {
	id := e.store.Selected()
	_ = e.Trigger(id)
	return id
}

func (e *Engine) SetKickPitch(semitones float64) { e.synth.SetKickPitch(semitones) }

// SetVolume sets the sink's master level in doublings, if the sink has one
func (e *Engine) SetVolume(level float64) {
	v, ok := e.sink.(interface{ SetVolume(float64) })
	if !ok {
		logger.Ctx("SetVolume").Vol(util.Normal).Log("sink has no master volume")
		return
	}
	v.SetVolume(level)
}

// RingOut waits for every voice still sounding to finish, up to limit. It
// reports whether they all did.
func (e *Engine) RingOut(limit time.Duration) bool {
	deadline := time.Now().Add(limit)
	for e.synth.Live() > 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(ringOutPoll)
	}
	return true
}

const ringOutPoll = 10 * time.Millisecond

func (e *Engine) Clock() *sequencer.Clock { return e.clock }
func (e *Engine) Store() *pattern.Store   { return e.store }
func (e *Engine) Synth() *voices.Synth    { return e.synth }
