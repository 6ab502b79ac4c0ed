package playback

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"

	"tjweldon/drumkit/src/pattern"
	"tjweldon/drumkit/src/sequencer"
	"tjweldon/drumkit/src/streams"
	"tjweldon/drumkit/src/util"
)

// MaxTail bounds how long a render waits for the last voices to ring out
const MaxTail = 4 * time.Second

// RenderOptions describe an offline render
type RenderOptions struct {
	Bars       int
	Tempo      sequencer.Tempo
	SampleRate beep.SampleRate
	Seed       int64
	KickPitch  float64
	// Volume is the master level in doublings, 0 for unity
	Volume float64
}

// renderer is the streamer a file render pulls. The clock reads the offline
// sink's audio time, and is polled every sequencer.DefaultPoll of audio, so
// a render hears the same poll jitter a live run does.
type renderer struct {
	engine  *Engine
	offline *streams.Offline

	poll    int // samples per poll
	pos     int
	length  int // samples of pattern playback
	tailEnd int
	done    bool
}

func (r *renderer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && !r.done {
		if r.pos == r.length {
			r.engine.Stop()
		}
		if r.pos%r.poll == 0 && r.pos < r.length {
			r.engine.clock.Poll()
		}
		if r.pos >= r.length && (r.engine.synth.Live() == 0 || r.pos >= r.tailEnd) {
			r.done = true
			break
		}

		chunk := util.Clamp(len(samples)-n, 1, r.poll-r.pos%r.poll)
		r.offline.Stream(samples[n : n+chunk])
		n += chunk
		r.pos += chunk
	}
	return n, n > 0
}

func (r *renderer) Err() error { return nil }

// Render plays store for o.Bars bars into a WAV file, then lets the last
// voices ring out
func Render(out io.WriteSeeker, store *pattern.Store, o RenderOptions) error {
	logger := logger.Ctx("Render")
	if o.Bars < 1 {
		return errors.Errorf("cannot render %d bars", o.Bars)
	}
	if err := o.Tempo.Validate(); err != nil {
		return err
	}

	offline := streams.NewOffline(o.SampleRate)
	epoch := time.Unix(0, 0)
	clock := sequencer.NewClock(o.Tempo,
		sequencer.WithPoll(0),
		sequencer.WithNow(func() time.Time {
			return epoch.Add(time.Duration(offline.Now() * float64(time.Second)))
		}),
	)
	engine := New(offline, store, clock, rand.New(rand.NewSource(o.Seed)))
	engine.SetKickPitch(o.KickPitch)
	engine.SetVolume(o.Volume)

	beat := sequencer.Timing{}.From(o.Tempo, offline.Format())
	step := beat.Quantise(sequencer.Sixteenth)
	r := &renderer{
		engine:  engine,
		offline: offline,
		// a poll longer than a step would skip steps
		poll:   util.Clamp(o.SampleRate.N(sequencer.DefaultPoll), 1, step.Samples),
		length: o.Bars * beat.Bar().Samples,
	}
	r.tailEnd = r.length + o.SampleRate.N(MaxTail)

	engine.Play(context.Background())
	if err := wav.Encode(out, r, offline.Format()); err != nil {
		return errors.Wrap(err, "encoding wav")
	}
	logger.Vol(util.Normal).Log("rendered", o.Bars, "bars,", r.pos, "samples")
	return nil
}
