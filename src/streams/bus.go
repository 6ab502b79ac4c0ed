package streams

import (
	"math"
	"sync/atomic"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// Sink is where triggered voices go. Now is the sample-accurate audio clock
// in seconds: the number of samples the sink has produced so far.
type Sink interface {
	SampleRate() beep.SampleRate
	Now() float64
	Play(s beep.Streamer) error
}

// SessionHint tells a platform what kind of audio the app is making
type SessionHint string

// HintPlayback asks for audio that plays even when the device is silenced
const HintPlayback SessionHint = "playback"

// SessionHinter is an optional Sink capability
type SessionHinter interface {
	SetSessionHint(h SessionHint) error
}

// Format is the format every sink renders in
func Format(rate beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
}

// Bus is the single output mix. Voices are summed by a beep.Mixer, which
// drops each voice once it is drained, and the sum passes through a master
// volume. The bus counts what it streams to keep the audio clock.
type Bus struct {
	format beep.Format
	mixer  *beep.Mixer
	master *effects.Volume
	pos    int64
}

func NewBus(format beep.Format) *Bus {
	mixer := &beep.Mixer{}
	return &Bus{
		format: format,
		mixer:  mixer,
		master: &effects.Volume{Streamer: mixer, Base: 2},
	}
}

func (b *Bus) Format() beep.Format         { return b.format }
func (b *Bus) SampleRate() beep.SampleRate { return b.format.SampleRate }

// Now is the audio clock in seconds
func (b *Bus) Now() float64 {
	return float64(atomic.LoadInt64(&b.pos)) / float64(b.format.SampleRate)
}

// Voices is how many streamers are still sounding. Callers that share the
// bus with a device goroutine must hold the device lock.
func (b *Bus) Voices() int { return b.mixer.Len() }

// SetVolume sets the master level in doublings, so -1 halves the amplitude
// and 0 leaves it alone. A level at or below -16 mutes.
func (b *Bus) SetVolume(level float64) {
	b.master.Volume = level
	b.master.Silent = level <= -16 || math.IsInf(level, -1)
}

func (b *Bus) add(s beep.Streamer) { b.mixer.Add(s) }

// Stream renders the mix. It never drains: with nothing playing it streams
// silence and the clock keeps running.
func (b *Bus) Stream(samples [][2]float64) (n int, ok bool) {
	n, _ = b.master.Stream(samples)
	for i := range samples[n:] {
		samples[n+i] = [2]float64{}
	}
	atomic.AddInt64(&b.pos, int64(len(samples)))
	return len(samples), true
}

func (b *Bus) Err() error { return nil }
